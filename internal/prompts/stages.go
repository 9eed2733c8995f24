package prompts

import (
	"encoding/json"
	"slices"
	"strings"
)

// Stage names the workflow step a prompt drives.
type Stage string

// Prompted workflow stages. Retrieval and revision routing run without a
// model prompt and have no stage.
const (
	StageClassify Stage = "classify"
	StageDraft    Stage = "draft"
	StageReview   Stage = "review"
)

var purposes = map[Stage]string{
	StageClassify: "assign one support category to an inbound email",
	StageDraft:    "write or revise the reply, grounded in passages on the retrieval route",
	StageReview:   "judge a draft on formatting, clarity and relevance",
}

var stages = []Stage{StageClassify, StageDraft, StageReview}

// Stages returns the prompted stages in workflow order.
func Stages() []Stage {
	return slices.Clone(stages)
}

// Purpose describes what the stage's prompt asks of the model.
func (s Stage) Purpose() string {
	return purposes[s]
}

// StageInfo pairs a stage with its purpose for listing.
type StageInfo struct {
	Stage   Stage  `json:"stage"`
	Purpose string `json:"purpose"`
}

// StageInfos lists every stage with its purpose in workflow order.
func StageInfos() []StageInfo {
	out := make([]StageInfo, len(stages))
	for i, s := range stages {
		out[i] = StageInfo{Stage: s, Purpose: s.Purpose()}
	}
	return out
}

// ParseStage validates s as a stage name. Case and surrounding space are
// ignored so template keys and path values like "Draft" resolve.
// Returns ErrInvalidStage if the value is not recognized.
func ParseStage(s string) (Stage, error) {
	v := Stage(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := purposes[v]; !ok {
		return "", ErrInvalidStage
	}
	return v, nil
}

// UnmarshalJSON decodes a stage name through ParseStage.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseStage(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

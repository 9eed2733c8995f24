package workflow

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Category is the single label the classifier assigns to an email.
type Category string

// Categories recognized by the workflow.
const (
	CategoryComplaint      Category = "complaint"
	CategoryProductInquiry Category = "product_inquiry"
	CategoryFeedback       Category = "feedback"
	CategoryUnrelated      Category = "unrelated"
)

var categories = []Category{
	CategoryComplaint,
	CategoryProductInquiry,
	CategoryFeedback,
	CategoryUnrelated,
}

// Categories returns every known category.
func Categories() []Category {
	return slices.Clone(categories)
}

// ParseCategory validates s as a known category.
// Returns ErrInvalidCategory if the value is not recognized.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !slices.Contains(categories, c) {
		return "", ErrInvalidCategory
	}
	return c, nil
}

// UnmarshalJSON validates that the decoded string is a known category.
// An empty string decodes to the zero value, as for a run that ended
// before classification.
func (c *Category) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*c = ""
		return nil
	}
	v, err := ParseCategory(raw)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Email is the immutable input to one workflow run.
type Email struct {
	ID         uuid.UUID `json:"id"`
	Sender     string    `json:"sender"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"received_at"`
}

// Passage is one ranked piece of supporting text returned by a Retriever.
type Passage struct {
	Text   string  `json:"text"`
	Source string  `json:"source,omitempty"`
	Score  float64 `json:"score"`
}

// Draft is a candidate reply. Each revision replaces the prior Draft.
type Draft struct {
	EmailID  uuid.UUID `json:"email_id"`
	Body     string    `json:"body"`
	Revision int       `json:"revision"`
	Category Category  `json:"category,omitempty"`
	Passages []Passage `json:"passages,omitempty"`
}

// Criterion is one of the independent checks applied by a Reviewer.
type Criterion string

// Review criteria. A verdict passes only when all of them pass.
const (
	CriterionFormatting Criterion = "formatting"
	CriterionClarity    Criterion = "clarity"
	CriterionRelevance  Criterion = "relevance"
)

// Criteria returns the review criteria in evaluation order.
func Criteria() []Criterion {
	return []Criterion{CriterionFormatting, CriterionClarity, CriterionRelevance}
}

// Issue describes why a criterion failed. Factual marks missing or incorrect
// factual content, which re-issues retrieval on the augmented route.
type Issue struct {
	Criterion   Criterion `json:"criterion"`
	Description string    `json:"description"`
	Factual     bool      `json:"factual,omitempty"`
}

// Verdict is the result of reviewing one Draft.
type Verdict struct {
	Pass   bool    `json:"pass"`
	Issues []Issue `json:"issues,omitempty"`
}

// Failed returns the distinct criteria that produced issues, in criteria order.
func (v Verdict) Failed() []Criterion {
	var failed []Criterion
	for _, c := range Criteria() {
		if slices.ContainsFunc(v.Issues, func(i Issue) bool { return i.Criterion == c }) {
			failed = append(failed, c)
		}
	}
	return failed
}

// Factual reports whether any issue flags factual content.
func (v Verdict) Factual() bool {
	return slices.ContainsFunc(v.Issues, func(i Issue) bool { return i.Factual })
}

// Outcome is the terminal decision for a run.
type Outcome string

// Terminal outcomes.
const (
	OutcomeSent      Outcome = "sent"
	OutcomeDiscarded Outcome = "discarded"
	OutcomeEscalated Outcome = "escalated"
)

// Reason is the observability code attached to every terminal outcome.
type Reason string

// Reason codes.
const (
	ReasonApproved                Reason = "approved"
	ReasonUnrelated               Reason = "unrelated"
	ReasonClassificationFailed    Reason = "classification_failed"
	ReasonRevisionBoundExhausted  Reason = "revision_bound_exhausted"
	ReasonGenerationFailed        Reason = "generation_failed"
	ReasonReviewFailed            Reason = "review_failed"
	ReasonReviewContractViolation Reason = "review_contract_violation"
	ReasonInterrupted             Reason = "interrupted"
	ReasonInternalError           Reason = "internal_error"
)

// Stage tracks a run's position in the workflow state machine.
type Stage string

// Workflow states.
const (
	StageReceived   Stage = "received"
	StageClassified Stage = "classified"
	StageDiscarded  Stage = "discarded"
	StageDrafting   Stage = "drafting"
	StageReviewing  Stage = "reviewing"
	StageRevising   Stage = "revising"
	StageApproved   Stage = "approved"
	StageEscalated  Stage = "escalated"
)

// Terminal reports whether no further transitions leave the stage.
func (s Stage) Terminal() bool {
	return s == StageDiscarded || s == StageApproved || s == StageEscalated
}

// Result is the single terminal record produced for every Email.
// It carries no wall-clock fields so identical runs produce identical results.
type Result struct {
	EmailID   uuid.UUID `json:"email_id"`
	Outcome   Outcome   `json:"outcome"`
	Reason    Reason    `json:"reason"`
	Category  Category  `json:"category,omitempty"`
	Draft     *Draft    `json:"draft,omitempty"`
	Verdict   *Verdict  `json:"verdict,omitempty"`
	Revisions int       `json:"revisions"`
}

package prompts

const classifySpec = `Respond with a JSON object matching this exact structure:

{
  "category": "<label>",
  "rationale": "<explanation>"
}

Field constraints:
- category: Exactly one label from the allowed categories listed in this
  prompt. Never invent a label, combine labels, or change their spelling.
- rationale: One or two sentences explaining which part of the email
  determined the category.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Classify exactly one email per response`

const draftSpec = `Respond with a JSON object matching this exact structure:

{
  "reply": "<full reply text>"
}

Field constraints:
- reply: The complete reply body, starting with the salutation and ending
  with the sign-off. Plain text with blank lines between paragraphs.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Never return an empty reply
- State only facts present in the email or in the supplied passages`

const reviewSpec = `Respond with a JSON object matching this exact structure:

{
  "criteria": [
    {"criterion": "formatting", "pass": true, "issues": [], "factual": false},
    {"criterion": "clarity", "pass": true, "issues": [], "factual": false},
    {"criterion": "relevance", "pass": true, "issues": [], "factual": false}
  ]
}

Field constraints:
- criteria: Exactly one entry for each of formatting, clarity, and relevance.
- pass: Whether the draft satisfies the criterion.
- issues: When pass is false, one or more concrete problem descriptions.
  Empty when pass is true.
- factual: True when a failing criterion is caused by missing or incorrect
  factual content.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- A failing criterion must list at least one issue`

var specs = map[Stage]string{
	StageClassify: classifySpec,
	StageDraft:    draftSpec,
	StageReview:   reviewSpec,
}

// Spec returns the hardcoded specification for a workflow stage.
// Specifications define the expected output format and behavioral constraints.
// Returns ErrInvalidStage if the stage is not recognized.
func Spec(stage Stage) (string, error) {
	text, ok := specs[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}

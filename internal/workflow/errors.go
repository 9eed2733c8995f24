// Package workflow implements the support-email triage workflow: classify,
// optionally retrieve, draft, review, and revise within a fixed bound until the
// run reaches exactly one terminal outcome.
package workflow

import "errors"

// Sentinel errors for workflow operations.
var (
	ErrClassification  = errors.New("classification failed")
	ErrGeneration      = errors.New("draft generation failed")
	ErrReview          = errors.New("draft review failed")
	ErrReviewContract  = errors.New("failing verdict carried no issues")
	ErrRetrieval       = errors.New("retrieval failed")
	ErrUnparseable     = errors.New("unparseable model response")
	ErrInvalidCategory = errors.New("category must be complaint, product_inquiry, feedback, or unrelated")
	ErrInvalidConfig   = errors.New("invalid workflow config")
)

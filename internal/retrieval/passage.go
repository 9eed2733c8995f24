// Package retrieval implements the passage index behind retrieval-augmented
// drafting. Passages live in Postgres with a generated tsvector column and
// are ranked with ts_rank against websearch_to_tsquery.
package retrieval

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Passage is one indexed piece of knowledge-base text.
type Passage struct {
	ID        uuid.UUID `json:"id"`
	Source    string    `json:"source"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// IndexCommand carries a passage to add to the index.
type IndexCommand struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

// Validate rejects passages without text.
func (c IndexCommand) Validate() error {
	if strings.TrimSpace(c.Text) == "" {
		return ErrEmptyPassage
	}
	return nil
}

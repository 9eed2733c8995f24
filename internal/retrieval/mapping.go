package retrieval

import (
	"net/url"

	"github.com/JaimeStill/steward/pkg/query"
	"github.com/JaimeStill/steward/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "passages", "p").
	Project("id", "ID").
	Project("source", "Source").
	Project("text", "Text").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{Field: "CreatedAt", Descending: true}

// Filters narrows passage listings. Source uses case-insensitive contains.
type Filters struct {
	Source *string `json:"source,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.WhereContains("Source", f.Source)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters
	if s := values.Get("source"); s != "" {
		f.Source = &s
	}
	return f
}

func scanPassage(s repository.Scanner) (Passage, error) {
	var p Passage
	err := s.Scan(&p.ID, &p.Source, &p.Text, &p.CreatedAt)
	return p, err
}

package workflow

import (
	"cmp"
	"slices"
	"strings"
	"unicode"
)

const maxQueryTerms = 12

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {}, "you": {},
	"your": {}, "with": {}, "this": {}, "that": {}, "have": {}, "has": {},
	"was": {}, "were": {}, "will": {}, "would": {}, "can": {}, "could": {},
	"should": {}, "from": {}, "what": {}, "when": {}, "where": {}, "which": {},
	"who": {}, "how": {}, "does": {}, "did": {}, "any": {}, "all": {}, "our": {},
	"there": {}, "their": {}, "they": {}, "them": {}, "about": {}, "into": {},
	"just": {}, "also": {}, "please": {}, "thanks": {}, "thank": {}, "hello": {},
	"dear": {}, "regards": {}, "best": {}, "its": {}, "out": {}, "get": {},
	"been": {}, "being": {}, "some": {}, "than": {}, "then": {}, "very": {},
}

// BuildQuery derives a retrieval query from the subject and body of an email.
// Terms are distinct, lowercased, and joined with OR in first-seen order.
func BuildQuery(email Email) string {
	return strings.Join(keywords(nil, email.Subject+" "+email.Body, maxQueryTerms), " OR ")
}

// RefineQuery extends base with keywords from the descriptions of factual issues.
func RefineQuery(base string, issues []Issue) string {
	var terms []string
	if base != "" {
		terms = strings.Split(base, " OR ")
	}
	for _, issue := range issues {
		if issue.Factual {
			terms = keywords(terms, issue.Description, len(terms)+maxQueryTerms)
		}
	}
	return strings.Join(terms, " OR ")
}

func keywords(terms []string, text string, limit int) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for _, f := range fields {
		if len(terms) >= limit {
			break
		}
		if len(f) < 3 {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		if slices.Contains(terms, f) {
			continue
		}
		terms = append(terms, f)
	}

	return terms
}

// RankPassages orders passages by descending score, keeping input order among
// ties, and truncates the result to k.
func RankPassages(passages []Passage, k int) []Passage {
	ranked := slices.Clone(passages)
	slices.SortStableFunc(ranked, func(a, b Passage) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if k >= 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

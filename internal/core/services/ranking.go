package services

import (
	"sort"
	"strings"

	"github.com/custodia-labs/workplace-mcp/internal/core/domain"
)

// Relevance weights for search result ranking. A query term matched in
// the title counts more than the same term matched in the snippet.
const (
	titleMatchWeight   = 2.0
	snippetMatchWeight = 1.0
)

// relevanceScore computes a simple text-match score for one document.
// Each query term contributes titleMatchWeight if the title contains it
// and snippetMatchWeight if the snippet contains it, case-insensitive.
func relevanceScore(queryTerms []string, doc *domain.Document) float64 {
	title := strings.ToLower(doc.Title)
	snippet := strings.ToLower(doc.Snippet)

	var score float64
	for _, term := range queryTerms {
		if strings.Contains(title, term) {
			score += titleMatchWeight
		}
		if strings.Contains(snippet, term) {
			score += snippetMatchWeight
		}
	}
	return score
}

// rankByRelevance sorts documents by text-match score descending.
// Ties break by source name then document id so the ordering is
// deterministic across runs.
func rankByRelevance(query string, docs []domain.Document) {
	terms := strings.Fields(strings.ToLower(query))
	scores := make(map[string]float64, len(docs))
	for i := range docs {
		scores[docs[i].CompositeID()] = relevanceScore(terms, &docs[i])
	}

	sort.SliceStable(docs, func(i, j int) bool {
		si, sj := scores[docs[i].CompositeID()], scores[docs[j].CompositeID()]
		if si != sj {
			return si > sj
		}
		return tieBreak(&docs[i], &docs[j])
	})
}

// rankByModified sorts documents newest first with the same deterministic
// tie-break as rankByRelevance.
func rankByModified(docs []domain.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		ti, tj := docs[i].LastModified, docs[j].LastModified
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return tieBreak(&docs[i], &docs[j])
	})
}

// tieBreak orders equal-scored documents by source name then id.
func tieBreak(a, b *domain.Document) bool {
	if a.Source != b.Source {
		return a.Source < b.Source
	}
	return a.ID < b.ID
}

// truncate bounds docs to max entries. Applied after merge so one source
// can dominate if it has more relevant hits.
func truncate(docs []domain.Document, max int) []domain.Document {
	if max > 0 && len(docs) > max {
		return docs[:max]
	}
	return docs
}

package history

import (
	"sort"
	"strings"

	"github.com/bryanwahyu/legalsense/internal/domain/category"
	domain "github.com/bryanwahyu/legalsense/internal/domain/history"
)

// Search filters records by a free-text query. An empty or whitespace-only
// query returns the input unchanged. Matching is a plain case-insensitive
// substring test against the document name, the summary snippet, the refined
// category label and the concatenated party names; no tokenizing, no
// trimming, no fuzz. Whitespace inside or around a non-empty query is part
// of the pattern.
func Search(records []domain.Record, query string) []domain.Record {
	q := strings.ToLower(query)
	if strings.TrimSpace(q) == "" {
		return records
	}

	out := make([]domain.Record, 0, len(records))
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.DocumentName), q) ||
			strings.Contains(strings.ToLower(rec.SummarySnippet), q) ||
			strings.Contains(strings.ToLower(category.Refine(rec)), q) ||
			strings.Contains(strings.ToLower(strings.Join(rec.Parties(), " ")), q) {
			out = append(out, rec)
		}
	}
	return out
}

// Group partitions records by refined category, preserving each group's
// relative record order.
func Group(records []domain.Record) map[string][]domain.Record {
	groups := make(map[string][]domain.Record)
	for _, rec := range records {
		label := category.Refine(rec)
		groups[label] = append(groups[label], rec)
	}
	return groups
}

// OrderCategories orders category names descending by the newest record in
// each group: a category counts as recent if any of its members is recent.
// Ties on the max timestamp fall back to ascending name order so the output
// is stable; which category wins a tie is otherwise not a contract.
func OrderCategories(groups map[string][]domain.Record) []string {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		li, lj := latest(groups[names[i]]), latest(groups[names[j]])
		if li != lj {
			return li > lj
		}
		return names[i] < names[j]
	})
	return names
}

func latest(records []domain.Record) int64 {
	var max int64
	for _, r := range records {
		if r.CreatedAt > max {
			max = r.CreatedAt
		}
	}
	return max
}

package dedup

import (
	"sort"

	"ekwe/internal/tracker"
)

// Resolve picks the canonical issue from a set of issues sharing one word and
// marks the rest for removal. The earliest-created issue wins; ties break on
// the lower issue number so the outcome never depends on the order the
// service returned the set in. Resolve has no side effects; removal is
// enacted by the caller.
func Resolve(items []tracker.Issue) (*tracker.Issue, []tracker.Issue) {
	switch len(items) {
	case 0:
		return nil, nil
	case 1:
		canonical := items[0]
		return &canonical, nil
	}

	sorted := make([]tracker.Issue, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].Number < sorted[j].Number
	})

	canonical := sorted[0]
	return &canonical, sorted[1:]
}

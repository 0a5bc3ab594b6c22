package core

import "strings"

// SortSpec is a vetted ordering descriptor. It carries a key from an
// allow-list, never raw request text; the storage layer renders it through a
// fixed column map.
type SortSpec struct {
	Key        string
	Descending bool
}

// Allowed sort keys per read shape.
var (
	SummarySortKeys   = []string{"amount", "date", "store", "category"}
	AggregateSortKeys = []string{"amount", "name"}
)

// ParseSortSpec validates a client-supplied sort key and direction against an
// allow-list. Anything outside it fails with ErrInvalidSort before a query is
// built. Direction defaults to ascending when empty.
func ParseSortSpec(key, direction string, allowed []string) (SortSpec, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	direction = strings.ToLower(strings.TrimSpace(direction))

	found := false
	for _, k := range allowed {
		if key == k {
			found = true
			break
		}
	}
	if !found {
		return SortSpec{}, ErrInvalidSort
	}

	switch direction {
	case "", "asc":
		return SortSpec{Key: key}, nil
	case "desc":
		return SortSpec{Key: key, Descending: true}, nil
	default:
		return SortSpec{}, ErrInvalidSort
	}
}

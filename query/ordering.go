package query

import (
	"sort"
	"strings"

	"github.com/jacentio/lexicon/analysis"
)

// Ordering sorts scan results. The zero value orders by creation time, oldest first.
type Ordering struct {
	Field      string // "created_at" or "length"
	Descending bool
}

// ParseOrdering accepts created_at, -created_at, length and -length.
func ParseOrdering(raw string) (Ordering, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Ordering{Field: "created_at"}, nil
	}
	o := Ordering{}
	if strings.HasPrefix(s, "-") {
		o.Descending = true
		s = s[1:]
	}
	switch s {
	case "created_at", "length":
		o.Field = s
		return o, nil
	}
	return Ordering{}, &FilterError{Param: ParamOrdering, Value: raw, Reason: "must be one of created_at, -created_at, length, -length"}
}

// Sort orders es in place. Ties break on key so the result is deterministic.
func (o Ordering) Sort(es []analysis.Entry) {
	sort.SliceStable(es, func(i, j int) bool {
		a, b := es[i], es[j]
		if o.Descending {
			a, b = b, a
		}
		switch o.Field {
		case "length":
			if a.Length != b.Length {
				return a.Length < b.Length
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		}
		return a.Key < b.Key
	})
}

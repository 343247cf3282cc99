// Package query turns filter parameters into a typed constraint set and
// evaluates it against analyzed entries.
//
// Constraints combine with logical AND. Character containment has two tiers,
// selected per backend with [ContainsMode]:
//
//   - [ContainsFrequency] (authoritative): the requested character is
//     lowercased and looked up as a key of the entry's frequency map.
//   - [ContainsSubstring] (fallback): a case-sensitive substring test against
//     the raw value. It is less precise than the frequency lookup and can
//     disagree with it whenever the character's case differs from the value,
//     e.g. "H" matches "Hello" but "h" does not.
package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jacentio/lexicon/analysis"
)

// Parameter names recognized by [Parse].
const (
	ParamIsPalindrome      = "is_palindrome"
	ParamMinLength         = "min_length"
	ParamMaxLength         = "max_length"
	ParamWordCount         = "word_count"
	ParamContainsCharacter = "contains_character"
	ParamOrdering          = "ordering"
)

// ErrInvalidFilterValue is matched by every *FilterError.
var ErrInvalidFilterValue = errors.New("lexicon: invalid filter value")

// FilterError names the parameter that failed validation.
type FilterError struct {
	Param  string
	Value  string
	Reason string
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("lexicon: invalid value %q for %s: %s", e.Value, e.Param, e.Reason)
}

func (e *FilterError) Unwrap() error { return ErrInvalidFilterValue }

// Filters is the constraint set. Nil fields are unconstrained.
// The JSON form is the applied-filter echo returned to clients.
type Filters struct {
	IsPalindrome      *bool   `json:"is_palindrome,omitempty"`
	MinLength         *int    `json:"min_length,omitempty"`
	MaxLength         *int    `json:"max_length,omitempty"`
	WordCount         *int    `json:"word_count,omitempty"`
	ContainsCharacter *string `json:"contains_character,omitempty"`
}

// Parse builds Filters from raw parameters. Unknown parameters are ignored.
// min_length > max_length is accepted and simply matches nothing.
func Parse(params map[string]string) (Filters, error) {
	var f Filters

	if raw, ok := params[ParamIsPalindrome]; ok {
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return Filters{}, &FilterError{Param: ParamIsPalindrome, Value: raw, Reason: "must be true or false"}
		}
		f.IsPalindrome = &b
	}

	for _, p := range []struct {
		name string
		dst  **int
	}{
		{ParamMinLength, &f.MinLength},
		{ParamMaxLength, &f.MaxLength},
		{ParamWordCount, &f.WordCount},
	} {
		raw, ok := params[p.name]
		if !ok {
			continue
		}
		n, err := parseCount(p.name, raw)
		if err != nil {
			return Filters{}, err
		}
		*p.dst = &n
	}

	if raw, ok := params[ParamContainsCharacter]; ok {
		if utf8.RuneCountInString(raw) != 1 {
			return Filters{}, &FilterError{Param: ParamContainsCharacter, Value: raw, Reason: "must be a single character"}
		}
		f.ContainsCharacter = &raw
	}

	return f, nil
}

func parseCount(param, raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &FilterError{Param: param, Value: raw, Reason: "must be an integer"}
	}
	if n < 0 {
		return 0, &FilterError{Param: param, Value: raw, Reason: "must not be negative"}
	}
	return n, nil
}

// Empty reports whether no constraint is set.
func (f Filters) Empty() bool {
	return f.IsPalindrome == nil && f.MinLength == nil && f.MaxLength == nil &&
		f.WordCount == nil && f.ContainsCharacter == nil
}

// Conflicting reports whether both length bounds are set and cannot both hold.
func (f Filters) Conflicting() bool {
	return f.MinLength != nil && f.MaxLength != nil && *f.MinLength > *f.MaxLength
}

// Bool, Int and String return pointers for building Filters literals.
func Bool(b bool) *bool       { return &b }
func Int(n int) *int          { return &n }
func String(s string) *string { return &s }

// Match reports whether e satisfies every constraint in f.
// Scalar constraints are checked before character containment.
func Match(e analysis.Entry, f Filters, mode ContainsMode) bool {
	if f.IsPalindrome != nil && e.IsPalindrome != *f.IsPalindrome {
		return false
	}
	if f.WordCount != nil && e.WordCount != *f.WordCount {
		return false
	}
	if f.MinLength != nil && e.Length < *f.MinLength {
		return false
	}
	if f.MaxLength != nil && e.Length > *f.MaxLength {
		return false
	}
	if f.ContainsCharacter != nil {
		return mode.Contains(e, *f.ContainsCharacter)
	}
	return true
}

// Filter returns the entries of es that satisfy f, preserving order.
func Filter(es []analysis.Entry, f Filters, mode ContainsMode) []analysis.Entry {
	out := make([]analysis.Entry, 0, len(es))
	for _, e := range es {
		if Match(e, f, mode) {
			out = append(out, e)
		}
	}
	return out
}

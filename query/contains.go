package query

import (
	"fmt"
	"strings"

	"github.com/jacentio/lexicon/analysis"
)

// ContainsMode selects how contains_character is evaluated.
type ContainsMode int

const (
	// ContainsFrequency looks the lowercased character up in the frequency map.
	ContainsFrequency ContainsMode = iota

	// ContainsSubstring tests the raw value for the character, case-sensitively.
	// Used only where the backend cannot query the frequency map; it is less
	// precise and may disagree with ContainsFrequency on case.
	ContainsSubstring
)

// ParseContainsMode accepts "frequency" or "substring". Empty means frequency.
func ParseContainsMode(s string) (ContainsMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "frequency":
		return ContainsFrequency, nil
	case "substring":
		return ContainsSubstring, nil
	}
	return 0, fmt.Errorf("lexicon: unknown contains mode %q", s)
}

func (m ContainsMode) String() string {
	if m == ContainsSubstring {
		return "substring"
	}
	return "frequency"
}

// Contains applies the mode's containment test to e.
func (m ContainsMode) Contains(e analysis.Entry, ch string) bool {
	if m == ContainsSubstring {
		return strings.Contains(e.Value, ch)
	}
	return e.HasCharacter(ch)
}

// Package analysis computes the derived attributes of an ingested string.
//
// Every attribute is a pure function of the trimmed input. [Analyze] performs
// no I/O and is safe for concurrent use; persistence stamps the creation time
// separately with [Entry.Stamp].
package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	// ErrInvalidInput is returned when the value is empty after trimming.
	ErrInvalidInput = errors.New("lexicon: value must be a non-empty string")

	// ErrInvalidType is returned when a create payload carries a value that is not a string.
	ErrInvalidType = errors.New("lexicon: value must be a string")
)

// Entry is one analyzed string and its derived attributes.
type Entry struct {
	// Key is the hex-encoded SHA-256 of Value.
	Key string

	// Value is the trimmed input.
	Value string

	// Length is the number of characters (code points) in Value.
	Length int

	// IsPalindrome reports whether the lowercase form reads the same reversed.
	IsPalindrome bool

	// UniqueCharacters is the number of distinct characters in the lowercase form.
	UniqueCharacters int

	// WordCount is the number of whitespace-delimited tokens.
	WordCount int

	// CharacterFrequency maps each lowercase character to its occurrence count.
	CharacterFrequency map[string]int

	// CreatedAt is set once when the entry is persisted.
	CreatedAt time.Time
}

// Key returns the content hash used as an entry's identity.
func Key(value string) string {
	h := sha256.Sum256([]byte(value))
	return hex.EncodeToString(h[:])
}

// Analyze trims raw and computes every derived attribute.
// CreatedAt is left zero.
func Analyze(raw string) (Entry, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return Entry{}, ErrInvalidInput
	}

	lower := []rune(strings.ToLower(value))
	freq := make(map[string]int, len(lower))
	for _, r := range lower {
		freq[string(r)]++
	}

	return Entry{
		Key:                Key(value),
		Value:              value,
		Length:             utf8.RuneCountInString(value),
		IsPalindrome:       isPalindrome(lower),
		UniqueCharacters:   len(freq),
		WordCount:          len(strings.Fields(value)),
		CharacterFrequency: freq,
	}, nil
}

// Stamp returns a copy of e with CreatedAt set, truncated to the second and in UTC.
// An entry that already carries a creation time is returned unchanged.
func (e Entry) Stamp(now time.Time) Entry {
	if !e.CreatedAt.IsZero() {
		return e
	}
	e.CreatedAt = now.UTC().Truncate(time.Second)
	return e
}

// HasCharacter reports whether ch, case-folded, is a key of the frequency map.
func (e Entry) HasCharacter(ch string) bool {
	_, ok := e.CharacterFrequency[strings.ToLower(ch)]
	return ok
}

func isPalindrome(rs []rune) bool {
	for i, j := 0, len(rs)-1; i < j; i, j = i+1, j-1 {
		if rs[i] != rs[j] {
			return false
		}
	}
	return true
}

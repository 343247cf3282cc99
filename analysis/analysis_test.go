package analysis_test

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacentio/lexicon/analysis"
)

func sha(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

func TestAnalyze_Madam(t *testing.T) {
	e, err := analysis.Analyze("madam")
	require.NoError(t, err)

	assert.Equal(t, "madam", e.Value)
	assert.Equal(t, sha("madam"), e.Key)
	assert.Len(t, e.Key, 64)
	assert.Equal(t, 5, e.Length)
	assert.True(t, e.IsPalindrome)
	assert.Equal(t, 3, e.UniqueCharacters)
	assert.Equal(t, 1, e.WordCount)
	assert.Equal(t, map[string]int{"m": 2, "a": 2, "d": 1}, e.CharacterFrequency)
	assert.True(t, e.CreatedAt.IsZero())
}

func TestAnalyze_HelloWorld(t *testing.T) {
	e, err := analysis.Analyze("hello world")
	require.NoError(t, err)

	assert.Equal(t, 11, e.Length)
	assert.False(t, e.IsPalindrome)
	assert.Equal(t, 2, e.WordCount)
	assert.Equal(t, 8, e.UniqueCharacters) // h e l o ' ' w r d
	assert.Equal(t, 3, e.CharacterFrequency["l"])
	assert.Equal(t, 1, e.CharacterFrequency[" "])
	assert.Contains(t, e.CharacterFrequency, "h")
}

func TestAnalyze_TrimsBeforeHashing(t *testing.T) {
	e, err := analysis.Analyze("  racecar \n\t")
	require.NoError(t, err)

	assert.Equal(t, "racecar", e.Value)
	assert.Equal(t, sha("racecar"), e.Key)
	assert.Equal(t, analysis.Key("racecar"), e.Key)
	assert.Equal(t, 7, e.Length)
}

func TestAnalyze_Empty(t *testing.T) {
	for _, raw := range []string{"", " ", "   ", "\t\n "} {
		_, err := analysis.Analyze(raw)
		assert.ErrorIs(t, err, analysis.ErrInvalidInput, "input %q", raw)
	}
}

func TestAnalyze_CaseFolding(t *testing.T) {
	e, err := analysis.Analyze("Racecar")
	require.NoError(t, err)

	assert.True(t, e.IsPalindrome)
	assert.Equal(t, 2, e.CharacterFrequency["r"])
	assert.NotContains(t, e.CharacterFrequency, "R")
	// Length counts the original value.
	assert.Equal(t, 7, e.Length)
}

func TestAnalyze_WordCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"one", 1},
		{"one two", 2},
		{"one   two\tthree\nfour", 4},
		{"a b c d e", 5},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			e, err := analysis.Analyze(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.WordCount)
		})
	}
}

func TestAnalyze_Unicode(t *testing.T) {
	e, err := analysis.Analyze("Ésé")
	require.NoError(t, err)

	assert.Equal(t, 3, e.Length)
	assert.True(t, e.IsPalindrome)
	assert.Equal(t, 2, e.CharacterFrequency["é"])
	assert.Equal(t, 2, e.UniqueCharacters)
}

func TestAnalyze_PalindromeMatchesReverse(t *testing.T) {
	inputs := []string{"a", "ab", "aba", "Abba", "never odd or even", "nurses run", "step on no pets", "xyz", "Aa"}
	for _, in := range inputs {
		e, err := analysis.Analyze(in)
		require.NoError(t, err)

		lower := []rune(strings.ToLower(strings.TrimSpace(in)))
		rev := make([]rune, len(lower))
		for i, r := range lower {
			rev[len(lower)-1-i] = r
		}
		assert.Equal(t, string(lower) == string(rev), e.IsPalindrome, "input %q", in)
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	a, err := analysis.Analyze("The quick brown fox")
	require.NoError(t, err)
	b, err := analysis.Analyze("The quick brown fox")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestStamp(t *testing.T) {
	e, err := analysis.Analyze("level")
	require.NoError(t, err)

	now := time.Date(2025, 3, 1, 12, 30, 45, 999, time.FixedZone("X", 3600))
	stamped := e.Stamp(now)

	assert.Equal(t, time.Date(2025, 3, 1, 11, 30, 45, 0, time.UTC), stamped.CreatedAt)
	assert.True(t, e.CreatedAt.IsZero(), "Stamp must not mutate the receiver")

	again := stamped.Stamp(now.Add(time.Hour))
	assert.Equal(t, stamped.CreatedAt, again.CreatedAt)
}

func TestHasCharacter(t *testing.T) {
	e, err := analysis.Analyze("Hello")
	require.NoError(t, err)

	assert.True(t, e.HasCharacter("l"))
	assert.True(t, e.HasCharacter("h"))
	assert.True(t, e.HasCharacter("H"))
	assert.False(t, e.HasCharacter("z"))
}

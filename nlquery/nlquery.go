// Package nlquery translates a small, fixed grammar of English filter phrases
// into query.Filters.
//
// Rules are applied in a fixed order and each may fire independently:
//
//  1. a word starting with "palindrom" sets is_palindrome
//  2. "single word" / "one word" sets word_count = 1
//  3. "longer than or equal to N" sets min_length = N, else "longer than N"
//     sets min_length = N+1; "less than N" / "at most N" sets max_length = N-1;
//     "N characters" sets min_length = N only when none of "longer",
//     "shorter", "less" or "at most" appears in the sentence
//  4. "first vowel" sets contains_character = "a", else
//     "containing the letter X" sets contains_character = X
//
// "shorter" only suppresses rule 3's generic form; no rule reads it.
//
// N is a run of ASCII digits that fits in an int; "longer than N" also needs
// N+1 to fit. Word boundaries are ASCII too, so "épalindrome" still reads as
// a palindrome request and non-ASCII digits never form N.
package nlquery

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/jacentio/lexicon/query"
)

// ErrUnparseable is returned when no rule matches the sentence.
var ErrUnparseable = errors.New("lexicon: unable to parse natural language query")

var (
	rePalindrome   = regexp.MustCompile(`\bpalindrom`)
	reSingleWord   = regexp.MustCompile(`\b(single|one)\s+word\b`)
	reAtLeast      = regexp.MustCompile(`longer than or equal to (\d+)`)
	reLongerThan   = regexp.MustCompile(`longer than (\d+)`)
	reLessThan     = regexp.MustCompile(`(?:less than|at most)\s+(\d+)`)
	reCharacters   = regexp.MustCompile(`(\d+)\s*characters?`)
	reLetter       = regexp.MustCompile(`contain(?:ing)? the letter ([\p{L}\p{N}_])`)
	lengthKeywords = []string{"longer", "shorter", "less", "at most"}
)

// Translate maps sentence to filters, or fails with ErrUnparseable.
func Translate(sentence string) (query.Filters, error) {
	q := strings.ToLower(strings.TrimSpace(sentence))
	if q == "" {
		return query.Filters{}, ErrUnparseable
	}

	var f query.Filters

	if rePalindrome.MatchString(q) {
		f.IsPalindrome = query.Bool(true)
	}

	if reSingleWord.MatchString(q) {
		f.WordCount = query.Int(1)
	}

	if n, ok := number(reAtLeast, q); ok {
		f.MinLength = query.Int(n)
	} else if n, ok := number(reLongerThan, q); ok && n < math.MaxInt {
		f.MinLength = query.Int(n + 1)
	}

	if n, ok := number(reLessThan, q); ok {
		f.MaxLength = query.Int(n - 1)
	}

	if n, ok := number(reCharacters, q); ok && !containsAny(q, lengthKeywords) {
		f.MinLength = query.Int(n)
	}

	if strings.Contains(q, "first vowel") {
		f.ContainsCharacter = query.String("a")
	} else if m := reLetter.FindStringSubmatch(q); m != nil {
		f.ContainsCharacter = query.String(m[1])
	}

	if f.Empty() {
		return query.Filters{}, ErrUnparseable
	}
	return f, nil
}

// number returns the first capture group of re in q as an int.
// Numbers that overflow int do not match.
func number(re *regexp.Regexp, q string) (int, bool) {
	m := re.FindStringSubmatch(q)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

package api

import (
	"github.com/jacentio/lexicon/analysis"
	"github.com/jacentio/lexicon/query"
)

const createdAtLayout = "2006-01-02T15:04:05Z"

// Entry is the JSON rendering of an analyzed string.
type Entry struct {
	ID         string     `json:"id"`
	Value      string     `json:"value"`
	Properties Properties `json:"properties"`
	CreatedAt  string     `json:"created_at"`
}

// Properties holds an entry's derived attributes.
type Properties struct {
	Length                int            `json:"length"`
	IsPalindrome          bool           `json:"is_palindrome"`
	UniqueCharacters      int            `json:"unique_characters"`
	WordCount             int            `json:"word_count"`
	SHA256Hash            string         `json:"sha256_hash"`
	CharacterFrequencyMap map[string]int `json:"character_frequency_map"`
}

type listJSON struct {
	Data           []Entry       `json:"data"`
	Count          int           `json:"count"`
	FiltersApplied query.Filters `json:"filters_applied"`
}

type interpretedJSON struct {
	Original      string        `json:"original"`
	ParsedFilters query.Filters `json:"parsed_filters"`
}

type interpretJSON struct {
	Data             []Entry         `json:"data"`
	Count            int             `json:"count"`
	InterpretedQuery interpretedJSON `json:"interpreted_query"`
}

type errorJSON struct {
	Detail string `json:"detail"`
}

// NewEntry renders e. CreatedAt is formatted in UTC to the second.
func NewEntry(e analysis.Entry) Entry {
	freq := e.CharacterFrequency
	if freq == nil {
		freq = map[string]int{}
	}
	return Entry{
		ID:    e.Key,
		Value: e.Value,
		Properties: Properties{
			Length:                e.Length,
			IsPalindrome:          e.IsPalindrome,
			UniqueCharacters:      e.UniqueCharacters,
			WordCount:             e.WordCount,
			SHA256Hash:            e.Key,
			CharacterFrequencyMap: freq,
		},
		CreatedAt: e.CreatedAt.UTC().Format(createdAtLayout),
	}
}

// NewEntries renders es, returning an empty slice for none.
func NewEntries(es []analysis.Entry) []Entry {
	out := make([]Entry, 0, len(es))
	for _, e := range es {
		out = append(out, NewEntry(e))
	}
	return out
}

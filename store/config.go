package store

import (
	"github.com/jacentio/lexicon/internal/shard"
	"github.com/jacentio/lexicon/query"
)

// Config holds configuration for the Store.
type Config struct {
	// EntryTable is the name of the entries table.
	// Default: "lexicon_entries"
	EntryTable string

	// UniqueTable is the name of the unique constraints table.
	// Default: "lexicon_unique_constraints"
	UniqueTable string

	// ScanSegments is the number of parallel segments used by Scan.
	// Default: 1 (single sequential scan)
	// Max: 256
	ScanSegments int

	// ContainsMode selects how contains_character is evaluated.
	// Default: query.ContainsFrequency
	ContainsMode query.ContainsMode
}

// DefaultConfig returns sensible defaults for small tables.
func DefaultConfig() Config {
	return Config{
		EntryTable:   "lexicon_entries",
		UniqueTable:  "lexicon_unique_constraints",
		ScanSegments: 1,
		ContainsMode: query.ContainsFrequency,
	}
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.EntryTable == "" {
		c.EntryTable = "lexicon_entries"
	}
	if c.UniqueTable == "" {
		c.UniqueTable = "lexicon_unique_constraints"
	}
	c.ScanSegments = shard.Segments(c.ScanSegments)
	if c.ContainsMode != query.ContainsSubstring {
		c.ContainsMode = query.ContainsFrequency
	}
}

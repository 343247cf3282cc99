package sqlstore

import (
	"strings"

	"github.com/jacentio/lexicon/query"
)

// queryBuilder accumulates WHERE clauses and their positional arguments.
type queryBuilder struct {
	whereClauses []string
	args         []interface{}
}

func (qb *queryBuilder) addClause(clause string, args ...interface{}) {
	qb.whereClauses = append(qb.whereClauses, clause)
	qb.args = append(qb.args, args...)
}

// build returns the WHERE clauses joined with AND
func (qb *queryBuilder) build() string {
	return strings.Join(qb.whereClauses, " AND ")
}

// buildFilters adds a clause per set constraint, containment last.
func (qb *queryBuilder) buildFilters(f query.Filters, mode query.ContainsMode) {
	if f.IsPalindrome != nil {
		qb.addClause("is_palindrome = ?", *f.IsPalindrome)
	}
	if f.WordCount != nil {
		qb.addClause("word_count = ?", *f.WordCount)
	}
	if f.MinLength != nil {
		qb.addClause("length >= ?", *f.MinLength)
	}
	if f.MaxLength != nil {
		qb.addClause("length <= ?", *f.MaxLength)
	}
	if f.ContainsCharacter != nil {
		qb.buildContainsFilter(*f.ContainsCharacter, mode)
	}
}

func (qb *queryBuilder) buildContainsFilter(ch string, mode query.ContainsMode) {
	if mode == query.ContainsSubstring {
		qb.addClause("instr(value, ?) > 0", ch)
		return
	}
	qb.addClause("EXISTS (SELECT 1 FROM json_each(character_frequency_map) WHERE key = ?)", strings.ToLower(ch))
}

// selectQuery returns the full scan statement for f.
func selectQuery(f query.Filters, mode query.ContainsMode) (string, []interface{}) {
	qb := &queryBuilder{}
	qb.buildFilters(f, mode)

	q := "SELECT " + entryColumns + " FROM entries"
	if where := qb.build(); where != "" {
		q += " WHERE " + where
	}
	return q + " ORDER BY id", qb.args
}

package store

import (
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/lexicon/query"
)

// filterExpr accumulates a DynamoDB filter expression with its attribute placeholders.
type filterExpr struct {
	clauses []string
	names   map[string]string
	values  map[string]types.AttributeValue
}

func newFilterExpr() *filterExpr {
	return &filterExpr{
		names:  make(map[string]string),
		values: make(map[string]types.AttributeValue),
	}
}

// add appends a clause; names and values are merged into the placeholder maps.
func (f *filterExpr) add(clause string, names map[string]string, values map[string]types.AttributeValue) {
	f.clauses = append(f.clauses, clause)
	for k, v := range names {
		f.names[k] = v
	}
	for k, v := range values {
		f.values[k] = v
	}
}

// expression returns the clauses joined with AND, or "" when there are none.
func (f *filterExpr) expression() string {
	return strings.Join(f.clauses, " AND ")
}

// buildFilterExpr translates filters into a scan filter expression.
// Scalar comparisons come first and containment last.
func buildFilterExpr(filters query.Filters, mode query.ContainsMode) *filterExpr {
	f := newFilterExpr()

	if filters.IsPalindrome != nil {
		f.add("#is_palindrome = :is_palindrome",
			map[string]string{"#is_palindrome": "is_palindrome"},
			map[string]types.AttributeValue{
				":is_palindrome": &types.AttributeValueMemberBOOL{Value: *filters.IsPalindrome},
			})
	}
	if filters.WordCount != nil {
		f.add("#word_count = :word_count",
			map[string]string{"#word_count": "word_count"},
			map[string]types.AttributeValue{":word_count": number(*filters.WordCount)})
	}
	if filters.MinLength != nil {
		f.add("#length >= :min_length",
			map[string]string{"#length": "length"},
			map[string]types.AttributeValue{":min_length": number(*filters.MinLength)})
	}
	if filters.MaxLength != nil {
		f.add("#length <= :max_length",
			map[string]string{"#length": "length"},
			map[string]types.AttributeValue{":max_length": number(*filters.MaxLength)})
	}
	if filters.ContainsCharacter != nil {
		ch := *filters.ContainsCharacter
		if mode == query.ContainsSubstring {
			// Less precise: case-sensitive match on the raw value.
			f.add("contains(#value, :ch)",
				map[string]string{"#value": "value"},
				map[string]types.AttributeValue{":ch": &types.AttributeValueMemberS{Value: ch}})
		} else {
			f.add("attribute_exists(#freq.#ch)",
				map[string]string{"#freq": frequencyAttr, "#ch": strings.ToLower(ch)},
				nil)
		}
	}

	return f
}

func number(n int) *types.AttributeValueMemberN {
	return &types.AttributeValueMemberN{Value: strconv.Itoa(n)}
}

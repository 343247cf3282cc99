package store

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/lexicon/analysis"
	"github.com/jacentio/lexicon/internal/shard"
)

const (
	entityType      = "entry"
	valueField      = "value"
	constraintSK    = "CONSTRAINT"
	frequencyAttr   = "character_frequency_map"
	uniquePKsAttr   = "_unique_pks"
	createdAtLayout = time.RFC3339
)

// record is the persisted shape of an entry.
type record struct {
	ID                 string         `dynamodbav:"id"`
	Value              string         `dynamodbav:"value"`
	Length             int            `dynamodbav:"length"`
	IsPalindrome       bool           `dynamodbav:"is_palindrome"`
	UniqueCharacters   int            `dynamodbav:"unique_characters"`
	WordCount          int            `dynamodbav:"word_count"`
	CharacterFrequency map[string]int `dynamodbav:"character_frequency_map"`
	CreatedAt          string         `dynamodbav:"created_at"`
	UniquePKs          []string       `dynamodbav:"_unique_pks,omitempty"`
}

func newRecord(e analysis.Entry, uniquePKs []string) record {
	return record{
		ID:                 e.Key,
		Value:              e.Value,
		Length:             e.Length,
		IsPalindrome:       e.IsPalindrome,
		UniqueCharacters:   e.UniqueCharacters,
		WordCount:          e.WordCount,
		CharacterFrequency: e.CharacterFrequency,
		CreatedAt:          e.CreatedAt.UTC().Format(createdAtLayout),
		UniquePKs:          uniquePKs,
	}
}

func (r record) entry() (analysis.Entry, error) {
	created, err := time.Parse(createdAtLayout, r.CreatedAt)
	if err != nil {
		return analysis.Entry{}, fmt.Errorf("parse created_at of %s: %w", r.ID, err)
	}
	return analysis.Entry{
		Key:                r.ID,
		Value:              r.Value,
		Length:             r.Length,
		IsPalindrome:       r.IsPalindrome,
		UniqueCharacters:   r.UniqueCharacters,
		WordCount:          r.WordCount,
		CharacterFrequency: r.CharacterFrequency,
		CreatedAt:          created,
	}, nil
}

// unmarshalRecord converts a DynamoDB item to a record.
func unmarshalRecord(raw map[string]types.AttributeValue) (record, error) {
	var r record
	err := attributevalue.UnmarshalMap(raw, &r)
	return r, err
}

// ValueConstraintPK returns the unique constraint partition key for a value.
func ValueConstraintPK(value string) string {
	return shard.UniqueConstraintPK(entityType, valueField, value)
}

// entryKey returns the primary key of the entry with the given content key.
func entryKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: key},
	}
}

// constraintKey returns the primary key of a unique constraint record.
func constraintKey(pk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: pk},
		"sk": &types.AttributeValueMemberS{Value: constraintSK},
	}
}

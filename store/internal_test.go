package store

import (
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/lexicon/analysis"
	"github.com/jacentio/lexicon/query"
)

func cancelled(codes ...string) error {
	reasons := make([]types.CancellationReason, len(codes))
	for i, c := range codes {
		reasons[i] = types.CancellationReason{Code: aws.String(c)}
	}
	return &types.TransactionCanceledException{
		Message:             aws.String("Transaction cancelled"),
		CancellationReasons: reasons,
	}
}

// --- mapCreateTransactionError Tests ---

func TestMapCreateTransactionError(t *testing.T) {
	s := &Store{}
	other := errors.New("network")

	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{"nil", nil, nil},
		{"constraint failed", cancelled("ConditionalCheckFailed", "None"), ErrDuplicateValue},
		{"entry failed", cancelled("None", "ConditionalCheckFailed"), ErrAlreadyExists},
		{"both failed reports first", cancelled("ConditionalCheckFailed", "ConditionalCheckFailed"), ErrDuplicateValue},
		{"other reason passes through", cancelled("None", "ThrottlingError"), nil},
		{"non transaction error", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.mapCreateTransactionError(tt.err, 1)
			switch {
			case tt.err == nil:
				if got != nil {
					t.Errorf("expected nil, got %v", got)
				}
			case tt.expected == nil:
				var txErr *types.TransactionCanceledException
				if !errors.As(got, &txErr) {
					t.Errorf("expected original transaction error, got %v", got)
				}
			case !errors.Is(got, tt.expected):
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

// --- mapDeleteTransactionError Tests ---

func TestMapDeleteTransactionError(t *testing.T) {
	s := &Store{}

	if err := s.mapDeleteTransactionError(nil); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := s.mapDeleteTransactionError(cancelled("ConditionalCheckFailed")); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	other := errors.New("boom")
	if err := s.mapDeleteTransactionError(other); err != other {
		t.Errorf("expected passthrough, got %v", err)
	}
}

// --- hasConditionalFailure Tests ---

func TestHasConditionalFailure(t *testing.T) {
	var txErr *types.TransactionCanceledException

	errors.As(cancelled("None", "ConditionalCheckFailed"), &txErr)
	if !hasConditionalFailure(txErr) {
		t.Error("expected conditional failure")
	}

	errors.As(cancelled("None", "None"), &txErr)
	if hasConditionalFailure(txErr) {
		t.Error("expected no conditional failure")
	}

	if hasConditionalFailure(&types.TransactionCanceledException{}) {
		t.Error("expected no conditional failure without reasons")
	}
}

// --- buildFilterExpr Tests ---

func TestBuildFilterExpr_Empty(t *testing.T) {
	f := buildFilterExpr(query.Filters{}, query.ContainsFrequency)
	if f.expression() != "" {
		t.Errorf("expected empty expression, got %q", f.expression())
	}
	if len(f.names) != 0 || len(f.values) != 0 {
		t.Error("expected no placeholders")
	}
}

func TestBuildFilterExpr_ClauseOrder(t *testing.T) {
	f := buildFilterExpr(query.Filters{
		ContainsCharacter: query.String("Z"),
		MaxLength:         query.Int(9),
		MinLength:         query.Int(2),
		WordCount:         query.Int(1),
		IsPalindrome:      query.Bool(false),
	}, query.ContainsFrequency)

	want := "#is_palindrome = :is_palindrome AND #word_count = :word_count AND " +
		"#length >= :min_length AND #length <= :max_length AND attribute_exists(#freq.#ch)"
	if got := f.expression(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	if f.names["#freq"] != frequencyAttr {
		t.Errorf("expected #freq to name %q, got %q", frequencyAttr, f.names["#freq"])
	}
	if f.names["#ch"] != "z" {
		t.Errorf("expected #ch to be lowercased, got %q", f.names["#ch"])
	}
	if _, ok := f.values[":ch"]; ok {
		t.Error("frequency mode should not bind :ch")
	}

	n, ok := f.values[":min_length"].(*types.AttributeValueMemberN)
	if !ok || n.Value != "2" {
		t.Errorf("expected :min_length N(2), got %#v", f.values[":min_length"])
	}
	b, ok := f.values[":is_palindrome"].(*types.AttributeValueMemberBOOL)
	if !ok || b.Value {
		t.Errorf("expected :is_palindrome BOOL(false), got %#v", f.values[":is_palindrome"])
	}
}

func TestBuildFilterExpr_Substring(t *testing.T) {
	f := buildFilterExpr(query.Filters{ContainsCharacter: query.String("Q")}, query.ContainsSubstring)

	if got := f.expression(); got != "contains(#value, :ch)" {
		t.Errorf("unexpected expression %q", got)
	}
	if f.names["#value"] != "value" {
		t.Errorf("expected #value to name 'value', got %q", f.names["#value"])
	}
	s, ok := f.values[":ch"].(*types.AttributeValueMemberS)
	if !ok || s.Value != "Q" {
		t.Errorf("expected :ch S(Q), got %#v", f.values[":ch"])
	}
}

// --- record Tests ---

func TestRecordRoundTrip(t *testing.T) {
	e, err := analysis.Analyze("Was it a car")
	if err != nil {
		t.Fatal(err)
	}
	e = e.Stamp(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))

	rec := newRecord(e, []string{"abc"})
	got, err := rec.entry()
	if err != nil {
		t.Fatalf("entry: %v", err)
	}

	if got.Key != e.Key || got.Value != e.Value || got.Length != e.Length {
		t.Errorf("identity fields differ: %+v vs %+v", got, e)
	}
	if got.WordCount != e.WordCount || got.UniqueCharacters != e.UniqueCharacters || got.IsPalindrome != e.IsPalindrome {
		t.Errorf("derived fields differ: %+v vs %+v", got, e)
	}
	if !got.CreatedAt.Equal(e.CreatedAt) {
		t.Errorf("expected CreatedAt %v, got %v", e.CreatedAt, got.CreatedAt)
	}
	if rec.CreatedAt != "2025-01-02T03:04:05Z" {
		t.Errorf("unexpected stored timestamp %q", rec.CreatedAt)
	}
	if len(got.CharacterFrequency) != len(e.CharacterFrequency) {
		t.Errorf("frequency map differs")
	}
}

func TestRecordEntry_CorruptCreatedAt(t *testing.T) {
	rec := record{ID: "k", Value: "v", CreatedAt: "yesterday"}
	if _, err := rec.entry(); err == nil {
		t.Error("expected error for unparseable created_at")
	}

	rec.CreatedAt = ""
	if _, err := rec.entry(); err == nil {
		t.Error("expected error for missing created_at")
	}
}

func TestValueConstraintPK(t *testing.T) {
	a := ValueConstraintPK("hello")
	if a != ValueConstraintPK("hello") {
		t.Error("expected deterministic constraint key")
	}
	if a == ValueConstraintPK("Hello") {
		t.Error("expected case-sensitive constraint key")
	}
	if len(a) != 32 {
		t.Errorf("expected 32 hex chars, got %d", len(a))
	}
}

package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/lexicon/analysis"
	"github.com/jacentio/lexicon/query"
)

// Client is the subset of the DynamoDB API used by Store.
// *dynamodb.Client satisfies it.
type Client interface {
	dynamodb.ScanAPIClient
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Store provides content-addressed DynamoDB operations for analyzed strings.
type Store struct {
	client Client
	config Config
}

// New creates a new Store instance.
func New(client Client, config Config) *Store {
	config.validate()
	return &Store{
		client: client,
		config: config,
	}
}

// ContainsMode reports how Scan evaluates contains_character.
func (s *Store) ContainsMode() query.ContainsMode {
	return s.config.ContainsMode
}

// Create persists an entry together with its value's unique constraint.
// A zero CreatedAt is stamped with the current time.
func (s *Store) Create(ctx context.Context, e analysis.Entry) (analysis.Entry, error) {
	e = e.Stamp(time.Now())
	constraintPK := ValueConstraintPK(e.Value)

	item, err := attributevalue.MarshalMap(newRecord(e, []string{constraintPK}))
	if err != nil {
		return analysis.Entry{}, fmt.Errorf("marshal entry: %w", err)
	}

	items := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName: aws.String(s.config.UniqueTable),
				Item: map[string]types.AttributeValue{
					"pk":          &types.AttributeValueMemberS{Value: constraintPK},
					"sk":          &types.AttributeValueMemberS{Value: constraintSK},
					"entity_type": &types.AttributeValueMemberS{Value: entityType},
					"field_name":  &types.AttributeValueMemberS{Value: valueField},
					"field_value": &types.AttributeValueMemberS{Value: e.Value},
					"entity_ref":  &types.AttributeValueMemberS{Value: e.Key},
				},
				ConditionExpression: aws.String("attribute_not_exists(pk)"),
			},
		},
	}

	entryPutIndex := len(items)
	items = append(items, types.TransactWriteItem{
		Put: &types.Put{
			TableName:           aws.String(s.config.EntryTable),
			Item:                item,
			ConditionExpression: aws.String("attribute_not_exists(id)"),
		},
	})

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err := s.mapCreateTransactionError(err, entryPutIndex); err != nil {
		return analysis.Entry{}, err
	}
	return e, nil
}

// Get retrieves an entry by key, returning ErrNotFound if missing.
func (s *Store) Get(ctx context.Context, key string) (analysis.Entry, error) {
	rec, err := s.getRecord(ctx, key)
	if err != nil {
		return analysis.Entry{}, err
	}
	return rec.entry()
}

// GetByValue retrieves the entry whose value is exactly value.
func (s *Store) GetByValue(ctx context.Context, value string) (analysis.Entry, error) {
	rec, err := s.getRecord(ctx, analysis.Key(value))
	if err != nil {
		return analysis.Entry{}, err
	}
	if rec.Value != value {
		return analysis.Entry{}, ErrNotFound
	}
	return rec.entry()
}

func (s *Store) getRecord(ctx context.Context, key string) (record, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.config.EntryTable),
		Key:            entryKey(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return record{}, err
	}
	if result.Item == nil {
		return record{}, ErrNotFound
	}
	rec, err := unmarshalRecord(result.Item)
	if err != nil {
		return record{}, fmt.Errorf("unmarshal entry: %w", err)
	}
	return rec, nil
}

// Delete permanently removes an entry and its unique constraint records.
func (s *Store) Delete(ctx context.Context, key string) error {
	rec, err := s.getRecord(ctx, key)
	if err != nil {
		return err
	}

	items := []types.TransactWriteItem{
		{
			Delete: &types.Delete{
				TableName:           aws.String(s.config.EntryTable),
				Key:                 entryKey(key),
				ConditionExpression: aws.String("attribute_exists(id)"),
			},
		},
	}
	for _, pk := range rec.UniquePKs {
		items = append(items, types.TransactWriteItem{
			Delete: &types.Delete{
				TableName: aws.String(s.config.UniqueTable),
				Key:       constraintKey(pk),
			},
		})
	}

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	return s.mapDeleteTransactionError(err)
}

// ReleaseConstraints deletes unique constraint records left behind by an entry
// that was removed without going through Delete. Records are kept when an
// entry with the key exists again.
func (s *Store) ReleaseConstraints(ctx context.Context, key string, uniquePKs []string) error {
	if len(uniquePKs) == 0 {
		return nil
	}

	items := []types.TransactWriteItem{
		{
			ConditionCheck: &types.ConditionCheck{
				TableName:           aws.String(s.config.EntryTable),
				Key:                 entryKey(key),
				ConditionExpression: aws.String("attribute_not_exists(id)"),
			},
		},
	}
	for _, pk := range uniquePKs {
		items = append(items, types.TransactWriteItem{
			Delete: &types.Delete{
				TableName:           aws.String(s.config.UniqueTable),
				Key:                 constraintKey(pk),
				ConditionExpression: aws.String("entity_ref = :ref"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":ref": &types.AttributeValueMemberS{Value: key},
				},
			},
		})
	}

	_, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})

	// Ignore condition failure - entry is back, or constraints already released
	var txErr *types.TransactionCanceledException
	if errors.As(err, &txErr) && hasConditionalFailure(txErr) {
		return nil
	}
	return err
}

// Scan returns every entry matching filters, ordered by key.
func (s *Store) Scan(ctx context.Context, filters query.Filters) ([]analysis.Entry, error) {
	expr := buildFilterExpr(filters, s.config.ContainsMode)

	input := func(segment int) *dynamodb.ScanInput {
		in := &dynamodb.ScanInput{
			TableName:      aws.String(s.config.EntryTable),
			ConsistentRead: aws.Bool(true),
		}
		if e := expr.expression(); e != "" {
			in.FilterExpression = aws.String(e)
			in.ExpressionAttributeNames = expr.names
			if len(expr.values) > 0 {
				in.ExpressionAttributeValues = expr.values
			}
		}
		if s.config.ScanSegments > 1 {
			in.Segment = aws.Int32(int32(segment))
			in.TotalSegments = aws.Int32(int32(s.config.ScanSegments))
		}
		return in
	}

	var entries []analysis.Entry
	var err error

	// Fast path for single segment (default)
	if s.config.ScanSegments == 1 {
		entries, err = s.scanSegment(ctx, input(0))
	} else {
		entries, err = s.scanParallel(ctx, input)
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

func (s *Store) scanParallel(ctx context.Context, input func(segment int) *dynamodb.ScanInput) ([]analysis.Entry, error) {
	numSegments := s.config.ScanSegments

	var mu sync.Mutex
	var all []analysis.Entry
	var wg sync.WaitGroup
	errs := make(chan error, numSegments)

	for segment := 0; segment < numSegments; segment++ {
		wg.Add(1)
		go func(segment int) {
			defer wg.Done()

			entries, err := s.scanSegment(ctx, input(segment))
			if err != nil {
				errs <- fmt.Errorf("segment %d: %w", segment, err)
				return
			}

			mu.Lock()
			all = append(all, entries...)
			mu.Unlock()
		}(segment)
	}

	go func() {
		wg.Wait()
		close(errs)
	}()

	for err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return all, nil
}

func (s *Store) scanSegment(ctx context.Context, input *dynamodb.ScanInput) ([]analysis.Entry, error) {
	var entries []analysis.Entry

	paginator := dynamodb.NewScanPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range page.Items {
			rec, err := unmarshalRecord(raw)
			if err != nil {
				return nil, fmt.Errorf("unmarshal entry: %w", err)
			}
			e, err := rec.entry()
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}
	}

	return entries, nil
}

// mapCreateTransactionError maps DynamoDB transaction errors for Create operations.
// entryPutIndex is the index of the entry put item; every other conditional
// item is a unique constraint.
func (s *Store) mapCreateTransactionError(err error, entryPutIndex int) error {
	if err == nil {
		return nil
	}

	var txErr *types.TransactionCanceledException
	if errors.As(err, &txErr) {
		for i, reason := range txErr.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				if i == entryPutIndex {
					return ErrAlreadyExists
				}
				return ErrDuplicateValue
			}
		}
	}

	return err
}

// mapDeleteTransactionError maps DynamoDB transaction errors for Delete operations.
func (s *Store) mapDeleteTransactionError(err error) error {
	if err == nil {
		return nil
	}

	var txErr *types.TransactionCanceledException
	if errors.As(err, &txErr) && hasConditionalFailure(txErr) {
		// The entry vanished between the read and the delete
		return ErrNotFound
	}

	return err
}

func hasConditionalFailure(txErr *types.TransactionCanceledException) bool {
	for _, reason := range txErr.CancellationReasons {
		if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
			return true
		}
	}
	return false
}

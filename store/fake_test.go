package store_test

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeClient is an in-memory DynamoDB stand-in that understands the
// condition expressions the store issues. Transactions are applied under a
// single lock, so they are atomic like the real service.
type fakeClient struct {
	mu       sync.Mutex
	tables   map[string]map[string]map[string]types.AttributeValue
	pageSize int

	scans        []*dynamodb.ScanInput
	transactions []*dynamodb.TransactWriteItemsInput
	getErr       error
	scanErr      error
}

func newFakeClient() *fakeClient {
	return &fakeClient{tables: make(map[string]map[string]map[string]types.AttributeValue)}
}

func itemKey(key map[string]types.AttributeValue) string {
	if v, ok := key["id"].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	pk, _ := key["pk"].(*types.AttributeValueMemberS)
	sk, _ := key["sk"].(*types.AttributeValueMemberS)
	if pk == nil || sk == nil {
		return ""
	}
	return pk.Value + "|" + sk.Value
}

func stringAttr(av types.AttributeValue) string {
	if v, ok := av.(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func (f *fakeClient) table(name string) map[string]map[string]types.AttributeValue {
	t, ok := f.tables[name]
	if !ok {
		t = make(map[string]map[string]types.AttributeValue)
		f.tables[name] = t
	}
	return t
}

func (f *fakeClient) count(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tables[table])
}

func (f *fakeClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	item := f.table(*params.TableName)[itemKey(params.Key)]
	return &dynamodb.GetItemOutput{Item: item}, nil
}

func (f *fakeClient) TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transactions = append(f.transactions, params)

	reasons := make([]types.CancellationReason, len(params.TransactItems))
	failed := false
	for i, ti := range params.TransactItems {
		reasons[i] = types.CancellationReason{Code: aws.String("None")}
		if !f.conditionHolds(ti) {
			reasons[i] = types.CancellationReason{Code: aws.String("ConditionalCheckFailed")}
			failed = true
		}
	}
	if failed {
		return nil, &types.TransactionCanceledException{
			Message:             aws.String("Transaction cancelled"),
			CancellationReasons: reasons,
		}
	}

	for _, ti := range params.TransactItems {
		switch {
		case ti.Put != nil:
			f.table(*ti.Put.TableName)[itemKey(ti.Put.Item)] = ti.Put.Item
		case ti.Delete != nil:
			delete(f.table(*ti.Delete.TableName), itemKey(ti.Delete.Key))
		}
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func (f *fakeClient) conditionHolds(ti types.TransactWriteItem) bool {
	var table, cond string
	var key map[string]types.AttributeValue
	var values map[string]types.AttributeValue
	switch {
	case ti.Put != nil:
		table, key, cond = *ti.Put.TableName, ti.Put.Item, aws.ToString(ti.Put.ConditionExpression)
	case ti.Delete != nil:
		table, key, cond = *ti.Delete.TableName, ti.Delete.Key, aws.ToString(ti.Delete.ConditionExpression)
		values = ti.Delete.ExpressionAttributeValues
	case ti.ConditionCheck != nil:
		table, key, cond = *ti.ConditionCheck.TableName, ti.ConditionCheck.Key, aws.ToString(ti.ConditionCheck.ConditionExpression)
	}
	existing, exists := f.table(table)[itemKey(key)]

	switch cond {
	case "":
		return true
	case "attribute_not_exists(pk)", "attribute_not_exists(id)":
		return !exists
	case "attribute_exists(id)":
		return exists
	case "entity_ref = :ref":
		if !exists {
			return false
		}
		got, _ := existing["entity_ref"].(*types.AttributeValueMemberS)
		want, _ := values[":ref"].(*types.AttributeValueMemberS)
		return got != nil && want != nil && got.Value == want.Value
	}
	panic("fakeClient: unsupported condition " + cond)
}

// Scan returns items ordered by key, split across segments by hash and into
// pages of pageSize. FilterExpression is recorded, not evaluated.
func (f *fakeClient) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans = append(f.scans, params)
	if f.scanErr != nil {
		return nil, f.scanErr
	}

	var keys []string
	for k := range f.table(*params.TableName) {
		if params.TotalSegments != nil {
			h := fnv.New32a()
			h.Write([]byte(k))
			if int32(h.Sum32()%uint32(*params.TotalSegments)) != *params.Segment {
				continue
			}
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	start := 0
	if params.ExclusiveStartKey != nil {
		last := itemKey(params.ExclusiveStartKey)
		start = sort.SearchStrings(keys, last) + 1
	}
	end := len(keys)
	if f.pageSize > 0 && start+f.pageSize < end {
		end = start + f.pageSize
	}

	out := &dynamodb.ScanOutput{}
	for _, k := range keys[start:end] {
		out.Items = append(out.Items, f.tables[*params.TableName][k])
	}
	if end < len(keys) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: keys[end-1]},
		}
	}
	return out, nil
}

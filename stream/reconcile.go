// Package stream provides DynamoDB Streams handlers that keep the unique
// constraint table consistent with the entries table.
package stream

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/lexicon/store"
)

// Releaser deletes constraint records orphaned by a removed entry.
// *store.Store satisfies it.
type Releaser interface {
	ReleaseConstraints(ctx context.Context, key string, uniquePKs []string) error
}

// Handler processes entries-table stream events.
type Handler struct {
	store  Releaser
	logger *slog.Logger
}

// NewHandler creates a new stream handler.
func NewHandler(s Releaser, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:  s,
		logger: logger,
	}
}

// HandleReconcile releases the unique constraints of entries removed outside
// Store.Delete, such as by a console edit or a table restore. The stream must
// carry old images. Releasing is idempotent, so redelivered records are safe.
func (h *Handler) HandleReconcile(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		if err := h.processRecord(ctx, record); err != nil {
			h.logger.Error("failed to process record",
				"eventID", record.EventID,
				"error", err,
			)
			return err // Will retry, eventually DLQ
		}
	}
	return nil
}

func (h *Handler) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	switch record.EventName {
	case "INSERT":
		h.logger.Debug("entry inserted",
			"key", getStringAttr(record.Change.NewImage, "id"),
			"length", getNumberAttr(record.Change.NewImage, "length"),
		)
		return nil
	case "REMOVE":
	default:
		return nil
	}

	key := keyID(ConvertStreamKey(record.Change.Keys))
	if key == "" {
		key = getStringAttr(record.Change.OldImage, "id")
	}
	if key == "" {
		h.logger.Warn("remove event without entry key", "eventID", record.EventID)
		return nil
	}

	uniquePKs := getStringListAttr(record.Change.OldImage, "_unique_pks")
	if len(uniquePKs) == 0 {
		// Older records may lack the list; derive from the value.
		if value := getStringAttr(record.Change.OldImage, "value"); value != "" {
			uniquePKs = []string{store.ValueConstraintPK(value)}
		}
	}
	if len(uniquePKs) == 0 {
		return nil
	}

	if err := h.store.ReleaseConstraints(ctx, key, uniquePKs); err != nil {
		return err
	}

	h.logger.Info("released unique constraints",
		"key", key,
		"uniqueConstraints", len(uniquePKs),
	)
	return nil
}

func keyID(key map[string]types.AttributeValue) string {
	if v, ok := key["id"].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

// getStringAttr extracts a string attribute from a DynamoDB stream image.
func getStringAttr(image map[string]events.DynamoDBAttributeValue, key string) string {
	if v, ok := image[key]; ok && v.DataType() == events.DataTypeString {
		return v.String()
	}
	return ""
}

// getNumberAttr extracts a number attribute from a DynamoDB stream image.
func getNumberAttr(image map[string]events.DynamoDBAttributeValue, key string) int64 {
	if v, ok := image[key]; ok {
		if v.DataType() == events.DataTypeNumber {
			n, _ := strconv.ParseInt(v.Number(), 10, 64)
			return n
		}
	}
	return 0
}

// getStringListAttr extracts a string list attribute from a DynamoDB stream image.
func getStringListAttr(image map[string]events.DynamoDBAttributeValue, key string) []string {
	if v, ok := image[key]; ok {
		if v.DataType() == events.DataTypeList {
			var result []string
			for _, item := range v.List() {
				if item.DataType() == events.DataTypeString {
					result = append(result, item.String())
				}
			}
			return result
		}
	}
	return nil
}

// ConvertStreamKey converts a DynamoDB stream key to SDK attribute values.
func ConvertStreamKey(streamKey map[string]events.DynamoDBAttributeValue) map[string]types.AttributeValue {
	result := make(map[string]types.AttributeValue, len(streamKey))
	for k, v := range streamKey {
		switch v.DataType() {
		case events.DataTypeString:
			result[k] = &types.AttributeValueMemberS{Value: v.String()}
		case events.DataTypeNumber:
			result[k] = &types.AttributeValueMemberN{Value: v.Number()}
		case events.DataTypeBinary:
			result[k] = &types.AttributeValueMemberB{Value: v.Binary()}
		}
	}
	return result
}

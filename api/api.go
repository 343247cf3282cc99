// Package api serves the string analyzer over API Gateway HTTP API (payload
// format 2.0) Lambda events.
//
// Routes:
//
//	POST   /strings                                create an entry
//	GET    /strings                                list entries matching filters
//	GET    /strings/filter-by-natural-language     list entries matching a sentence
//	GET    /strings/{value}                        fetch by value or key
//	DELETE /strings/{value}                        delete by value or key
package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"github.com/jacentio/lexicon/analysis"
	"github.com/jacentio/lexicon/nlquery"
	"github.com/jacentio/lexicon/query"
	"github.com/jacentio/lexicon/service"
	"github.com/jacentio/lexicon/store"
)

const (
	collectionPath = "/strings"
	naturalPath    = "/strings/filter-by-natural-language"
)

// Handler routes API Gateway requests to a Service.
type Handler struct {
	svc    *service.Service
	logger *slog.Logger
}

// New creates a Handler. A nil logger uses slog.Default().
func New(svc *service.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// Handle is the Lambda entry point.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	requestID := uuid.NewString()
	method := req.RequestContext.HTTP.Method
	path := strings.TrimSuffix(req.RawPath, "/")

	resp := h.route(ctx, method, path, req)
	if resp.Headers == nil {
		resp.Headers = map[string]string{}
	}
	resp.Headers["X-Request-Id"] = requestID

	h.logger.Info("request handled",
		"request_id", requestID,
		"method", method,
		"path", req.RawPath,
		"status", resp.StatusCode,
	)
	return resp, nil
}

func (h *Handler) route(ctx context.Context, method, path string, req events.APIGatewayV2HTTPRequest) events.APIGatewayV2HTTPResponse {
	switch {
	case path == collectionPath:
		switch method {
		case http.MethodPost:
			return h.create(ctx, req)
		case http.MethodGet:
			return h.list(ctx, req.QueryStringParameters)
		}
		return errorResponse(http.StatusMethodNotAllowed, "Method not allowed")

	case path == naturalPath:
		if method != http.MethodGet {
			return errorResponse(http.StatusMethodNotAllowed, "Method not allowed")
		}
		return h.interpret(ctx, req.QueryStringParameters["query"])

	case strings.HasPrefix(path, collectionPath+"/"):
		value, err := url.PathUnescape(strings.TrimPrefix(path, collectionPath+"/"))
		if err != nil {
			return errorResponse(http.StatusBadRequest, "Invalid path")
		}
		switch method {
		case http.MethodGet:
			return h.get(ctx, value)
		case http.MethodDelete:
			return h.delete(ctx, value)
		}
		return errorResponse(http.StatusMethodNotAllowed, "Method not allowed")
	}
	return errorResponse(http.StatusNotFound, "Not found")
}

func (h *Handler) create(ctx context.Context, req events.APIGatewayV2HTTPRequest) events.APIGatewayV2HTTPResponse {
	value, err := decodeValue(req)
	if err != nil {
		if errors.Is(err, analysis.ErrInvalidType) {
			return errorResponse(http.StatusUnprocessableEntity, "Invalid data type for 'value' (must be string)")
		}
		return errorResponse(http.StatusBadRequest, "Invalid request body or missing 'value' field")
	}

	e, err := h.svc.Create(ctx, value)
	switch {
	case err == nil:
		return jsonResponse(http.StatusCreated, NewEntry(e))
	case errors.Is(err, analysis.ErrInvalidInput):
		return errorResponse(http.StatusBadRequest, "Invalid request body or missing 'value' field")
	case errors.Is(err, store.ErrConflict):
		return errorResponse(http.StatusConflict, "String already exists in the system")
	}
	return h.internalError(err)
}

var errMissingValue = errors.New("missing value")

// decodeValue extracts the "value" field, distinguishing malformed bodies from
// non-string values.
func decodeValue(req events.APIGatewayV2HTTPRequest) (string, error) {
	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return "", err
		}
		body = decoded
	}

	var payload struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", err
	}
	raw := bytes.TrimSpace(payload.Value)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", errMissingValue
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", analysis.ErrInvalidType
	}
	return value, nil
}

func (h *Handler) list(ctx context.Context, params map[string]string) events.APIGatewayV2HTTPResponse {
	res, err := h.svc.List(ctx, params)
	if err != nil {
		var fe *query.FilterError
		if errors.As(err, &fe) {
			return errorResponse(http.StatusBadRequest, "Invalid query parameter values or types")
		}
		return h.internalError(err)
	}
	return jsonResponse(http.StatusOK, listJSON{
		Data:           NewEntries(res.Entries),
		Count:          res.Count,
		FiltersApplied: res.Filters,
	})
}

func (h *Handler) interpret(ctx context.Context, text string) events.APIGatewayV2HTTPResponse {
	res, err := h.svc.Interpret(ctx, text)
	switch {
	case err == nil:
		return jsonResponse(http.StatusOK, interpretJSON{
			Data:  NewEntries(res.Entries),
			Count: res.Count,
			InterpretedQuery: interpretedJSON{
				Original:      res.Original,
				ParsedFilters: res.Filters,
			},
		})
	case errors.Is(err, service.ErrMissingQuery):
		return errorResponse(http.StatusBadRequest, "query parameter required")
	case errors.Is(err, nlquery.ErrUnparseable):
		return errorResponse(http.StatusBadRequest, "Unable to parse natural language query")
	case errors.Is(err, service.ErrConflictingFilters):
		return errorResponse(http.StatusUnprocessableEntity, "Query parsed but resulted in conflicting filters")
	}
	return h.internalError(err)
}

func (h *Handler) get(ctx context.Context, value string) events.APIGatewayV2HTTPResponse {
	e, err := h.svc.Get(ctx, value)
	switch {
	case err == nil:
		return jsonResponse(http.StatusOK, NewEntry(e))
	case errors.Is(err, store.ErrNotFound):
		return errorResponse(http.StatusNotFound, "String does not exist in the system.")
	}
	return h.internalError(err)
}

func (h *Handler) delete(ctx context.Context, value string) events.APIGatewayV2HTTPResponse {
	err := h.svc.Delete(ctx, value)
	switch {
	case err == nil:
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusNoContent}
	case errors.Is(err, store.ErrNotFound):
		return errorResponse(http.StatusNotFound, "String does not exist in the system.")
	}
	return h.internalError(err)
}

func (h *Handler) internalError(err error) events.APIGatewayV2HTTPResponse {
	h.logger.Error("request failed", "error", err)
	return errorResponse(http.StatusInternalServerError, "Internal server error")
}

func jsonResponse(status int, v interface{}) events.APIGatewayV2HTTPResponse {
	body, err := json.Marshal(v)
	if err != nil {
		return errorResponse(http.StatusInternalServerError, "Internal server error")
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

func errorResponse(status int, detail string) events.APIGatewayV2HTTPResponse {
	body, _ := json.Marshal(errorJSON{Detail: detail})
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

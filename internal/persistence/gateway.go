// Package persistence implements the Persistence Gateway (spec component
// C3): a contract to a remote document store exposing load-one-by-id and
// store-array-as-document, used by the durable in-memory registries at boot
// and on write. It has no delete operation.
//
// The wire protocol is grounded on Toolkit/providers/claude's doRequest
// pattern (marshal payload, POST, decode JSON, wrap errors) and
// Toolkit/Commons/auth's buffered token-refresh pattern, both from the
// retrieval pack's vasic-digital-SuperAgent repo.
package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TokenSource returns the bearer token to attach to every gateway call. The
// gateway never interprets the token; it only attaches it.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Gateway is the contract the Role/Domain/Specialization registries use to
// become durable. Every method is best-effort: load failures return an
// empty list, save failures are logged and swallowed. The caller's
// in-memory snapshot remains canonical (spec §4.C3, §7 PersistenceUnavailable).
type Gateway interface {
	// LoadCollection returns the records embedded in the envelope document
	// {_id: name, data: [...]}. Any failure (no response, empty response,
	// malformed document) yields (nil, nil) — never an error — with a log
	// line describing what happened.
	LoadCollection(ctx context.Context, name string) ([]json.RawMessage, error)

	// StoreCollection upserts the envelope document for name with the given
	// records. A failure is logged and returned as a non-nil error; the
	// registries log it and carry on, so it never changes their control
	// flow.
	StoreCollection(ctx context.Context, name string, records []json.RawMessage) error
}

// HTTPGateway is the concrete Gateway backed by the remote document store's
// REST envelope protocol (spec §6): POST /queryData and POST /storeData.
type HTTPGateway struct {
	baseURL     string
	storageType string
	httpClient  *http.Client
	tokens      TokenSource
	log         *logrus.Logger
}

// Option configures an HTTPGateway.
type Option func(*HTTPGateway)

// WithHTTPClient overrides the default http.Client (e.g. for test doubles).
func WithHTTPClient(c *http.Client) Option {
	return func(g *HTTPGateway) { g.httpClient = c }
}

// WithLogger overrides the default logger.
func WithLogger(l *logrus.Logger) Option {
	return func(g *HTTPGateway) { g.log = l }
}

// WithStorageType overrides the "storageType" field sent on every store,
// default "mongo" per spec §6.
func WithStorageType(storageType string) Option {
	return func(g *HTTPGateway) { g.storageType = storageType }
}

// NewHTTPGateway constructs a gateway against baseURL, authenticating every
// call with a token minted by tokens.
func NewHTTPGateway(baseURL string, tokens TokenSource, opts ...Option) *HTTPGateway {
	g := &HTTPGateway{
		baseURL:     baseURL,
		storageType: "mongo",
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		tokens:      tokens,
		log:         logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type queryRequest struct {
	Collection string         `json:"collection"`
	Query      map[string]any `json:"query"`
	Limit      int            `json:"limit"`
}

// queryResponseEnvelope models both shapes the corpus's persisted documents
// are known to take (spec §9): response.data[0].data is an array, OR
// response.data[0] is already the array.
type queryResponseEnvelope struct {
	Data []json.RawMessage `json:"data"`
}

func (g *HTTPGateway) LoadCollection(ctx context.Context, name string) ([]json.RawMessage, error) {
	reqID := uuid.New().String()
	log := g.log.WithFields(logrus.Fields{"component": "persistence.gateway", "collection": name, "request_id": reqID})

	payload := queryRequest{
		Collection: name,
		Query:      map[string]any{"_id": name},
		Limit:      1,
	}

	var resp queryResponseEnvelope
	if err := g.doRequest(ctx, http.MethodPost, "/queryData", payload, &resp); err != nil {
		log.WithError(err).Warn("persistence: load failed, returning empty collection")
		return nil, nil
	}
	if len(resp.Data) == 0 {
		log.Debug("persistence: empty response, returning empty collection")
		return nil, nil
	}

	records, err := extractRecords(resp.Data[0])
	if err != nil {
		log.WithError(err).Warn("persistence: malformed envelope document, returning empty collection")
		return nil, nil
	}
	return records, nil
}

// extractRecords tolerates both documented envelope shapes: a document
// {data: [...]} or the array itself already unwrapped.
func extractRecords(doc json.RawMessage) ([]json.RawMessage, error) {
	var asArray []json.RawMessage
	if err := json.Unmarshal(doc, &asArray); err == nil {
		return asArray, nil
	}

	var wrapped struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(doc, &wrapped); err != nil {
		return nil, fmt.Errorf("persistence: document is neither an array nor {data: [...]}: %w", err)
	}
	return wrapped.Data, nil
}

type storeRequest struct {
	ID          string            `json:"id"`
	Data        []json.RawMessage `json:"data"`
	StorageType string            `json:"storageType"`
	Collection  string            `json:"collection"`
}

func (g *HTTPGateway) StoreCollection(ctx context.Context, name string, records []json.RawMessage) error {
	reqID := uuid.New().String()
	log := g.log.WithFields(logrus.Fields{"component": "persistence.gateway", "collection": name, "request_id": reqID, "count": len(records)})

	payload := storeRequest{
		ID:          name,
		Data:        records,
		StorageType: g.storageType,
		Collection:  name,
	}

	if err := g.doRequest(ctx, http.MethodPost, "/storeData", payload, nil); err != nil {
		log.WithError(err).Warn("persistence: store failed, in-memory state remains canonical")
		return err
	}
	log.Debug("persistence: store succeeded")
	return nil
}

func (g *HTTPGateway) doRequest(ctx context.Context, method, path string, payload, result interface{}) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("persistence: marshal payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("persistence: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if g.tokens != nil {
		token, err := g.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("persistence: acquire token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("persistence: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("persistence: %s %s: status %d: %s", method, path, resp.StatusCode, string(raw))
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("persistence: decode response: %w", err)
	}
	return nil
}

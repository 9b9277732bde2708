// Package remote is a thin HTTP wrapper over the server's trip collection.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/atinyakov/TripSync/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	apiSync       = "/api/sync"
	apiSyncDelete = "/api/sync/delete/"

	// maxErrorBody caps how much of a failed response is read for the error message.
	maxErrorBody = 64 << 10
)

var (
	// ErrNotFound matches an *APIError carrying 404.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized matches an *APIError carrying 401.
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error: %d %s", e.StatusCode, e.Message)
}

// Is lets callers test an *APIError against ErrNotFound and ErrUnauthorized.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	}
	return false
}

// ValidationError is returned when the server rejects a batch with 400.
// The batch is never partially applied.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, f := range e.Errors {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "server rejected batch: " + strings.Join(msgs, "; ")
}

// Client talks to the three trip collection endpoints.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(cl *Client) { cl.token = token }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log *zap.Logger) Option {
	return func(cl *Client) { cl.log = log }
}

// New returns a Client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UpsertBatch sends records to the server, which upserts each one by id.
// Every record is stamped with userID. The call succeeds or fails as a whole.
func (c *Client) UpsertBatch(ctx context.Context, userID string, records []models.TripRecord) error {
	places := make([]models.TripRecord, len(records))
	for i, r := range records {
		r.UserID = userID
		places[i] = r
	}

	payload := struct {
		Places []models.TripRecord `json:"places"`
	}{Places: places}

	if err := c.do(ctx, http.MethodPost, apiSync, payload, nil); err != nil {
		return fmt.Errorf("upsert batch: %w", err)
	}
	return nil
}

// ListByUser returns the server's records for userID.
func (c *Client) ListByUser(ctx context.Context, userID string) ([]models.TripRecord, error) {
	var places []models.TripRecord
	if err := c.do(ctx, http.MethodGet, apiSync+"/"+url.PathEscape(userID), nil, &places); err != nil {
		return nil, fmt.Errorf("list by user: %w", err)
	}

	for _, p := range places {
		if p.ID <= 0 {
			return nil, fmt.Errorf("list by user: invalid response: record without _id")
		}
		if p.UserID != userID {
			return nil, fmt.Errorf("list by user: invalid response: record %d belongs to %q", p.ID, p.UserID)
		}
	}
	if places == nil {
		places = []models.TripRecord{}
	}
	return places, nil
}

// DeleteByID asks the server to delete the record with the given id.
// A missing record yields an error matching ErrNotFound.
func (c *Client) DeleteByID(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, apiSyncDelete+strconv.FormatInt(id, 10), nil, nil); err != nil {
		return fmt.Errorf("delete %d: %w", id, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.log.Debug("remote call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", reqID),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload struct {
		Message string              `json:"message"`
		Errors  []models.FieldError `json:"errors"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		payload.Message = strings.TrimSpace(string(data))
	}

	if resp.StatusCode == http.StatusBadRequest && len(payload.Errors) > 0 {
		return &ValidationError{Errors: payload.Errors}
	}
	if payload.Message == "" {
		payload.Message = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: payload.Message}
}

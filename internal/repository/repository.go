// Package repository talks to the upstream activities API. It is the only
// package that knows the wire format: callers get model types back, or an
// *APIError when the server answered with a non-2xx status.
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	"github.com/Shivanand-hulikatti/activity-board/internal/model"
)

// ErrMalformedCatalog is returned when the listing body is not a catalog.
var ErrMalformedCatalog = errors.New("malformed activity catalog")

// ErrMalformedResponse is returned when a response body that must be JSON
// cannot be decoded.
var ErrMalformedResponse = errors.New("malformed response body")

// maxBodyBytes caps how much of an upstream response is read.
const maxBodyBytes = 1 << 20

// RequestIDHeader carries the per-call correlation id upstream.
const RequestIDHeader = "X-Request-ID"

// APIError is a non-2xx answer from the upstream API.
type APIError struct {
	Status int
	Detail string
	Reason string // the "error" field, used by some unregister failures
}

func (e *APIError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Reason
	}
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("upstream returned %d: %s", e.Status, msg)
}

// DetailOr returns the server-supplied detail, or fallback when absent.
func (e *APIError) DetailOr(fallback string) string {
	if e.Detail != "" {
		return e.Detail
	}
	return fallback
}

// MessageOr prefers detail, then the error field, then fallback.
func (e *APIError) MessageOr(fallback string) string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Reason != "" {
		return e.Reason
	}
	return fallback
}

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ActivityRepository reads and mutates activities through the upstream API.
type ActivityRepository struct {
	client  Doer
	baseURL string
}

// NewActivityRepository constructs an ActivityRepository. baseURL is the
// API root, e.g. "http://localhost:8000".
func NewActivityRepository(client Doer, baseURL string) *ActivityRepository {
	return &ActivityRepository{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// List fetches the full catalog (GET /activities).
func (r *ActivityRepository) List(ctx context.Context) (*model.Catalog, error) {
	status, body, err := r.do(ctx, http.MethodGet, "/activities")
	if err != nil {
		return nil, err
	}
	if !ok(status) {
		return nil, apiError(status, body)
	}

	if err := validateCatalog(body); err != nil {
		return nil, err
	}

	var catalog model.Catalog
	if err := json.Unmarshal(body, &catalog); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCatalog, err)
	}
	return &catalog, nil
}

// Signup registers email for activity
// (POST /activities/{activity}/signup?email={email}).
//
// The body must be JSON whatever the status; an undecodable body is reported
// as ErrMalformedResponse rather than as an *APIError.
func (r *ActivityRepository) Signup(ctx context.Context, activity, email string) (*model.SignupResponse, error) {
	status, body, err := r.do(ctx, http.MethodPost, participantPath(activity, "signup", email))
	if err != nil {
		return nil, err
	}

	if !ok(status) {
		var e model.ErrorResponse
		if err := json.Unmarshal(body, &e); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		return nil, &APIError{Status: status, Detail: e.Detail, Reason: e.Error}
	}

	var resp model.SignupResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &resp, nil
}

// Unregister removes email from activity
// (POST /activities/{activity}/unregister?email={email}).
//
// An empty or undecodable body is tolerated and treated as an empty object.
func (r *ActivityRepository) Unregister(ctx context.Context, activity, email string) (*model.ErrorResponse, error) {
	status, body, err := r.do(ctx, http.MethodPost, participantPath(activity, "unregister", email))
	if err != nil {
		return nil, err
	}

	var resp model.ErrorResponse
	_ = json.Unmarshal(body, &resp)

	if !ok(status) {
		return nil, &APIError{Status: status, Detail: resp.Detail, Reason: resp.Error}
	}
	return &resp, nil
}

// Ping issues a listing request and reports whether the API answered 2xx.
func (r *ActivityRepository) Ping(ctx context.Context) error {
	status, body, err := r.do(ctx, http.MethodGet, "/activities")
	if err != nil {
		return err
	}
	if !ok(status) {
		return apiError(status, body)
	}
	return nil
}

func (r *ActivityRepository) do(ctx context.Context, method, target string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+target, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID(ctx))

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// participantPath builds /activities/{activity}/{action}?email={email} with
// both values percent-encoded as single components.
func participantPath(activity, action, email string) string {
	return "/activities/" + EncodeComponent(activity) + "/" + action + "?email=" + EncodeComponent(email)
}

// EncodeComponent percent-encodes s so it can stand alone as one path segment
// or query value. Spaces become %20, never '+'.
func EncodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func ok(status int) bool {
	return status >= 200 && status < 300
}

func apiError(status int, body []byte) *APIError {
	var e model.ErrorResponse
	_ = json.Unmarshal(body, &e)
	return &APIError{Status: status, Detail: e.Detail, Reason: e.Error}
}

type requestIDKey struct{}

// WithRequestID attaches a correlation id to ctx; upstream calls made with
// the returned context send it as X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// catalogSchema describes the listing body. Description and schedule may be
// absent; participants and max_participants may not.
var catalogSchema = mustSchema(`{
	"type": "object",
	"additionalProperties": {
		"type": "object",
		"required": ["max_participants", "participants"],
		"properties": {
			"description": {"type": ["string", "null"]},
			"schedule": {"type": ["string", "null"]},
			"max_participants": {"type": "integer"},
			"participants": {"type": "array", "items": {"type": "string"}}
		}
	}
}`)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compile catalog schema: %v", err))
	}
	return s
}

func validateCatalog(body []byte) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("%w: empty body", ErrMalformedCatalog)
	}
	result, err := catalogSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCatalog, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrMalformedCatalog, strings.Join(msgs, "; "))
	}
	return nil
}

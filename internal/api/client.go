// Package api is the REST client for the e-commerce backend. All entities
// share the same endpoint conventions:
//
//	GET    {ns}/list/?page=&page_size=&<filters>
//	GET    {ns}/{id}/
//	POST   {ns}/create/
//	PATCH  {ns}/{id}/update/
//	DELETE {ns}/{id}/delete/
//	POST   {ns}/{id}/restore/
//
// Every request carries a bearer token and an X-Request-ID header.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// ListEnvelope is the paginated list response shape.
type ListEnvelope struct {
	Results  []Record `json:"results"`
	Count    int      `json:"count"`
	Next     *string  `json:"next"`
	Previous *string  `json:"previous"`
}

// Upload is a pending file attachment, referenced by local path.
type Upload struct {
	Path string
}

// Payload is an outgoing create/update body. With no Files it is sent as
// JSON; with at least one pending file everything is re-serialized as
// multipart form parts.
type Payload struct {
	Fields map[string]any
	Files  map[string]Upload
}

// StatusError is a non-accepted HTTP status from the backend.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:197] + "..."
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, body)
}

// Client talks to one backend instance.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger

	mu       sync.Mutex
	lastBody []byte
}

// New creates a client for baseURL. The token source supplies the bearer
// token on every request via the oauth2 transport.
func New(baseURL string, source oauth2.TokenSource, timeout time.Duration, log *slog.Logger) *Client {
	transport := &oauth2.Transport{
		Source: source,
		Base:   http.DefaultTransport,
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		log: log,
	}
}

// List fetches one page of records for a namespace.
func (c *Client) List(ctx context.Context, ns string, q Query) (*ListEnvelope, error) {
	data, err := c.do(ctx, http.MethodGet, ns+"/list/?"+q.Encode(), nil, "", nil)
	if err != nil {
		return nil, err
	}

	var env ListEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode list response: %w", err)
	}
	return &env, nil
}

// Get fetches a single record by id.
func (c *Client) Get(ctx context.Context, ns string, id int64) (Record, error) {
	data, err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/%d/", ns, id), nil, "", nil)
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return rec, nil
}

// Create posts a new record. Success is 201 only.
func (c *Client) Create(ctx context.Context, ns string, p Payload) (Record, error) {
	body, contentType, err := p.encode()
	if err != nil {
		return nil, err
	}

	data, err := c.do(ctx, http.MethodPost, ns+"/create/", body, contentType, []int{http.StatusCreated})
	if err != nil {
		return nil, err
	}
	return decodeOptionalRecord(data), nil
}

// Update patches an existing record; only the provided fields change
// server-side. Success is 200 or 201.
func (c *Client) Update(ctx context.Context, ns string, id int64, p Payload) (Record, error) {
	body, contentType, err := p.encode()
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("%s/%d/update/", ns, id)
	data, err := c.do(ctx, http.MethodPatch, path, body, contentType, []int{http.StatusOK, http.StatusCreated})
	if err != nil {
		return nil, err
	}
	return decodeOptionalRecord(data), nil
}

// Delete removes a record. Soft-deletable entities answer 204, hard-delete
// entities (like the category-attribute link) answer 200; both are accepted.
func (c *Client) Delete(ctx context.Context, ns string, id int64) error {
	path := fmt.Sprintf("%s/%d/delete/", ns, id)
	_, err := c.do(ctx, http.MethodDelete, path, nil, "", []int{http.StatusOK, http.StatusNoContent})
	return err
}

// Restore undoes a soft delete.
func (c *Client) Restore(ctx context.Context, ns string, id int64) error {
	path := fmt.Sprintf("%s/%d/restore/", ns, id)
	_, err := c.do(ctx, http.MethodPost, path, bytes.NewReader(nil), "application/json", []int{http.StatusOK})
	return err
}

// BulkCreate posts an array of records in one call and returns the
// backend's summary ({success_count, error_count}).
func (c *Client) BulkCreate(ctx context.Context, ns string, items []map[string]any) (Record, error) {
	body, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bulk payload: %w", err)
	}

	data, err := c.do(ctx, http.MethodPost, ns+"/bulk-create/", bytes.NewReader(body), "application/json",
		[]int{http.StatusOK, http.StatusCreated})
	if err != nil {
		return nil, err
	}
	return decodeOptionalRecord(data), nil
}

// LastBody returns a copy of the most recent response body, for the
// inspect view.
func (c *Client) LastBody() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]byte, len(c.lastBody))
	copy(out, c.lastBody)
	return out
}

// do performs one request. accept lists the statuses treated as success;
// nil means any 2xx.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, accept []int) ([]byte, error) {
	url := c.baseURL + "/" + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	requestID := RequestIDFromContext(ctx)
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("request failed", "method", method, "url", url, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.mu.Lock()
	c.lastBody = data
	c.mu.Unlock()

	c.log.Debug("request completed",
		"method", method, "url", url, "status", resp.StatusCode,
		"request_id", requestID, "duration_ms", time.Since(start).Milliseconds())

	if !statusAccepted(resp.StatusCode, accept) {
		return nil, &StatusError{Status: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}

func statusAccepted(status int, accept []int) bool {
	if accept == nil {
		return IsSuccessStatus(status)
	}
	for _, s := range accept {
		if status == s {
			return true
		}
	}
	return false
}

// IsSuccessStatus returns true if status code is 2xx
func IsSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}

func decodeOptionalRecord(data []byte) Record {
	var rec Record
	if len(data) > 0 {
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil
		}
	}
	return rec
}

// encode serializes the payload as JSON, or as a multipart form when a
// pending file upload is present.
func (p Payload) encode() (io.Reader, string, error) {
	if len(p.Files) == 0 {
		data, err := json.Marshal(p.Fields)
		if err != nil {
			return nil, "", fmt.Errorf("failed to marshal payload: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, value := range p.Fields {
		if err := w.WriteField(name, fmt.Sprintf("%v", value)); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}

	for field, upload := range p.Files {
		f, err := os.Open(upload.Path)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open attachment %s: %w", upload.Path, err)
		}
		part, err := w.CreateFormFile(field, filepath.Base(upload.Path))
		if err != nil {
			f.Close()
			return nil, "", fmt.Errorf("failed to create form file %s: %w", field, err)
		}
		if _, err := io.Copy(part, f); err != nil {
			f.Close()
			return nil, "", fmt.Errorf("failed to copy attachment %s: %w", upload.Path, err)
		}
		f.Close()
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

type ctxKey int

const requestIDKey ctxKey = iota

// WithRequestID stamps a correlation id on the context; the client sends it
// as X-Request-ID and the history recorder stores it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the stamped correlation id, generating a
// fresh one when absent.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

package backend

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
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/school-admin-console/pkg/errors"
	"github.com/noah-isme/school-admin-console/pkg/middleware/requestid"
)

const maxMessageLen = 200

// maxResponseBytes bounds how much of a backend response is read.
var maxResponseBytes int64 = 32 << 20

// Observer receives timing for every backend call.
type Observer interface {
	ObserveBackendCall(method, resource string, status int, duration time.Duration)
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Observer   Observer
	Logger     *zap.Logger
}

// Client is the single gateway to the school REST backend. It speaks JSON,
// never retries, and turns transport failures and non-2xx answers into typed errors.
type Client struct {
	baseURL  string
	http     *http.Client
	observer Observer
	logger   *zap.Logger
}

// StatusError describes a non-2xx backend answer.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend responded %d", e.StatusCode)
	}
	return fmt.Sprintf("backend responded %d: %s", e.StatusCode, e.Message)
}

// New constructs a Client.
func New(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		http:     client,
		observer: opts.Observer,
		logger:   logger,
	}
}

// Get fetches path and decodes the JSON answer into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

// Post sends body as JSON and decodes the answer into out when out is non-nil.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

// Put sends body as JSON and decodes the answer into out when out is non-nil.
func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

// Delete removes the resource at path.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Do performs one request against the backend.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	target := c.buildURL(path, query)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "request body is not serialisable")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build backend request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if reqID := requestid.FromContext(ctx); reqID != "" {
		req.Header.Set(requestid.HeaderKey, reqID)
	}

	resource := resourceLabel(path)
	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.observe(method, resource, http.StatusServiceUnavailable, duration)
		c.logger.Warn("backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("latency", duration),
			zap.Error(err),
		)
		return appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, appErrors.ErrBackendUnavailable.Message)
	}
	defer resp.Body.Close()
	c.observe(method, resource, resp.StatusCode, duration)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to read backend response")
	}
	if int64(len(raw)) > maxResponseBytes {
		return appErrors.Clone(appErrors.ErrBackendUnavailable, "backend response too large")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Message: upstreamMessage(raw)}
		c.logger.Warn("backend responded with error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", statusErr.Message),
		)
		return toAppError(statusErr)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Warn("backend response not decodable",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return appErrors.Wrap(err, appErrors.ErrBackendStatus.Code, appErrors.ErrBackendStatus.Status, "unexpected backend response")
	}
	return nil
}

// StatusCode extracts the upstream HTTP status from err, or 0 when err is not a backend status error.
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

// Message returns the upstream message carried by err, if any.
func Message(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Message
	}
	return ""
}

func (c *Client) buildURL(path string, query url.Values) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}

func (c *Client) observe(method, resource string, status int, duration time.Duration) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveBackendCall(method, resource, status, duration)
}

func toAppError(statusErr *StatusError) *appErrors.Error {
	if statusErr.StatusCode == http.StatusNotFound {
		message := statusErr.Message
		if message == "" {
			message = appErrors.ErrNotFound.Message
		}
		return appErrors.Wrap(statusErr, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, message)
	}
	message := appErrors.ErrBackendStatus.Message
	if statusErr.Message != "" {
		message = statusErr.Message
	}
	return appErrors.Wrap(statusErr, appErrors.ErrBackendStatus.Code, appErrors.ErrBackendStatus.Status, message)
}

func upstreamMessage(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(trimmed, &payload); err == nil {
		for _, key := range []string{"message", "error", "detail"} {
			if msg, ok := payload[key].(string); ok && msg != "" {
				return truncate(msg)
			}
		}
		return ""
	}
	return truncate(string(trimmed))
}

// truncate cuts s to at most maxMessageLen bytes without splitting a rune.
func truncate(s string) string {
	if len(s) <= maxMessageLen {
		return s
	}
	cut := maxMessageLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// resourceLabel keeps metric cardinality bounded by labelling with the first path segment.
func resourceLabel(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "root"
	}
	if idx := strings.Index(trimmed, "/"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return trimmed
}

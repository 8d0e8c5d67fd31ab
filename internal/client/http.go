package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alfredjeanlab/zayafka/internal/idgen"
	"github.com/alfredjeanlab/zayafka/internal/model"
	"github.com/alfredjeanlab/zayafka/internal/query"
	"github.com/alfredjeanlab/zayafka/internal/session"
)

// DefaultTimeout bounds every request when no explicit timeout is given.
const DefaultTimeout = 10 * time.Second

// API paths.
const (
	pathRequests = "/users"
	pathExport   = "/users/export/excel"
)

// HTTPClient implements ClinicClient using the clinic HTTP/JSON API.
type HTTPClient struct {
	baseURL    string
	session    session.Session
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.httpClient.Timeout = d }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *HTTPClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewHTTPClient creates a client targeting baseURL
// (e.g. "http://localhost:3040"). When sess is non-nil its token is sent as
// a bearer token on every request and it is notified of 401 responses.
func NewHTTPClient(baseURL string, sess session.Session, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		session:    sess,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// listEnvelope mirrors the list response. Pointers distinguish an absent
// key from an empty one.
type listEnvelope struct {
	Data *[]model.ClinicRequest `json:"data"`
	Meta *model.Meta            `json:"meta"`
}

func (c *HTTPClient) ListRequests(ctx context.Context, params query.Params) (*model.PageResult, error) {
	resp, err := c.do(ctx, http.MethodGet, pathRequests, params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: "reading response", Err: err}
	}

	var env listEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &MalformedError{Reason: "decoding list response", Err: err}
	}
	if env.Data == nil {
		return nil, &MalformedError{Reason: `missing "data" array`}
	}

	result := &model.PageResult{Records: *env.Data, Meta: model.DefaultMeta()}
	if env.Meta != nil {
		result.Meta = *env.Meta
	}
	return result, nil
}

func (c *HTTPClient) DeleteRequest(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("request id is required")
	}
	resp, err := c.do(ctx, http.MethodDelete, pathRequests+"/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	// The delete body carries no contract; drain it so the connection is reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

func (c *HTTPClient) ExportRequests(ctx context.Context, params query.Params) (*Export, error) {
	resp, err := c.do(ctx, http.MethodGet, pathExport, params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: "reading export", Err: err}
	}
	if len(data) == 0 {
		return nil, &MalformedError{Reason: "empty export body"}
	}
	return &Export{ContentType: resp.Header.Get("Content-Type"), Data: data}, nil
}

// --- internal helpers ---

// do sends a request and returns the response when the status is 2xx.
// Non-2xx responses are converted into *APIError and the body is closed.
func (c *HTTPClient) do(ctx context.Context, method, path string, params query.Params) (*http.Response, error) {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.session != nil {
		if tok := c.session.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	reqID, err := idgen.RequestID()
	if err == nil {
		req.Header.Set("X-Request-ID", reqID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, fmt.Errorf("performing request: %w", ctx.Err())
		}
		c.logger.Debug("api_request_failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("request_id", reqID),
			slog.String("err", err.Error()),
		)
		return nil, &NetworkError{Op: method + " " + path, Err: err}
	}
	c.logger.Debug("api_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.String("request_id", reqID),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	apiErr := &APIError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	if resp.StatusCode == http.StatusUnauthorized && c.session != nil {
		c.session.OnUnauthenticated()
	}
	return nil, apiErr
}

// readErrorMessage extracts "message" or "error" from a JSON error body,
// falling back to the raw text.
func readErrorMessage(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil {
		return ""
	}
	var errResp struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		var msg string
		if json.Unmarshal(errResp.Message, &msg) == nil && msg != "" {
			return msg
		}
		// NestJS validation errors send message as an array of strings.
		var msgs []string
		if json.Unmarshal(errResp.Message, &msgs) == nil && len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
		if errResp.Error != "" {
			return errResp.Error
		}
	}
	return strings.TrimSpace(string(body))
}

package kai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/keboola/kai-go/sse"
)

const (
	// DefaultBaseURL targets a local development backend.
	DefaultBaseURL = "http://localhost:3000"

	defaultTimeout       = 30 * time.Second
	defaultStreamTimeout = 5 * time.Minute

	headerStorageToken = "x-storageapi-token"
	headerStorageURL   = "x-storageapi-url"

	defaultChatModel  = "chat-model"
	defaultVisibility = "private"

	eventBufferSize = 100
)

// Client talks to the Kai conversational-agent backend: a JSON
// request/response control plane plus an SSE streaming plane for
// message sends and approval continuations.
type Client struct {
	baseURL      string
	token        string
	storageURL   string
	httpClient   *http.Client
	streamClient *http.Client
	logger       *slog.Logger
	model        string
	visibility   string
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the backend base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client for control-plane requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the control-plane request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithStreamTimeout bounds a whole streaming response. Streams routinely
// stay open for minutes while tools run, so this is generous by default.
func WithStreamTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.streamClient.Timeout = d
	}
}

// WithLogger sets a structured logger. Logging is off by default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithModel selects the backend chat model for message sends.
func WithModel(model string) Option {
	return func(c *Client) {
		c.model = model
	}
}

// NewClient creates a client authenticated by a Storage API token. The
// storage URL identifies the project; both travel as headers on every
// authenticated request.
func NewClient(token, storageURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      DefaultBaseURL,
		token:        token,
		storageURL:   storageURL,
		httpClient:   &http.Client{Timeout: defaultTimeout},
		streamClient: &http.Client{Timeout: defaultStreamTimeout},
		logger:       slog.New(slog.DiscardHandler),
		model:        defaultChatModel,
		visibility:   defaultVisibility,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the backend base URL in use.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// newRequest builds a request against the backend. Authenticated
// requests carry the storage token and URL headers; the health check
// deliberately does not.
func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, authenticated bool) (*http.Request, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		req.Header.Set(headerStorageToken, c.token)
		req.Header.Set(headerStorageURL, c.storageURL)
	}
	return req, nil
}

// doRequest performs a control-plane call and decodes the JSON response
// into result (which may be nil). Error statuses classify into the
// package error taxonomy.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body, result any, authenticated bool) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := c.newRequest(ctx, method, path, query, bodyReader, authenticated)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ConnectionError{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return classifyResponse(resp.StatusCode, respBody)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// stream POSTs a control message and pumps the SSE response through the
// normalizer. It returns a buffered event channel and a one-slot error
// channel; both close when the stream ends. A clean server-side close is
// not an error. Parse and transport faults from the sse package, and
// context cancellation, arrive on the error channel after which no more
// events follow.
//
// The response body is released on every exit path: normal completion,
// decoder fault, and caller cancellation (the request context tears the
// connection down).
func (c *Client) stream(ctx context.Context, path string, body any) (<-chan sse.Event, <-chan error, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal request body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, nil, bytes.NewReader(jsonBody), true)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, nil, &ConnectionError{Cause: err}
	}

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, nil, classifyResponse(resp.StatusCode, respBody)
	}

	events := make(chan sse.Event, eventBufferSize)
	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		defer close(events)
		defer resp.Body.Close()

		dec := sse.NewDecoder(resp.Body)
		for {
			evt, err := dec.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- err
				return
			}

			c.logger.Debug("stream event", "kind", fmt.Sprintf("%T", evt))

			select {
			case events <- evt:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
	}()

	return events, errCh, nil
}

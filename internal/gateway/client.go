// Package gateway wraps outbound calls to the remote travel authority. It
// attaches the stored credential to every request and classifies failures
// into the core's fault taxonomy; it never interprets responses beyond that.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nfrund/voyage/internal/credstore"
	"github.com/nfrund/voyage/internal/domain"
)

// authHeader is the header the remote authority reads the credential from.
const authHeader = "x-auth-token"

// Config holds client configuration.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	Credentials credstore.Store
}

// Client is a client for the remote travel authority.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      credstore.Store
}

// New creates a new gateway client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		creds:   cfg.Credentials,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// errorBody is the shape rejections arrive in: a human-readable message.
type errorBody struct {
	Message string `json:"message"`
}

// do performs one round trip. A non-nil body is JSON-encoded; a non-nil out
// receives the decoded success response. Every returned error is a
// *domain.Fault.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return domain.WrapFault(domain.FaultTransport, "Could not encode the request.", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return domain.WrapFault(domain.FaultTransport, "Could not build the request.", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	// Absence of a credential means the call goes out unauthenticated;
	// rejecting it is the remote authority's job.
	token, err := c.creds.Token()
	if err != nil {
		return domain.WrapFault(domain.FaultTransport, "Could not read the stored credential.", err)
	}
	if token != "" {
		req.Header.Set(authHeader, token)
	}

	slog.Debug("Gateway request", "method", method, "path", path, "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("Gateway request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return domain.WrapFault(domain.FaultTransport, "Could not reach the server. Please try again.", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.WrapFault(domain.FaultTransport, "Could not read the server response.", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classify(resp.StatusCode, data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return domain.WrapFault(domain.FaultTransport, "The server returned a malformed response.", err)
		}
	}
	return nil
}

// classify maps a rejection to the fault taxonomy. 401/403 are authorization
// rejections, other 4xx are domain rejections whose message is surfaced
// verbatim, and everything else is a transport failure the caller may retry.
func classify(status int, body []byte) *domain.Fault {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		message := eb.Message
		if message == "" {
			message = "Session expired."
		}
		return &domain.Fault{Kind: domain.FaultAuth, Message: message}
	case status >= 400 && status < 500:
		message := eb.Message
		if message == "" {
			message = fmt.Sprintf("The server rejected the request (%d).", status)
		}
		return &domain.Fault{Kind: domain.FaultConflict, Message: message}
	default:
		message := eb.Message
		if message == "" {
			message = fmt.Sprintf("The server is unavailable (%d). Please try again.", status)
		}
		return &domain.Fault{Kind: domain.FaultTransport, Message: message}
	}
}

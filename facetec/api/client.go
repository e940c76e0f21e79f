package api

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

	"github.com/gooddollar/facetec-go/models"
)

// Config is the explicit client configuration. It is fixed at construction;
// there is no global registration step that later calls could race on.
type Config struct {
	// ServerURL is the verification backend base URL, without trailing slash.
	ServerURL string
	// JWTAccessToken is sent as the Bearer credential on every call.
	JWTAccessToken string
	// Timeout replaces the transport default for all calls when positive.
	Timeout time.Duration
}

// SessionTokenCallback receives the result of GetSessionToken.
type SessionTokenCallback func(sessionToken string, err *Error)

// EnrollmentCallback receives the backend verdict of Enroll. Exactly one of
// response and err is non-nil.
type EnrollmentCallback func(response *models.EnrollmentResponse, err *Error)

// Client talks to the verification backend. Both operations are asynchronous:
// they never block the calling goroutine, results arrive via callbacks.
type Client struct {
	config   Config
	inflight *inflightRegistry
}

func NewClient(config Config) *Client {
	return &Client{
		config:   config,
		inflight: newInflightRegistry(),
	}
}

// GetSessionToken requests a one-time capture session token with an empty
// JSON body.
func (c *Client) GetSessionToken(callback SessionTokenCallback) {
	go func() {
		body, err := c.send(http.MethodPost, "/verify/face/session", []byte("{}"), 0, nil)
		if err != nil {
			slog.Warn("session token request failed", "error", err)
			callback("", err)
			return
		}

		var response models.SessionTokenResponse
		if jsonErr := json.Unmarshal(body, &response); jsonErr != nil || response.SessionToken == "" {
			callback("", NewError(fmt.Sprintf("%s: %s", EmptyResponseMessage, truncate(body)), nil))
			return
		}

		callback(response.SessionToken, nil)
	}()
}

// Enroll submits the captured payload for the given identifier. A positive
// timeout runs the call on an independently configured client; the shared
// client is never mutated. Upload progress is streamed through progress.
func (c *Client) Enroll(
	enrollmentIdentifier string,
	payload models.EnrollmentRequest,
	timeout time.Duration,
	progress ProgressFunc,
	callback EnrollmentCallback,
) {
	go func() {
		encoded, err := json.Marshal(payload)
		if err != nil {
			callback(nil, NewError(fmt.Sprintf("%s: %v", UnexpectedMessage, err), nil))
			return
		}

		endpoint := "/verify/face/" + url.PathEscape(enrollmentIdentifier)
		body, apiErr := c.send(http.MethodPut, endpoint, encoded, timeout, progress)
		if apiErr != nil {
			slog.Warn("enrollment request failed", "identifier", enrollmentIdentifier, "error", apiErr)
			callback(nil, apiErr)
			return
		}

		var response models.EnrollmentResponse
		if jsonErr := json.Unmarshal(body, &response); jsonErr != nil {
			callback(nil, NewError("", nil))
			return
		}

		if !response.Success {
			callback(nil, NewError(response.Error, &response))
			return
		}

		callback(&response, nil)
	}()
}

// CancelPendingRequests aborts all in-flight backend calls. Used when a
// capture session is abandoned so orphaned uploads cannot race a new session.
func (c *Client) CancelPendingRequests() {
	c.inflight.cancelAll()
}

// send performs one backend call, classifying every failure into *Error.
// A nil error return guarantees the body is the raw bytes of a 2xx response.
func (c *Client) send(method, endpoint string, payload []byte, timeout time.Duration, progress ProgressFunc) ([]byte, *Error) {
	ctx, release := c.inflight.track(context.Background())
	defer release()

	req, err := http.NewRequestWithContext(ctx, method, c.config.ServerURL+endpoint, nil)
	if err != nil {
		return nil, NewError(fmt.Sprintf("%s: %v", UnexpectedMessage, err), nil)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.JWTAccessToken)

	req.Body = io.NopCloser(newProgressReader(payload, progress))
	req.ContentLength = int64(len(payload))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(payload)), nil
	}

	httpClient := clientWithTimeout(c.config.Timeout)
	if timeout > 0 {
		httpClient = clientWithTimeout(timeout)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, NewError(fmt.Sprintf("%s: %v", UnexpectedMessage, err), nil)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Error("failed to close response body", "error", closeErr)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewError(fmt.Sprintf("%s: %v", UnexpectedMessage, err), nil)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		slog.Warn("verification backend returned error status",
			"endpoint", endpoint, "status", resp.StatusCode)
		return nil, NewError("", nil)
	}

	return body, nil
}

func truncate(body []byte) string {
	const limit = 256
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}

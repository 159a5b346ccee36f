package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds every request made by the remote clients.
const DefaultTimeout = 15 * time.Second

// maxBodySize caps how much of a response body is read.
const maxBodySize = 1 << 20

// Response is a readable webhook response. Body holds the decoded JSON value
// when the server declared application/json and the body parsed, otherwise
// the body as text.
type Response struct {
	StatusCode  int
	ContentType string
	Raw         []byte
	Body        any

	// DecodeErr is set when the body was declared as JSON but did not parse.
	DecodeErr error
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// StatusText returns the canonical text for the status code.
func (r *Response) StatusText() string {
	if text := http.StatusText(r.StatusCode); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", r.StatusCode)
}

// NewHTTPClient returns an http.Client with the given timeout, or
// DefaultTimeout when timeout is zero.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// PostJSON sends payload as JSON and reads the response. A returned error
// means the request did not complete (network failure, timeout, unreadable
// body); any HTTP status, including 4xx and 5xx, is a Response.
func PostJSON(ctx context.Context, client *http.Client, endpoint string, payload any) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	out := &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Raw:         raw,
		Body:        string(raw),
	}
	if strings.Contains(out.ContentType, "application/json") {
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			out.DecodeErr = fmt.Errorf("decode response: %w", err)
		} else {
			out.Body = decoded
		}
	}
	return out, nil
}

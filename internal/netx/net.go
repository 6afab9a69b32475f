// Package netx holds small HTTP helpers shared by the client transport.
package netx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody bounds how much of a failed response is read for the message.
const maxErrorBody = 64 << 10

// StatusError is returned by DoJSON for any non-2xx response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("request failed: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// DoJSON sends in (when non-nil) as a JSON body and decodes a 2xx response
// into out (when non-nil). Extra headers are copied onto the request.
func DoJSON(ctx context.Context, c *http.Client, method, url string, header http.Header, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Message: messageOf(b)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// messageOf pulls {"message": "..."} out of an error body, falling back to the
// raw text when the body is not that shape.
func messageOf(b []byte) string {
	var m struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(b, &m); err == nil && m.Message != "" {
		return m.Message
	}
	return string(bytes.TrimSpace(b))
}

// Package telegram talks to the Telegram Bot API over HTTP and walks send
// plans produced by the media package.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

const (
	// maxResponseBytes bounds API response reads.
	maxResponseBytes = 1 << 20
	// maxErrorBodyBytes bounds the response body kept on errors for debug logs.
	maxErrorBodyBytes = 512
)

// Client is a thin HTTP wrapper around the Telegram Bot API.
//
// No request timeout is set: media uploads may legitimately take a very long
// time, and the process is single-shot. Cancellation goes through ctx.
type Client struct {
	baseURL string // API base including the bot prefix, e.g. "https://api.telegram.org/bot"
	token   string
	http    *http.Client
}

// NewClient creates a Bot API client for the given base URL and token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{},
	}
}

func (c *Client) endpoint(method string) string {
	return c.baseURL + c.token + "/" + method
}

// redact strips the bot token from a message. Transport errors echo the
// request URL, which embeds the token.
func (c *Client) redact(msg string) string {
	if c.token == "" {
		return msg
	}
	return strings.ReplaceAll(msg, c.token, "REDACTED")
}

// postJSON sends a JSON-body POST to the given Bot API method.
func postJSON[T any](ctx context.Context, c *Client, method string, payload any) (*T, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("telegram: marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(method), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("telegram: create %s request: %s", method, c.redact(err.Error()))
	}
	req.Header.Set("Content-Type", "application/json")

	return exchange[T](c, method, req)
}

// postForm sends a form-encoded POST to the given Bot API method.
func postForm[T any](ctx context.Context, c *Client, method string, values url.Values) (*T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(method),
		strings.NewReader(values.Encode()))
	if err != nil {
		return nil, fmt.Errorf("telegram: create %s request: %s", method, c.redact(err.Error()))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return exchange[T](c, method, req)
}

// postMultipart sends a multipart POST whose parts are written by build. The
// body is streamed through a pipe so file parts never load into memory whole.
func postMultipart[T any](ctx context.Context, c *Client, method string, build func(*multipart.Writer) error) (*T, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := build(mw)
		if closeErr := mw.Close(); err == nil {
			err = closeErr
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(method), pr)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("telegram: create %s request: %s", method, c.redact(err.Error()))
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return exchange[T](c, method, req)
}

// exchange performs the request and decodes the APIResponse envelope. A
// non-success HTTP status or ok=false becomes an *APIError carrying the
// status, the API description, and a truncated body for debug logging.
func exchange[T any](c *Client, method string, req *http.Request) (*T, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram: %s request failed: %s", method, c.redact(err.Error()))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("telegram: read %s response: %s", method, c.redact(err.Error()))
	}

	var apiResp APIResponse[T]
	decodeErr := json.Unmarshal(body, &apiResp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || decodeErr == nil && !apiResp.OK {
		apiErr := &APIError{
			Status: resp.StatusCode,
			Body:   truncate(string(body), maxErrorBodyBytes),
		}
		if decodeErr == nil {
			apiErr.Code = apiResp.ErrorCode
			apiErr.Description = apiResp.Description
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("telegram: decode %s response: %w", method, decodeErr)
	}
	return &apiResp.Result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

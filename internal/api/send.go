package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	apierrors "github.com/dixit-research/dixit/internal/errors"
	"github.com/dixit-research/dixit/internal/models"
)

const (
	maxErrorBody    = 4096
	maxResponseBody = 8 << 20
)

var errClientClosed = errors.New("client is closed")

// Send posts one question and returns the normalized answer. It performs
// exactly one request: no retry, no caching.
func (c *Client) Send(ctx context.Context, question string) (*models.Answer, error) {
	if c.IsClosed() {
		return nil, errClientClosed
	}

	payload, err := buildPayload(c.backend, question)
	if err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}

	body, status, err := c.do(ctx, http.MethodPost, c.endpoint, payload)
	if err != nil {
		return nil, err
	}

	if !gjson.ValidBytes(body) {
		return nil, apierrors.NewParseError(status, c.endpoint, errInvalidJSON)
	}

	return normalizeResult(gjson.ParseBytes(body))
}

// Health probes the backend health endpoint and returns its JSON indented
func (c *Client) Health(ctx context.Context) (string, error) {
	if c.IsClosed() {
		return "", errClientClosed
	}

	body, status, err := c.do(ctx, http.MethodGet, c.healthEndpoint, nil)
	if err != nil {
		return "", err
	}

	if !gjson.ValidBytes(body) {
		return "", apierrors.NewParseError(status, c.healthEndpoint, errInvalidJSON)
	}

	return string(bytes.TrimRight(pretty.Pretty(body), "\n")), nil
}

// buildPayload encodes {"<key>": question} for the backend contract
func buildPayload(backend models.Backend, question string) ([]byte, error) {
	return json.Marshal(map[string]string{backend.PayloadKey(): question})
}

// do performs a single request and maps every failure into the taxonomy
func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range models.DefaultHeaders() {
		req.Header.Set(key, value)
	}
	if payload == nil {
		req.Header.Del("Content-Type")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, classifyTransportError(ctx, endpoint, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Best effort: a failed read still yields the status
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, resp.StatusCode, apierrors.NewStatusError(resp.StatusCode, endpoint, string(errorBody))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, resp.StatusCode, classifyTransportError(ctx, endpoint, err)
	}

	return body, resp.StatusCode, nil
}

// classifyTransportError turns a transport failure into an UnreachableError
func classifyTransportError(ctx context.Context, endpoint string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return apierrors.NewTimeoutError(endpoint, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apierrors.NewTimeoutError(endpoint, err)
	}

	return apierrors.NewUnreachableError(endpoint, err)
}

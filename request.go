package epicmix

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

	"github.com/google/go-querystring/query"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type proxyParams struct {
	Env  string `url:"env"`
	Path string `url:"path"`
}

// newRequest creates a new HTTP request against one of the two endpoints.
func (c *Client) newRequest(
	ctx context.Context,
	method string,
	endpoint *url.URL,
	params url.Values,
	body any,
) (*http.Request, error) {
	u := *endpoint
	u.RawQuery = params.Encode()

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	return req, nil
}

// doJSON executes the request and decodes the JSON response into v.
// Responses with a status of 400 or above are returned as [*APIError].
func (c *Client) doJSON(req *http.Request, endpoint string, v any) error {
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observeRequest(endpoint, 0, start)
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	c.metrics.observeRequest(endpoint, resp.StatusCode, start)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return newAPIError(resp, body)
	}

	if v == nil {
		return nil
	}

	if err := json.Unmarshal(body, v); err != nil {
		c.logger.Warn("epicmix.api.decode_failed",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.Error(err))
		return fmt.Errorf("decode response: %w", err)
	}

	c.logger.Debug("epicmix.api.request",
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	return nil
}

// Fetch queries path through the proxy endpoint and decodes the whole JSON
// response into v. A 401 response triggers exactly one re-authentication and
// one retry of the same query; any failure after that is returned as is.
func (c *Client) Fetch(ctx context.Context, path string, v any) error {
	log := c.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("path", path),
	)

	err := c.get(ctx, path, v)
	if !IsUnauthorized(err) {
		if err != nil {
			log.Warn("epicmix.api.request_failed", zap.Error(err))
		}
		return err
	}

	log.Info("epicmix.api.unauthorized_retry")

	if err := c.Authenticate(ctx); err != nil {
		return err
	}

	if err := c.get(ctx, path, v); err != nil {
		log.Warn("epicmix.api.request_failed", zap.Error(err), zap.Bool("retried", true))
		return err
	}

	return nil
}

// get issues a single authenticated proxy query.
func (c *Client) get(ctx context.Context, path string, v any) error {
	params, err := query.Values(proxyParams{Env: c.env, Path: path})
	if err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodGet, c.apiURL, params, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.bearer())

	return c.doJSON(req, endpointName(path), v)
}

// endpointName strips the embedded query from a proxy path so it can be used
// as a low-cardinality label.
func endpointName(path string) string {
	name, _, _ := strings.Cut(path, "?")
	return name
}

// withQuery appends params, encoded with url struct tags, to a proxy path.
func withQuery(path string, params any) (string, error) {
	v, err := query.Values(params)
	if err != nil {
		return "", err
	}

	if len(v) == 0 {
		return path, nil
	}

	return path + "?" + v.Encode(), nil
}

// IsUnauthorized reports whether err is an [*APIError] with status 401.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	clierr "github.com/ggonzalez94/onchain-cli/internal/errors"
)

type Client struct {
	httpClient *http.Client
	userAgent  string
	logger     *zap.Logger
}

func New(timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "onchain-cli/1.0",
		logger:     logger,
	}
}

// Do performs a single request and returns the response body on a 2xx status.
// There are no retries: a timeout or connection failure is fatal to the call.
func (c *Client) Do(ctx context.Context, req *http.Request) ([]byte, error) {
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Error(err))
		return nil, mapNetError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	buf, readErr := io.ReadAll(resp.Body)
	c.logger.Debug("request done",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))
	if readErr != nil {
		return nil, clierr.Wrap(clierr.KindTransport, "read response body", readErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, clierr.RemoteStatus(resp.StatusCode, strings.TrimSpace(string(buf)))
	}
	return buf, nil
}

// PostJSON marshals body, POSTs it with a JSON content type plus any extra
// headers, and returns the raw response body.
func PostJSON(ctx context.Context, c *Client, url string, body any, headers map[string]string) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, clierr.Wrap(clierr.KindInternal, "marshal request body", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, clierr.Wrap(clierr.KindInternal, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.Do(ctx, req)
}

func mapNetError(err error) error {
	if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
		return clierr.Wrap(clierr.KindTransport, "request timeout", err)
	}
	return clierr.Wrap(clierr.KindTransport, "request failed", err)
}

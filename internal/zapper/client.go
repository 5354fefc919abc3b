// Package zapper talks to the aggregator's GraphQL endpoint. Transport and
// HTTP-status failures are hard errors; payload-level failures (a GraphQL
// errors array, a missing API key, a tier-gated 403) come back as soft
// errors that callers render instead of raising, so per-wallet loops keep
// going past them.
package zapper

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	clierr "github.com/ggonzalez94/onchain-cli/internal/errors"
	"github.com/ggonzalez94/onchain-cli/internal/httpx"
)

const DefaultGraphQLURL = "https://public.zapper.xyz/graphql"

type Client struct {
	http   *httpx.Client
	url    string
	apiKey string
}

func NewClient(url, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	if url == "" {
		url = DefaultGraphQLURL
	}
	return &Client{
		http:   httpx.New(timeout, logger),
		url:    url,
		apiKey: apiKey,
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Query posts one GraphQL operation and returns the raw data subtree.
func (c *Client) Query(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, clierr.Soft("No API key. Set ZAPPER_API_KEY or add apiKey to config.")
	}

	body, err := httpx.PostJSON(ctx, c.http, c.url, graphqlRequest{Query: query, Variables: variables}, map[string]string{
		"x-zapper-api-key": c.apiKey,
	})
	if err != nil {
		if remote, ok := clierr.As(err); ok && remote.StatusCode == 403 {
			return nil, clierr.Soft("Access denied - this endpoint may require a paid API tier")
		}
		return nil, err
	}

	var resp graphqlResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, clierr.Wrap(clierr.KindRemoteStatus, "decode graphql response", err)
	}
	if len(resp.Errors) > 0 {
		msg := resp.Errors[0].Message
		if msg == "" {
			msg = "GraphQL error"
		}
		return nil, clierr.Soft(msg)
	}
	return resp.Data, nil
}

// subtree walks a raw JSON object along path without decoding leaf contents,
// so the returned bytes keep their upstream key order. A missing or
// non-object step yields nil.
func subtree(raw json.RawMessage, path ...string) json.RawMessage {
	cur := raw
	for _, key := range path {
		var m map[string]json.RawMessage
		if err := json.Unmarshal(cur, &m); err != nil {
			return nil
		}
		cur = m[key]
	}
	return cur
}

// Package hyperliquid speaks the exchange's info endpoint: every operation is
// a POST of {"type": ..., ...params} to {base}/info. Responses are kept as raw
// JSON so pass-through output preserves upstream key order; typed views are
// decoded only where aggregation needs them.
package hyperliquid

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ggonzalez94/onchain-cli/internal/httpx"
)

const DefaultBaseURL = "https://api.hyperliquid.xyz"

type Client struct {
	http    *httpx.Client
	baseURL string
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    httpx.New(timeout, logger),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type infoRequest struct {
	Type string     `json:"type"`
	User string     `json:"user,omitempty"`
	Coin string     `json:"coin,omitempty"`
	Dex  string     `json:"dex,omitempty"`
	Req  *candleReq `json:"req,omitempty"`
}

type candleReq struct {
	Coin      string `json:"coin"`
	Interval  string `json:"interval"`
	StartTime int64  `json:"startTime"`
	EndTime   int64  `json:"endTime"`
}

// Info performs one info call and hands back the body verbatim.
func (c *Client) Info(ctx context.Context, req infoRequest) (json.RawMessage, error) {
	body, err := httpx.PostJSON(ctx, c.http, c.baseURL+"/info", req, nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

func (c *Client) AllMids(ctx context.Context) (json.RawMessage, error) {
	return c.Info(ctx, infoRequest{Type: "allMids"})
}

func (c *Client) Meta(ctx context.Context) (json.RawMessage, error) {
	return c.Info(ctx, infoRequest{Type: "meta"})
}

func (c *Client) MetaAndAssetCtxs(ctx context.Context) (json.RawMessage, error) {
	return c.Info(ctx, infoRequest{Type: "metaAndAssetCtxs"})
}

func (c *Client) PredictedFundings(ctx context.Context) (json.RawMessage, error) {
	return c.Info(ctx, infoRequest{Type: "predictedFundings"})
}

// L2Book fetches the order book for a coin; symbols are uppercased before
// hitting the API.
func (c *Client) L2Book(ctx context.Context, coin string) (json.RawMessage, error) {
	return c.Info(ctx, infoRequest{Type: "l2Book", Coin: strings.ToUpper(coin)})
}

// CandleSnapshot fetches candles for a coin. start/end are ms since epoch;
// zero lets the API pick its default window. When limit > 0 only the trailing
// limit candles are kept, preserving their upstream encoding.
func (c *Client) CandleSnapshot(ctx context.Context, coin, interval string, start, end int64, limit int) (json.RawMessage, error) {
	raw, err := c.Info(ctx, infoRequest{Type: "candleSnapshot", Req: &candleReq{
		Coin:      strings.ToUpper(coin),
		Interval:  interval,
		StartTime: start,
		EndTime:   end,
	}})
	if err != nil {
		return nil, err
	}
	return tailArray(raw, limit), nil
}

// OpenOrders lists resting orders for a user, optionally scoped to a venue.
func (c *Client) OpenOrders(ctx context.Context, user, dex string) (json.RawMessage, error) {
	return c.Info(ctx, infoRequest{Type: "openOrders", User: strings.ToLower(user), Dex: dex})
}

// ClearinghouseState fetches the perps account state. An empty dex selects
// the primary venue. Address-sensitive endpoints want lowercase users.
func (c *Client) ClearinghouseState(ctx context.Context, user, dex string) (json.RawMessage, error) {
	return c.Info(ctx, infoRequest{Type: "clearinghouseState", User: strings.ToLower(user), Dex: dex})
}

func (c *Client) SpotClearinghouseState(ctx context.Context, user string) (json.RawMessage, error) {
	return c.Info(ctx, infoRequest{Type: "spotClearinghouseState", User: strings.ToLower(user)})
}

// PerpDexs lists the trading venues. Index 0 names the primary venue; venue
// fan-out starts at index 1.
func (c *Client) PerpDexs(ctx context.Context) (json.RawMessage, error) {
	return c.Info(ctx, infoRequest{Type: "perpDexs"})
}

// tailArray keeps the last limit elements of a JSON array without decoding
// element contents. Non-array payloads pass through untouched.
func tailArray(raw json.RawMessage, limit int) json.RawMessage {
	if limit <= 0 {
		return raw
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return raw
	}
	if len(elems) <= limit {
		return raw
	}
	elems = elems[len(elems)-limit:]
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = string(e)
	}
	return json.RawMessage("[" + strings.Join(parts, ",") + "]")
}

package zapper

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	clierr "github.com/ggonzalez94/onchain-cli/internal/errors"
	"github.com/ggonzalez94/onchain-cli/internal/model"
)

// FetchPortfolio returns the raw portfolioV2 subtree (tokens + apps).
func (c *Client) FetchPortfolio(ctx context.Context, addresses []string, limit int) (json.RawMessage, error) {
	data, err := c.Query(ctx, portfolioQuery, map[string]any{"addresses": addresses, "first": limit})
	if err != nil {
		return nil, err
	}
	return subtree(data, "portfolioV2"), nil
}

// FetchTokens returns the raw tokenBalances subtree.
func (c *Client) FetchTokens(ctx context.Context, addresses []string, limit int) (json.RawMessage, error) {
	data, err := c.Query(ctx, tokensQuery, map[string]any{"addresses": addresses, "first": limit})
	if err != nil {
		return nil, err
	}
	return subtree(data, "portfolioV2", "tokenBalances"), nil
}

// FetchApps returns the raw appBalances subtree.
func (c *Client) FetchApps(ctx context.Context, addresses []string, limit int) (json.RawMessage, error) {
	data, err := c.Query(ctx, appsQuery, map[string]any{"addresses": addresses, "first": limit})
	if err != nil {
		return nil, err
	}
	return subtree(data, "portfolioV2", "appBalances"), nil
}

// FetchNFTs returns the raw nftBalances subtree, ordered by USD worth.
func (c *Client) FetchNFTs(ctx context.Context, addresses []string, limit int) (json.RawMessage, error) {
	data, err := c.Query(ctx, nftsQuery, map[string]any{"addresses": addresses, "first": limit})
	if err != nil {
		return nil, err
	}
	return subtree(data, "portfolioV2", "nftBalances"), nil
}

// txWindow is how far back the transaction history reaches.
const txWindow = 30 * 24 * time.Hour

// FetchTransactions returns the raw transaction history for the trailing
// window, newest first.
func (c *Client) FetchTransactions(ctx context.Context, addresses []string, limit int) (json.RawMessage, error) {
	end := time.Now().UnixMilli()
	start := end - txWindow.Milliseconds()
	data, err := c.Query(ctx, transactionsQuery, map[string]any{
		"addresses": addresses,
		"first":     limit,
		"startDate": start,
		"endDate":   end,
	})
	if err != nil {
		return nil, err
	}
	return subtree(data, "transactionHistoryV2"), nil
}

// tokenAddresses maps the supported price-lookup symbols to their Ethereum
// mainnet contract (chain id 1).
var tokenAddresses = map[string]string{
	"ETH":  "0x0000000000000000000000000000000000000000",
	"WETH": "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
	"USDC": "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48",
	"USDT": "0xdac17f958d2ee523a2206206994597c13d831ec7",
	"DAI":  "0x6b175474e89094c44da98b954eedeac495271d0f",
	"WBTC": "0x2260fac5e5542a773aa44fbcfedf7c193bc2c599",
	"LINK": "0x514910771af9ca656af840dff83e8264ecf986ca",
	"UNI":  "0x1f9840a85d5af5bf1d1762f925bdaddc4201f984",
	"AAVE": "0x7fc66500c84a76ad7e9c93437bfc5ac33e2ddae9",
	"MKR":  "0x9f8f72aa9304c8b593d555f12ef6589cc3a579a2",
}

// SupportedPriceSymbols lists the price-lookup symbols, sorted for stable
// error messages.
func SupportedPriceSymbols() []string {
	out := make([]string, 0, len(tokenAddresses))
	for sym := range tokenAddresses {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// FetchPrice looks up one token's price data by symbol. Unknown symbols and
// unknown tokens are soft failures.
func (c *Client) FetchPrice(ctx context.Context, symbol string) (PriceQuote, error) {
	address, ok := tokenAddresses[strings.ToUpper(symbol)]
	if !ok {
		return PriceQuote{}, clierr.Soft(fmt.Sprintf(
			"Unknown token symbol. Supported: %s", strings.Join(SupportedPriceSymbols(), ", ")))
	}

	data, err := c.Query(ctx, priceQuery, map[string]any{"address": address, "chainId": 1})
	if err != nil {
		return PriceQuote{}, err
	}

	var resp struct {
		Token *struct {
			Symbol    string `json:"symbol"`
			Name      string `json:"name"`
			PriceData struct {
				Price          model.Flex `json:"price"`
				PriceChange24h model.Flex `json:"priceChange24h"`
				MarketCap      model.Flex `json:"marketCap"`
				Volume24h      model.Flex `json:"volume24h"`
			} `json:"priceData"`
		} `json:"fungibleTokenV2"`
	}
	if err := json.Unmarshal(data, &resp); err != nil || resp.Token == nil {
		return PriceQuote{}, clierr.Soft("Token not found")
	}

	pd := resp.Token.PriceData
	return PriceQuote{
		Symbol:         resp.Token.Symbol,
		Name:           resp.Token.Name,
		Price:          pd.Price,
		PriceChange24h: pd.PriceChange24h,
		MarketCap:      pd.MarketCap,
		Volume24h:      pd.Volume24h,
	}, nil
}

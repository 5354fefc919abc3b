package zapper

import "github.com/ggonzalez94/onchain-cli/internal/model"

// Typed views over the GraphQL payloads, decoded from the raw subtrees when
// the text formatter needs fields. Every numeric is a Flex: the API mixes
// numbers, strings, and nulls freely.

type Portfolio struct {
	TokenBalances TokenBalances `json:"tokenBalances"`
	AppBalances   AppBalances   `json:"appBalances"`
}

type TokenBalances struct {
	TotalBalanceUSD model.Flex      `json:"totalBalanceUSD"`
	ByToken         TokenConnection `json:"byToken"`
}

type TokenConnection struct {
	TotalCount int         `json:"totalCount"`
	Edges      []TokenEdge `json:"edges"`
}

type TokenEdge struct {
	Node TokenNode `json:"node"`
}

type TokenNode struct {
	Name              string      `json:"name"`
	Symbol            string      `json:"symbol"`
	Price             model.Flex  `json:"price"`
	Balance           model.Flex  `json:"balance"`
	BalanceUSD        model.Flex  `json:"balanceUSD"`
	Network           NetworkRef  `json:"network"`
	OnchainMarketData *MarketData `json:"onchainMarketData"`
}

// Change24h tolerates an absent onchainMarketData block.
func (n TokenNode) Change24h() model.Flex {
	if n.OnchainMarketData == nil {
		return model.Flex{}
	}
	return n.OnchainMarketData.PriceChange24h
}

type MarketData struct {
	PriceChange24h model.Flex `json:"priceChange24h"`
	MarketCap      model.Flex `json:"marketCap"`
}

type NetworkRef struct {
	Name string `json:"name"`
}

type AppBalances struct {
	TotalBalanceUSD model.Flex    `json:"totalBalanceUSD"`
	ByApp           AppConnection `json:"byApp"`
}

type AppConnection struct {
	Edges []AppEdge `json:"edges"`
}

type AppEdge struct {
	Node AppNode `json:"node"`
}

type AppNode struct {
	App        AppRef     `json:"app"`
	BalanceUSD model.Flex `json:"balanceUSD"`
	Network    NetworkRef `json:"network"`
}

type AppRef struct {
	DisplayName string `json:"displayName"`
}

type NFTBalances struct {
	TotalBalanceUSD  model.Flex    `json:"totalBalanceUSD"`
	TotalTokensOwned model.Flex    `json:"totalTokensOwned"`
	ByToken          NFTConnection `json:"byToken"`
}

type NFTConnection struct {
	Edges []NFTEdge `json:"edges"`
}

type NFTEdge struct {
	Node NFTNode `json:"node"`
}

type NFTNode struct {
	Token NFTToken `json:"token"`
}

type NFTToken struct {
	TokenID        string         `json:"tokenId"`
	Name           string         `json:"name"`
	EstimatedValue EstimatedValue `json:"estimatedValue"`
	Collection     NFTCollection  `json:"collection"`
}

type EstimatedValue struct {
	ValueUSD model.Flex `json:"valueUsd"`
}

type NFTCollection struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Network string `json:"network"`
}

type TxHistory struct {
	Edges []TxEdge `json:"edges"`
}

type TxEdge struct {
	Node TxNode `json:"node"`
}

type TxNode struct {
	Transaction    TxDetails        `json:"transaction"`
	Interpretation TxInterpretation `json:"interpretation"`
}

type TxDetails struct {
	Hash      string     `json:"hash"`
	Timestamp model.Flex `json:"timestamp"` // ms since epoch
	Network   string     `json:"network"`
}

type TxInterpretation struct {
	ProcessedDescription string `json:"processedDescription"`
}

// PriceQuote is the reshaped single-token price lookup.
type PriceQuote struct {
	Symbol         string     `json:"symbol"`
	Name           string     `json:"name"`
	Price          model.Flex `json:"price"`
	PriceChange24h model.Flex `json:"priceChange24h"`
	MarketCap      model.Flex `json:"marketCap"`
	Volume24h      model.Flex `json:"volume24h"`
}

package zapper

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ggonzalez94/onchain-cli/internal/model"
)

// dustThreshold hides claimable balances at or below this USD value.
const dustThreshold = 0.01

// Claimable is one reward entry surfaced by the extraction walk.
type Claimable struct {
	Symbol     string     `json:"symbol"`
	Balance    model.Flex `json:"balance"`
	BalanceUSD model.Flex `json:"balanceUSD"`
	App        string     `json:"app"`
	Network    string     `json:"network"`
}

// ClaimablesReport is the flattened result: the entries in traversal order
// plus the exact sum of their USD values.
type ClaimablesReport struct {
	TotalBalanceUSD float64     `json:"totalBalanceUSD"`
	Claimables      []Claimable `json:"claimables"`
}

// claimablesPayload mirrors the slice of the portfolio tree the extraction
// walks: apps -> positionBalances -> tokens.
type claimablesPayload struct {
	AppBalances struct {
		ByApp struct {
			Edges []struct {
				Node struct {
					App              AppRef     `json:"app"`
					Network          NetworkRef `json:"network"`
					PositionBalances struct {
						Edges []struct {
							Node struct {
								Tokens []positionToken `json:"tokens"`
							} `json:"node"`
						} `json:"edges"`
					} `json:"positionBalances"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"byApp"`
	} `json:"appBalances"`
}

type positionToken struct {
	Type       string     `json:"type"`
	Symbol     string     `json:"symbol"`
	Balance    model.Flex `json:"balance"`
	BalanceUSD model.Flex `json:"balanceUSD"`
}

// FetchClaimables queries the portfolio position tree and extracts the
// claimable rewards.
func (c *Client) FetchClaimables(ctx context.Context, addresses []string) (ClaimablesReport, error) {
	data, err := c.Query(ctx, claimablesQuery, map[string]any{"addresses": addresses})
	if err != nil {
		return ClaimablesReport{}, err
	}
	return ExtractClaimables(subtree(data, "portfolioV2")), nil
}

// ExtractClaimables walks apps -> positions -> tokens depth-first. A token
// qualifies when its lower-cased type tag contains "claimable" or "reward"
// and its USD value clears the dust threshold. Entries keep traversal order;
// the total is the exact sum of included values, with unparseable values
// counting as zero.
func ExtractClaimables(raw json.RawMessage) ClaimablesReport {
	var payload claimablesPayload
	_ = json.Unmarshal(raw, &payload)

	report := ClaimablesReport{Claimables: []Claimable{}}
	for _, appEdge := range payload.AppBalances.ByApp.Edges {
		appName := appEdge.Node.App.DisplayName
		if appName == "" {
			appName = "Unknown"
		}
		network := appEdge.Node.Network.Name

		for _, posEdge := range appEdge.Node.PositionBalances.Edges {
			for _, tok := range posEdge.Node.Tokens {
				tag := strings.ToLower(tok.Type)
				if !strings.Contains(tag, "claimable") && !strings.Contains(tag, "reward") {
					continue
				}
				value := tok.BalanceUSD.Or(0)
				if value <= dustThreshold {
					continue
				}

				symbol := tok.Symbol
				if symbol == "" {
					symbol = "?"
				}
				report.TotalBalanceUSD += value
				report.Claimables = append(report.Claimables, Claimable{
					Symbol:     symbol,
					Balance:    tok.Balance,
					BalanceUSD: tok.BalanceUSD,
					App:        appName,
					Network:    network,
				})
			}
		}
	}
	return report
}

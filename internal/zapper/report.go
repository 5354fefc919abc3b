package zapper

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ggonzalez94/onchain-cli/internal/format"
)

// DecodePortfolio parses a raw portfolioV2 subtree for text rendering.
func DecodePortfolio(raw json.RawMessage) Portfolio {
	var p Portfolio
	_ = json.Unmarshal(raw, &p)
	return p
}

// DecodeTokens parses a raw tokenBalances subtree.
func DecodeTokens(raw json.RawMessage) TokenBalances {
	var t TokenBalances
	_ = json.Unmarshal(raw, &t)
	return t
}

// DecodeApps parses a raw appBalances subtree.
func DecodeApps(raw json.RawMessage) AppBalances {
	var a AppBalances
	_ = json.Unmarshal(raw, &a)
	return a
}

// DecodeNFTs parses a raw nftBalances subtree.
func DecodeNFTs(raw json.RawMessage) NFTBalances {
	var n NFTBalances
	_ = json.Unmarshal(raw, &n)
	return n
}

// DecodeTxHistory parses a raw transactionHistoryV2 subtree.
func DecodeTxHistory(raw json.RawMessage) TxHistory {
	var h TxHistory
	_ = json.Unmarshal(raw, &h)
	return h
}

// FormatPortfolio renders the tokens + DeFi summary. short collapses the
// report to the grand total; onchain adds 24h price changes.
func FormatPortfolio(p Portfolio, short, onchain bool) string {
	totalTokens := p.TokenBalances.TotalBalanceUSD.Or(0)
	totalApps := p.AppBalances.TotalBalanceUSD.Or(0)
	total := totalTokens + totalApps

	if short {
		return format.Dollars(total)
	}

	lines := []string{
		fmt.Sprintf("Total: %s", format.Dollars(total)),
		fmt.Sprintf("  Tokens: %s | DeFi: %s", format.Dollars(totalTokens), format.Dollars(totalApps)),
	}

	if tokens := p.TokenBalances.ByToken.Edges; len(tokens) > 0 {
		lines = append(lines, "", "Tokens:")
		for _, edge := range truncateTokens(tokens, 10) {
			n := edge.Node
			if onchain {
				change := n.Change24h().Or(0)
				lines = append(lines, fmt.Sprintf("  %s: %s (%s%.1f%%) [%s]",
					symbolOr(n.Symbol), format.Dollars(n.BalanceUSD.Or(0)), format.Sign(change), change, n.Network.Name))
			} else {
				lines = append(lines, fmt.Sprintf("  %s: %s [%s]",
					symbolOr(n.Symbol), format.Dollars(n.BalanceUSD.Or(0)), n.Network.Name))
			}
		}
	}

	if apps := p.AppBalances.ByApp.Edges; len(apps) > 0 {
		lines = append(lines, "", "DeFi:")
		for _, edge := range truncateApps(apps, 5) {
			n := edge.Node
			lines = append(lines, fmt.Sprintf("  %s: %s [%s]",
				nameOr(n.App.DisplayName), format.Dollars(n.BalanceUSD.Or(0)), n.Network.Name))
		}
	}

	return strings.Join(lines, "\n")
}

// FormatTokens renders the token holdings list.
func FormatTokens(t TokenBalances, onchain bool) string {
	lines := []string{fmt.Sprintf("Token Value: %s (%d tokens)",
		format.Dollars(t.TotalBalanceUSD.Or(0)), t.ByToken.TotalCount)}

	if len(t.ByToken.Edges) > 0 {
		lines = append(lines, "")
		for _, edge := range t.ByToken.Edges {
			n := edge.Node
			entry := fmt.Sprintf("  %s: %s (%s) @ $%s",
				symbolOr(n.Symbol),
				format.Commas(n.Balance.Or(0), 4),
				format.Dollars(n.BalanceUSD.Or(0)),
				format.Num(n.Price, 4))
			if onchain {
				change := n.Change24h().Or(0)
				entry += fmt.Sprintf(" (%s%.1f%%)", format.Sign(change), change)
			}
			entry += fmt.Sprintf(" [%s]", n.Network.Name)
			lines = append(lines, entry)
		}
	}
	return strings.Join(lines, "\n")
}

// FormatApps renders the DeFi positions list.
func FormatApps(a AppBalances) string {
	lines := []string{fmt.Sprintf("DeFi Value: %s", format.Dollars(a.TotalBalanceUSD.Or(0)))}
	if len(a.ByApp.Edges) > 0 {
		lines = append(lines, "")
		for _, edge := range a.ByApp.Edges {
			n := edge.Node
			lines = append(lines, fmt.Sprintf("  %s: %s [%s]",
				nameOr(n.App.DisplayName), format.Dollars(n.BalanceUSD.Or(0)), n.Network.Name))
		}
	} else {
		lines = append(lines, "  No DeFi positions found")
	}
	return strings.Join(lines, "\n")
}

// FormatNFTs renders the NFT holdings list.
func FormatNFTs(n NFTBalances) string {
	count := n.TotalTokensOwned.Raw
	if count == "" {
		count = "0"
	}
	lines := []string{fmt.Sprintf("NFT Value: %s (%s tokens)",
		format.Dollars(n.TotalBalanceUSD.Or(0)), count)}

	if len(n.ByToken.Edges) > 0 {
		lines = append(lines, "")
		for _, edge := range n.ByToken.Edges {
			tok := edge.Node.Token
			tokenID := tok.TokenID
			if tokenID == "" {
				tokenID = "?"
			}
			lines = append(lines, fmt.Sprintf("  %s #%s: %s [%s]",
				tok.Collection.Name, tokenID,
				format.Dollars(tok.EstimatedValue.ValueUSD.Or(0)), tok.Collection.Network))
		}
	} else {
		lines = append(lines, "  No NFTs found")
	}
	return strings.Join(lines, "\n")
}

// FormatTransactions renders the recent activity list; entries without an
// interpreted description are dropped.
func FormatTransactions(h TxHistory) string {
	if len(h.Edges) == 0 {
		return "No recent transactions"
	}

	lines := []string{"Recent Transactions (30 days):"}
	for _, edge := range h.Edges {
		n := edge.Node
		desc := n.Interpretation.ProcessedDescription
		if desc == "" {
			continue
		}

		ts := ""
		if n.Transaction.Timestamp.OK {
			ts = time.UnixMilli(int64(n.Transaction.Timestamp.Val)).Format("2006-01-02 15:04")
		}
		hash := n.Transaction.Hash
		if len(hash) > 10 {
			hash = hash[:10]
		}
		lines = append(lines, fmt.Sprintf("  [%s] %s [%s] %s...", ts, desc, n.Transaction.Network, hash))
	}
	return strings.Join(lines, "\n")
}

// FormatPrice renders a single-token quote. Market cap and volume lines are
// dropped when the API had no value for them.
func FormatPrice(q PriceQuote) string {
	change := q.PriceChange24h.Or(0)
	lines := []string{
		fmt.Sprintf("%s (%s)", symbolOr(q.Symbol), q.Name),
		fmt.Sprintf("  Price: %s", format.Price(q.Price.Or(0))),
		fmt.Sprintf("  24h Change: %s%.2f%%", format.Sign(change), change),
	}
	if mcap := q.MarketCap.Or(0); mcap != 0 {
		lines = append(lines, fmt.Sprintf("  Market Cap: %s", format.CapUSD(mcap)))
	}
	if vol := q.Volume24h.Or(0); vol != 0 {
		lines = append(lines, fmt.Sprintf("  24h Volume: $%.2fM", vol/1e6))
	}
	return strings.Join(lines, "\n")
}

// FormatClaimables renders the extracted rewards list.
func FormatClaimables(r ClaimablesReport) string {
	lines := []string{fmt.Sprintf("Claimable Rewards: %s", format.Dollars(r.TotalBalanceUSD))}
	if len(r.Claimables) > 0 {
		lines = append(lines, "")
		for _, c := range r.Claimables {
			balance := c.Balance.Raw
			if c.Balance.OK {
				balance = format.Commas(c.Balance.Val, 4)
			}
			lines = append(lines, fmt.Sprintf("  %s: %s (%s) from %s [%s]",
				c.Symbol, balance, format.Dollars(c.BalanceUSD.Or(0)), c.App, c.Network))
		}
	} else {
		lines = append(lines, "  No claimable rewards found")
	}
	return strings.Join(lines, "\n")
}

func truncateTokens(edges []TokenEdge, limit int) []TokenEdge {
	if len(edges) > limit {
		return edges[:limit]
	}
	return edges
}

func truncateApps(edges []AppEdge, limit int) []AppEdge {
	if len(edges) > limit {
		return edges[:limit]
	}
	return edges
}

func symbolOr(s string) string {
	if s == "" {
		return "?"
	}
	return s
}

func nameOr(s string) string {
	if s == "" {
		return "?"
	}
	return s
}

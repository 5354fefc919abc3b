package zapper

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ggonzalez94/onchain-cli/internal/config"
	"github.com/ggonzalez94/onchain-cli/internal/format"
	"github.com/ggonzalez94/onchain-cli/internal/model"
)

// WalletPortfolio pairs one configured wallet with its portfolio payload, or
// with an {error: ...} stand-in when its fetch failed.
type WalletPortfolio struct {
	Wallet model.Wallet    `json:"wallet"`
	Data   json.RawMessage `json:"data"`
}

// PerWalletReport is the per-wallet portfolio breakdown. GrandTotal sums
// only the wallets that fetched successfully; FailedWallets says how many
// were left out, so a partial total is never silently presented as complete.
type PerWalletReport struct {
	Entries       []WalletPortfolio `json:"entries"`
	GrandTotal    float64           `json:"grandTotal"`
	FailedWallets int               `json:"failedWallets"`
}

// FetchPerWallet queries every configured wallet sequentially. One wallet's
// failure, soft or hard, is recorded on its entry and does not stop the
// remaining wallets.
func (c *Client) FetchPerWallet(ctx context.Context, wallets []model.Wallet, limit int) PerWalletReport {
	report := PerWalletReport{Entries: []WalletPortfolio{}}
	for _, w := range wallets {
		entry := WalletPortfolio{Wallet: w}
		data, err := c.FetchPortfolio(ctx, []string{config.NormalizeAddress(w.Address)}, limit)
		if err != nil {
			report.FailedWallets++
			buf, merr := json.Marshal(model.SoftError{Error: err.Error()})
			if merr != nil {
				buf = []byte(`{"error":"unrenderable failure"}`)
			}
			entry.Data = json.RawMessage(buf)
		} else {
			entry.Data = data
			p := DecodePortfolio(data)
			report.GrandTotal += p.TokenBalances.TotalBalanceUSD.Or(0) + p.AppBalances.TotalBalanceUSD.Or(0)
		}
		report.Entries = append(report.Entries, entry)
	}
	return report
}

// FormatPerWallet renders the breakdown plus the grand total line. When some
// wallets failed the total is explicitly marked partial.
func FormatPerWallet(r PerWalletReport, onchain bool) string {
	var lines []string
	for _, entry := range r.Entries {
		lines = append(lines, "", fmt.Sprintf("%s (%s)", entry.Wallet.Label, config.Abbreviate(entry.Wallet.Address)))

		var se model.SoftError
		if err := json.Unmarshal(entry.Data, &se); err == nil && se.Error != "" {
			lines = append(lines, fmt.Sprintf("Error: %s", se.Error))
			continue
		}
		lines = append(lines, FormatPortfolio(DecodePortfolio(entry.Data), false, onchain))
	}

	total := fmt.Sprintf("Grand Total: %s", format.Dollars(r.GrandTotal))
	if r.FailedWallets > 0 {
		total += fmt.Sprintf(" (partial: %d wallet(s) failed)", r.FailedWallets)
	}
	lines = append(lines, "", total)
	return strings.Join(lines, "\n")
}

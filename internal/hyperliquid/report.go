package hyperliquid

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ggonzalez94/onchain-cli/internal/format"
	"github.com/ggonzalez94/onchain-cli/internal/model"
)

// RenderMids prints symbol -> mid one per line. This is the one place where
// keys are re-emitted sorted; every other output keeps upstream order.
func RenderMids(raw json.RawMessage) string {
	mids := DecodeMids(raw)
	keys := make([]string, 0, len(mids))
	for k := range mids {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: %s", k, mids[k].Raw)
	}
	return b.String()
}

// RenderDash produces the scannable multi-address summary.
func RenderDash(d Dashboard, opts DashOptions) string {
	var b strings.Builder
	for i, acct := range d.Accounts {
		if i > 0 {
			if !opts.Compact {
				b.WriteByte('\n')
			}
			b.WriteByte('\n')
		}
		renderAccount(&b, acct, d.Mids, opts)
	}
	return b.String()
}

func renderAccount(b *strings.Builder, acct AccountDash, mids map[string]model.Flex, opts DashOptions) {
	fmt.Fprintf(b, "👤 %s", acct.User)

	if msg := sectionError(acct.Main); msg != "" {
		fmt.Fprintf(b, "\n📌 Perps (main): error: %s", msg)
	} else {
		st := DecodeState(acct.Main)
		av := pick(st.CrossMarginSummary.AccountValue, st.MarginSummary.AccountValue)
		ntl := pick(st.CrossMarginSummary.TotalNtlPos, st.MarginSummary.TotalNtlPos)
		used := pick(st.CrossMarginSummary.TotalMarginUsed, st.MarginSummary.TotalMarginUsed)
		fmt.Fprintf(b, "\n📌 Perps (main)\n• AV %s\n• Notional %s\n• Used %s\n• W/d %s",
			format.USD(av), format.USD(ntl), format.USD(used), format.USD(pick(st.Withdrawable, model.Flex{})))

		if aps := NonzeroPositions(st); len(aps) > 0 {
			b.WriteString("\n📍 Positions (main)")
			renderPositions(b, aps, mids, opts.LimitPositions)
		} else {
			b.WriteString("\n📍 Positions (main): none")
		}
	}

	for _, v := range acct.Venues {
		st := DecodeState(v.State)
		fmt.Fprintf(b, "\n🧬 Perps (dex: %s)\n• AV %s\n• Notional %s",
			v.Dex,
			format.USD(pick(st.MarginSummary.AccountValue, model.Flex{})),
			format.USD(pick(st.MarginSummary.TotalNtlPos, model.Flex{})))
		if aps := NonzeroPositions(st); len(aps) > 0 {
			renderPositions(b, aps, mids, opts.LimitPositions)
		}
		if opts.IncludeOrders {
			fmt.Fprintf(b, "\n  • Open orders: %d", v.OrderCount)
		}
	}

	if msg := sectionError(acct.Spot); msg != "" {
		fmt.Fprintf(b, "\n💰 Spot: error: %s", msg)
	} else if nz := NonzeroBalances(DecodeSpot(acct.Spot)); len(nz) > 0 {
		top := nz
		if opts.LimitSpot > 0 && len(top) > opts.LimitSpot {
			top = top[:opts.LimitSpot]
		}
		parts := make([]string, len(top))
		for i, bal := range top {
			parts[i] = fmt.Sprintf("%s %s", bal.Coin, format.Num(bal.Total, 6))
		}
		fmt.Fprintf(b, "\n💰 Spot: %s", strings.Join(parts, ", "))
	} else {
		b.WriteString("\n💰 Spot: none")
	}

	if opts.IncludeOrders {
		fmt.Fprintf(b, "\n🧾 Open orders (main): %d", acct.OrderCount)
	}
}

// renderPositions prints the first limit positions as returned, never
// re-sorted.
func renderPositions(b *strings.Builder, aps []AssetPosition, mids map[string]model.Flex, limit int) {
	if limit > 0 && len(aps) > limit {
		aps = aps[:limit]
	}
	for _, ap := range aps {
		p := ap.Position
		side := "Short"
		if p.Szi.Val > 0 {
			side = "Long"
		}

		mark := "~"
		if mid, ok := mids[baseCoin(p.Coin)]; ok && !mid.IsZero() {
			mark = format.Num(mid, 2)
		}
		liq := "-"
		if !p.LiquidationPx.IsZero() {
			liq = format.Num(p.LiquidationPx, 2)
		}

		fmt.Fprintf(b, "\n  • %s (%s %s) entry %s mark %s uPnL %s liq %s",
			p.Coin,
			side,
			format.Num(model.FlexFloat(math.Abs(p.Szi.Val)), 4),
			format.Num(p.EntryPx, 2),
			mark,
			format.USD(p.UnrealizedPnl),
			liq)
	}
}

// baseCoin strips a venue prefix: "dexname:COIN" -> "COIN".
func baseCoin(coin string) string {
	if i := strings.Index(coin, ":"); i >= 0 {
		return coin[i+1:]
	}
	return coin
}

// pick mirrors a two-level field fallback: the primary value when the field
// was present, else the secondary, else a literal "?" placeholder.
func pick(primary, fallback model.Flex) model.Flex {
	if !primary.IsZero() {
		return primary
	}
	if !fallback.IsZero() {
		return fallback
	}
	return model.Flex{Raw: "?"}
}

// sectionError extracts the message from an {error: ...} section stand-in.
func sectionError(raw json.RawMessage) string {
	var se model.SoftError
	if err := json.Unmarshal(raw, &se); err != nil {
		return ""
	}
	return se.Error
}

// Package format holds the display contracts shared by both tools. The exact
// output shapes here are behavioral, not cosmetic: downstream consumers parse
// them, so thresholds and fallbacks must not drift.
package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/ggonzalez94/onchain-cli/internal/model"
)

// USD abbreviates a dollar value: $X.XXM above one million, $X.XXK above one
// thousand, plain $X.XX otherwise. Unparseable input renders its raw string
// form unchanged.
func USD(f model.Flex) string {
	if !f.OK {
		return f.Raw
	}
	v := f.Val
	switch {
	case math.Abs(v) >= 1_000_000:
		return fmt.Sprintf("$%.2fM", v/1_000_000)
	case math.Abs(v) >= 1_000:
		return fmt.Sprintf("$%.2fK", v/1_000)
	default:
		return fmt.Sprintf("$%.2f", v)
	}
}

// Num renders a value with dp fixed decimal places, falling back to the raw
// string when the value never parsed.
func Num(f model.Flex, dp int) string {
	if !f.OK {
		return f.Raw
	}
	return fmt.Sprintf("%.*f", dp, f.Val)
}

// Commas renders v with thousands separators and dp fixed decimal places.
func Commas(v float64, dp int) string {
	pattern := "#,###."
	if dp <= 0 {
		pattern = "#,###"
	} else {
		pattern += strings.Repeat("#", dp)
	}
	return humanize.FormatFloat(pattern, v)
}

// Dollars is the comma-grouped two-decimal dollar form.
func Dollars(v float64) string {
	return "$" + Commas(v, 2)
}

// Sign prefixes positive changes with "+"; zero and negative values get no
// prefix (the negative sign is already part of the number).
func Sign(v float64) string {
	if v > 0 {
		return "+"
	}
	return ""
}

// CapUSD abbreviates a market-cap style value to billions or millions.
func CapUSD(v float64) string {
	if v > 1e9 {
		return fmt.Sprintf("$%.2fB", v/1e9)
	}
	return fmt.Sprintf("$%.2fM", v/1e6)
}

// Price uses six decimals below a dollar, two otherwise.
func Price(v float64) string {
	if v < 1 {
		return "$" + Commas(v, 6)
	}
	return "$" + Commas(v, 2)
}

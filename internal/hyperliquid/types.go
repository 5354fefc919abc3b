package hyperliquid

import (
	"encoding/json"
	"math"

	"github.com/ggonzalez94/onchain-cli/internal/model"
)

// sizeEpsilon is the cutoff below which a position size counts as zero.
// The boundary itself is excluded: |szi| must be strictly greater.
const sizeEpsilon = 1e-12

// ClearinghouseState is the typed view of a perps account on one venue.
type ClearinghouseState struct {
	MarginSummary      MarginSummary   `json:"marginSummary"`
	CrossMarginSummary MarginSummary   `json:"crossMarginSummary"`
	Withdrawable       model.Flex      `json:"withdrawable"`
	AssetPositions     []AssetPosition `json:"assetPositions"`
}

type MarginSummary struct {
	AccountValue    model.Flex `json:"accountValue"`
	TotalNtlPos     model.Flex `json:"totalNtlPos"`
	TotalMarginUsed model.Flex `json:"totalMarginUsed"`
}

type AssetPosition struct {
	Position Position `json:"position"`
}

type Position struct {
	Coin          string     `json:"coin"`
	Szi           model.Flex `json:"szi"`
	EntryPx       model.Flex `json:"entryPx"`
	UnrealizedPnl model.Flex `json:"unrealizedPnl"`
	LiquidationPx model.Flex `json:"liquidationPx"`
}

// SpotState is the typed view of spot balances.
type SpotState struct {
	Balances []SpotBalance `json:"balances"`
}

type SpotBalance struct {
	Coin  string     `json:"coin"`
	Total model.Flex `json:"total"`
}

// PerpDex is one entry of the venue list. Entries can be null or missing a
// name; those are skipped during fan-out.
type PerpDex struct {
	Name string `json:"name"`
}

// DecodeState parses a raw clearinghouseState payload. A payload that does
// not decode yields an empty state, mirroring how absent sections render.
func DecodeState(raw json.RawMessage) ClearinghouseState {
	var st ClearinghouseState
	_ = json.Unmarshal(raw, &st)
	return st
}

// DecodeSpot parses a raw spotClearinghouseState payload.
func DecodeSpot(raw json.RawMessage) SpotState {
	var st SpotState
	_ = json.Unmarshal(raw, &st)
	return st
}

// FanOutVenues extracts the secondary venue names from a raw perpDexs
// payload: the first element always denotes the primary venue and is skipped
// whatever it contains, and null or nameless entries are dropped. Order is
// the list's discovery order.
func FanOutVenues(raw json.RawMessage) []string {
	var entries []*PerpDex
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}
	if len(entries) < 2 {
		return nil
	}
	names := []string{}
	for _, e := range entries[1:] {
		if e == nil || e.Name == "" {
			continue
		}
		names = append(names, e.Name)
	}
	return names
}

// DecodeMids parses an allMids payload into symbol -> mid. Both the flat map
// form and the {"mids": {...}} wrapper occur in the wild.
func DecodeMids(raw json.RawMessage) map[string]model.Flex {
	var wrapped struct {
		Mids map[string]model.Flex `json:"mids"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Mids != nil {
		return wrapped.Mids
	}
	var flat map[string]model.Flex
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil
	}
	return flat
}

// NonzeroPositions filters an account's positions to those with a parseable
// size strictly above the epsilon cutoff, preserving API order.
func NonzeroPositions(st ClearinghouseState) []AssetPosition {
	out := []AssetPosition{}
	for _, ap := range st.AssetPositions {
		if !ap.Position.Szi.OK {
			continue
		}
		if math.Abs(ap.Position.Szi.Val) > sizeEpsilon {
			out = append(out, ap)
		}
	}
	return out
}

// NonzeroBalances filters spot balances to those with a parseable nonzero
// total, preserving API order.
func NonzeroBalances(st SpotState) []SpotBalance {
	out := []SpotBalance{}
	for _, b := range st.Balances {
		if b.Total.OK && b.Total.Val != 0 {
			out = append(out, b)
		}
	}
	return out
}

// CountArray reports the element count of a raw JSON array, zero otherwise.
func CountArray(raw json.RawMessage) int {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return 0
	}
	return len(elems)
}

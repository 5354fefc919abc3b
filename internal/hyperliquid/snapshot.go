package hyperliquid

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ggonzalez94/onchain-cli/internal/model"
)

// UserSnapshot bundles everything known about one address: primary perps
// state, secondary venue states, and spot balances. Raw sections keep the
// upstream key order for JSON output; a section that failed to fetch carries
// an {error: ...} payload instead, so one section's failure never hides the
// others.
type UserSnapshot struct {
	User  string          `json:"user"`
	Perps UserPerps       `json:"perps"`
	Spot  json.RawMessage `json:"spot"`
}

type UserPerps struct {
	Main json.RawMessage `json:"main"`
	Dexs []VenueState    `json:"dexs"`
}

// VenueState pairs a secondary venue name with the account state held there.
type VenueState struct {
	Dex   string          `json:"dex"`
	State json.RawMessage `json:"state"`
}

// BuildUserSnapshot fetches the account picture for one address. Primary
// state and spot balances are two independent calls whose failures are
// isolated per section. With allDexs set, the venue list is fetched once and
// every secondary venue is probed sequentially in discovery order; a venue
// whose probe fails, or that holds no position above the size cutoff, is
// dropped from the result.
func (c *Client) BuildUserSnapshot(ctx context.Context, user string, allDexs bool) (UserSnapshot, error) {
	user = strings.ToLower(user)
	snap := UserSnapshot{User: user}

	snap.Perps.Main = sectionOrError(c.ClearinghouseState(ctx, user, ""))
	snap.Perps.Dexs = []VenueState{}

	if allDexs {
		venuesRaw, err := c.PerpDexs(ctx)
		if err != nil {
			return UserSnapshot{}, err
		}
		for _, name := range FanOutVenues(venuesRaw) {
			st, err := c.ClearinghouseState(ctx, user, name)
			if err != nil {
				continue
			}
			if len(NonzeroPositions(DecodeState(st))) == 0 {
				continue
			}
			snap.Perps.Dexs = append(snap.Perps.Dexs, VenueState{Dex: name, State: st})
		}
	}

	snap.Spot = sectionOrError(c.SpotClearinghouseState(ctx, user))
	return snap, nil
}

// DashOptions control the scannable multi-address summary.
type DashOptions struct {
	MainOnly       bool
	IncludeOrders  bool
	LimitPositions int
	LimitSpot      int
	Compact        bool
}

// Dashboard is the aggregated input to the dash report: live mids plus one
// account entry per requested address.
type Dashboard struct {
	Mids     map[string]model.Flex `json:"-"`
	Accounts []AccountDash         `json:"accounts"`
}

// AccountDash is one address's slice of the dashboard.
type AccountDash struct {
	User       string          `json:"user"`
	Main       json.RawMessage `json:"main"`
	Venues     []VenueDash     `json:"venues"`
	Spot       json.RawMessage `json:"spot"`
	OrderCount int             `json:"openOrders"`
}

// VenueDash is a secondary venue that survived the inclusion filter: at
// least one nonzero position, or resting orders when those were requested.
type VenueDash struct {
	Dex        string          `json:"dex"`
	State      json.RawMessage `json:"state"`
	OrderCount int             `json:"openOrders"`
}

// BuildDashboard assembles the dashboard for one or more addresses. Mids and
// the venue list are fetched once and shared; per-address and per-venue
// fetches then run strictly sequentially. Per-venue failures are swallowed
// and the venue skipped, so partial backend unavailability degrades the
// report instead of aborting it.
func (c *Client) BuildDashboard(ctx context.Context, addresses []string, opts DashOptions) (Dashboard, error) {
	midsRaw, err := c.AllMids(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	dash := Dashboard{Mids: DecodeMids(midsRaw)}

	var venues []string
	if !opts.MainOnly {
		venuesRaw, err := c.PerpDexs(ctx)
		if err != nil {
			return Dashboard{}, err
		}
		venues = FanOutVenues(venuesRaw)
	}

	for _, addr := range addresses {
		addr = strings.ToLower(addr)
		acct := AccountDash{User: addr, Venues: []VenueDash{}}

		acct.Main = sectionOrError(c.ClearinghouseState(ctx, addr, ""))
		acct.Spot = sectionOrError(c.SpotClearinghouseState(ctx, addr))
		if opts.IncludeOrders {
			if oo, err := c.OpenOrders(ctx, addr, ""); err == nil {
				acct.OrderCount = CountArray(oo)
			}
		}

		for _, name := range venues {
			st, err := c.ClearinghouseState(ctx, addr, name)
			if err != nil {
				continue
			}
			v := VenueDash{Dex: name, State: st}
			if opts.IncludeOrders {
				if oo, err := c.OpenOrders(ctx, addr, name); err == nil {
					v.OrderCount = CountArray(oo)
				}
			}
			if len(NonzeroPositions(DecodeState(st))) == 0 && v.OrderCount == 0 {
				continue
			}
			acct.Venues = append(acct.Venues, v)
		}

		dash.Accounts = append(dash.Accounts, acct)
	}
	return dash, nil
}

// sectionOrError turns a fetch result into a renderable section: the raw
// payload on success, an {error: message} stand-in on failure.
func sectionOrError(raw json.RawMessage, err error) json.RawMessage {
	if err == nil {
		return raw
	}
	buf, merr := json.Marshal(model.SoftError{Error: err.Error()})
	if merr != nil {
		return json.RawMessage(`{"error":"unrenderable failure"}`)
	}
	return json.RawMessage(buf)
}

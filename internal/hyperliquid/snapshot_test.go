package hyperliquid

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// infoStub serves the info endpoint from a per-operation response table and
// records the order of requests it saw.
type infoStub struct {
	mu        sync.Mutex
	requests  []string
	responses map[string]string
	failures  map[string]int
}

func (s *infoStub) handler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type string `json:"type"`
		User string `json:"user"`
		Dex  string `json:"dex"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	key := req.Type
	if req.Dex != "" {
		key += ":" + req.Dex
	}

	s.mu.Lock()
	s.requests = append(s.requests, key)
	s.mu.Unlock()

	if status, ok := s.failures[key]; ok {
		http.Error(w, "venue down", status)
		return
	}
	body, ok := s.responses[key]
	if !ok {
		body = "null"
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func (s *infoStub) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func newStubClient(t *testing.T, stub *infoStub) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(stub.handler))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, nil)
}

const stateWithBTC = `{
	"marginSummary": {"accountValue": "1000", "totalNtlPos": "500", "totalMarginUsed": "100"},
	"withdrawable": "900",
	"assetPositions": [
		{"position": {"coin": "BTC", "szi": "0.5", "entryPx": "60000"}},
		{"position": {"coin": "ETH", "szi": "0", "entryPx": "3000"}}
	]
}`

const stateEmpty = `{"marginSummary": {"accountValue": "0"}, "assetPositions": []}`

func TestNonzeroPositionsFiltersByEpsilon(t *testing.T) {
	cases := []struct {
		szi  string
		want bool
	}{
		{"0.5", true},
		{"0", false},
		{"1e-12", false},
		{"1.0000001e-12", true},
		{"-1.0000001e-12", true},
		{"not-a-number", false},
	}
	for _, tc := range cases {
		raw := `{"assetPositions":[{"position":{"coin":"X","szi":"` + tc.szi + `"}}]}`
		got := NonzeroPositions(DecodeState(json.RawMessage(raw)))
		if (len(got) == 1) != tc.want {
			t.Errorf("szi %s: included=%v, want %v", tc.szi, len(got) == 1, tc.want)
		}
	}
}

func TestNonzeroPositionsScenario(t *testing.T) {
	aps := NonzeroPositions(DecodeState(json.RawMessage(stateWithBTC)))
	if len(aps) != 1 || aps[0].Position.Coin != "BTC" {
		t.Fatalf("want exactly the BTC position, got %+v", aps)
	}
}

func TestFanOutVenuesSkipsFirstEntry(t *testing.T) {
	raw := json.RawMessage(`[{"name":"primary"},{"name":"alpha"},null,{"name":"beta"},{"nonsense":true}]`)
	got := FanOutVenues(raw)
	want := []string{"alpha", "beta"}
	if len(got) != len(want) {
		t.Fatalf("venues = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("venues = %v, want %v", got, want)
		}
	}

	// The first element is skipped whatever it contains.
	if got := FanOutVenues(json.RawMessage(`[{"name":"looks-secondary"},{"name":"only"}]`)); len(got) != 1 || got[0] != "only" {
		t.Fatalf("venues = %v, want [only]", got)
	}
}

func TestBuildUserSnapshotFanOut(t *testing.T) {
	stub := &infoStub{
		responses: map[string]string{
			"clearinghouseState":        stateWithBTC,
			"perpDexs":                  `[{"name":"primary"},{"name":"alpha"},{"name":"beta"}]`,
			"clearinghouseState:alpha":  stateWithBTC,
			"clearinghouseState:beta":   stateEmpty,
			"spotClearinghouseState":    `{"balances":[{"coin":"USDC","total":"12.5"}]}`,
		},
	}
	c := newStubClient(t, stub)

	snap, err := c.BuildUserSnapshot(context.Background(), "0xabc", true)
	if err != nil {
		t.Fatalf("BuildUserSnapshot: %v", err)
	}
	if len(snap.Perps.Dexs) != 1 || snap.Perps.Dexs[0].Dex != "alpha" {
		t.Fatalf("dexs = %+v, want only alpha (beta has no positions)", snap.Perps.Dexs)
	}

	for _, key := range stub.seen() {
		if key == "clearinghouseState:primary" {
			t.Fatal("primary venue must never be probed by fan-out")
		}
	}
}

func TestBuildUserSnapshotVenueFailureSwallowed(t *testing.T) {
	stub := &infoStub{
		responses: map[string]string{
			"clearinghouseState":       stateWithBTC,
			"perpDexs":                 `[{"name":"primary"},{"name":"down"},{"name":"up"}]`,
			"clearinghouseState:up":    stateWithBTC,
			"spotClearinghouseState":   `{"balances":[]}`,
		},
		failures: map[string]int{"clearinghouseState:down": http.StatusBadGateway},
	}
	c := newStubClient(t, stub)

	snap, err := c.BuildUserSnapshot(context.Background(), "0xabc", true)
	if err != nil {
		t.Fatalf("BuildUserSnapshot: %v", err)
	}
	if len(snap.Perps.Dexs) != 1 || snap.Perps.Dexs[0].Dex != "up" {
		t.Fatalf("dexs = %+v, want the venue after the failing one", snap.Perps.Dexs)
	}

	probedUp := false
	for _, key := range stub.seen() {
		if key == "clearinghouseState:up" {
			probedUp = true
		}
	}
	if !probedUp {
		t.Fatal("fan-out stopped after the failing venue instead of continuing")
	}
}

func TestBuildUserSnapshotSectionIsolation(t *testing.T) {
	stub := &infoStub{
		responses: map[string]string{
			"clearinghouseState": stateWithBTC,
		},
		failures: map[string]int{"spotClearinghouseState": http.StatusServiceUnavailable},
	}
	c := newStubClient(t, stub)

	snap, err := c.BuildUserSnapshot(context.Background(), "0xabc", false)
	if err != nil {
		t.Fatalf("spot failure must not fail the snapshot: %v", err)
	}
	if msg := sectionError(snap.Spot); msg == "" {
		t.Fatal("spot section should carry an error payload")
	}
	if msg := sectionError(snap.Perps.Main); msg != "" {
		t.Fatalf("perps section unexpectedly errored: %s", msg)
	}
}

func TestBuildDashboardVenueInclusion(t *testing.T) {
	stub := &infoStub{
		responses: map[string]string{
			"allMids":                   `{"BTC":"60100.5"}`,
			"perpDexs":                  `[{"name":"primary"},{"name":"quiet"},{"name":"busy"},{"name":"orders-only"}]`,
			"clearinghouseState":        stateWithBTC,
			"clearinghouseState:quiet":  stateEmpty,
			"clearinghouseState:busy":   stateWithBTC,
			"clearinghouseState:orders-only": stateEmpty,
			"spotClearinghouseState":    `{"balances":[]}`,
			"openOrders":                `[]`,
			"openOrders:orders-only":    `[{"oid":1}]`,
			"openOrders:quiet":          `[]`,
			"openOrders:busy":           `[]`,
		},
	}
	c := newStubClient(t, stub)

	dash, err := c.BuildDashboard(context.Background(), []string{"0xabc"}, DashOptions{IncludeOrders: true, LimitPositions: 12, LimitSpot: 12})
	if err != nil {
		t.Fatalf("BuildDashboard: %v", err)
	}
	if len(dash.Accounts) != 1 {
		t.Fatalf("accounts = %d, want 1", len(dash.Accounts))
	}
	venues := dash.Accounts[0].Venues
	if len(venues) != 2 || venues[0].Dex != "busy" || venues[1].Dex != "orders-only" {
		t.Fatalf("venues = %+v, want busy then orders-only in discovery order", venues)
	}
}

func TestBuildDashboardWithoutOrdersExcludesQuietVenues(t *testing.T) {
	stub := &infoStub{
		responses: map[string]string{
			"allMids":                  `{}`,
			"perpDexs":                 `[{"name":"primary"},{"name":"busy"},{"name":"quiet"}]`,
			"clearinghouseState":       stateEmpty,
			"clearinghouseState:busy":  stateWithBTC,
			"clearinghouseState:quiet": stateEmpty,
			"spotClearinghouseState":   `{"balances":[]}`,
		},
	}
	c := newStubClient(t, stub)

	dash, err := c.BuildDashboard(context.Background(), []string{"0xabc"}, DashOptions{})
	if err != nil {
		t.Fatalf("BuildDashboard: %v", err)
	}
	venues := dash.Accounts[0].Venues
	if len(venues) != 1 || venues[0].Dex != "busy" {
		t.Fatalf("venues = %+v, want only the venue with a position", venues)
	}
}

func TestCandleSnapshotTrailingLimit(t *testing.T) {
	stub := &infoStub{
		responses: map[string]string{
			"candleSnapshot": `[{"t":1},{"t":2},{"t":3},{"t":4}]`,
		},
	}
	c := newStubClient(t, stub)

	raw, err := c.CandleSnapshot(context.Background(), "btc", "15m", 0, 0, 2)
	if err != nil {
		t.Fatalf("CandleSnapshot: %v", err)
	}
	if got := string(raw); got != `[{"t":3},{"t":4}]` {
		t.Fatalf("candles = %s, want trailing two entries", got)
	}
}

func TestRenderMidsSortsKeys(t *testing.T) {
	out := RenderMids(json.RawMessage(`{"ZZZ":"2","AAA":"1","MMM":"1.5"}`))
	want := "AAA: 1\nMMM: 1.5\nZZZ: 2"
	if out != want {
		t.Fatalf("RenderMids = %q, want %q", out, want)
	}
}

func TestRenderDashFormatsSections(t *testing.T) {
	mids := DecodeMids(json.RawMessage(`{"BTC":"61000"}`))
	dash := Dashboard{
		Mids: mids,
		Accounts: []AccountDash{{
			User: "0xabc",
			Main: json.RawMessage(stateWithBTC),
			Spot: json.RawMessage(`{"balances":[{"coin":"USDC","total":"12.5"}]}`),
		}},
	}
	out := RenderDash(dash, DashOptions{LimitPositions: 12, LimitSpot: 12})

	for _, want := range []string{
		"👤 0xabc",
		"• AV $1.00K",
		"• W/d $900.00",
		"📍 Positions (main)",
		"• BTC (Long 0.5000) entry 60000.00 mark 61000.00",
		"💰 Spot: USDC 12.500000",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dash output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "ETH") {
		t.Errorf("zero-size position leaked into the report:\n%s", out)
	}
}

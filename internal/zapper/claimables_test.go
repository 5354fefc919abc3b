package zapper

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

const claimablesTree = `{
	"appBalances": {
		"byApp": {
			"edges": [
				{
					"node": {
						"app": {"displayName": "LenderOne"},
						"network": {"name": "Ethereum"},
						"positionBalances": {
							"edges": [
								{
									"node": {
										"tokens": [
											{"type": "CLAIMABLE_REWARD", "symbol": "ARB", "balance": 12.5, "balanceUSD": 0.02},
											{"type": "claimable", "symbol": "DUST", "balance": 0.001, "balanceUSD": 0.005},
											{"type": "supplied", "symbol": "USDC", "balance": 1000, "balanceUSD": 1000}
										]
									}
								}
							]
						}
					}
				},
				{
					"node": {
						"app": {"displayName": "FarmTwo"},
						"network": {"name": "Base"},
						"positionBalances": {
							"edges": [
								{
									"node": {
										"tokens": [
											{"type": "reward-token", "symbol": "COMP", "balance": "3.25", "balanceUSD": 150.75}
										]
									}
								}
							]
						}
					}
				}
			]
		}
	}
}`

func TestExtractClaimables(t *testing.T) {
	report := ExtractClaimables(json.RawMessage(claimablesTree))

	if len(report.Claimables) != 2 {
		t.Fatalf("claimables = %+v, want ARB and COMP", report.Claimables)
	}
	// Traversal order, not value order.
	if report.Claimables[0].Symbol != "ARB" || report.Claimables[1].Symbol != "COMP" {
		t.Fatalf("order = %s, %s; want ARB then COMP", report.Claimables[0].Symbol, report.Claimables[1].Symbol)
	}
	if report.Claimables[0].App != "LenderOne" || report.Claimables[0].Network != "Ethereum" {
		t.Errorf("ARB attribution = %+v", report.Claimables[0])
	}

	want := 0.02 + 150.75
	if math.Abs(report.TotalBalanceUSD-want) > 1e-9 {
		t.Errorf("total = %v, want exact sum %v", report.TotalBalanceUSD, want)
	}
}

func TestExtractClaimablesDustAndTagFilters(t *testing.T) {
	cases := []struct {
		name  string
		token string
		want  bool
	}{
		{"above dust", `{"type": "claimable", "symbol": "A", "balanceUSD": 0.02}`, true},
		{"at dust threshold", `{"type": "claimable", "symbol": "A", "balanceUSD": 0.01}`, false},
		{"below dust", `{"type": "claimable", "symbol": "A", "balanceUSD": 0.005}`, false},
		{"uppercase tag", `{"type": "CLAIMABLE_REWARD", "symbol": "A", "balanceUSD": 5}`, true},
		{"reward substring", `{"type": "vested-reward", "symbol": "A", "balanceUSD": 5}`, true},
		{"unrelated tag", `{"type": "supplied", "symbol": "A", "balanceUSD": 5}`, false},
		{"unparseable value", `{"type": "claimable", "symbol": "A", "balanceUSD": "n/a"}`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := `{"appBalances":{"byApp":{"edges":[{"node":{
				"app":{"displayName":"X"},"network":{"name":"Y"},
				"positionBalances":{"edges":[{"node":{"tokens":[` + tc.token + `]}}]}}}]}}}`
			report := ExtractClaimables(json.RawMessage(raw))
			if (len(report.Claimables) == 1) != tc.want {
				t.Errorf("included=%v, want %v", len(report.Claimables) == 1, tc.want)
			}
		})
	}
}

func TestExtractClaimablesEmptyTree(t *testing.T) {
	report := ExtractClaimables(json.RawMessage(`{}`))
	if report.TotalBalanceUSD != 0 || len(report.Claimables) != 0 {
		t.Fatalf("empty tree should yield an empty report, got %+v", report)
	}
	report = ExtractClaimables(nil)
	if len(report.Claimables) != 0 {
		t.Fatalf("nil payload should yield an empty report, got %+v", report)
	}
}

func TestFormatClaimables(t *testing.T) {
	report := ExtractClaimables(json.RawMessage(claimablesTree))
	out := FormatClaimables(report)

	for _, want := range []string{
		"Claimable Rewards: $150.77",
		"ARB: 12.5000 ($0.02) from LenderOne [Ethereum]",
		"COMP: 3.2500 ($150.75) from FarmTwo [Base]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	empty := FormatClaimables(ClaimablesReport{})
	if !strings.Contains(empty, "No claimable rewards found") {
		t.Errorf("empty report output: %s", empty)
	}
}

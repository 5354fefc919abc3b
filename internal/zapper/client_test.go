package zapper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	clierr "github.com/ggonzalez94/onchain-cli/internal/errors"
	"github.com/ggonzalez94/onchain-cli/internal/model"
)

func newTestClient(t *testing.T, apiKey string, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, apiKey, 5*time.Second, nil)
}

func TestQueryMissingAPIKeyIsSoft(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be sent without an API key")
	})
	_, err := c.Query(context.Background(), "query {}", nil)
	if !clierr.IsSoft(err) {
		t.Fatalf("err = %v, want soft", err)
	}
	if msg := clierr.SoftMessage(err); !strings.Contains(msg, "No API key") {
		t.Errorf("message = %q", msg)
	}
}

func TestQuerySendsKeyHeaderAndBody(t *testing.T) {
	var gotKey string
	var gotBody graphqlRequest
	c := newTestClient(t, "k-123", func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-zapper-api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"data": {"ok": true}}`))
	})

	data, err := c.Query(context.Background(), "query Q {}", map[string]any{"addresses": []string{"0xabc"}})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if gotKey != "k-123" {
		t.Errorf("api key header = %q", gotKey)
	}
	if gotBody.Query != "query Q {}" {
		t.Errorf("query = %q", gotBody.Query)
	}
	if string(data) != `{"ok": true}` {
		t.Errorf("data = %s", data)
	}
}

func TestQueryGraphQLErrorsAreSoft(t *testing.T) {
	c := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors": [{"message": "rate limited"}], "data": null}`))
	})
	_, err := c.Query(context.Background(), "q", nil)
	if !clierr.IsSoft(err) {
		t.Fatalf("err = %v, want soft", err)
	}
	if msg := clierr.SoftMessage(err); msg != "rate limited" {
		t.Errorf("message = %q", msg)
	}
}

func TestQueryForbiddenIsSoft(t *testing.T) {
	c := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	})
	_, err := c.Query(context.Background(), "q", nil)
	if !clierr.IsSoft(err) {
		t.Fatalf("err = %v, want soft", err)
	}
	if msg := clierr.SoftMessage(err); !strings.Contains(msg, "paid API tier") {
		t.Errorf("message = %q", msg)
	}
}

func TestQueryServerErrorIsHard(t *testing.T) {
	c := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	_, err := c.Query(context.Background(), "q", nil)
	if clierr.IsSoft(err) {
		t.Fatal("500 must stay a hard error")
	}
	e, ok := clierr.As(err)
	if !ok || e.Kind != clierr.KindRemoteStatus || e.StatusCode != 500 {
		t.Fatalf("err = %v, want remote status 500", err)
	}
}

func TestSubtreePreservesKeyOrder(t *testing.T) {
	raw := json.RawMessage(`{"portfolioV2": {"tokenBalances": {"zeta": 1, "alpha": 2}}}`)
	got := subtree(raw, "portfolioV2", "tokenBalances")
	if string(got) != `{"zeta": 1, "alpha": 2}` {
		t.Fatalf("subtree = %s, want verbatim bytes", got)
	}
	if subtree(raw, "portfolioV2", "missing") != nil {
		t.Fatal("missing path should yield nil")
	}
}

func TestFetchPriceUnknownSymbolIsSoft(t *testing.T) {
	c := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		t.Error("unknown symbol must not reach the API")
	})
	_, err := c.FetchPrice(context.Background(), "NOPE")
	if !clierr.IsSoft(err) {
		t.Fatalf("err = %v, want soft", err)
	}
	if msg := clierr.SoftMessage(err); !strings.Contains(msg, "Supported:") {
		t.Errorf("message = %q", msg)
	}
}

func TestFetchPerWalletPartialTotals(t *testing.T) {
	portfolio := `{"data": {"portfolioV2": {
		"tokenBalances": {"totalBalanceUSD": 100.5},
		"appBalances": {"totalBalanceUSD": 50}
	}}}`
	calls := 0
	c := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			_, _ = w.Write([]byte(`{"errors": [{"message": "indexer down"}]}`))
			return
		}
		_, _ = w.Write([]byte(portfolio))
	})

	wallets := []model.Wallet{
		{Label: "cold", Address: "0x1111111111111111111111111111111111111111"},
		{Label: "hot", Address: "0x2222222222222222222222222222222222222222"},
	}
	report := c.FetchPerWallet(context.Background(), wallets, 10)

	if report.FailedWallets != 1 {
		t.Fatalf("failed = %d, want 1", report.FailedWallets)
	}
	if report.GrandTotal != 150.5 {
		t.Fatalf("grand total = %v, want 150.5 from the surviving wallet only", report.GrandTotal)
	}
	if len(report.Entries) != 2 {
		t.Fatalf("entries = %d, want both wallets present", len(report.Entries))
	}

	out := FormatPerWallet(report, false)
	for _, want := range []string{
		"cold (0x111111...111111)",
		"Error: indexer down",
		"hot (0x222222...222222)",
		"Grand Total: $150.50 (partial: 1 wallet(s) failed)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

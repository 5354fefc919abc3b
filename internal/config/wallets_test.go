package config

import (
	"os"
	"path/filepath"
	"testing"

	clierr "github.com/ggonzalez94/onchain-cli/internal/errors"
)

func writeBook(t *testing.T, body string) AddressBook {
	t.Helper()
	path := filepath.Join(t.TempDir(), "addresses.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write book: %v", err)
	}
	return LoadAddressBook(path)
}

func TestResolveLabelCaseInsensitive(t *testing.T) {
	book := writeBook(t, `{"wallets":[{"label":"main","address":"0xABC0000000000000000000000000000000000abc"}]}`)
	got, err := book.Resolve("MAIN")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(got) != 1 || got[0] != "0xabc0000000000000000000000000000000000abc" {
		t.Fatalf("Resolve = %v", got)
	}
}

func TestResolveUnknownLabelIsConfigError(t *testing.T) {
	book := writeBook(t, `{"wallets":[{"label":"main","address":"0xabc0000000000000000000000000000000000abc"}]}`)
	_, err := book.Resolve("unknown")
	if err == nil {
		t.Fatal("expected error for unknown label")
	}
	cErr, ok := clierr.As(err)
	if !ok || cErr.Kind != clierr.KindConfig {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestResolveLiteralAddressBypassesBook(t *testing.T) {
	book := AddressBook{}
	got, err := book.Resolve("0xDEAD0000000000000000000000000000000000aa")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got[0] != "0xdead0000000000000000000000000000000000aa" {
		t.Fatalf("address not normalized: %v", got)
	}

	// Non-checksummable 0x input flows through untouched.
	got, err = book.Resolve("0xshort")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got[0] != "0xshort" {
		t.Fatalf("expected passthrough, got %v", got)
	}
}

func TestResolveEmptyInputReturnsAllWallets(t *testing.T) {
	book := writeBook(t, `{"wallets":[
		{"label":"a","address":"0x1110000000000000000000000000000000000111"},
		{"label":"b","address":"0x2220000000000000000000000000000000000222"}]}`)
	got, err := book.Resolve("")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected both wallets, got %v", got)
	}
}

func TestResolveEmptyBookIsConfigError(t *testing.T) {
	book := LoadAddressBook(filepath.Join(t.TempDir(), "missing.json"))
	if len(book.Wallets) != 0 || book.APIKey != "" {
		t.Fatalf("missing file must load as empty book: %+v", book)
	}
	if _, err := book.Resolve(""); err == nil {
		t.Fatal("expected error with no wallets and no address")
	}
}

func TestLoadAddressBookAPIKey(t *testing.T) {
	book := writeBook(t, `{"apiKey":"k-123","wallets":[]}`)
	if book.APIKey != "k-123" {
		t.Fatalf("apiKey = %q", book.APIKey)
	}
}

func TestAbbreviate(t *testing.T) {
	if got := Abbreviate("0x1234567890abcdef1234567890abcdef12345678"); got != "0x123456...345678" {
		t.Fatalf("Abbreviate = %q", got)
	}
	if got := Abbreviate("0xshort"); got != "0xshort" {
		t.Fatalf("short input must pass through, got %q", got)
	}
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	clierr "github.com/ggonzalez94/onchain-cli/internal/errors"
	"github.com/ggonzalez94/onchain-cli/internal/model"
)

// AddressBook is the local wallet registry: {apiKey?, wallets:[{label,address}]}.
// It is read-only; a missing file is an empty book, not an error.
type AddressBook struct {
	APIKey  string         `json:"apiKey"`
	Wallets []model.Wallet `json:"wallets"`
	Path    string         `json:"-"`
}

// DefaultAddressBookPath is ~/.config/folio/addresses.json (XDG aware).
func DefaultAddressBookPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "folio", "addresses.json"), nil
}

// LoadAddressBook reads the book at path. Unreadable or malformed files
// degrade to an empty book, matching the tolerance of the config surface.
func LoadAddressBook(path string) AddressBook {
	book := AddressBook{Path: path}
	buf, err := os.ReadFile(path)
	if err != nil {
		return book
	}
	if err := json.Unmarshal(buf, &book); err != nil {
		return AddressBook{Path: path}
	}
	book.Path = path
	return book
}

// Resolve maps a CLI address-or-label argument to concrete addresses.
//
// A literal 0x input bypasses the book (checksummable EVM addresses are
// normalized to lowercase, anything else is passed through untouched). A
// non-empty label is matched case-insensitively; an unknown label is a
// config error. An empty input returns every configured wallet.
func (b AddressBook) Resolve(input string) ([]string, error) {
	input = strings.TrimSpace(input)
	if strings.HasPrefix(input, "0x") {
		return []string{NormalizeAddress(input)}, nil
	}

	if input != "" {
		for _, w := range b.Wallets {
			if strings.EqualFold(w.Label, input) {
				return []string{NormalizeAddress(w.Address)}, nil
			}
		}
		return nil, clierr.New(clierr.KindConfig, fmt.Sprintf("wallet %q not found in config", input))
	}

	if len(b.Wallets) > 0 {
		out := make([]string, 0, len(b.Wallets))
		for _, w := range b.Wallets {
			out = append(out, NormalizeAddress(w.Address))
		}
		return out, nil
	}

	return nil, clierr.New(clierr.KindConfig,
		fmt.Sprintf("no address provided and no wallets configured (add wallets to %s or pass an address)", b.Path))
}

// NormalizeAddress lowercases valid EVM hex addresses; other inputs are kept
// verbatim so non-EVM identifiers still flow through to the API.
func NormalizeAddress(input string) string {
	trimmed := strings.TrimSpace(input)
	if common.IsHexAddress(trimmed) {
		return strings.ToLower(common.HexToAddress(trimmed).Hex())
	}
	return trimmed
}

// Abbreviate shortens an address for display: first 8 and last 6 characters.
func Abbreviate(address string) string {
	if len(address) <= 14 {
		return address
	}
	return address[:8] + "..." + address[len(address)-6:]
}

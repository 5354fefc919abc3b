// Package folioapp wires the folio CLI: command tree, configuration, wallet
// resolution, and output plumbing around the zapper client.
package folioapp

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ggonzalez94/onchain-cli/internal/cache"
	"github.com/ggonzalez94/onchain-cli/internal/config"
	clierr "github.com/ggonzalez94/onchain-cli/internal/errors"
	"github.com/ggonzalez94/onchain-cli/internal/log"
	"github.com/ggonzalez94/onchain-cli/internal/model"
	"github.com/ggonzalez94/onchain-cli/internal/out"
	"github.com/ggonzalez94/onchain-cli/internal/schema"
	"github.com/ggonzalez94/onchain-cli/internal/version"
	"github.com/ggonzalez94/onchain-cli/internal/zapper"
)

const cliName = "folio"

// apiKeyEnv is checked before any config file, matching how the upstream API
// documents its key handling.
const apiKeyEnv = "ZAPPER_API_KEY"

type Runner struct {
	stdout io.Writer
	stderr io.Writer
}

func NewRunner() *Runner {
	return NewRunnerWithWriters(os.Stdout, os.Stderr)
}

func NewRunnerWithWriters(stdout, stderr io.Writer) *Runner {
	return &Runner{stdout: stdout, stderr: stderr}
}

type runtimeState struct {
	runner   *Runner
	flags    config.GlobalFlags
	settings config.Settings
	book     config.AddressBook
	client   *zapper.Client
	store    *cache.Store
	root     *cobra.Command
}

func (r *Runner) Run(args []string) int {
	state := &runtimeState{runner: r}
	root := state.newRootCommand()
	state.root = root
	root.SetArgs(args)
	root.SetOut(r.stdout)
	root.SetErr(r.stderr)
	root.SilenceUsage = true
	root.SilenceErrors = true

	err := root.Execute()
	if state.store != nil {
		_ = state.store.Close()
	}
	if err == nil {
		return 0
	}
	fmt.Fprintf(r.stderr, "ERROR: %s\n", err.Error())
	return clierr.ExitCode(err)
}

func (s *runtimeState) newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   cliName,
		Short: "DeFi portfolio client (tokens, apps, NFTs, rewards)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			settings, err := config.Load(cliName, config.Settings{
				BaseURL:      zapper.DefaultGraphQLURL,
				Timeout:      30 * time.Second,
				CacheEnabled: true,
			}, s.flags)
			if err != nil {
				return clierr.Wrap(clierr.KindConfig, "load configuration", err)
			}
			s.settings = settings

			walletsPath := settings.WalletsPath
			if walletsPath == "" {
				walletsPath, err = config.DefaultAddressBookPath()
				if err != nil {
					return clierr.Wrap(clierr.KindConfig, "resolve address book path", err)
				}
			}
			s.book = config.LoadAddressBook(walletsPath)

			apiKey := os.Getenv(apiKeyEnv)
			if apiKey == "" {
				apiKey = settings.APIKey
			}
			if apiKey == "" {
				apiKey = s.book.APIKey
			}
			s.client = zapper.NewClient(settings.BaseURL, apiKey, settings.Timeout, log.New(settings.Verbose))
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&s.flags.ConfigPath, "config", "", "Path to config file")
	flags.StringVar(&s.flags.WalletsPath, "wallets", "", "Path to the address book")
	flags.StringVar(&s.flags.BaseURL, "base-url", "", "GraphQL endpoint URL")
	flags.IntVar(&s.flags.Timeout, "timeout", 0, "HTTP timeout seconds")
	flags.BoolVar(&s.flags.JSON, "json", false, "Output raw JSON")
	flags.BoolVar(&s.flags.NoCache, "no-cache", false, "Bypass the response cache")
	flags.BoolVar(&s.flags.Verbose, "verbose", false, "Log request diagnostics to stderr")

	cmd.AddCommand(
		s.newPortfolioCommand(),
		s.newTokensCommand(),
		s.newAppsCommand(),
		s.newNFTsCommand(),
		s.newTxCommand(),
		s.newPriceCommand(),
		s.newClaimablesCommand(),
		s.newWalletsCommand(),
		s.newSchemaCommand(),
		s.newVersionCommand(),
	)
	return cmd
}

func (s *runtimeState) newPortfolioCommand() *cobra.Command {
	var short, perWallet, show24h bool
	var limit int
	cmd := &cobra.Command{
		Use:   "portfolio [address|label]",
		Short: "Portfolio summary (tokens + DeFi)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if perWallet {
				if len(s.book.Wallets) == 0 {
					return clierr.New(clierr.KindConfig, "no wallets configured for --per-wallet")
				}
				report := s.client.FetchPerWallet(cmd.Context(), s.book.Wallets, limit)
				if s.settings.OutputMode == "json" {
					return out.JSON(s.runner.stdout, report)
				}
				return out.Text(s.runner.stdout, zapper.FormatPerWallet(report, show24h))
			}

			addresses, err := s.resolve(args)
			if err != nil {
				return err
			}
			raw, err := s.client.FetchPortfolio(cmd.Context(), addresses, limit)
			if err != nil {
				return s.emitOrFail(err)
			}
			if s.settings.OutputMode == "json" {
				return out.RawJSON(s.runner.stdout, raw)
			}
			return out.Text(s.runner.stdout, zapper.FormatPortfolio(zapper.DecodePortfolio(raw), short, show24h))
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Show only total value")
	cmd.Flags().BoolVar(&perWallet, "per-wallet", false, "Show each configured wallet")
	cmd.Flags().BoolVar(&show24h, "24h", false, "Show 24h price changes")
	cmd.Flags().IntVar(&limit, "limit", 10, "Max tokens to show")
	return cmd
}

func (s *runtimeState) newTokensCommand() *cobra.Command {
	var show24h bool
	var limit int
	cmd := &cobra.Command{
		Use:   "tokens [address|label]",
		Short: "Token holdings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addresses, err := s.resolve(args)
			if err != nil {
				return err
			}
			raw, err := s.client.FetchTokens(cmd.Context(), addresses, limit)
			if err != nil {
				return s.emitOrFail(err)
			}
			if s.settings.OutputMode == "json" {
				return out.RawJSON(s.runner.stdout, raw)
			}
			return out.Text(s.runner.stdout, zapper.FormatTokens(zapper.DecodeTokens(raw), show24h))
		},
	}
	cmd.Flags().BoolVar(&show24h, "24h", false, "Show 24h price changes")
	cmd.Flags().IntVar(&limit, "limit", 20, "Max tokens to show")
	return cmd
}

func (s *runtimeState) newAppsCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "apps [address|label]",
		Short: "DeFi positions (LPs, lending, staking)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addresses, err := s.resolve(args)
			if err != nil {
				return err
			}
			raw, err := s.client.FetchApps(cmd.Context(), addresses, limit)
			if err != nil {
				return s.emitOrFail(err)
			}
			if s.settings.OutputMode == "json" {
				return out.RawJSON(s.runner.stdout, raw)
			}
			return out.Text(s.runner.stdout, zapper.FormatApps(zapper.DecodeApps(raw)))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Max apps to show")
	return cmd
}

func (s *runtimeState) newNFTsCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "nfts [address|label]",
		Short: "NFT holdings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addresses, err := s.resolve(args)
			if err != nil {
				return err
			}
			raw, err := s.client.FetchNFTs(cmd.Context(), addresses, limit)
			if err != nil {
				return s.emitOrFail(err)
			}
			if s.settings.OutputMode == "json" {
				return out.RawJSON(s.runner.stdout, raw)
			}
			return out.Text(s.runner.stdout, zapper.FormatNFTs(zapper.DecodeNFTs(raw)))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Max NFTs to show")
	return cmd
}

func (s *runtimeState) newTxCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "tx [address|label]",
		Short: "Recent transactions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addresses, err := s.resolve(args)
			if err != nil {
				return err
			}
			raw, err := s.client.FetchTransactions(cmd.Context(), addresses, limit)
			if err != nil {
				return s.emitOrFail(err)
			}
			if s.settings.OutputMode == "json" {
				return out.RawJSON(s.runner.stdout, raw)
			}
			return out.Text(s.runner.stdout, zapper.FormatTransactions(zapper.DecodeTxHistory(raw)))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Max transactions to show")
	return cmd
}

func (s *runtimeState) newPriceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "price <symbol>",
		Short: "Token price lookup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			quote, err := s.cachedPrice(cmd, args[0])
			if err != nil {
				return s.emitOrFail(err)
			}
			if s.settings.OutputMode == "json" {
				return out.JSON(s.runner.stdout, quote)
			}
			return out.Text(s.runner.stdout, zapper.FormatPrice(quote))
		},
	}
}

func (s *runtimeState) newClaimablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "claimables [address|label]",
		Short: "Unclaimed rewards",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addresses, err := s.resolve(args)
			if err != nil {
				return err
			}
			report, err := s.client.FetchClaimables(cmd.Context(), addresses)
			if err != nil {
				return s.emitOrFail(err)
			}
			if s.settings.OutputMode == "json" {
				return out.JSON(s.runner.stdout, report)
			}
			return out.Text(s.runner.stdout, zapper.FormatClaimables(report))
		},
	}
}

func (s *runtimeState) newWalletsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "wallets",
		Short: "Show the configured address book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hasKey := os.Getenv(apiKeyEnv) != "" || s.settings.APIKey != "" || s.book.APIKey != ""
			if s.settings.OutputMode == "json" {
				return out.JSON(s.runner.stdout, struct {
					Path    string         `json:"path"`
					APIKey  bool           `json:"apiKeySet"`
					Wallets []model.Wallet `json:"wallets"`
				}{Path: s.book.Path, APIKey: hasKey, Wallets: s.book.Wallets})
			}

			keyState := "Missing"
			if hasKey {
				keyState = "Set"
			}
			lines := []string{
				fmt.Sprintf("Config: %s", s.book.Path),
				fmt.Sprintf("API Key: %s", keyState),
				fmt.Sprintf("Wallets: %d", len(s.book.Wallets)),
			}
			for _, w := range s.book.Wallets {
				label := w.Label
				if label == "" {
					label = "Unnamed"
				}
				lines = append(lines, fmt.Sprintf("  - %s: %s", label, config.Abbreviate(w.Address)))
			}
			return out.Text(s.runner.stdout, strings.Join(lines, "\n"))
		},
	}
}

func (s *runtimeState) newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [command]",
		Short: "Describe the command tree as JSON",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := schema.For(s.root, strings.Join(args, " "))
			if err != nil {
				return clierr.Wrap(clierr.KindUsage, "resolve schema target", err)
			}
			return out.JSON(s.runner.stdout, desc)
		},
	}
}

func (s *runtimeState) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.For(cliName)
			if s.settings.OutputMode == "json" {
				return out.JSON(s.runner.stdout, info)
			}
			return out.Text(s.runner.stdout, info.String())
		},
	}
}

// resolve maps the optional positional argument through the address book.
func (s *runtimeState) resolve(args []string) ([]string, error) {
	input := ""
	if len(args) > 0 {
		input = args[0]
	}
	return s.book.Resolve(input)
}

// emitOrFail renders a soft failure as the command payload with a zero exit,
// and passes hard failures through untouched.
func (s *runtimeState) emitOrFail(err error) error {
	if !clierr.IsSoft(err) {
		return err
	}
	msg := clierr.SoftMessage(err)
	if s.settings.OutputMode == "json" {
		return out.JSON(s.runner.stdout, model.SoftError{Error: msg})
	}
	return out.Text(s.runner.stdout, fmt.Sprintf("Error: %s", msg))
}

// cachedPrice is the one folio fetch that goes through the read-through
// store: a symbol lookup is idempotent and account-free.
func (s *runtimeState) cachedPrice(cmd *cobra.Command, symbol string) (zapper.PriceQuote, error) {
	fetch := func() (zapper.PriceQuote, error) {
		return s.client.FetchPrice(cmd.Context(), symbol)
	}
	if !s.settings.CacheEnabled {
		return fetch()
	}
	if s.store == nil {
		store, err := cache.Open(s.settings.CachePath, s.settings.CacheLockPath)
		if err != nil {
			s.settings.CacheEnabled = false
			return fetch()
		}
		s.store = store
	}

	key := priceCacheKey(symbol)
	if res, err := s.store.Get(key); err == nil && res.Hit {
		var quote zapper.PriceQuote
		if jerr := json.Unmarshal(res.Value, &quote); jerr == nil {
			return quote, nil
		}
	}

	quote, err := fetch()
	if err != nil {
		return zapper.PriceQuote{}, err
	}
	if buf, merr := json.Marshal(quote); merr == nil {
		_ = s.store.Set(key, buf, time.Minute)
	}
	return quote, nil
}

func priceCacheKey(symbol string) string {
	sum := sha256.Sum256([]byte("price\n" + strings.ToUpper(symbol)))
	return "price:" + hex.EncodeToString(sum[:])
}

// Package perpsapp wires the perps CLI: command tree, configuration, cache,
// and output plumbing around the hyperliquid client.
package perpsapp

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
	"github.com/ggonzalez94/onchain-cli/internal/hyperliquid"
	"github.com/ggonzalez94/onchain-cli/internal/log"
	"github.com/ggonzalez94/onchain-cli/internal/out"
	"github.com/ggonzalez94/onchain-cli/internal/schema"
	"github.com/ggonzalez94/onchain-cli/internal/version"
)

const cliName = "perps"

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
	client   *hyperliquid.Client
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
		Short: "Hyperliquid info endpoint client",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			settings, err := config.Load(cliName, config.Settings{
				BaseURL:      hyperliquid.DefaultBaseURL,
				CacheEnabled: true,
			}, s.flags)
			if err != nil {
				return clierr.Wrap(clierr.KindConfig, "load configuration", err)
			}
			s.settings = settings
			s.client = hyperliquid.NewClient(settings.BaseURL, settings.Timeout, log.New(settings.Verbose))
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&s.flags.ConfigPath, "config", "", "Path to config file")
	flags.StringVar(&s.flags.BaseURL, "base-url", "", "API base URL (default mainnet)")
	flags.IntVar(&s.flags.Timeout, "timeout", 0, "HTTP timeout seconds")
	flags.BoolVar(&s.flags.JSON, "json", false, "Output raw JSON")
	flags.BoolVar(&s.flags.NoCache, "no-cache", false, "Bypass the response cache")
	flags.BoolVar(&s.flags.Verbose, "verbose", false, "Log request diagnostics to stderr")

	cmd.AddCommand(
		s.newMidsCommand(),
		s.newMetaCommand(),
		s.newMetaCtxCommand(),
		s.newPredictedFundingCommand(),
		s.newBookCommand(),
		s.newCandlesCommand(),
		s.newOpenOrdersCommand(),
		s.newUserCommand(),
		s.newDashCommand(),
		s.newSchemaCommand(),
		s.newVersionCommand(),
	)
	return cmd
}

func (s *runtimeState) newMidsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mids",
		Short: "Get all mid prices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := s.cached("mids", nil, 10*time.Second, func() (json.RawMessage, error) {
				return s.client.AllMids(cmd.Context())
			})
			if err != nil {
				return err
			}
			if s.settings.OutputMode == "text" {
				return out.Text(s.runner.stdout, hyperliquid.RenderMids(raw))
			}
			return out.RawJSON(s.runner.stdout, raw)
		},
	}
}

func (s *runtimeState) newMetaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "meta",
		Short: "Get exchange metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := s.cached("meta", nil, 5*time.Minute, func() (json.RawMessage, error) {
				return s.client.Meta(cmd.Context())
			})
			if err != nil {
				return err
			}
			return out.RawJSON(s.runner.stdout, raw)
		},
	}
}

func (s *runtimeState) newMetaCtxCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "meta-ctx",
		Short: "Get perps meta and asset contexts (funding/OI/mark/mid)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := s.cached("meta-ctx", nil, 30*time.Second, func() (json.RawMessage, error) {
				return s.client.MetaAndAssetCtxs(cmd.Context())
			})
			if err != nil {
				return err
			}
			return out.RawJSON(s.runner.stdout, raw)
		},
	}
}

func (s *runtimeState) newPredictedFundingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "predicted-funding",
		Short: "Get predicted funding rates across venues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := s.cached("predicted-funding", nil, time.Minute, func() (json.RawMessage, error) {
				return s.client.PredictedFundings(cmd.Context())
			})
			if err != nil {
				return err
			}
			return out.RawJSON(s.runner.stdout, raw)
		},
	}
}

func (s *runtimeState) newBookCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "book <coin>",
		Short: "Get L2 order book for a coin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := s.cached("book", map[string]any{"coin": args[0]}, 10*time.Second, func() (json.RawMessage, error) {
				return s.client.L2Book(cmd.Context(), args[0])
			})
			if err != nil {
				return err
			}
			return out.RawJSON(s.runner.stdout, raw)
		},
	}
}

func (s *runtimeState) newCandlesCommand() *cobra.Command {
	var interval string
	var start, end int64
	var limit int
	cmd := &cobra.Command{
		Use:   "candles <coin>",
		Short: "Get candle snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := s.client.CandleSnapshot(cmd.Context(), args[0], interval, start, end, limit)
			if err != nil {
				return err
			}
			return out.RawJSON(s.runner.stdout, raw)
		},
	}
	cmd.Flags().StringVar(&interval, "interval", "15m", "Candle interval (1m, 5m, 15m, 1h, 4h, 1d)")
	cmd.Flags().Int64Var(&start, "start", 0, "ms since epoch (0 = API default)")
	cmd.Flags().Int64Var(&end, "end", 0, "ms since epoch (0 = API default)")
	cmd.Flags().IntVar(&limit, "limit", 200, "Limit number of candles (from the end)")
	return cmd
}

func (s *runtimeState) newOpenOrdersCommand() *cobra.Command {
	var dex string
	cmd := &cobra.Command{
		Use:   "open-orders <address>",
		Short: "Get open orders for an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := s.client.OpenOrders(cmd.Context(), args[0], dex)
			if err != nil {
				return err
			}
			return out.RawJSON(s.runner.stdout, raw)
		},
	}
	cmd.Flags().StringVar(&dex, "dex", "", "Scope to one perp dex")
	return cmd
}

func (s *runtimeState) newUserCommand() *cobra.Command {
	var allDexs bool
	cmd := &cobra.Command{
		Use:   "user <address>",
		Short: "Get user state (perps+spot) for an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := s.client.BuildUserSnapshot(cmd.Context(), args[0], allDexs)
			if err != nil {
				return err
			}
			return out.JSON(s.runner.stdout, snap)
		},
	}
	cmd.Flags().BoolVar(&allDexs, "all-dexs", false, "Also scan HIP-3 perp dexs for positions")
	return cmd
}

func (s *runtimeState) newDashCommand() *cobra.Command {
	var opts hyperliquid.DashOptions
	cmd := &cobra.Command{
		Use:   "dash <address>...",
		Short: "Scannable dashboard for one or more addresses",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addresses := make([]string, len(args))
			for i, a := range args {
				addresses[i] = config.NormalizeAddress(a)
			}
			dash, err := s.client.BuildDashboard(cmd.Context(), addresses, opts)
			if err != nil {
				return err
			}
			if s.settings.OutputMode == "json" {
				return out.JSON(s.runner.stdout, dash)
			}
			return out.Text(s.runner.stdout, hyperliquid.RenderDash(dash, opts))
		},
	}
	cmd.Flags().BoolVar(&opts.MainOnly, "main-only", false, "Do NOT scan HIP-3 perp dexs (faster; main dex only)")
	cmd.Flags().BoolVar(&opts.Compact, "compact", false, "No blank line between addresses")
	cmd.Flags().IntVar(&opts.LimitPositions, "limit-positions", 12, "Max positions per venue")
	cmd.Flags().IntVar(&opts.LimitSpot, "limit-spot", 12, "Max spot holdings")
	cmd.Flags().BoolVar(&opts.IncludeOrders, "include-orders", false, "Include open orders counts (main + dexs)")
	return cmd
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

// cached wraps an idempotent market-data fetch with the read-through store.
// Account-scoped commands never come through here. An unusable cache only
// disables itself, it never fails the command.
func (s *runtimeState) cached(command string, params map[string]any, ttl time.Duration, fetch func() (json.RawMessage, error)) (json.RawMessage, error) {
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

	key := cacheKey(command, params)
	if res, err := s.store.Get(key); err == nil && res.Hit {
		return json.RawMessage(res.Value), nil
	}

	raw, err := fetch()
	if err != nil {
		return nil, err
	}
	_ = s.store.Set(key, raw, ttl)
	return raw, nil
}

func cacheKey(command string, params map[string]any) string {
	payload, _ := json.Marshal(params)
	sum := sha256.Sum256(append([]byte(command+"\n"), payload...))
	return command + ":" + hex.EncodeToString(sum[:])
}

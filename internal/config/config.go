package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// GlobalFlags are the persistent flags shared by every command of a tool.
type GlobalFlags struct {
	ConfigPath  string
	WalletsPath string
	JSON        bool
	BaseURL     string
	Timeout     int // seconds; 0 means unset
	NoCache     bool
	Verbose     bool
}

// Settings is the merged runtime configuration, loaded once at process start
// and passed through as a read-only value.
type Settings struct {
	OutputMode    string // "text" or "json"
	BaseURL       string
	Timeout       time.Duration
	CacheEnabled  bool
	CachePath     string
	CacheLockPath string
	APIKey        string
	WalletsPath   string
	Verbose       bool
}

type fileConfig struct {
	Output  string `yaml:"output"`
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
	Cache   struct {
		Enabled  *bool  `yaml:"enabled"`
		Path     string `yaml:"path"`
		LockPath string `yaml:"lock_path"`
	} `yaml:"cache"`
	APIKey    string `yaml:"api_key"`
	APIKeyEnv string `yaml:"api_key_env"`
	Wallets   string `yaml:"wallets"`
}

// Load merges defaults, the tool's YAML config file, environment variables,
// and flags, in that order (flags win). tool names the config directory and
// the env prefix ("perps" or "folio").
func Load(tool string, defaults Settings, flags GlobalFlags) (Settings, error) {
	settings := defaults

	if settings.CachePath == "" {
		cachePath, lockPath, err := defaultCachePaths(tool)
		if err != nil {
			return Settings{}, err
		}
		settings.CachePath = cachePath
		settings.CacheLockPath = lockPath
	}
	if settings.OutputMode == "" {
		settings.OutputMode = "text"
	}

	cfgPath, err := resolveConfigPath(tool, flags.ConfigPath)
	if err != nil {
		return Settings{}, err
	}
	if err := applyFileConfig(cfgPath, &settings); err != nil {
		return Settings{}, err
	}
	applyEnv(strings.ToUpper(tool), &settings)
	applyFlags(flags, &settings)

	if settings.Timeout <= 0 {
		settings.Timeout = 20 * time.Second
	}
	if settings.OutputMode != "text" && settings.OutputMode != "json" {
		return Settings{}, fmt.Errorf("output must be text or json")
	}
	return settings, nil
}

func resolveConfigPath(tool, input string) (string, error) {
	if strings.TrimSpace(input) != "" {
		return input, nil
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, tool, "config.yaml"), nil
}

func defaultCachePaths(tool string) (string, string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", "", err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, tool)
	return filepath.Join(dir, "cache.db"), filepath.Join(dir, "cache.lock"), nil
}

func applyFileConfig(path string, settings *Settings) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}

	if cfg.Output != "" {
		settings.OutputMode = strings.ToLower(cfg.Output)
	}
	if cfg.BaseURL != "" {
		settings.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return fmt.Errorf("config timeout: %w", err)
		}
		settings.Timeout = d
	}
	if cfg.Cache.Enabled != nil {
		settings.CacheEnabled = *cfg.Cache.Enabled
	}
	if cfg.Cache.Path != "" {
		settings.CachePath = cfg.Cache.Path
	}
	if cfg.Cache.LockPath != "" {
		settings.CacheLockPath = cfg.Cache.LockPath
	}
	if cfg.APIKey != "" {
		settings.APIKey = cfg.APIKey
	}
	if cfg.APIKeyEnv != "" {
		if v := os.Getenv(cfg.APIKeyEnv); v != "" {
			settings.APIKey = v
		}
	}
	if cfg.Wallets != "" {
		settings.WalletsPath = cfg.Wallets
	}
	return nil
}

func applyEnv(prefix string, settings *Settings) {
	if v := os.Getenv(prefix + "_OUTPUT"); v != "" {
		settings.OutputMode = strings.ToLower(v)
	}
	if v := os.Getenv(prefix + "_BASE_URL"); v != "" {
		settings.BaseURL = v
	}
	if v := os.Getenv(prefix + "_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			settings.Timeout = d
		}
	}
	if v := os.Getenv(prefix + "_NO_CACHE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			settings.CacheEnabled = !b
		}
	}
}

func applyFlags(flags GlobalFlags, settings *Settings) {
	if flags.JSON {
		settings.OutputMode = "json"
	}
	if flags.BaseURL != "" {
		settings.BaseURL = flags.BaseURL
	}
	if flags.Timeout > 0 {
		settings.Timeout = time.Duration(flags.Timeout) * time.Second
	}
	if flags.NoCache {
		settings.CacheEnabled = false
	}
	if flags.WalletsPath != "" {
		settings.WalletsPath = flags.WalletsPath
	}
	settings.Verbose = flags.Verbose
}

// Package config provides configuration types and defaults for lineage.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/zjrosen/lineage/internal/diffview"
	"github.com/zjrosen/lineage/internal/log"
)

// Config holds all configuration options for lineage.
type Config struct {
	// Repositories listed in the sidebar, in order.
	Repositories   []string      `mapstructure:"repositories"`
	CommitLimit    int           `mapstructure:"commit_limit"`
	DebounceWindow time.Duration `mapstructure:"debounce_window"`
	// PollInterval refreshes working changes while the changes view is
	// open. Zero disables polling.
	PollInterval time.Duration `mapstructure:"poll_interval"`
	WatchFiles   bool          `mapstructure:"watch_files"`
	// StatePath is the key/value database. Empty means the default under
	// the user config directory.
	StatePath string        `mapstructure:"state_path"`
	UI        UIConfig      `mapstructure:"ui"`
	Theme     ThemeConfig   `mapstructure:"theme"`
	Cache     CacheConfig   `mapstructure:"cache"`
	Tracing   TracingConfig `mapstructure:"tracing"`
	// Flags switches optional behavior; see internal/flags.
	Flags map[string]bool `mapstructure:"flags"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	DiffMode      string `mapstructure:"diff_mode"` // "unified" (default) or "split"
	ShowHelpHint  bool   `mapstructure:"show_help_hint"`
	MarkdownStyle string `mapstructure:"markdown_style"` // "dark" (default) or "light"
}

// ThemeConfig holds theme overrides.
type ThemeConfig struct {
	// Mode forces light or dark mode. If empty, uses terminal detection.
	// Valid values: "light", "dark", ""
	Mode    string `mapstructure:"mode"`
	Muted   string `mapstructure:"muted"`
	Error   string `mapstructure:"error"`
	Success string `mapstructure:"success"`
}

// CacheConfig controls caching of immutable commit data.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// TracingConfig holds distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/lineage/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// Limits enforced by Validate.
const (
	MaxCommitLimit    = 10000
	MaxDebounceWindow = 5 * time.Second
	MinPollInterval   = 250 * time.Millisecond
)

// configDir returns ~/.config/lineage or empty string if home dir unavailable.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "lineage")
}

// DefaultConfigPath returns ~/.config/lineage/config.yaml.
func DefaultConfigPath() string {
	dir := configDir()
	if dir == "" {
		return filepath.Join(".lineage", "config.yaml")
	}
	return filepath.Join(dir, "config.yaml")
}

// DefaultStatePath returns the default key/value database path.
func DefaultStatePath() string {
	dir := configDir()
	if dir == "" {
		return filepath.Join(".lineage", "state.db")
	}
	return filepath.Join(dir, "state.db")
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/lineage/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	dir := configDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "traces", "traces.jsonl")
}

// ResolvedStatePath is StatePath or the default.
func (c Config) ResolvedStatePath() string {
	if c.StatePath != "" {
		return c.StatePath
	}
	return DefaultStatePath()
}

// DiffMode returns the configured display mode, falling back to unified.
func (c Config) DiffMode() diffview.DisplayMode {
	m, err := diffview.ParseDisplayMode(c.UI.DiffMode)
	if err != nil {
		return diffview.Unified
	}
	return m
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		CommitLimit:    100,
		DebounceWindow: 150 * time.Millisecond,
		PollInterval:   2 * time.Second,
		WatchFiles:     true,
		UI: UIConfig{
			DiffMode:      string(diffview.Unified),
			ShowHelpHint:  true,
			MarkdownStyle: "dark",
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     10 * time.Minute,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate checks cfg for out-of-range and unknown values.
func Validate(cfg Config) error {
	for i, repo := range cfg.Repositories {
		if repo == "" {
			return fmt.Errorf("repositories[%d]: path is required", i)
		}
	}
	if cfg.CommitLimit < 1 || cfg.CommitLimit > MaxCommitLimit {
		return fmt.Errorf("commit_limit must be between 1 and %d, got %d", MaxCommitLimit, cfg.CommitLimit)
	}
	if cfg.DebounceWindow < 0 || cfg.DebounceWindow > MaxDebounceWindow {
		return fmt.Errorf("debounce_window must be between 0 and %s, got %s", MaxDebounceWindow, cfg.DebounceWindow)
	}
	if cfg.PollInterval != 0 && cfg.PollInterval < MinPollInterval {
		return fmt.Errorf("poll_interval must be 0 (disabled) or at least %s, got %s", MinPollInterval, cfg.PollInterval)
	}
	if _, err := diffview.ParseDisplayMode(cfg.UI.DiffMode); err != nil {
		return fmt.Errorf("ui.diff_mode: %w", err)
	}
	switch cfg.UI.MarkdownStyle {
	case "", "dark", "light":
	default:
		return fmt.Errorf("ui.markdown_style must be \"dark\" or \"light\", got %q", cfg.UI.MarkdownStyle)
	}
	if err := ValidateTheme(cfg.Theme); err != nil {
		return err
	}
	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", cfg.Cache.TTL)
	}
	return ValidateTracing(cfg.Tracing)
}

// ValidateTheme checks theme mode and color overrides.
func ValidateTheme(theme ThemeConfig) error {
	switch theme.Mode {
	case "", "light", "dark":
	default:
		return fmt.Errorf("theme.mode must be \"light\" or \"dark\", got %q", theme.Mode)
	}
	for name, value := range map[string]string{"muted": theme.Muted, "error": theme.Error, "success": theme.Success} {
		if value != "" && !hexColor.MatchString(value) {
			return fmt.Errorf("theme.%s must be a hex color like \"#FF8787\", got %q", name, value)
		}
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tracing.Enabled && tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}

	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Lineage Configuration

# Repositories shown in the sidebar. Updated when you add or remove one
# from inside lineage.
repositories: []

# Number of commits loaded per repository
commit_limit: 100

# Delay before fetching after the selection changes quickly
debounce_window: 150ms

# How often working changes refresh while the changes view is open (0 disables)
poll_interval: 2s

# Refresh working changes as soon as files change on disk
watch_files: true

# Where layout, theme and session state are kept
# state_path: ~/.config/lineage/state.db

# UI settings
ui:
  diff_mode: unified      # "unified" (default) or "split"; toggle with |
  show_help_hint: true    # Show "? help" in the status bar
  # markdown_style: dark  # Help overlay rendering style: "dark" (default) or "light"

# Theme configuration
theme:
  # mode: dark            # Force "light" or "dark"; detected from the terminal when unset
  # muted: "#696969"
  # error: "#FF8787"
  # success: "#73F59F"

# Cache for commit file lists and contents
cache:
  enabled: true
  ttl: 10m

# Tracing of git engine calls
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/lineage/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}

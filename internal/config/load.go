package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/zjrosen/lineage/internal/log"
)

// LocalConfigPath is the per-project config file, checked first.
var LocalConfigPath = filepath.Join(".lineage", "config.yaml")

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("repositories", []string{})
	v.SetDefault("commit_limit", d.CommitLimit)
	v.SetDefault("debounce_window", d.DebounceWindow)
	v.SetDefault("poll_interval", d.PollInterval)
	v.SetDefault("watch_files", d.WatchFiles)
	v.SetDefault("state_path", d.StatePath)
	v.SetDefault("ui.diff_mode", d.UI.DiffMode)
	v.SetDefault("ui.show_help_hint", d.UI.ShowHelpHint)
	v.SetDefault("ui.markdown_style", d.UI.MarkdownStyle)
	v.SetDefault("theme.mode", d.Theme.Mode)
	v.SetDefault("theme.muted", d.Theme.Muted)
	v.SetDefault("theme.error", d.Theme.Error)
	v.SetDefault("theme.success", d.Theme.Success)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
}

// Locate picks the config file: explicit if given, else the project file,
// else the user file. found is false when none of them exists yet.
func Locate(explicit string) (path string, found bool) {
	if explicit != "" {
		_, err := os.Stat(explicit)
		return explicit, err == nil
	}
	if _, err := os.Stat(LocalConfigPath); err == nil {
		return LocalConfigPath, true
	}
	user := DefaultConfigPath()
	_, err := os.Stat(user)
	return user, err == nil
}

// Load reads configuration into v and decodes it. A missing config file is
// created from the default template first. The returned path is the file
// that was read, or would have been, so callers can save back to it.
func Load(v *viper.Viper, explicit string) (Config, string, error) {
	SetDefaults(v)

	path, found := Locate(explicit)
	if !found {
		if err := WriteDefaultConfig(path); err != nil {
			log.Warn(log.CatConfig, "running with built-in defaults", "error", err)
		}
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, path, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, path, fmt.Errorf("decoding config %s: %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, path, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	log.Debug(log.CatConfig, "Loaded config", "path", path, "repositories", len(cfg.Repositories))
	return cfg, path, nil
}

// Package cmd holds the lineage command line.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/lineage/internal/app"
	"github.com/zjrosen/lineage/internal/config"
	"github.com/zjrosen/lineage/internal/flags"
	"github.com/zjrosen/lineage/internal/git"
	"github.com/zjrosen/lineage/internal/kvstore"
	"github.com/zjrosen/lineage/internal/layout"
	"github.com/zjrosen/lineage/internal/log"
	"github.com/zjrosen/lineage/internal/tracing"
	"github.com/zjrosen/lineage/internal/ui/styles"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	noWatch   bool
)

var rootCmd = &cobra.Command{
	Use:   "lineage [repository...]",
	Short: "A terminal viewer for git history and diffs",
	Long: `A terminal user interface for browsing commit history, commit ranges and
working-tree changes across several local git repositories.

Repositories given as arguments are opened alongside the ones listed in the
config file.`,
	Version: version,
	RunE:    runApp,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/lineage/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write a debug log (path from LINEAGE_LOG, default debug.log)")
	rootCmd.Flags().BoolVar(&noWatch, "no-watch", false,
		"disable file watching; rely on polling and manual refresh")
}

// setupLogging enables the debug log when asked for by flag or
// LINEAGE_DEBUG. The returned cleanup is never nil.
func setupLogging() (bool, func(), error) {
	debug := os.Getenv("LINEAGE_DEBUG") != "" || debugFlag
	if !debug {
		return false, func() {}, nil
	}
	logPath := os.Getenv("LINEAGE_LOG")
	if logPath == "" {
		logPath = "debug.log"
	}
	cleanup, err := log.InitWithTeaLog(logPath, "lineage")
	if err != nil {
		return false, func() {}, fmt.Errorf("initializing logging: %w", err)
	}
	log.Info(log.CatConfig, "lineage starting", "version", version, "logPath", logPath)
	return true, cleanup, nil
}

// resolveRepos turns arguments into absolute paths.
func resolveRepos(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, a := range args {
		abs, err := filepath.Abs(a)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", a, err)
		}
		out = append(out, abs)
	}
	return out, nil
}

// themeFor prefers the configured mode and falls back to the mode last
// toggled in the app.
func themeFor(cfg config.Config, kv *kvstore.Store) config.ThemeConfig {
	theme := cfg.Theme
	if theme.Mode != "" || kv == nil {
		return theme
	}
	if mode, ok, err := kv.Get(kvstore.KeyThemeMode); err == nil && ok {
		theme.Mode = mode
	}
	return theme
}

func runApp(_ *cobra.Command, args []string) error {
	debug, cleanup, err := setupLogging()
	if err != nil {
		return err
	}
	defer cleanup()

	cfg, cfgPath, err := config.Load(viper.New(), cfgFile)
	if err != nil {
		return err
	}
	if noWatch {
		cfg.WatchFiles = false
	}

	repos, err := resolveRepos(args)
	if err != nil {
		return err
	}

	kv, err := kvstore.Open(cfg.ResolvedStatePath())
	if err != nil {
		// The viewer works without durable state; layout and session are
		// simply not remembered.
		log.ErrorErr(log.CatDB, "state store unavailable", err)
	}
	var durable layout.KV
	if kv != nil {
		defer func() { _ = kv.Close() }()
		durable = kv
	}
	styles.Apply(themeFor(cfg, kv))

	provider, err := tracing.NewProvider(tracing.FromConfig(cfg.Tracing))
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = provider.Shutdown(ctx)
	}()

	var inner git.Engine = git.NewRealExecutor()
	if provider.Enabled() {
		inner = tracing.WrapEngine(inner, provider.Tracer())
	}
	engine := git.NewCachedEngine(inner, cfg.Cache.TTL, cfg.Cache.Enabled)

	model := app.New(app.Options{
		Engine:       engine,
		Flusher:      engine,
		KV:           durable,
		Config:       cfg,
		ConfigPath:   cfgPath,
		Repositories: repos,
		Watch:        app.WatchFS,
		Debug:        debug,
	})
	p := tea.NewProgram(model, programOptions(flags.New(cfg.Flags))...)

	_, err = p.Run()

	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

func programOptions(fl *flags.Registry) []tea.ProgramOption {
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if !fl.Enabled(flags.FlagNoMouse) {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return opts
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

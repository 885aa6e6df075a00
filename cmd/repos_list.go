package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/lineage/internal/config"
	"github.com/zjrosen/lineage/internal/git"
)

var reposTimeout time.Duration

// repoStatus is one line of repos:list output.
type repoStatus struct {
	Path   string `json:"path"`
	Name   string `json:"name,omitempty"`
	Branch string `json:"branch,omitempty"`
	Error  string `json:"error,omitempty"`
}

var reposListCmd = &cobra.Command{
	Use:   "repos:list",
	Short: "List configured repositories",
	Long: `List the repositories from the config file as JSON, validating each one.

Examples:
  # List all repositories
  lineage repos:list

  # Only the broken ones
  lineage repos:list | jq '.[] | select(.error)'`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := config.Load(viper.New(), cfgFile)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), reposTimeout)
		defer cancel()
		return listRepos(ctx, os.Stdout, git.NewRealExecutor(), cfg.Repositories)
	},
}

func init() {
	reposListCmd.Flags().DurationVar(&reposTimeout, "timeout", 10*time.Second, "Give up validating after this long")
	rootCmd.AddCommand(reposListCmd)
}

func listRepos(ctx context.Context, w io.Writer, engine git.Engine, paths []string) error {
	out := make([]repoStatus, 0, len(paths))
	for _, p := range paths {
		st := repoStatus{Path: p}
		info, err := engine.ValidateRepo(ctx, p)
		if err != nil {
			st.Error = err.Error()
		} else {
			st.Name, st.Branch = info.Name, info.Branch
		}
		out = append(out, st)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("writing repositories: %w", err)
	}
	return nil
}

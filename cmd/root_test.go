package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/lineage/internal/config"
	"github.com/zjrosen/lineage/internal/flags"
	"github.com/zjrosen/lineage/internal/git"
	"github.com/zjrosen/lineage/internal/git/gittest"
	"github.com/zjrosen/lineage/internal/kvstore"
)

func TestResolveRepos(t *testing.T) {
	got, err := resolveRepos([]string{"relative/repo", "/abs/repo"})
	require.NoError(t, err)

	want, err := filepath.Abs("relative/repo")
	require.NoError(t, err)
	assert.Equal(t, []string{want, "/abs/repo"}, got)
}

func TestThemeFor(t *testing.T) {
	kv, err := kvstore.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	cfg := config.Defaults()
	assert.Empty(t, themeFor(cfg, kv).Mode, "nothing saved yet")

	require.NoError(t, kv.Set(kvstore.KeyThemeMode, "light"))
	assert.Equal(t, "light", themeFor(cfg, kv).Mode)

	cfg.Theme.Mode = "dark"
	assert.Equal(t, "dark", themeFor(cfg, kv).Mode, "config wins over the saved toggle")

	cfg.Theme.Mode = ""
	assert.Empty(t, themeFor(cfg, nil).Mode)
}

func TestListRepos(t *testing.T) {
	fake := gittest.NewFake().AddRepo("/repos/alpha", &gittest.Repo{Branch: "main"})

	var buf bytes.Buffer
	require.NoError(t, listRepos(context.Background(), &buf, fake, []string{"/repos/alpha", "/repos/missing"}))

	var got []repoStatus
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, repoStatus{Path: "/repos/alpha", Name: "alpha", Branch: "main"}, got[0])
	assert.Equal(t, "/repos/missing", got[1].Path)
	assert.Contains(t, got[1].Error, git.ErrNotGitRepo.Error())
}

func TestProgramOptions(t *testing.T) {
	assert.Len(t, programOptions(flags.New(nil)), 2)
	assert.Len(t, programOptions(flags.New(map[string]bool{flags.FlagNoMouse: true})), 1)
}

func TestRootCommandFlags(t *testing.T) {
	for _, name := range []string{"config", "debug"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
	assert.NotNil(t, rootCmd.Flags().Lookup("no-watch"))

	found := false
	for _, c := range rootCmd.Commands() {
		found = found || c.Name() == "repos:list"
	}
	assert.True(t, found, "repos:list is registered")
}

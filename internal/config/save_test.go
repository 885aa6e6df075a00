package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func readConfig(t *testing.T, path string) Config {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	return cfg
}

func TestSaveRepositories_PreservesOtherKeysAndComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	require.NoError(t, SaveRepositories(path, []string{"/src/one", "/src/two"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	require.Contains(t, content, "# Lineage Configuration")
	require.Contains(t, content, "# How often working changes refresh")
	require.Contains(t, content, "- /src/one")

	cfg := readConfig(t, path)
	require.Equal(t, []string{"/src/one", "/src/two"}, cfg.Repositories)
	require.Equal(t, 100, cfg.CommitLimit)
}

func TestSaveRepositories_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, SaveRepositories(path, []string{"/src/a"}))

	cfg := readConfig(t, path)
	require.Equal(t, []string{"/src/a"}, cfg.Repositories)
}

func TestSaveRepositories_AppendsMissingKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("# mine\ncommit_limit: 7\n"), 0o600))

	require.NoError(t, SaveRepositories(path, []string{"/x"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "# mine"))
	cfg := readConfig(t, path)
	require.Equal(t, 7, cfg.CommitLimit)
	require.Equal(t, []string{"/x"}, cfg.Repositories)
}

func TestSaveRepositories_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, SaveRepositories(path, []string{"/x"}))
	require.NoError(t, SaveRepositories(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "repositories: []")
	require.Empty(t, readConfig(t, path).Repositories)
}

func TestSaveRepositories_RejectsNonMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- a\n- b\n"), 0o600))

	err := SaveRepositories(path, []string{"/x"})
	require.Error(t, err)
}

func TestSaveRepositories_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, SaveRepositories(path, []string{"/x"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

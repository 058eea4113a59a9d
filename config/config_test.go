package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFromYAML(t *testing.T) {
	cfg, err := FromYAML([]byte(`
log:
  verbosity: 2
  file: /tmp/oak.log
parse:
  step_budget: 5000
languages:
  calc:
    extensions: [".calc", "clc"]
json:
  comments: false
  trailing_commas: true
  bare_keys: true
server:
  name: oak-test
`))
	require.NoError(t, err)

	assert.Equal(t, LogConfig{Verbosity: 2, File: "/tmp/oak.log"}, cfg.Log)
	assert.Equal(t, 5000, cfg.Parse.StepBudget)
	assert.Equal(t, []string{".calc", "clc"}, cfg.Languages["calc"].Extensions)
	assert.Equal(t, JSONConfig{TrailingCommas: true, BareKeys: true}, cfg.JSON)
	assert.Equal(t, "oak-test", cfg.Server.Name)
}

func TestFromYAMLKeepsDefaults(t *testing.T) {
	cfg, err := FromYAML([]byte("parse:\n  step_budget: 10\n"))
	require.NoError(t, err)

	assert.True(t, cfg.JSON.Comments)
	assert.Equal(t, "oak", cfg.Server.Name)
	assert.NotNil(t, cfg.Languages)
}

func TestFromYAMLErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"syntax", "log: [", "parse yaml"},
		{"type", "parse:\n  step_budget: lots\n", "parse yaml"},
		{"negative budget", "parse:\n  step_budget: -1\n", "step_budget must not be negative"},
		{"empty extension", "languages:\n  calc:\n    extensions: [\"\"]\n", "languages.calc.extensions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromYAML([]byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestToYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Parse.StepBudget = 42
	cfg.Languages["json"] = LanguageConfig{Extensions: []string{".json5"}}

	data, err := cfg.ToYAML()
	require.NoError(t, err)
	back, err := FromYAML(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "ref: main\n")
	writeFile(t, filepath.Join(root, FileName), "server:\n  name: root\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	path, err := Find(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, FileName), path)

	cfg, err := Load("", nested)
	require.NoError(t, err)
	assert.Equal(t, "root", cfg.Server.Name)
	assert.Equal(t, path, cfg.Path)
}

func TestFindStopsAtRepositoryRoot(t *testing.T) {
	outer := t.TempDir()
	writeFile(t, filepath.Join(outer, FileName), "server:\n  name: outer\n")
	repo := filepath.Join(outer, "repo")
	writeFile(t, filepath.Join(repo, ".git", "HEAD"), "ref: main\n")

	path, err := Find(repo)
	require.NoError(t, err)
	assert.Empty(t, path)

	cfg, err := Load("", repo)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadExplicit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, "log:\n  verbosity: -4\n")

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, -4, cfg.Log.Verbosity)

	_, err = Load(filepath.Join(dir, "missing.yaml"), "")
	assert.ErrorContains(t, err, "read config")
}

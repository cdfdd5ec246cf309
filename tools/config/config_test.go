package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Model   string `yaml:"model" env:"SKETCH_TEST_MODEL"`
	Limit   int    `yaml:"limit" env:"SKETCH_TEST_LIMIT"`
	Verbose bool   `yaml:"verbose" env:"SKETCH_TEST_VERBOSE"`
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseEnvError(t *testing.T) {
	var cfg testConfig
	t.Setenv("SKETCH_TEST_LIMIT", "not-an-int")

	err := ParseEnv(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeFile(t, "model: from-file\nlimit: 10\n")
	t.Setenv("SKETCH_TEST_LIMIT", "20")

	cfg := testConfig{Verbose: true}
	require.NoError(t, Load(path, &cfg))

	assert.Equal(t, "from-file", cfg.Model, "unset variable keeps the file value")
	assert.Equal(t, 20, cfg.Limit, "variable overrides the file")
	assert.True(t, cfg.Verbose, "absent keys keep the preset")
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("SKETCH_TEST_MODEL", "env-model")
	var cfg testConfig
	require.NoError(t, Load("", &cfg))
	assert.Equal(t, "env-model", cfg.Model)
}

func TestLoadFileErrors(t *testing.T) {
	var cfg testConfig
	assert.Error(t, LoadFile(filepath.Join(t.TempDir(), "nope.yaml"), &cfg))
	assert.Error(t, LoadFile(writeFile(t, "limit: [1, 2"), &cfg))
}

func TestRequire(t *testing.T) {
	assert.NoError(t, Require("api key", "k"))
	assert.ErrorIs(t, Require("api key", ""), ErrMissing)
}

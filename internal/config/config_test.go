package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	chdirForTest(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8001", cfg.Generator.BaseURL)
	assert.Equal(t, time.Duration(0), cfg.Generator.Timeout)
	assert.Equal(t, 2*time.Second, cfg.Poll.Interval)
	assert.False(t, cfg.Poll.DiscardStale)
	assert.Equal(t, 750000, cfg.Defaults.TotalReviews)
	assert.Equal(t, 50000, cfg.Defaults.ChunkSize)
	assert.Equal(t, 100, cfg.Actions.TestBatchSize)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
generator:
  base_url: http://generator.internal:8001/
  timeout: 5s
poll:
  interval: 500ms
  discard_stale: true
defaults:
  total_reviews: 1000
  chunk_size: 100
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "http://generator.internal:8001", cfg.Generator.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Generator.Timeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Poll.Interval)
	assert.True(t, cfg.Poll.DiscardStale)
	assert.Equal(t, 1000, cfg.Defaults.Settings().TotalReviews)
	assert.Equal(t, 100, cfg.Defaults.Settings().ChunkSize)
}

func TestLoadBackendURLFromEnv(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("BACKEND_URL", "http://from-env:8001")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:8001", cfg.Generator.BaseURL)
}

func TestLoadWithFlagsOverridesFile(t *testing.T) {
	path := writeConfig(t, "generator:\n  base_url: http://file:8001\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("base-url", "", "")
	flags.Duration("interval", 0, "")
	require.NoError(t, flags.Parse([]string{"--base-url", "http://flag:8001"}))

	cfg, err := LoadWithFlags(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "http://flag:8001", cfg.Generator.BaseURL)
	// unchanged flags do not clobber defaults
	assert.Equal(t, 2*time.Second, cfg.Poll.Interval)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "zero interval", body: "poll:\n  interval: 0s\n"},
		{name: "negative chunk size", body: "defaults:\n  chunk_size: -5\n"},
		{name: "zero test batch", body: "actions:\n  test_batch_size: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

// chdirForTest mirrors testing.T.Chdir (Go 1.24+) for older toolchains:
// it changes the working directory and restores it when the test ends.
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}

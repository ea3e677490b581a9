package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	path := filepath.Join(t.TempDir(), "shasum.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)

	cfg, used, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.False(t, used)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `{"log_level": "debug", "workers": 3, "cache_dir": "/tmp/shasum-cache"}`)

	cfg, used, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.True(t, used)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "/tmp/shasum-cache", cfg.CacheDir)
	assert.Equal(t, "", cfg.LogDir)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `{"workers": 3}`)
	os.Setenv("SHASUM_WORKERS", "7")
	defer os.Unsetenv("SHASUM_WORKERS")

	cfg, _, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Workers)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file func(t *testing.T) string
	}{
		{"missing explicit file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "none.json") }},
		{"malformed json", func(t *testing.T) string { return writeConfig(t, `{"workers": `) }},
		{"bad level", func(t *testing.T) string { return writeConfig(t, `{"log_level": "loud"}`) }},
		{"bad workers", func(t *testing.T) string { return writeConfig(t, `{"workers": 0}`) }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, _, err := Load(viper.New(), test.file(t))
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Workers = -1
	assert.EqualError(t, cfg.Validate(), "invalid workers -1, must be at least 1")

	cfg = DefaultConfig()
	cfg.LogLevel = "verbose"
	assert.EqualError(t, cfg.Validate(), `invalid log level "verbose"`)
}

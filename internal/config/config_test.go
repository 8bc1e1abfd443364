package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_url = "https://videos.example.com/api/"
download_dir = "reports"
log_level = "debug"
language = "ru"
`), 0600))

	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load(path, true)
	require.NoError(t, err)
	cfg = cfg.FillDefaults()

	assert := assert.New(t)
	assert.Equal("https://videos.example.com/api", cfg.APIURL)
	assert.Equal("reports", cfg.DownloadDir)
	assert.Equal("warn", cfg.LogLevel, "env overrides file")
	assert.Equal("ru", cfg.Language)
	assert.NotEmpty(cfg.StateFile)
	assert.NoError(cfg.Validate())
}

func Test_Load_missingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.toml")

	_, err := Load(path, false)
	assert.NoError(t, err)

	_, err = Load(path, true)
	assert.Error(t, err)
}

func Test_LoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("VADM_DOWNLOAD_DIR=/tmp/from-dotenv\n"), 0600))
	t.Setenv(EnvDownloadDir, "")
	os.Unsetenv(EnvDownloadDir)

	require.NoError(t, LoadEnvFile(envPath))
	assert.Equal(t, "/tmp/from-dotenv", os.Getenv(EnvDownloadDir))

	assert.NoError(t, LoadEnvFile(filepath.Join(dir, "missing.env")))
}

func Test_Config_Validate(t *testing.T) {
	valid := Config{APIURL: "http://localhost:8080/api", StateFile: "s.toml", DownloadDir: ".", Language: "en"}

	testCases := []struct {
		name      string
		modify    func(c *Config)
		expectErr bool
	}{
		{name: "valid", modify: func(c *Config) {}},
		{name: "bad scheme", modify: func(c *Config) { c.APIURL = "ftp://host/api" }, expectErr: true},
		{name: "no host", modify: func(c *Config) { c.APIURL = "http:///api" }, expectErr: true},
		{name: "no state file", modify: func(c *Config) { c.StateFile = "" }, expectErr: true},
		{name: "no download dir", modify: func(c *Config) { c.DownloadDir = "" }, expectErr: true},
		{name: "unsupported language", modify: func(c *Config) { c.Language = "fr" }, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.modify(&cfg)

			err := cfg.Validate()
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func Test_Config_FillDefaults(t *testing.T) {
	assert := assert.New(t)

	cfg := Config{}.FillDefaults()
	assert.Equal(DefaultAPIURL, cfg.APIURL)
	assert.Equal(".", cfg.DownloadDir)
	assert.Equal(DefaultLogLevel, cfg.LogLevel)
	assert.Equal("en", cfg.Language)
	assert.NoError(cfg.Validate())
}

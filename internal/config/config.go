// Package config loads the settings of the VidAdmin console from a TOML file,
// the environment, and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dekarrin/vadm/internal/i18n"
	"github.com/joho/godotenv"
)

// Environment variables that override values from the config file.
const (
	EnvAPIURL      = "VADM_API_URL"
	EnvStateFile   = "VADM_STATE_FILE"
	EnvDownloadDir = "VADM_DOWNLOAD_DIR"
	EnvLogLevel    = "VADM_LOG_LEVEL"
	EnvLogFile     = "VADM_LOG_FILE"
	EnvLanguage    = "VADM_LANGUAGE"
)

const (
	DefaultAPIURL   = "http://localhost:8080/api"
	DefaultLogLevel = "info"
)

// Config is the configuration of a console session.
type Config struct {
	// APIURL is the base URL of the backend API. Endpoint paths are appended
	// to it.
	APIURL string `toml:"api_url"`

	// StateFile is where the access token and language choice are kept. If
	// not set, it defaults to .vadm/state.toml in the user's home directory.
	StateFile string `toml:"state_file"`

	// DownloadDir is the directory downloaded reports are written to. If not
	// set, the current working directory is used.
	DownloadDir string `toml:"download_dir"`

	// LogLevel is the minimum level of log entries that are written.
	LogLevel string `toml:"log_level"`

	// LogFile is the file log entries are appended to. If not set, logs go to
	// stderr.
	LogFile string `toml:"log_file"`

	// Language is the interface language used when none has been persisted
	// yet.
	Language string `toml:"language"`
}

// Load reads the config file at path and applies environment overrides. An
// empty path skips the file. A missing file is an error only if mustExist is
// set, so that a default location can be probed without complaint.
func Load(path string, mustExist bool) (Config, error) {
	var cfg Config

	if path != "" {
		_, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) || mustExist {
				return Config{}, fmt.Errorf("load config %s: %w", path, err)
			}
		}
	}

	return cfg.WithEnv(os.LookupEnv), nil
}

// LoadEnvFile loads variables from a .env file into the process environment.
// Variables that are already set are not overwritten. A missing file is not
// an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// WithEnv returns a copy of cfg with every value that lookup finds for the
// VADM_* variables applied over it.
func (cfg Config) WithEnv(lookup func(string) (string, bool)) Config {
	newCFG := cfg

	apply := func(key string, dest *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dest = v
		}
	}

	apply(EnvAPIURL, &newCFG.APIURL)
	apply(EnvStateFile, &newCFG.StateFile)
	apply(EnvDownloadDir, &newCFG.DownloadDir)
	apply(EnvLogLevel, &newCFG.LogLevel)
	apply(EnvLogFile, &newCFG.LogFile)
	apply(EnvLanguage, &newCFG.Language)

	return newCFG
}

// FillDefaults returns a new Config identitical to cfg but with unset values
// set to their defaults.
func (cfg Config) FillDefaults() Config {
	newCFG := cfg

	if newCFG.APIURL == "" {
		newCFG.APIURL = DefaultAPIURL
	}
	newCFG.APIURL = strings.TrimRight(newCFG.APIURL, "/")
	if newCFG.StateFile == "" {
		newCFG.StateFile = DefaultStateFile()
	}
	if newCFG.DownloadDir == "" {
		newCFG.DownloadDir = "."
	}
	if newCFG.LogLevel == "" {
		newCFG.LogLevel = DefaultLogLevel
	}
	if newCFG.Language == "" {
		newCFG.Language = i18n.Default.String()
	}

	return newCFG
}

// Validate returns an error if the Config has invalid field values set. Empty
// and unset values are considered invalid; if defaults are intended to be used,
// call Validate on the return value of FillDefaults.
func (cfg Config) Validate() error {
	u, err := url.Parse(cfg.APIURL)
	if err != nil {
		return fmt.Errorf("api_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api_url: scheme must be http or https, but is %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("api_url: no host given")
	}
	if cfg.StateFile == "" {
		return fmt.Errorf("state_file: not set to path")
	}
	if cfg.DownloadDir == "" {
		return fmt.Errorf("download_dir: not set to path")
	}
	if _, err := i18n.ParseLocale(cfg.Language); err != nil {
		return fmt.Errorf("language: %w", err)
	}

	return nil
}

// DefaultStateFile gives the default location of the state file.
func DefaultStateFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".vadm", "state.toml")
	}
	return filepath.Join(home, ".vadm", "state.toml")
}

// DefaultConfigFile gives the location probed for a config file when none is
// given.
func DefaultConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".vadm", "config.toml")
	}
	return filepath.Join(home, ".vadm", "config.toml")
}

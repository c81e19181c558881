// Package config loads askbox configuration from the process environment, a
// .env secret file and an optional TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Environment keys read by Load.
const (
	EnvProviderKey       = "GOOGLE_API_KEY"
	EnvTelemetryKey      = "LANGCHAIN_API_KEY"
	EnvTelemetryEndpoint = "LANGCHAIN_ENDPOINT"
	EnvTelemetryProject  = "LANGCHAIN_PROJECT"
	EnvModel             = "ASKBOX_MODEL"
	EnvListen            = "ASKBOX_LISTEN"
	EnvTimeout           = "ASKBOX_TIMEOUT"
)

// Defaults applied when a key is found nowhere.
const (
	DefaultModel             = "gemini-2.5-flash"
	DefaultListenAddr        = ":8501"
	DefaultTimeout           = 2 * time.Minute
	DefaultTelemetryEndpoint = "https://api.smith.langchain.com"
	DefaultTelemetryProject  = "default"
	DefaultEnvFile           = ".env"
)

// Config is constructed once at startup and passed to the components that
// need it. It is never mutated afterwards.
type Config struct {
	Credentials Credentials

	// Model is the text-generation model identifier.
	Model string

	// ListenAddr is the web shell listen address (e.g. ":8501").
	ListenAddr string

	// Timeout bounds a single upstream round trip.
	Timeout time.Duration

	// Telemetry collector settings, used only when the telemetry key is present.
	TelemetryEndpoint string
	TelemetryProject  string

	// Files are the secret files that were actually read.
	Files []string
}

// Options controls where Load looks for values.
type Options struct {
	// ConfigPath is the TOML file. Empty means DefaultConfigPath().
	ConfigPath string

	// EnvFile is the .env file. Empty means DefaultEnvFile.
	EnvFile string

	// Lookup reads the process environment. Nil means os.LookupEnv.
	Lookup func(key string) (string, bool)
}

type fileConfig struct {
	ProviderAPIKey  string `toml:"provider_api_key"`
	TelemetryAPIKey string `toml:"telemetry_api_key"`
	Model           string `toml:"model"`
	Listen          string `toml:"listen"`
	Timeout         string `toml:"timeout"`

	Telemetry struct {
		Endpoint string `toml:"endpoint"`
		Project  string `toml:"project"`
	} `toml:"telemetry"`
}

// Load resolves every key in order: environment, .env file, TOML file, default.
// Missing files and secrets are not an error; a malformed .env or TOML file is.
func Load(opts Options) (*Config, error) {
	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	envPath := opts.EnvFile
	if envPath == "" {
		envPath = DefaultEnvFile
	}
	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = DefaultConfigPath()
	}

	var files []string

	dotenv, found, err := readDotEnv(envPath)
	if err != nil {
		return nil, fmt.Errorf("parsing env file %s: %w", envPath, err)
	}
	if found {
		files = append(files, envPath)
	}

	var fc fileConfig
	if configPath != "" {
		_, err := toml.DecodeFile(configPath, &fc)
		switch {
		case err == nil:
			files = append(files, configPath)
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("parsing config file %s: %w", configPath, err)
		}
	}

	r := resolver{lookup: lookup, dotenv: dotenv}

	cfg := &Config{
		Credentials: Credentials{
			Provider:  NewSecret(r.get(EnvProviderKey, fc.ProviderAPIKey, "")),
			Telemetry: NewSecret(r.get(EnvTelemetryKey, fc.TelemetryAPIKey, "")),
		},
		Model:             r.get(EnvModel, fc.Model, DefaultModel),
		ListenAddr:        r.get(EnvListen, fc.Listen, DefaultListenAddr),
		Timeout:           parseDuration(r.get(EnvTimeout, fc.Timeout, ""), DefaultTimeout),
		TelemetryEndpoint: r.get(EnvTelemetryEndpoint, fc.Telemetry.Endpoint, DefaultTelemetryEndpoint),
		TelemetryProject:  r.get(EnvTelemetryProject, fc.Telemetry.Project, DefaultTelemetryProject),
		Files:             files,
	}

	return cfg, nil
}

// TracingEnabled reports whether request tracing should be turned on.
func (c *Config) TracingEnabled() bool {
	return c.Credentials.Telemetry.Present()
}

// DefaultConfigPath returns the per-user TOML config location, or "" when
// no config directory can be determined.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "askbox", "config.toml")
}

type resolver struct {
	lookup func(string) (string, bool)
	dotenv map[string]string
}

func (r resolver) get(key, fromFile, fallback string) string {
	if v, ok := r.lookup(key); ok && v != "" {
		return v
	}
	if v := r.dotenv[key]; v != "" {
		return v
	}
	if fromFile != "" {
		return fromFile
	}
	return fallback
}

func parseDuration(v string, fallback time.Duration) time.Duration {
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

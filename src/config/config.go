// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"github.com/H0llyW00dzZ/local-ca/src/internal/duration"
	"github.com/H0llyW00dzZ/local-ca/src/internal/pki"
)

// EnvConfigPath names the environment variable holding the config file path.
const EnvConfigPath = "CONFIG_PATH"

// Backend names.
const (
	BackendNative  = "native"
	BackendOpenSSL = "openssl"
)

// Log output formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Defaults.
const (
	DefaultBaseFolder  = "/data"
	DefaultLogFilePath = "./local.log"
	DefaultLogLevel    = "info"
)

// DefaultSleepTime is the pause between two validation cycles.
var DefaultSleepTime = duration.MustParse("10 minutes")

// configFormat represents supported configuration file formats.
type configFormat int

const (
	// configFormatYAML represents YAML configuration format (.yaml, .yml)
	configFormatYAML configFormat = iota
	// configFormatJSON represents JSON configuration format (.json)
	configFormatJSON
	// configFormatTOML represents TOML configuration format (.toml)
	configFormatTOML
)

// CertificateSpec is the configuration of one managed certificate.
type CertificateSpec struct {
	CountryCode            string `mapstructure:"country_code" json:"country_code,omitempty"`
	State                  string `mapstructure:"state" json:"state,omitempty"`
	Locality               string `mapstructure:"locality" json:"locality,omitempty"`
	OrganizationName       string `mapstructure:"organization_name" json:"organization_name,omitempty"`
	OrganizationalUnitName string `mapstructure:"organizational_unit_name" json:"organizational_unit_name,omitempty"`
	CommonName             string `mapstructure:"common_name" json:"common_name,omitempty"`
	Email                  string `mapstructure:"email" json:"email"`
	// ValidFor is the certificate lifetime in days.
	ValidFor int `mapstructure:"valid_for" json:"valid_for"`
}

// Subject returns the distinguished-name part of the spec.
func (s CertificateSpec) Subject() pki.Subject {
	return pki.Subject{
		CountryCode:            s.CountryCode,
		State:                  s.State,
		Locality:               s.Locality,
		OrganizationName:       s.OrganizationName,
		OrganizationalUnitName: s.OrganizationalUnitName,
		CommonName:             s.CommonName,
		Email:                  s.Email,
	}
}

// OpenSSLConfig configures the openssl backend.
type OpenSSLConfig struct {
	Binary     string `mapstructure:"binary" json:"binary" env:"BINARY"`
	BaseConfig string `mapstructure:"base_config" json:"base_config" env:"BASE_CONFIG"`
}

// LogConfig configures the daemon logger.
type LogConfig struct {
	FilePath string `mapstructure:"file_path" json:"file_path"`
	Level    string `mapstructure:"level" json:"level" env:"LEVEL"`
	Format   string `mapstructure:"format" json:"format" env:"FORMAT"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Address is the listen address; empty disables the endpoint.
	Address string `mapstructure:"address" json:"address,omitempty" env:"ADDRESS"`
}

// Config is the runtime configuration of the daemon.
type Config struct {
	BaseFolder    string            `json:"base_folder" env:"BASE_FOLDER"`
	UseSubfolders bool              `json:"use_subfolders" env:"USE_SUBFOLDERS"`
	SleepTime     duration.Duration `json:"sleep_time" env:"SLEEP_TIME"`
	// RenewBefore renews certificates this long before they expire.
	RenewBefore duration.Duration `json:"renew_before" env:"RENEW_BEFORE"`
	Backend     string            `json:"backend" env:"BACKEND"`
	OpenSSL     OpenSSLConfig     `json:"openssl" envPrefix:"OPENSSL_"`

	CA           CertificateSpec   `json:"ca_configuration"`
	Certificates []CertificateSpec `json:"certificate_configurations"`

	Log     LogConfig     `json:"log" envPrefix:"LOG_"`
	Metrics MetricsConfig `json:"metrics" envPrefix:"METRICS_"`

	// Source is the file the configuration was read from; empty when only
	// defaults and environment were used.
	Source string `json:"-"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		BaseFolder:    DefaultBaseFolder,
		UseSubfolders: true,
		SleepTime:     DefaultSleepTime,
		Backend:       BackendNative,
		OpenSSL: OpenSSLConfig{
			Binary:     "openssl",
			BaseConfig: pki.DefaultBaseConfig,
		},
		Certificates: []CertificateSpec{},
		Log: LogConfig{
			FilePath: DefaultLogFilePath,
			Level:    DefaultLogLevel,
			Format:   LogFormatText,
		},
	}
}

// Layout returns where certificate artifacts are stored.
func (c *Config) Layout() pki.Layout {
	return pki.Layout{BaseFolder: c.BaseFolder, UseSubfolders: c.UseSubfolders}
}

// Load builds the configuration.
//
// Configuration priority:
//  1. Default values are set
//  2. CONFIG_PATH is consulted when path is empty
//  3. File values override defaults; unknown keys are ignored
//  4. Environment variables override file values
//
// When no path is available Load succeeds with Source left empty; callers
// are expected to warn that defaults are in use. The file format is
// detected from its extension (.json, .yaml, .yml or .toml).
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		raw, err := decodeRaw(data, detectConfigFormat(path))
		if err != nil {
			return nil, err
		}
		if err := validateSchema(raw); err != nil {
			return nil, err
		}
		if err := newLoader().apply(raw, cfg); err != nil {
			return nil, err
		}
		cfg.Source = path
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// detectConfigFormat determines the configuration file format based on
// its extension. Unknown extensions are read as YAML, which also accepts JSON.
func detectConfigFormat(configPath string) configFormat {
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".json":
		return configFormatJSON
	case ".toml":
		return configFormatTOML
	default:
		return configFormatYAML
	}
}

// decodeRaw parses data into a generic document for the field manager.
func decodeRaw(data []byte, format configFormat) (map[string]any, error) {
	raw := map[string]any{}

	switch format {
	case configFormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config file: %w", err)
		}
	case configFormatTOML:
		tree, err := toml.LoadBytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse TOML config file: %w", err)
		}
		raw = tree.ToMap()
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config file: %w", err)
		}
		// An empty document decodes to a nil map.
		if raw == nil {
			raw = map[string]any{}
		}
	}
	return raw, nil
}

// validate checks values that may come from any source, including the
// environment.
func (c *Config) validate() error {
	switch c.Backend {
	case BackendNative, BackendOpenSSL:
	default:
		return &ConfigurationError{Field: "backend", Value: c.Backend}
	}

	switch c.Log.Format {
	case LogFormatText, LogFormatJSON:
	default:
		return &ConfigurationError{Field: "log.format", Value: c.Log.Format}
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error", "":
	default:
		return &ConfigurationError{Field: "log.level", Value: c.Log.Level}
	}
	return nil
}

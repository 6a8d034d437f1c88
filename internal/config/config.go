// Package config owns the ambient configuration needed to construct a
// persistence.Gateway concretely — base URL, storage type, request timeout,
// token issuer and token lifetimes. The JWT signing key is not part of it. The
// core components themselves take these values as constructor arguments
// and never read configuration directly (spec §6: no environment
// configuration is owned by the dispatch/matching/accounting logic itself).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// PersistenceConfig configures the HTTP Persistence Gateway.
type PersistenceConfig struct {
	BaseURL        string        `yaml:"base_url"`
	StorageType    string        `yaml:"storage_type"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	TokenIssuer    string        `yaml:"token_issuer"`
	TokenTTL       time.Duration `yaml:"token_ttl"`
	TokenBuffer    time.Duration `yaml:"token_buffer"`
}

// CacheConfig configures the optional Redis lookup cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Addr    string        `yaml:"addr"`
	Prefix  string        `yaml:"prefix"`
	TTL     time.Duration `yaml:"ttl"`
}

// Config is the full set of ambient settings the embedder supplies when
// wiring the core.
type Config struct {
	Persistence PersistenceConfig `yaml:"persistence"`
	Cache       CacheConfig       `yaml:"cache"`
}

// Default returns the built-in defaults, grounded on the retrieval pack's
// convention of a checked-in defaults file overridable by environment
// variables (Toolkit and the teacher's service configs follow the same
// shape).
func Default() Config {
	return Config{
		Persistence: PersistenceConfig{
			BaseURL:        "http://localhost:5000",
			StorageType:    "mongo",
			RequestTimeout: 15 * time.Second,
			TokenIssuer:    "agentspec",
			TokenTTL:       10 * time.Minute,
			TokenBuffer:    5 * time.Minute,
		},
		Cache: CacheConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			Prefix:  "agentspec:spec:",
			TTL:     5 * time.Minute,
		},
	}
}

// Load reads a YAML config file at path, falling back to Default() values
// for any field the file does not set, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AGENTSPEC_PERSISTENCE_BASE_URL"); v != "" {
		cfg.Persistence.BaseURL = v
	}
	if v := os.Getenv("AGENTSPEC_PERSISTENCE_TOKEN_ISSUER"); v != "" {
		cfg.Persistence.TokenIssuer = v
	}
	if v := os.Getenv("AGENTSPEC_CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
		cfg.Cache.Enabled = true
	}
}

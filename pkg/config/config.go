// Package config provides a reusable loader for atlas-substrate configuration
// files and environment variables. It is versioned so embedders can depend on
// a stable API contract.
//
// Version: v0.1.0
package config

import (
	"strings"

	"github.com/spf13/viper"

	"atlas-substrate/pkg/utils"
)

// Version is the semantic version of this configuration package.
const Version = "v0.1.0"

// Config is the unified runtime configuration for an embedder of the
// substrate. Every field has a documented default applied by Defaults.
type Config struct {
	Conservation struct {
		// DefaultBudgetClass is a default budget_class value for embedders.
		// core.DomainCreate does not read it; its callers always pass a
		// budget class explicitly.
		DefaultBudgetClass uint8 `mapstructure:"default_budget_class" json:"default_budget_class"`
		// CASSpinRetries bounds how many times a compare-and-swap loop spins
		// before yielding the goroutine.
		CASSpinRetries int `mapstructure:"cas_spin_retries" json:"cas_spin_retries"`
	} `mapstructure:"conservation" json:"conservation"`

	Witness struct {
		// Algorithm selects the witness digest strategy: sha256, blake3, or
		// crc32.
		Algorithm string `mapstructure:"algorithm" json:"algorithm"`
	} `mapstructure:"witness" json:"witness"`

	Resonance struct {
		// HistogramCacheSize bounds the LRU cache of page dominant classes
		// (keyed by page-content fingerprint) kept by the L3 resonance engine.
		HistogramCacheSize int `mapstructure:"histogram_cache_size" json:"histogram_cache_size"`
	} `mapstructure:"resonance" json:"resonance"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
	} `mapstructure:"logging" json:"logging"`
}

// AppConfig holds the configuration loaded via Load, or Defaults until Load
// is called.
var AppConfig = Defaults()

// Defaults returns a Config populated with the substrate's built-in defaults.
func Defaults() Config {
	var c Config
	c.Conservation.DefaultBudgetClass = 50
	c.Conservation.CASSpinRetries = 64
	c.Witness.Algorithm = "sha256"
	c.Resonance.HistogramCacheSize = 256
	c.Logging.Level = "info"
	return c
}

// Load reads configuration files and merges any environment-specific
// overrides, falling back to Defaults for anything unset. The resulting
// configuration is stored in AppConfig and returned.
func Load(env string) (*Config, error) {
	c := Defaults()

	viper.SetConfigName("default")
	viper.AddConfigPath("config")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("ATLAS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, utils.Wrap(err, "load config")
		}
	} else if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, utils.Wrap(err, "merge "+env+" config")
		}
	}

	if err := viper.Unmarshal(&c); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}

	AppConfig = c
	return &c, nil
}

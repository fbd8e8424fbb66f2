// Package config loads and validates the client configuration from defaults,
// an optional YAML file, and environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces the environment variables read by Load, e.g.
// REPLICON_TENANT_COMPANYKEY maps to tenant.companykey.
const EnvPrefix = "REPLICON_"

// Load loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. The optional replicon.yaml configuration file
// 3. Default values (lowest priority)
func Load() (*Config, error) {
	return load(func(k *koanf.Koanf) error {
		// The YAML file is optional; credentials may come entirely from env.
		_ = k.Load(file.Provider("replicon.yaml"), yaml.Parser())
		return nil
	})
}

// LoadFromBytes loads configuration from an in-memory YAML document layered
// over the defaults, then the environment. Useful for embedded configs and tests.
func LoadFromBytes(b []byte) (*Config, error) {
	return load(func(k *koanf.Koanf) error {
		if err := k.Load(rawbytes.Provider(b), yaml.Parser()); err != nil {
			return fmt.Errorf("failed to parse config bytes: %w", err)
		}
		return nil
	})
}

func load(loadSource func(*koanf.Koanf) error) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := loadSource(k); err != nil {
		return nil, err
	}

	if err := k.Load(envprovider.Provider(".", envprovider.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			// REPLICON_TENANT_COMPANYKEY -> tenant.companykey
			key = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), "_", ".")
			return key, value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"api.method":            MethodPost,
		"api.correlationheader": DefaultCorrelationHeader,
		"api.retrywait":         DefaultRetryWait.String(),
		"api.maxattempts":       0,
		"api.requestspersecond": 0,
		"api.headers": map[string]string{
			"content-type": "application/json",
		},

		// Workers intentionally has no default; batch dispatch requires
		// an explicit worker count.
		"dispatch.workers": 0,

		"discovery.url": DefaultDiscoveryURL,

		"log.level":  "info",
		"log.pretty": false,
		"log.file":   "",
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}

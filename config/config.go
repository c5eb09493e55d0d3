// Package config loads simulation scenarios with koanf.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/porttwin/core/metrics"
)

// EnvPrefix marks environment variables overriding file settings.
// PT_PORT__NUM_CHARGERS=4 sets port.num_chargers.
const EnvPrefix = "PT_"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Port       PortConfig       `json:"port"`
	Boats      []BoatConfig     `json:"boats"`
	Trips      []TripConfig     `json:"trips"`
	Simulation SimulationConfig `json:"simulation"`
	Logging    LoggingConfig    `json:"logging"`
	Metrics    metrics.Config   `json:"metrics"`
}

// Load reads a YAML or JSON scenario from path, applies PT_ environment
// overrides, defaults and validation.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := loadEnv(k); err != nil {
		return nil, err
	}
	var cfg Config
	if err := unmarshal(k, &cfg); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadEnv(k *koanf.Koanf) error {
	return k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil)
}

func unmarshal(k *koanf.Koanf, out *Config) error {
	return k.UnmarshalWithConf("", out, koanf.UnmarshalConf{
		Tag: "json",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToTimeHookFunc(time.RFC3339),
			),
			WeaklyTypedInput: true,
			Result:           out,
		},
	})
}

// SetDefaults applies defaults to every section.
func (c *Config) SetDefaults() {
	for i := range c.Boats {
		c.Boats[i].SetDefaults()
	}
	c.Simulation.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section. A roster larger than the port capacity is
// accepted: the port rejects the extra boats at registration.
func (c Config) Validate() error {
	if err := c.Port.Validate(); err != nil {
		return fmt.Errorf("%w: port: %v", ErrInvalid, err)
	}
	for i, b := range c.Boats {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("%w: boats[%d]: %v", ErrInvalid, i, err)
		}
	}
	for i, t := range c.Trips {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("%w: trips[%d]: %v", ErrInvalid, i, err)
		}
	}
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("%w: simulation: %v", ErrInvalid, err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("%w: logging: %v", ErrInvalid, err)
	}
	return nil
}

// Boat returns the boat configuration with the given name.
func (c Config) Boat(name string) (BoatConfig, bool) {
	for _, b := range c.Boats {
		if b.Name == name {
			return b, true
		}
	}
	return BoatConfig{}, false
}

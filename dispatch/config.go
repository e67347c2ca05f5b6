package dispatch

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Mode selects the runtime disclosure policy the dispatcher consults
// when synthesizing failure terminals.
type Mode string

const (
	// ModeDevelopment includes error diagnostics in generated failure
	// responses.
	ModeDevelopment Mode = "development"

	// ModeProduction never discloses internal error detail to clients;
	// diagnostics go to the internal log only.
	ModeProduction Mode = "production"
)

// defaultRequestTimeout bounds a request whose handler chain neither
// advances nor terminates.
const defaultRequestTimeout = 30 * time.Second

// Config is the engine's runtime configuration.
type Config struct {
	// Mode is the disclosure policy. Defaults to production.
	Mode Mode `yaml:"mode"`

	// RequestTimeout is the per-request deadline. A handler chain that
	// neither advances nor terminates within it is abandoned and routed
	// through the error channel with a synthetic timeout error.
	// Defaults to 30s.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Mode:           ModeProduction,
		RequestTimeout: defaultRequestTimeout,
	}
}

// applyDefaults fills zero values in place.
func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeProduction
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
}

// validate rejects unknown modes.
func (c *Config) validate() error {
	switch c.Mode {
	case "", ModeDevelopment, ModeProduction:
		return nil
	default:
		return fmt.Errorf("relay: unknown mode %q", c.Mode)
	}
}

// UnmarshalYAML decodes the configuration, accepting Go duration strings
// for the request timeout ("30s", "1m30s").
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Mode           Mode   `yaml:"mode"`
		RequestTimeout string `yaml:"request_timeout"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	c.Mode = raw.Mode
	if raw.RequestTimeout != "" {
		d, err := time.ParseDuration(raw.RequestTimeout)
		if err != nil {
			return fmt.Errorf("relay: invalid request_timeout: %w", err)
		}
		c.RequestTimeout = d
	}

	return c.validate()
}

// LoadConfig reads a YAML configuration file and applies defaults to
// omitted fields.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}

	cfg.applyDefaults()
	return cfg, nil
}

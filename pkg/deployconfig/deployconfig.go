// Package deployconfig loads the CDK app's deployment settings from an
// optional YAML file with environment overrides.
package deployconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/theory-cloud/pipetheory/pkg/naming"
)

// Config drives one synthesized stack.
type Config struct {
	App         string `yaml:"app"`
	Stage       string `yaml:"stage"`
	EventSource string `yaml:"eventSource"`
	KeyPrefix   string `yaml:"keyPrefix"`
	Account     string `yaml:"account"`
	Region      string `yaml:"region"`
}

// Default returns the configuration the original single-stack deployment used.
func Default() Config {
	return Config{
		App:         "myapp",
		Stage:       "dev",
		EventSource: "myapp.users",
		KeyPrefix:   "USER#",
	}
}

// Load reads path (when it exists), applies environment overrides and
// validates the result. A missing file is not an error: env and defaults
// still apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// fall through to env + defaults
		case err != nil:
			return Config{}, fmt.Errorf("deployconfig: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("deployconfig: parse %s: %w", path, err)
			}
		}
	}

	cfg = applyEnv(cfg)
	cfg.Stage = naming.NormalizeStage(cfg.Stage)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg Config) Config {
	if v := os.Getenv("PIPETHEORY_APP"); v != "" {
		cfg.App = v
	}
	if v := os.Getenv("PIPETHEORY_STAGE"); v != "" {
		cfg.Stage = v
	}
	if v := os.Getenv("PIPETHEORY_EVENT_SOURCE"); v != "" {
		cfg.EventSource = v
	}
	if v := os.Getenv("PIPETHEORY_KEY_PREFIX"); v != "" {
		cfg.KeyPrefix = v
	}
	if v := os.Getenv("CDK_DEFAULT_ACCOUNT"); v != "" && cfg.Account == "" {
		cfg.Account = v
	}
	if v := os.Getenv("CDK_DEFAULT_REGION"); v != "" && cfg.Region == "" {
		cfg.Region = v
	}
	return cfg
}

// Validate checks the fields the builder and constructs depend on.
func (c Config) Validate() error {
	if strings.TrimSpace(c.App) == "" {
		return errors.New("deployconfig: app name is empty")
	}
	if strings.TrimSpace(c.EventSource) == "" {
		return errors.New("deployconfig: event source is empty")
	}
	if strings.TrimSpace(c.KeyPrefix) == "" {
		return errors.New("deployconfig: key prefix is empty")
	}
	return nil
}

// StackName returns the deterministic stack name for this configuration.
func (c Config) StackName() string {
	return naming.ResourceName(c.App, "user-events", c.Stage)
}

// Package config loads convoy's project configuration and the services
// manifest. Both live under the project's .convoy directory; a missing
// config file is not an error, defaults apply.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"convoy/internal/api"
	"convoy/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	convoyDir        = ".convoy"
	configFileName   = "config.yaml"
	manifestFileName = "services.yaml"
)

// Config is the project configuration loaded from .convoy/config.yaml.
// Command-line flags override these values.
type Config struct {
	// Environment is the default release target
	Environment api.Environment `yaml:"environment,omitempty"`

	// Strategy is the default batching strategy
	Strategy api.Strategy `yaml:"strategy,omitempty"`

	// RollbackOnFailure reverts successful services when a later one fails
	RollbackOnFailure bool `yaml:"rollbackOnFailure,omitempty"`

	// ServiceTimeout bounds each per-service deploy and rollback call
	ServiceTimeout Duration `yaml:"serviceTimeout,omitempty"`

	// MaxConcurrent bounds the fan-out within one batch; 0 = unbounded
	MaxConcurrent int `yaml:"maxConcurrent,omitempty"`

	// Executor configures the command executor
	Executor ExecutorConfig `yaml:"executor,omitempty"`

	// Notes configures release notes generation
	Notes NotesConfig `yaml:"notes,omitempty"`
}

// ExecutorConfig holds the default deploy and rollback commands. Services
// may override them per declaration via the deployCommand and
// rollbackCommand config keys.
type ExecutorConfig struct {
	DeployCommand   []string `yaml:"deployCommand,omitempty"`
	RollbackCommand []string `yaml:"rollbackCommand,omitempty"`
}

// NotesConfig configures the release notes generator.
type NotesConfig struct {
	// Template points at a custom notes template file
	Template string `yaml:"template,omitempty"`
}

// GetDefaultConfig returns the configuration used when no config.yaml
// exists.
func GetDefaultConfig() Config {
	return Config{
		Environment:    api.EnvironmentStaging,
		Strategy:       api.StrategyDependencyOrder,
		ServiceTimeout: Duration(10 * time.Minute),
	}
}

// ConfigFilePath returns the config file location for a project directory.
func ConfigFilePath(projectPath string) string {
	return filepath.Join(projectPath, convoyDir, configFileName)
}

// DefaultManifestPath returns the default services manifest location for a
// project directory.
func DefaultManifestPath(projectPath string) string {
	return filepath.Join(projectPath, convoyDir, manifestFileName)
}

// LoadConfig loads the project configuration, starting from defaults. A
// missing file simply yields the defaults; a malformed file is an error.
func LoadConfig(projectPath string) (Config, error) {
	path := ConfigFilePath(projectPath)
	cfg := GetDefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("ConfigLoader", "No config.yaml found at %s, using defaults", path)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("error reading config from %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}

	logging.Debug("ConfigLoader", "Loaded configuration from %s", path)
	return cfg, nil
}

// Duration wraps time.Duration so YAML values can be written the human
// way ("30s", "10m").
type Duration time.Duration

// UnmarshalYAML parses a duration string, also accepting a bare integer as
// seconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw interface{}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
		return nil
	case int:
		*d = Duration(time.Duration(v) * time.Second)
		return nil
	default:
		return fmt.Errorf("invalid duration value %v", raw)
	}
}

// MarshalYAML writes the duration in its string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

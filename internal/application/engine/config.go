package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/blackms/taskrouter-go/internal/shared"
)

// LoadConfig reads an engine configuration from a YAML file. Missing fields
// fall back to defaults; an empty path returns the defaults directly.
func LoadConfig(path string) (shared.EngineConfig, error) {
	if path == "" {
		return shared.DefaultEngineConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return shared.EngineConfig{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg shared.EngineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return shared.EngineConfig{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg.Normalize(), nil
}

package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and parsing of the capability seed file
type Loader struct {
	filePath string
}

// NewLoader creates a new seed loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads and parses the seed file
func (l *Loader) Load() (*Config, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	// Expand ${VAR} references so deployments can template node identity
	// and costs from the environment
	data = expandEnvVariables(data)

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse seed yaml: %w", err)
	}

	return &config, nil
}

// expandEnvVariables substitutes $VAR and ${VAR} in the raw YAML.
// Unset variables expand to the empty string.
func expandEnvVariables(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}

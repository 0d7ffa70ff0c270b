package schema

import (
	"encoding/json"
	"fmt"

	"github.com/creasty/defaults"
)

// LoaderConfig controls how a Loader treats rows that fail validation.
type LoaderConfig struct {
	// Strict aborts the load on the first invalid row. When false, invalid
	// rows are skipped and reported together.
	Strict bool `json:"strict" default:"true"`

	// MaxErrors bounds the failures a lenient load collects before giving up.
	// Zero or less means no bound.
	MaxErrors int `json:"max_errors,omitempty" default:"100"`
}

// NewLoaderConfig returns the default configuration.
func NewLoaderConfig() LoaderConfig {
	var cfg LoaderConfig
	if err := defaults.Set(&cfg); err != nil {
		panic(fmt.Sprintf("schema: applying loader defaults: %v", err))
	}
	return cfg
}

// ParseLoaderConfig reads a JSON configuration object on top of the defaults.
// Empty input yields the defaults.
func ParseLoaderConfig(data []byte) (LoaderConfig, error) {
	cfg := NewLoaderConfig()
	if len(data) == 0 {
		return cfg, nil
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return LoaderConfig{}, fmt.Errorf("failed to parse loader config: %w", err)
	}

	return cfg, nil
}

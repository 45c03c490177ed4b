package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Association is one declared association on a model. Declarations cover
// what foreign keys alone cannot express: has_many :through, polymorphic
// interfaces, and association renames.
type Association struct {
	Name        string `yaml:"name"`
	Table       string `yaml:"table,omitempty"`
	ForeignKey  string `yaml:"foreign_key,omitempty"`
	Through     string `yaml:"through,omitempty"`
	As          string `yaml:"as,omitempty"`
	Polymorphic bool   `yaml:"polymorphic,omitempty"`
}

// ModelConfig groups a table's declared associations by kind.
type ModelConfig struct {
	BelongsTo []Association `yaml:"belongs_to,omitempty"`
	HasMany   []Association `yaml:"has_many,omitempty"`
	HasOne    []Association `yaml:"has_one,omitempty"`
}

// Config is the parsed associations file.
type Config struct {
	Models   map[string]ModelConfig `yaml:"models"`
	Loggable []string               `yaml:"loggable"`
}

// DefaultLoggable is the static fallback used when no loggable capability
// list is declared. Discovery from a live object graph is deliberately not
// attempted; the capability list is explicit configuration.
var DefaultLoggable = []string{"Client", "Job", "Task"}

// LoadAssociations parses the associations YAML file. A missing file is not
// an error: generation then runs with foreign-key inference only.
func LoadAssociations(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading %s: %v", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %v", path, err)
	}

	for table, mc := range cfg.Models {
		for _, assoc := range append(append(append([]Association{}, mc.BelongsTo...), mc.HasMany...), mc.HasOne...) {
			if assoc.Name == "" {
				return nil, fmt.Errorf("parsing %s: model %q has an association with no name", path, table)
			}
		}
	}

	return &cfg, nil
}

// LoggableModels returns the declared loggable list, falling back to the
// static default when nothing is declared.
func (c *Config) LoggableModels() []string {
	if c == nil || len(c.Loggable) == 0 {
		return append([]string(nil), DefaultLoggable...)
	}
	return append([]string(nil), c.Loggable...)
}

// ModelFor returns the declared config for a table, if any.
func (c *Config) ModelFor(table string) (ModelConfig, bool) {
	if c == nil || c.Models == nil {
		return ModelConfig{}, false
	}
	mc, ok := c.Models[table]
	return mc, ok
}

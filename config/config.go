// Package config loads oak's YAML configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the name of the configuration file searched for.
const FileName = ".oak.yaml"

type Config struct {
	Log       LogConfig                 `yaml:"log"`
	Parse     ParseConfig               `yaml:"parse"`
	Languages map[string]LanguageConfig `yaml:"languages"`
	JSON      JSONConfig                `yaml:"json"`
	Server    ServerConfig              `yaml:"server"`

	// Path is the file the configuration was read from, empty for
	// defaults.
	Path string `yaml:"-"`
}

type LogConfig struct {
	// Verbosity follows commonlog: -4 silences everything, 0 logs notices,
	// 2 and above logs debug output.
	Verbosity int    `yaml:"verbosity"`
	File      string `yaml:"file"`
}

type ParseConfig struct {
	// StepBudget bounds lexer and parser work per document; 0 means
	// unbounded.
	StepBudget int `yaml:"step_budget"`
}

type LanguageConfig struct {
	Extensions []string `yaml:"extensions"`
}

type JSONConfig struct {
	Comments       bool `yaml:"comments"`
	TrailingCommas bool `yaml:"trailing_commas"`
	SingleQuotes   bool `yaml:"single_quotes"`
	BareKeys       bool `yaml:"bare_keys"`
}

type ServerConfig struct {
	Name string `yaml:"name"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Languages: map[string]LanguageConfig{},
		JSON:      JSONConfig{Comments: true},
		Server:    ServerConfig{Name: "oak"},
	}
}

// FromYAML parses data on top of the defaults.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if cfg.Languages == nil {
		cfg.Languages = map[string]LanguageConfig{}
	}
	if cfg.Server.Name == "" {
		cfg.Server.Name = "oak"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Parse.StepBudget < 0 {
		return fmt.Errorf("parse.step_budget must not be negative, got %d", c.Parse.StepBudget)
	}
	for name, lc := range c.Languages {
		for _, ext := range lc.Extensions {
			if ext == "" || ext == "." {
				return fmt.Errorf("languages.%s.extensions: empty extension", name)
			}
		}
	}
	return nil
}

// ToYAML serializes the configuration.
func (c *Config) ToYAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return out, nil
}

// LoadFile reads the configuration at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := FromYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Load reads the explicit file when one is given, otherwise the nearest
// .oak.yaml at or above workDir. Defaults are returned when neither exists.
func Load(explicit, workDir string) (*Config, error) {
	if explicit != "" {
		return LoadFile(explicit)
	}
	path, err := Find(workDir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// Package yaml provides YAML configuration parsing and record rendering.
package yaml

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/ochairo/certdesc/internal/domain/entities"
	"github.com/ochairo/certdesc/internal/domain/services/checks"
	"gopkg.in/yaml.v3"
)

// yamlConfig represents the raw YAML structure
type yamlConfig struct {
	Database string      `yaml:"database"`
	LogLevel string      `yaml:"log_level"`
	Output   string      `yaml:"output"`
	Checks   yamlChecks  `yaml:"checks"`
	Signing  yamlSigning `yaml:"signing"`
	Server   yamlServer  `yaml:"server"`
}

type yamlChecks struct {
	Disabled []string `yaml:"disabled"`
}

type yamlSigning struct {
	KeyFile       string `yaml:"key_file"`
	PassphraseEnv string `yaml:"passphrase_env"`
}

type yamlServer struct {
	Addr string `yaml:"addr"`
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ConfigParser parses YAML configuration files
type ConfigParser struct{}

// NewConfigParser creates a new YAML parser
func NewConfigParser() *ConfigParser {
	return &ConfigParser{}
}

// ParseFile parses a YAML configuration file
func (p *ConfigParser) ParseFile(filePath string) (*entities.Config, error) {
	//nolint:gosec // G304: filePath is the user-selected configuration file
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	return p.Parse(data)
}

// Parse parses YAML bytes into a Config, filling defaults for missing fields
func (p *ConfigParser) Parse(data []byte) (*entities.Config, error) {
	var raw yamlConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg := entities.DefaultConfig()
	applyConfig(cfg, raw)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyConfig(cfg *entities.Config, raw yamlConfig) {
	if raw.Database != "" {
		cfg.Database = raw.Database
	}
	if raw.LogLevel != "" {
		cfg.LogLevel = raw.LogLevel
	}
	if raw.Output != "" {
		cfg.Output = raw.Output
	}
	if len(raw.Checks.Disabled) > 0 {
		cfg.Checks.Disabled = raw.Checks.Disabled
	}
	if raw.Signing.KeyFile != "" {
		cfg.Signing.KeyFile = raw.Signing.KeyFile
	}
	if raw.Signing.PassphraseEnv != "" {
		cfg.Signing.PassphraseEnv = raw.Signing.PassphraseEnv
	}
	if raw.Server.Addr != "" {
		cfg.Server.Addr = raw.Server.Addr
	}
}

func validateConfig(cfg *entities.Config) error {
	if cfg.Output != entities.OutputJSON && cfg.Output != entities.OutputYAML {
		return fmt.Errorf("unsupported output format %q (want json or yaml)", cfg.Output)
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("unsupported log level %q", cfg.LogLevel)
	}

	known := checks.Names(checks.Default())
	for _, name := range cfg.Checks.Disabled {
		if !slices.Contains(known, name) {
			return fmt.Errorf("unknown check %q in checks.disabled (known: %s)", name, strings.Join(known, ", "))
		}
	}
	return nil
}

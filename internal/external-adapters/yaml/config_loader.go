package yaml

import (
	"fmt"
	"os"

	"github.com/ochairo/certdesc/internal/domain/entities"
)

// ConfigEnvVar names the configuration file when no path is given
const ConfigEnvVar = "CERTDESC_CONFIG"

// ConfigLoader resolves and loads the configuration file
type ConfigLoader struct {
	parser *ConfigParser
}

// NewConfigLoader creates a new loader
func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{parser: NewConfigParser()}
}

// Load reads the configuration from path, or from $CERTDESC_CONFIG when path
// is empty. Without either, defaults are returned.
func (l *ConfigLoader) Load(path string) (*entities.Config, error) {
	if path == "" {
		path = os.Getenv(ConfigEnvVar)
	}
	if path == "" {
		return entities.DefaultConfig(), nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	return l.parser.ParseFile(path)
}

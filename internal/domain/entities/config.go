package entities

// Config represents the certdesc configuration file
type Config struct {
	Database string
	LogLevel string
	Output   string // "json" or "yaml"
	Checks   ChecksConfig
	Signing  SigningConfig
	Server   ServerConfig
}

// ChecksConfig selects which checks of the battery run
type ChecksConfig struct {
	Disabled []string
}

// SigningConfig configures OpenPGP signing of exported records
type SigningConfig struct {
	KeyFile       string
	PassphraseEnv string // Name of the environment variable holding the key passphrase
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr string
}

// Output formats
const (
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() *Config {
	return &Config{
		Database: "./data/certdesc.db",
		LogLevel: "info",
		Output:   OutputJSON,
		Signing: SigningConfig{
			PassphraseEnv: "CERTDESC_KEY_PASSPHRASE",
		},
		Server: ServerConfig{
			Addr: ":8095",
		},
	}
}

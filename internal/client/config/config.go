package config

import "time"

// Config holds runtime settings for the gophauth CLI.
//
// Units: RequestTimeout is a time.Duration (e.g., 5*time.Second).
type Config struct {
	ServerEndpointAddr string        `env:"GOPHAUTH_SERVER_ADDR"`
	DBPath             string        `env:"GOPHAUTH_CLIENT_DB"`
	RequestTimeout     time.Duration `env:"GOPHAUTH_REQUEST_TIMEOUT"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.DBPath = "gophauth.db"
	c.RequestTimeout = 5 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	parseFlags(cfg)
	return cfg, nil
}

package config

import "time"

// Config holds runtime settings for the offline client.
type Config struct {
	ServerURL           string        `mapstructure:"server_url"`
	DBPath              string        `mapstructure:"db_path"`
	OnlineCheckInterval time.Duration `mapstructure:"online_check_interval"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
	LogFormat           string        `mapstructure:"log_format"`
	LogLevel            string        `mapstructure:"log_level"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.DBPath = "cvs.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.LogFormat = "console"
	c.LogLevel = "info"
}

// LoadConfig applies defaults, then the JSON file, environment and flags
// found in args (usually os.Args[1:]). Later sources take precedence.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

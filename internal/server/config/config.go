// Package config assembles the server configuration from defaults, an
// optional JSON file, environment variables and command-line flags, in that
// order of precedence (later wins).
package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/cvgenius/internal/common"
	"github.com/dmitrijs2005/cvgenius/internal/flagx"
)

const (
	LimiterMemory = "memory"
	LimiterRedis  = "redis"
)

// Config holds runtime settings for the CVGenius API server.
//
// Admin credentials (ADMIN_USERNAME, ADMIN_PWD_HASH_B64, JWT_SECRET,
// ADMIN_TOTP_SECRET) are not part of it: they are read per request by
// admin.EnvStore so a missing secret fails a single login, not startup.
type Config struct {
	HTTPAddr       string        `mapstructure:"http_addr"`
	DatabaseDSN    string        `mapstructure:"database_dsn"`
	AllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
	TrustedProxies []string      `mapstructure:"trusted_proxies"`
	SecureCookies  bool          `mapstructure:"secure_cookies"`
	LogFormat      string        `mapstructure:"log_format"`
	LogLevel       string        `mapstructure:"log_level"`
	ShutdownGrace  time.Duration `mapstructure:"shutdown_grace"`

	Limiter          string        `mapstructure:"limiter_backend"`
	LoginMaxFailures int           `mapstructure:"login_max_failures"`
	LockoutDuration  time.Duration `mapstructure:"lockout_duration"`
	RedisAddr        string        `mapstructure:"redis_addr"`
	RedisPassword    string        `mapstructure:"redis_password"`
	RedisDB          int           `mapstructure:"redis_db"`

	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`

	LocatorURL     string        `mapstructure:"ip_locator_url"`
	LocatorTimeout time.Duration `mapstructure:"ip_locator_timeout"`

	ConfigAPIURL       string `mapstructure:"config_api_url"`
	VercelToken        string `mapstructure:"vercel_token"`
	VercelProjectID    string `mapstructure:"vercel_project_id"`
	AuditEncryptionKey string `mapstructure:"audit_encryption_key"`
	AuditS3Bucket      string `mapstructure:"audit_s3_bucket"`
	AuditS3Region      string `mapstructure:"audit_s3_region"`
	AuditS3Endpoint    string `mapstructure:"audit_s3_endpoint"`
	AuditS3AccessKey   string `mapstructure:"audit_s3_access_key"`
	AuditS3SecretKey   string `mapstructure:"audit_s3_secret_key"`

	StatsSchedule string `mapstructure:"stats_schedule"`
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.DatabaseDSN = ""
	c.AllowedOrigins = []string{"http://localhost:3000"}
	c.TrustedProxies = nil
	c.SecureCookies = false
	c.LogFormat = "json"
	c.LogLevel = "info"
	c.ShutdownGrace = 10 * time.Second

	c.Limiter = LimiterMemory
	c.LoginMaxFailures = 5
	c.LockoutDuration = 15 * time.Minute
	c.RedisAddr = "127.0.0.1:6379"
	c.RedisPassword = ""
	c.RedisDB = 0

	c.AccessTokenTTL = common.AccessTokenTTL
	c.RefreshTokenTTL = common.RefreshTokenTTL

	c.LocatorURL = "http://ip-api.com/json/"
	c.LocatorTimeout = 2 * time.Second

	c.ConfigAPIURL = "https://api.vercel.com"
	c.AuditS3Region = "eu-west-1"

	c.StatsSchedule = "@every 1h"
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Limiter {
	case LimiterMemory, LimiterRedis:
	default:
		return fmt.Errorf("unknown limiter backend %q", c.Limiter)
	}
	if c.LoginMaxFailures <= 0 {
		return fmt.Errorf("login_max_failures must be positive, got %d", c.LoginMaxFailures)
	}
	if c.LockoutDuration <= 0 {
		return fmt.Errorf("lockout_duration must be positive, got %s", c.LockoutDuration)
	}
	return nil
}

// AuditMirrorEnabled reports whether the config API mirror has all it needs.
func (c *Config) AuditMirrorEnabled() bool {
	return c.VercelToken != "" && c.VercelProjectID != "" && c.AuditEncryptionKey != ""
}

// LoadConfig builds a Config: defaults, then the JSON file named by -c,
// then environment variables, then flags from args (usually os.Args[1:]).
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path := flagx.ConfigFileFlag(args); path != "" {
		if err := parseJSON(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

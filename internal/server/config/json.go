package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/cvgenius/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Only non-zero values
// override the current Config.
type JsonConfig struct {
	HTTPAddr         string         `json:"http_addr"`
	DatabaseDSN      string         `json:"database_dsn"`
	AllowedOrigins   []string       `json:"cors_allowed_origins"`
	TrustedProxies   []string       `json:"trusted_proxies"`
	SecureCookies    *bool          `json:"secure_cookies"`
	LogFormat        string         `json:"log_format"`
	LogLevel         string         `json:"log_level"`
	ShutdownGrace    timex.Duration `json:"shutdown_grace"`
	Limiter          string         `json:"limiter_backend"`
	LoginMaxFailures int            `json:"login_max_failures"`
	LockoutDuration  timex.Duration `json:"lockout_duration"`
	RedisAddr        string         `json:"redis_addr"`
	RedisDB          int            `json:"redis_db"`
	AccessTokenTTL   timex.Duration `json:"access_token_ttl"`
	RefreshTokenTTL  timex.Duration `json:"refresh_token_ttl"`
	LocatorURL       string         `json:"ip_locator_url"`
	LocatorTimeout   timex.Duration `json:"ip_locator_timeout"`
	ConfigAPIURL     string         `json:"config_api_url"`
	AuditS3Bucket    string         `json:"audit_s3_bucket"`
	AuditS3Region    string         `json:"audit_s3_region"`
	AuditS3Endpoint  string         `json:"audit_s3_endpoint"`
	StatsSchedule    string         `json:"stats_schedule"`
}

// parseJSON overlays the JSON file at path onto cfg. Secrets are
// deliberately absent from JsonConfig; they come from the environment.
func parseJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.HTTPAddr, jc.HTTPAddr)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	if len(jc.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = jc.AllowedOrigins
	}
	if len(jc.TrustedProxies) > 0 {
		cfg.TrustedProxies = jc.TrustedProxies
	}
	if jc.SecureCookies != nil {
		cfg.SecureCookies = *jc.SecureCookies
	}
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.LogLevel, jc.LogLevel)
	setDuration(&cfg.ShutdownGrace, jc.ShutdownGrace)
	setString(&cfg.Limiter, jc.Limiter)
	if jc.LoginMaxFailures != 0 {
		cfg.LoginMaxFailures = jc.LoginMaxFailures
	}
	setDuration(&cfg.LockoutDuration, jc.LockoutDuration)
	setString(&cfg.RedisAddr, jc.RedisAddr)
	if jc.RedisDB != 0 {
		cfg.RedisDB = jc.RedisDB
	}
	setDuration(&cfg.AccessTokenTTL, jc.AccessTokenTTL)
	setDuration(&cfg.RefreshTokenTTL, jc.RefreshTokenTTL)
	setString(&cfg.LocatorURL, jc.LocatorURL)
	setDuration(&cfg.LocatorTimeout, jc.LocatorTimeout)
	setString(&cfg.ConfigAPIURL, jc.ConfigAPIURL)
	setString(&cfg.AuditS3Bucket, jc.AuditS3Bucket)
	setString(&cfg.AuditS3Region, jc.AuditS3Region)
	setString(&cfg.AuditS3Endpoint, jc.AuditS3Endpoint)
	setString(&cfg.StatsSchedule, jc.StatsSchedule)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}

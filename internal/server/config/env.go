package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// envBindings maps Config keys (mapstructure tags) to environment variables.
var envBindings = map[string]string{
	"http_addr":            "HTTP_ADDR",
	"database_dsn":         "DATABASE_DSN",
	"cors_allowed_origins": "CORS_ALLOWED_ORIGINS",
	"trusted_proxies":      "TRUSTED_PROXIES",
	"secure_cookies":       "SECURE_COOKIES",
	"log_format":           "LOG_FORMAT",
	"log_level":            "LOG_LEVEL",
	"shutdown_grace":       "SHUTDOWN_GRACE",
	"limiter_backend":      "LIMITER_BACKEND",
	"login_max_failures":   "LOGIN_MAX_FAILURES",
	"lockout_duration":     "LOCKOUT_DURATION",
	"redis_addr":           "REDIS_ADDR",
	"redis_password":       "REDIS_PASSWORD",
	"redis_db":             "REDIS_DB",
	"access_token_ttl":     "ACCESS_TOKEN_TTL",
	"refresh_token_ttl":    "REFRESH_TOKEN_TTL",
	"ip_locator_url":       "IP_LOCATOR_URL",
	"ip_locator_timeout":   "IP_LOCATOR_TIMEOUT",
	"config_api_url":       "CONFIG_API_URL",
	"vercel_token":         "VERCEL_TOKEN",
	"vercel_project_id":    "VERCEL_PROJECT_ID",
	"audit_encryption_key": "AUDIT_ENCRYPTION_KEY",
	"audit_s3_bucket":      "AUDIT_S3_BUCKET",
	"audit_s3_region":      "AUDIT_S3_REGION",
	"audit_s3_endpoint":    "AUDIT_S3_ENDPOINT",
	"audit_s3_access_key":  "AUDIT_S3_ACCESS_KEY",
	"audit_s3_secret_key":  "AUDIT_S3_SECRET_KEY",
	"stats_schedule":       "STATS_SCHEDULE",
}

// parseEnv overlays environment variables onto cfg. Unset variables leave
// the current value untouched.
func parseEnv(cfg *Config) error {
	v := viper.New()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s: %w", env, err)
		}
	}

	settings := v.AllSettings()
	if len(settings) == 0 {
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(settings); err != nil {
		return fmt.Errorf("decode environment: %w", err)
	}
	return nil
}

package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/cvgenius/internal/flagx"
)

// parseFlags overlays command-line flags onto cfg.
//
//	-a          HTTP listen address
//	-d          PostgreSQL DSN (empty keeps CVs in memory)
//	-limiter    login limiter backend: memory | redis
//	-redis      redis address for -limiter redis
//	-log-format json | console
//	-log-level  debug | info | warn | error
//	-lockout    lockout window, minutes
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-limiter", "-redis", "-log-format", "-log-level", "-lockout"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.HTTPAddr, "a", cfg.HTTPAddr, "address and port to listen on")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.Limiter, "limiter", cfg.Limiter, "login limiter backend (memory|redis)")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "redis address")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (json|console)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	lockout := fs.Int("lockout", int(cfg.LockoutDuration.Minutes()), "lockout window (in minutes)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.LockoutDuration = time.Duration(*lockout) * time.Minute
	return nil
}

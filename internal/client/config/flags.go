package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/cvgenius/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags. Only
// the flags handled here are passed to the flag set.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-db", "-i", "-log-format"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the CVGenius API")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path of the local CV store")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (json|console)")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	return nil
}

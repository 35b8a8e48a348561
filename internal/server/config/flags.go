package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/sobrerodas/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-b string   public base URL used in reset links
//	-d string   PostgreSQL DSN
//	-s string   session/flash signing key
//	-t int      session lifetime, minutes
//	-l string   log level
//	-m string   media backend ("local" or "s3")
//	-u string   upload directory for the local media backend
//	-dev        surface reset links when no notifier is configured
//
// Arguments are filtered through flagx.FilterArgs first so flags owned by
// other layers (-c, cobra subcommands) are left alone.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:],
		[]string{"-a", "-b", "-d", "-s", "-t", "-l", "-m", "-u"},
		"-dev")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.BaseURL, "b", config.BaseURL, "public base url")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	sessionTTL := fs.Int("t", int(config.SessionTTL.Minutes()), "session ttl (in minutes)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.MediaBackend, "m", config.MediaBackend, "media backend")
	fs.StringVar(&config.UploadDir, "u", config.UploadDir, "upload directory")
	fs.BoolVar(&config.DevMode, "dev", config.DevMode, "development mode")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTTL = time.Duration(*sessionTTL) * time.Minute
}

package config

import (
	"os"
	"time"

	"github.com/spf13/pflag"
)

// ClientOptions holds the configuration values for the terminal client.
type ClientOptions struct {
	// URL is the base address of the trip server.
	URL string
	// DBPath is the device store file.
	DBPath string
	// UserID owns every trip the client reads or writes.
	UserID string
	// Token is sent as a bearer credential.
	Token string
	// CAFile is an optional CA bundle for an HTTPS server.
	CAFile string
	// Timeout bounds each HTTP request.
	Timeout time.Duration
	// DeletePolicy is "local-first" or "remote-first".
	DeletePolicy string
	// LogLevel is a zap level name.
	LogLevel string
}

// Client defaults.
const (
	DefaultServerURL    = "http://localhost:8080"
	DefaultDBPath       = "placeRealm.db"
	DefaultTimeout      = 10 * time.Second
	DefaultDeletePolicy = "local-first"
	DefaultClientLevel  = "warn"
)

// BindFlags registers the client flags on fs. Environment variables, when
// set, replace the built-in defaults; explicit flags win over both.
func (o *ClientOptions) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.URL, "url", env("TRIPSYNC_URL", DefaultServerURL), "server base URL")
	fs.StringVar(&o.DBPath, "db", env("TRIPSYNC_DB", DefaultDBPath), "path to the device store")
	fs.StringVar(&o.UserID, "user", os.Getenv("TRIPSYNC_USER"), "user id owning the trips")
	fs.StringVar(&o.Token, "token", os.Getenv("TRIPSYNC_TOKEN"), "bearer token")
	fs.StringVar(&o.CAFile, "ca", os.Getenv("TRIPSYNC_CA"), "path to CA cert for HTTPS")
	fs.DurationVar(&o.Timeout, "timeout", envDurationOr("TRIPSYNC_TIMEOUT", DefaultTimeout), "HTTP request timeout")
	fs.StringVar(&o.DeletePolicy, "delete-policy", env("TRIPSYNC_DELETE_POLICY", DefaultDeletePolicy), "local-first | remote-first")
	fs.StringVar(&o.LogLevel, "log-level", env("TRIPSYNC_LOG_LEVEL", DefaultClientLevel), "log level")
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// Package config provides functionality for managing configuration options
// for the server and the client using command-line flags, environment
// variables and an optional JSON file.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Duration is a time.Duration that reads "90s"-style strings from JSON.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var n int64
		if err2 := json.Unmarshal(b, &n); err2 != nil {
			return fmt.Errorf("duration must be a string like \"1h\": %w", err)
		}
		*d = Duration(n)
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Options holds the configuration values for the server.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"server_address"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `json:"database_dsn"`

	// Config is the path to the Config file.
	Config string `json:"-"`

	// LogLevel is a zap level name.
	LogLevel string `json:"log_level"`

	// JWTSecret enables bearer auth on /api when set.
	JWTSecret string `json:"jwt_secret"`

	// TLSCert and TLSKey switch the server to HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`

	// Retention is how long deleted places are kept before purge.
	Retention Duration `json:"retention"`

	// CleanInterval is how often the purge runs.
	CleanInterval Duration `json:"clean_interval"`
}

// Defaults.
const (
	DefaultAddress       = "localhost:8080"
	DefaultConfigFile    = "config.json"
	DefaultLogLevel      = "info"
	DefaultRetention     = 30 * 24 * time.Hour
	DefaultCleanInterval = time.Hour
)

// Parse reads server options from args (without the program name).
// Precedence, lowest first: defaults, flags, JSON config file, environment.
func Parse(args []string) (*Options, error) {
	options := &Options{}
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	var retention, cleanInterval time.Duration
	fs.StringVar(&options.Port, "a", DefaultAddress, "run on ip:port server")
	fs.StringVar(&options.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&options.Config, "config", DefaultConfigFile, "path to config file")
	fs.StringVar(&options.Config, "c", DefaultConfigFile, "path to config file (shorthand)")
	fs.StringVar(&options.LogLevel, "l", DefaultLogLevel, "log level")
	fs.StringVar(&options.JWTSecret, "jwt-secret", "", "HS256 secret for bearer tokens; empty disables auth")
	fs.StringVar(&options.TLSCert, "tls-cert", "", "path to server certificate")
	fs.StringVar(&options.TLSKey, "tls-key", "", "path to server key")
	fs.DurationVar(&retention, "retention", DefaultRetention, "how long deleted places are kept")
	fs.DurationVar(&cleanInterval, "clean-interval", DefaultCleanInterval, "how often deleted places are purged")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	options.Retention = Duration(retention)
	options.CleanInterval = Duration(cleanInterval)

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		data, err := os.ReadFile(options.Config)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("error while reading config file: %w", err)
		default:
			if err := json.Unmarshal(data, options); err != nil {
				return nil, fmt.Errorf("error while parsing config file: %w", err)
			}
		}
	}

	envString("SERVER_ADDRESS", &options.Port)
	envString("DATABASE_DSN", &options.DatabaseDSN)
	envString("LOG_LEVEL", &options.LogLevel)
	envString("JWT_SECRET", &options.JWTSecret)
	envString("TLS_CERT", &options.TLSCert)
	envString("TLS_KEY", &options.TLSKey)
	if err := envDuration("RETENTION", &options.Retention); err != nil {
		return nil, err
	}
	if err := envDuration("CLEAN_INTERVAL", &options.CleanInterval); err != nil {
		return nil, err
	}

	if (options.TLSCert == "") != (options.TLSKey == "") {
		return nil, errors.New("tls-cert and tls-key must be set together")
	}
	return options, nil
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envDuration(key string, dst *Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		if n, nerr := strconv.ParseInt(v, 10, 64); nerr == nil {
			*dst = Duration(time.Duration(n) * time.Second)
			return nil
		}
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = Duration(d)
	return nil
}

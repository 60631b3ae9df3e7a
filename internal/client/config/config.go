package config

import "time"

// Config holds runtime settings for the didkeeper CLI.
//
// Fields:
//   - ServerURL: base URL of the Auth API.
//   - DatabasePath: SQLite file holding the identity and the session.
//   - RequestTimeout: upper bound for every API call.
//   - TokenLifetime: session lifetime assumed when the server does not state one.
//   - DIDMethod: method segment of newly created DIDs.
//   - S3*: optional bucket for remote encrypted backups.
type Config struct {
	ServerURL      string
	DatabasePath   string
	RequestTimeout time.Duration
	TokenLifetime  time.Duration
	DIDMethod      string

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	// LogLevel filters the diagnostics written to stderr.
	LogLevel string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8000"
	c.DatabasePath = "didkeeper.db"
	c.RequestTimeout = 30 * time.Second
	c.TokenLifetime = 24 * time.Hour
	c.DIDMethod = "prism"
	c.S3Region = "us-east-1"
	c.LogLevel = "warn"
}

// RemoteBackupEnabled reports whether a bucket is configured.
func (c *Config) RemoteBackupEnabled() bool {
	return c.S3Bucket != ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the config file (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}

// Package config handles configuration for the reference Auth API server,
// including defaults, a JSON or YAML file overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the Auth API server.
//
// Fields:
//   - HTTPAddr: bind address of the HTTP API.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty keeps everything in memory.
//   - SecretKey: HMAC secret for signing session tokens (HS256). Do not use the default in prod.
//   - AccessTokenValidityDuration: session token lifetime.
//   - ChallengeTTL: how long an issued challenge can be answered.
//   - ChallengeRate / ChallengeBurst: per-DID challenge issuance limit.
//   - AllowedDIDMethods: accepted DID methods at verify time; empty accepts any.
//   - LogLevel: minimum level of the JSON log on stdout.
type Config struct {
	HTTPAddr                    string
	DatabaseDSN                 string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	ChallengeTTL                time.Duration
	ChallengeRate               float64
	ChallengeBurst              int
	AllowedDIDMethods           []string
	LogLevel                    string
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey must be overridden outside of development.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8000"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 24 * time.Hour
	c.ChallengeTTL = 5 * time.Minute
	c.ChallengeRate = 1
	c.ChallengeBurst = 5
	c.AllowedDIDMethods = nil
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional config file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}

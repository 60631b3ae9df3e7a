package config

import (
	"github.com/dmitrijs2005/didkeeper/internal/filex"
	"github.com/dmitrijs2005/didkeeper/internal/flagx"
	"github.com/dmitrijs2005/didkeeper/internal/timex"
)

// FileConfig is the on-disk form of Config, read from JSON or YAML.
type FileConfig struct {
	HTTPAddr                    string         `json:"http_addr" yaml:"http_addr"`
	DatabaseDSN                 string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey                   string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	ChallengeTTL                timex.Duration `json:"challenge_ttl" yaml:"challenge_ttl"`
	ChallengeRate               float64        `json:"challenge_rate" yaml:"challenge_rate"`
	ChallengeBurst              int            `json:"challenge_burst" yaml:"challenge_burst"`
	AllowedDIDMethods           []string       `json:"allowed_did_methods" yaml:"allowed_did_methods"`
	LogLevel                    string         `json:"log_level" yaml:"log_level"`
}

// parseFile overlays cfg with the file named by -c/-config. Zero values in
// the file keep the current setting. Read or decode errors panic.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	var fc FileConfig
	if err := filex.DecodeFile(path, &fc); err != nil {
		panic(err)
	}
	fc.apply(cfg)
}

func (fc *FileConfig) apply(cfg *Config) {
	if fc.HTTPAddr != "" {
		cfg.HTTPAddr = fc.HTTPAddr
	}
	if fc.DatabaseDSN != "" {
		cfg.DatabaseDSN = fc.DatabaseDSN
	}
	if fc.SecretKey != "" {
		cfg.SecretKey = fc.SecretKey
	}
	if fc.AccessTokenValidityDuration.Duration > 0 {
		cfg.AccessTokenValidityDuration = fc.AccessTokenValidityDuration.Duration
	}
	if fc.ChallengeTTL.Duration > 0 {
		cfg.ChallengeTTL = fc.ChallengeTTL.Duration
	}
	if fc.ChallengeRate > 0 {
		cfg.ChallengeRate = fc.ChallengeRate
	}
	if fc.ChallengeBurst > 0 {
		cfg.ChallengeBurst = fc.ChallengeBurst
	}
	if len(fc.AllowedDIDMethods) > 0 {
		cfg.AllowedDIDMethods = fc.AllowedDIDMethods
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
}

package config

import (
	"github.com/dmitrijs2005/didkeeper/internal/filex"
	"github.com/dmitrijs2005/didkeeper/internal/flagx"
	"github.com/dmitrijs2005/didkeeper/internal/timex"
)

// FileConfig is the on-disk form of Config. Durations are timex.Duration so
// they can be written as "30s" or as integer nanoseconds.
type FileConfig struct {
	ServerURL      string         `json:"server_url" yaml:"server_url"`
	DatabasePath   string         `json:"database_path" yaml:"database_path"`
	RequestTimeout timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	TokenLifetime  timex.Duration `json:"token_lifetime" yaml:"token_lifetime"`
	DIDMethod      string         `json:"did_method" yaml:"did_method"`

	S3Bucket    string `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region    string `json:"s3_region" yaml:"s3_region"`
	S3Endpoint  string `json:"s3_endpoint" yaml:"s3_endpoint"`
	S3AccessKey string `json:"s3_access_key" yaml:"s3_access_key"`
	S3SecretKey string `json:"s3_secret_key" yaml:"s3_secret_key"`

	LogLevel string `json:"log_level" yaml:"log_level"`
}

// parseFile overlays cfg with the file named by -c/-config. Only keys present
// in the file replace the current values. Read or decode errors panic.
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
	setString(&cfg.ServerURL, fc.ServerURL)
	setString(&cfg.DatabasePath, fc.DatabasePath)
	setString(&cfg.DIDMethod, fc.DIDMethod)
	setString(&cfg.S3Bucket, fc.S3Bucket)
	setString(&cfg.S3Region, fc.S3Region)
	setString(&cfg.S3Endpoint, fc.S3Endpoint)
	setString(&cfg.S3AccessKey, fc.S3AccessKey)
	setString(&cfg.S3SecretKey, fc.S3SecretKey)
	setString(&cfg.LogLevel, fc.LogLevel)

	if fc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.TokenLifetime.Duration > 0 {
		cfg.TokenLifetime = fc.TokenLifetime.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

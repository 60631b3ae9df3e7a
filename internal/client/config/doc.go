// Package config loads runtime configuration for the didkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or YAML file selected with -c or -config. Files ending
//     in .yaml or .yml are read as YAML.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the Auth API
//	-d string   path of the local SQLite database
//	-t int      request timeout (seconds)
//	-m string   DID method for new identities
//
// # File schema
//
//	server_url: http://localhost:8000
//	database_path: didkeeper.db
//	request_timeout: 30s
//	token_lifetime: 24h
//	did_method: prism
//	s3_bucket: didkeeper-backups
//	s3_region: us-east-1
//	s3_endpoint: http://127.0.0.1:9000
//	s3_access_key: minioadmin
//	s3_secret_key: minioadmin
package config

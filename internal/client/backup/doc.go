// Package backup serializes an identity for safekeeping: a JSON backup file
// (optionally sealed with a passphrase), a 24-word recovery phrase, and an
// encrypted copy in an S3-compatible bucket.
package backup

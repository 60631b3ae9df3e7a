// Package common contains shared constants and sentinel errors used across
// didkeeper components.
package common

// Logical keys of the local device storage.
const (
	StorageKeyDID         = "did"
	StorageKeyPrivateKey  = "private_key"
	StorageKeyToken       = "jwt"
	StorageKeyTokenExpiry = "jwt_expiry"
)

// AuthorizationHeaderName is the HTTP header carrying the bearer token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the session token in the authorization header.
const BearerPrefix = "Bearer "

// DefaultDIDMethod is used when a new identity is created without an explicit method.
const DefaultDIDMethod = "prism"

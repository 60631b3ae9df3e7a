package services

import "errors"

var (
	ErrInvalidDID        = errors.New("Invalid DID format. Must start with 'did:'")
	ErrRateLimited       = errors.New("Too many challenge requests. Please retry later.")
	ErrChallengeInvalid  = errors.New("Invalid or expired challenge. Please request a new challenge.")
	ErrSignatureInvalid  = errors.New("Signature verification failed. Authentication unsuccessful.")
	ErrDIDMismatch       = errors.New("DID does not match the authenticated session")
	ErrInvalidCampaign   = errors.New("campaign must be a JSON object")
	ErrTransactionNeeded = errors.New("transaction_id is required")
)

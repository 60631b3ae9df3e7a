// Package models defines server-side data models persisted in the database.
package models

import "time"

// Challenge is the nonce a DID has to sign to log in. One row per DID; a new
// challenge replaces the previous one.
type Challenge struct {
	DID       string
	Value     string
	ExpiresAt time.Time
	Used      bool
}

// Campaign statuses.
const (
	CampaignQueued = "queued"
)

// Campaign is a submission made by an authenticated DID. ID doubles as the
// job id returned to the client.
type Campaign struct {
	ID            string
	DID           string
	TransactionID string
	// Payload is the campaign object as submitted, in JSON.
	Payload   []byte
	Status    string
	CreatedAt time.Time
}

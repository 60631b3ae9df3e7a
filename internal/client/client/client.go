package client

import (
	"context"
	"math"
	"time"
)

// MaxExpiresIn is the largest expires_in, in seconds, that fits a time.Duration.
const MaxExpiresIn = math.MaxInt64 / int64(time.Second)

type Client interface {
	GetChallenge(ctx context.Context, did string) (*ChallengeResponse, error)
	Verify(ctx context.Context, req VerifyRequest) (*VerifyResponse, error)
	Me(ctx context.Context) (*UserInfo, error)
	Ping(ctx context.Context) error
	SubmitCampaign(ctx context.Context, req CampaignRequest) (*CampaignResponse, error)
	ListCampaigns(ctx context.Context) ([]CampaignResponse, error)
}

type ChallengeResponse struct {
	Challenge string `json:"challenge"`
	DID       string `json:"did"`
}

type VerifyRequest struct {
	DID       string `json:"did"`
	Challenge string `json:"challenge"`
	Signature string `json:"signature"`
}

type VerifyResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	DID         string `json:"did"`
	// ExpiresIn is the token lifetime in seconds, when the server states one.
	ExpiresIn *int64 `json:"expires_in,omitempty"`
}

type UserInfo struct {
	DID           string `json:"did"`
	Authenticated bool   `json:"authenticated"`
	ExpiresAt     int64  `json:"expires_at,omitempty"`
}

// CampaignRequest submits a paid campaign. TransactionID is the opaque
// reference of the payment that funded it.
type CampaignRequest struct {
	DID           string         `json:"did"`
	TransactionID string         `json:"transaction_id"`
	Campaign      map[string]any `json:"campaign"`
}

type CampaignResponse struct {
	JobID      string `json:"job_id"`
	CampaignID string `json:"campaign_id,omitempty"`
	Status     string `json:"status"`
	DID        string `json:"did,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

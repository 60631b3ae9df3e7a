package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/didkeeper/internal/client/client"
	"github.com/dmitrijs2005/didkeeper/internal/client/identity"
	"github.com/dmitrijs2005/didkeeper/internal/logging"
)

// CampaignService submits paid campaigns on behalf of the logged in identity.
type CampaignService interface {
	Submit(ctx context.Context, transactionID string, campaign map[string]any) (*client.CampaignResponse, error)
	List(ctx context.Context) ([]client.CampaignResponse, error)
}

type campaignService struct {
	client     client.Client
	identities *identity.Manager
	logger     logging.Logger
}

func NewCampaignService(c client.Client, ids *identity.Manager, logger logging.Logger) CampaignService {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &campaignService{client: c, identities: ids, logger: logger}
}

// Submit needs a stored identity and a live session; the session is
// enforced by the authorized transport, so an expired one fails before the
// request is sent.
func (s *campaignService) Submit(ctx context.Context, transactionID string, campaign map[string]any) (*client.CampaignResponse, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, ErrTransactionRequired
	}

	kp, err := s.identities.Load(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.SubmitCampaign(ctx, client.CampaignRequest{
		DID:           kp.DID,
		TransactionID: transactionID,
		Campaign:      campaign,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "campaign submitted", "did", kp.DID, "job_id", resp.JobID)
	return resp, nil
}

func (s *campaignService) List(ctx context.Context) ([]client.CampaignResponse, error) {
	return s.client.ListCampaigns(ctx)
}

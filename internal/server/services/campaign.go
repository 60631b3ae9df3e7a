package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/didkeeper/internal/logging"
	"github.com/dmitrijs2005/didkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/didkeeper/internal/server/models"
	"github.com/dmitrijs2005/didkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// CampaignRequest is a submission as received from the client.
type CampaignRequest struct {
	DID           string
	TransactionID string
	Campaign      json.RawMessage
}

type CampaignService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	metrics     *metrics.Metrics
	logger      logging.Logger

	now func() time.Time
}

func NewCampaignService(db *sql.DB, m repomanager.RepositoryManager, mtr *metrics.Metrics, logger logging.Logger) *CampaignService {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &CampaignService{db: db, repomanager: m, metrics: mtr, logger: logger, now: time.Now}
}

// Submit stores a campaign for sessionDID. The DID in the body must be the
// session's own.
func (s *CampaignService) Submit(ctx context.Context, sessionDID string, req CampaignRequest) (*models.Campaign, error) {
	if req.DID != sessionDID {
		return nil, ErrDIDMismatch
	}
	txID := strings.TrimSpace(req.TransactionID)
	if txID == "" {
		return nil, ErrTransactionNeeded
	}

	payload := bytes.TrimSpace(req.Campaign)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		payload = []byte("{}")
	}
	var obj map[string]any
	if err := json.Unmarshal(payload, &obj); err != nil {
		return nil, ErrInvalidCampaign
	}

	c := &models.Campaign{
		ID:            uuid.NewString(),
		DID:           sessionDID,
		TransactionID: txID,
		Payload:       payload,
		Status:        models.CampaignQueued,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.repomanager.Campaigns(s.db).Create(ctx, c); err != nil {
		return nil, fmt.Errorf("error creating campaign: %w", err)
	}

	s.metrics.CampaignsSubmitted.Inc()
	s.logger.Info(ctx, "campaign queued", "did", sessionDID, "job_id", c.ID)
	return c, nil
}

func (s *CampaignService) List(ctx context.Context, did string) ([]models.Campaign, error) {
	list, err := s.repomanager.Campaigns(s.db).ListByDID(ctx, did)
	if err != nil {
		return nil, fmt.Errorf("error listing campaigns: %w", err)
	}
	return list, nil
}

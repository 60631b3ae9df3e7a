package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/didkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/didkeeper/internal/server/models"
	"github.com/dmitrijs2005/didkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCampaignService() *CampaignService {
	s := NewCampaignService(nil, repomanager.NewInMemoryRepositoryManager(), metrics.New(), nil)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	s.now = func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Second)
	}
	return s
}

func TestCampaignService_SubmitAndList(t *testing.T) {
	s := newTestCampaignService()
	ctx := context.Background()
	did := "did:prism:" + "ab"

	first, err := s.Submit(ctx, did, CampaignRequest{
		DID:           did,
		TransactionID: " tx-1 ",
		Campaign:      json.RawMessage(`{"name":"spring","budget":10}`),
	})
	require.NoError(t, err)
	_, err = uuid.Parse(first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignQueued, first.Status)
	assert.Equal(t, "tx-1", first.TransactionID)
	assert.JSONEq(t, `{"name":"spring","budget":10}`, string(first.Payload))

	second, err := s.Submit(ctx, did, CampaignRequest{DID: did, TransactionID: "tx-2"})
	require.NoError(t, err)
	assert.Equal(t, "{}", string(second.Payload))

	_, err = s.Submit(ctx, "did:prism:cd", CampaignRequest{DID: "did:prism:cd", TransactionID: "tx-3"})
	require.NoError(t, err)

	list, err := s.List(ctx, did)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	empty, err := s.List(ctx, "did:prism:ef")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCampaignService_SubmitRejects(t *testing.T) {
	did := "did:prism:ab"
	tests := []struct {
		name string
		req  CampaignRequest
		want error
	}{
		{"other did", CampaignRequest{DID: "did:prism:cd", TransactionID: "tx"}, ErrDIDMismatch},
		{"missing did", CampaignRequest{TransactionID: "tx"}, ErrDIDMismatch},
		{"missing tx", CampaignRequest{DID: did, TransactionID: "  "}, ErrTransactionNeeded},
		{"array payload", CampaignRequest{DID: did, TransactionID: "tx", Campaign: json.RawMessage(`[1,2]`)}, ErrInvalidCampaign},
		{"scalar payload", CampaignRequest{DID: did, TransactionID: "tx", Campaign: json.RawMessage(`"x"`)}, ErrInvalidCampaign},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestCampaignService()
			_, err := s.Submit(context.Background(), did, tc.req)
			require.ErrorIs(t, err, tc.want)

			list, err := s.List(context.Background(), did)
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestCampaignService_StorageErrors(t *testing.T) {
	boom := errors.New("db down")
	s := NewCampaignService(nil, failingManager{err: boom}, metrics.New(), nil)
	did := "did:prism:ab"

	_, err := s.Submit(context.Background(), did, CampaignRequest{DID: did, TransactionID: "tx"})
	require.ErrorIs(t, err, boom)

	_, err = s.List(context.Background(), did)
	require.ErrorIs(t, err, boom)
}

package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/didkeeper/internal/client/client"
	"github.com/dmitrijs2005/didkeeper/internal/client/identity"
	"github.com/dmitrijs2005/didkeeper/internal/client/session"
	"github.com/dmitrijs2005/didkeeper/internal/client/storage"
)

// fakeClient implements client.Client for unit tests of the services.
type fakeClient struct {
	Challenge    string
	ChallengeErr error
	// Block, when set, holds GetChallenge until it is closed.
	Block   chan struct{}
	Entered chan struct{}

	VerifyRet *client.VerifyResponse
	VerifyErr error

	MeRet *client.UserInfo
	MeErr error

	PingErr error

	CampaignRet *client.CampaignResponse
	CampaignErr error
	ListRet     []client.CampaignResponse

	challengeCalls atomic.Int32
	verifyCalls    atomic.Int32

	mu           sync.Mutex
	LastVerify   client.VerifyRequest
	LastCampaign client.CampaignRequest
	Verified     chan struct{}
}

func (f *fakeClient) GetChallenge(ctx context.Context, did string) (*client.ChallengeResponse, error) {
	f.challengeCalls.Add(1)
	if f.Entered != nil {
		select {
		case f.Entered <- struct{}{}:
		default:
		}
	}
	if f.Block != nil {
		<-f.Block
	}
	if f.ChallengeErr != nil {
		return nil, f.ChallengeErr
	}
	return &client.ChallengeResponse{Challenge: f.Challenge, DID: did}, nil
}

func (f *fakeClient) Verify(ctx context.Context, req client.VerifyRequest) (*client.VerifyResponse, error) {
	f.verifyCalls.Add(1)
	f.mu.Lock()
	f.LastVerify = req
	f.mu.Unlock()
	if f.Verified != nil {
		defer close(f.Verified)
	}
	if f.VerifyErr != nil {
		return nil, f.VerifyErr
	}
	return f.VerifyRet, nil
}

func (f *fakeClient) Me(ctx context.Context) (*client.UserInfo, error) {
	return f.MeRet, f.MeErr
}

func (f *fakeClient) Ping(ctx context.Context) error {
	return f.PingErr
}

func (f *fakeClient) SubmitCampaign(ctx context.Context, req client.CampaignRequest) (*client.CampaignResponse, error) {
	f.mu.Lock()
	f.LastCampaign = req
	f.mu.Unlock()
	return f.CampaignRet, f.CampaignErr
}

func (f *fakeClient) ListCampaigns(ctx context.Context) ([]client.CampaignResponse, error) {
	return f.ListRet, nil
}

type fixture struct {
	mem      *storage.MemoryStorage
	ids      *identity.Manager
	sessions *session.Store
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		mem: storage.NewMemoryStorage(),
		now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	f.ids = identity.NewManager(f.mem, "", nil)
	f.sessions = session.NewStore(f.mem, func() time.Time { return f.now })
	return f
}

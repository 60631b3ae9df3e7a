package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/didkeeper/internal/client/client"
	"github.com/dmitrijs2005/didkeeper/internal/common"
	"github.com/dmitrijs2005/didkeeper/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_EndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	kp, err := f.ids.Create(ctx)
	require.NoError(t, err)
	pub, err := kp.PublicKey()
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/challenge":
			assert.Equal(t, kp.DID, r.URL.Query().Get("did"))
			_ = json.NewEncoder(w).Encode(map[string]string{"challenge": "xyz", "did": kp.DID})
		case "/auth/verify":
			var req client.VerifyRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, kp.DID, req.DID)
			assert.Equal(t, "xyz", req.Challenge)

			payload, err := cryptox.VerifyAssertion(req.Signature, pub)
			assert.NoError(t, err)
			assert.Equal(t, "xyz", payload)

			_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok123", "token_type": "bearer", "did": kp.DID})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	api := client.NewHTTPClient(srv.URL, client.NewAuthorizedClient(nil, f.sessions, nil))
	svc := NewAuthService(api, f.ids, f.sessions, 0, nil)

	require.NoError(t, svc.Login(ctx))

	tok, ok, err := f.sessions.GetToken(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok123", tok)

	expired, err := f.sessions.IsExpired(ctx)
	require.NoError(t, err)
	assert.False(t, expired)

	at, ok, err := f.sessions.ExpiresAt(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, f.now.Add(24*time.Hour).UnixMilli(), at.UnixMilli())
}

func TestLogin_NoIdentity(t *testing.T) {
	f := newFixture(t)
	fc := &fakeClient{Challenge: "xyz"}
	svc := NewAuthService(fc, f.ids, f.sessions, 0, nil)

	err := svc.Login(context.Background())
	assert.ErrorIs(t, err, common.ErrNoIdentity)
	assert.Zero(t, fc.challengeCalls.Load())
	assert.Empty(t, f.mem.Snapshot())
}

func TestLogin_FailuresStoreNothing(t *testing.T) {
	tests := []struct {
		name string
		fc   *fakeClient
		want error
	}{
		{"challenge", &fakeClient{ChallengeErr: client.ErrUnavailable}, client.ErrUnavailable},
		{"verify", &fakeClient{Challenge: "xyz", VerifyErr: &client.APIError{StatusCode: 401, Detail: "bad signature"}}, client.ErrProtocol},
		{"other did", &fakeClient{Challenge: "xyz", VerifyRet: &client.VerifyResponse{AccessToken: "t", DID: "did:prism:other"}}, client.ErrProtocol},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			_, err := f.ids.Create(ctx)
			require.NoError(t, err)

			svc := NewAuthService(tt.fc, f.ids, f.sessions, 0, nil)
			err = svc.Login(ctx)
			assert.ErrorIs(t, err, tt.want)

			_, ok, err := f.sessions.GetToken(ctx)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestLogin_ServerLifetime(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.ids.Create(ctx)
	require.NoError(t, err)

	secs := int64(600)
	fc := &fakeClient{Challenge: "c", VerifyRet: &client.VerifyResponse{AccessToken: "t", ExpiresIn: &secs}}
	svc := NewAuthService(fc, f.ids, f.sessions, time.Hour, nil)
	require.NoError(t, svc.Login(ctx))

	at, ok, err := f.sessions.ExpiresAt(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, f.now.Add(10*time.Minute).UnixMilli(), at.UnixMilli())
}

func TestLogin_OutOfRangeLifetimeStoresNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.ids.Create(ctx)
	require.NoError(t, err)

	for _, secs := range []int64{10_000_000_000, 0, -5} {
		fc := &fakeClient{Challenge: "c", VerifyRet: &client.VerifyResponse{AccessToken: "t", ExpiresIn: &secs}}
		svc := NewAuthService(fc, f.ids, f.sessions, time.Hour, nil)

		err := svc.Login(ctx)
		require.ErrorIs(t, err, client.ErrProtocol)

		_, ok, err := f.sessions.GetToken(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestLogin_ConfiguredLifetime(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.ids.Create(ctx)
	require.NoError(t, err)

	fc := &fakeClient{Challenge: "c", VerifyRet: &client.VerifyResponse{AccessToken: "t"}}
	svc := NewAuthService(fc, f.ids, f.sessions, time.Hour, nil)
	require.NoError(t, svc.Login(ctx))

	at, _, err := f.sessions.ExpiresAt(ctx)
	require.NoError(t, err)
	assert.Equal(t, f.now.Add(time.Hour).UnixMilli(), at.UnixMilli())
}

func TestLogin_ConcurrentCallsShareOneRun(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.ids.Create(ctx)
	require.NoError(t, err)

	fc := &fakeClient{
		Challenge: "xyz",
		Block:     make(chan struct{}),
		Entered:   make(chan struct{}, 1),
		VerifyRet: &client.VerifyResponse{AccessToken: "shared"},
	}
	svc := NewAuthService(fc, f.ids, f.sessions, 0, nil)

	const n = 5
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.Login(ctx)
		}(i)
	}

	<-fc.Entered
	time.Sleep(100 * time.Millisecond)
	close(fc.Block)
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.EqualValues(t, 1, fc.challengeCalls.Load())
	assert.EqualValues(t, 1, fc.verifyCalls.Load())

	tok, _, err := f.sessions.GetToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "shared", tok)
}

func TestLogin_CancelledCallerDiscardsToken(t *testing.T) {
	f := newFixture(t)
	_, err := f.ids.Create(context.Background())
	require.NoError(t, err)

	fc := &fakeClient{
		Challenge: "xyz",
		Block:     make(chan struct{}),
		Entered:   make(chan struct{}, 1),
		Verified:  make(chan struct{}),
		VerifyRet: &client.VerifyResponse{AccessToken: "late"},
	}
	svc := NewAuthService(fc, f.ids, f.sessions, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Login(ctx) }()

	<-fc.Entered
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(fc.Block)
	<-fc.Verified
	time.Sleep(20 * time.Millisecond)

	_, ok, err := f.sessions.GetToken(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLogout_PreservesIdentity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewAuthService(&fakeClient{}, f.ids, f.sessions, 0, nil)

	kp, err := f.ids.Create(ctx)
	require.NoError(t, err)
	d := time.Hour
	require.NoError(t, f.sessions.SetToken(ctx, "tok", &d))

	require.NoError(t, svc.Logout(ctx))
	require.NoError(t, svc.Logout(ctx))

	got, err := f.ids.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, kp, got)

	_, ok, err := f.sessions.GetToken(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConnectIdentity_CreatesOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewAuthService(&fakeClient{}, f.ids, f.sessions, 0, nil)

	first, created, err := svc.ConnectIdentity(ctx)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.ConnectIdentity(ctx)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first, second)
}

func TestConnectIdentity_StorageFailure(t *testing.T) {
	f := newFixture(t)
	f.mem.FailWith(errors.New("disabled"))
	svc := NewAuthService(&fakeClient{}, f.ids, f.sessions, 0, nil)

	_, _, err := svc.ConnectIdentity(context.Background())
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)
}

func TestStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewAuthService(&fakeClient{}, f.ids, f.sessions, 0, nil)

	st, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Status{}, st)

	kp, err := f.ids.Create(ctx)
	require.NoError(t, err)
	d := 10 * time.Second
	require.NoError(t, f.sessions.SetToken(ctx, "tok", &d))

	st, err = svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, kp.DID, st.DID)
	assert.True(t, st.HasIdentity)
	assert.True(t, st.Authenticated)
	assert.False(t, st.Expired)
	assert.Equal(t, f.now.Add(d).UnixMilli(), st.ExpiresAt.UnixMilli())

	f.now = f.now.Add(d)
	st, err = svc.Status(ctx)
	require.NoError(t, err)
	assert.False(t, st.Authenticated)
	assert.True(t, st.Expired)
}

func TestCurrentUserAndPing(t *testing.T) {
	fc := &fakeClient{MeRet: &client.UserInfo{DID: "did:prism:x", Authenticated: true}, PingErr: client.ErrUnavailable}
	f := newFixture(t)
	svc := NewAuthService(fc, f.ids, f.sessions, 0, nil)

	me, err := svc.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "did:prism:x", me.DID)
	assert.ErrorIs(t, svc.Ping(context.Background()), client.ErrUnavailable)
}

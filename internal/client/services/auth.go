// Package services contains the application services behind the didkeeper
// CLI. This file holds the authentication service: identity bootstrap, the
// challenge-response login, logout and session status.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/didkeeper/internal/client/client"
	"github.com/dmitrijs2005/didkeeper/internal/client/identity"
	"github.com/dmitrijs2005/didkeeper/internal/client/session"
	"github.com/dmitrijs2005/didkeeper/internal/cryptox"
	"github.com/dmitrijs2005/didkeeper/internal/logging"
	"golang.org/x/sync/singleflight"
)

// DefaultTokenLifetime applies when the server does not state expires_in.
const DefaultTokenLifetime = 24 * time.Hour

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - ConnectIdentity: return the stored identity, creating one only if none exists.
//   - Login: prove control of the stored identity and keep the issued token.
//   - Logout: drop the session; the identity stays.
//   - CurrentUser: ask the server who the session belongs to.
//   - Status: describe the local identity and session without network calls.
//   - Ping: check server liveness.
type AuthService interface {
	ConnectIdentity(ctx context.Context) (kp *identity.Keypair, created bool, err error)
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*client.UserInfo, error)
	Status(ctx context.Context) (*Status, error)
	Ping(ctx context.Context) error
}

// Status is a local snapshot of identity and session.
type Status struct {
	DID           string
	HasIdentity   bool
	Authenticated bool
	Expired       bool
	// ExpiresAt is zero when the token carries no expiry.
	ExpiresAt time.Time
}

type authService struct {
	client        client.Client
	identities    *identity.Manager
	sessions      *session.Store
	tokenLifetime time.Duration
	logger        logging.Logger

	logins singleflight.Group
}

// NewAuthService wires the login protocol. A zero tokenLifetime means
// DefaultTokenLifetime.
func NewAuthService(c client.Client, ids *identity.Manager, sessions *session.Store, tokenLifetime time.Duration, logger logging.Logger) AuthService {
	if tokenLifetime <= 0 {
		tokenLifetime = DefaultTokenLifetime
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &authService{
		client:        c,
		identities:    ids,
		sessions:      sessions,
		tokenLifetime: tokenLifetime,
		logger:        logger,
	}
}

func (a *authService) ConnectIdentity(ctx context.Context) (*identity.Keypair, bool, error) {
	has, err := a.identities.Has(ctx)
	if err != nil {
		return nil, false, err
	}
	if has {
		kp, err := a.identities.Load(ctx)
		return kp, false, err
	}

	kp, err := a.identities.Create(ctx)
	if err != nil {
		return nil, false, err
	}
	a.logger.Info(ctx, "identity created", "did", kp.DID)
	return kp, true, nil
}

// Login runs challenge, sign and verify for the stored identity, then stores
// the token. Concurrent calls for the same DID share one protocol run. The
// run is not aborted by a caller giving up, but a caller whose ctx is done by
// the time the run finishes does not store its result.
func (a *authService) Login(ctx context.Context) error {
	kp, err := a.identities.Load(ctx)
	if err != nil {
		return err
	}

	runCtx := context.WithoutCancel(ctx)
	ch := a.logins.DoChan(kp.DID, func() (any, error) {
		return a.authenticate(runCtx, kp)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return res.Err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	verified := res.Val.(*client.VerifyResponse)
	lifetime := a.tokenLifetime
	if verified.ExpiresIn != nil {
		if *verified.ExpiresIn <= 0 || *verified.ExpiresIn > client.MaxExpiresIn {
			return fmt.Errorf("login: %w: expires_in %d", client.ErrProtocol, *verified.ExpiresIn)
		}
		lifetime = time.Duration(*verified.ExpiresIn) * time.Second
	}

	if err := a.sessions.SetToken(ctx, verified.AccessToken, &lifetime); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	a.logger.Info(ctx, "login succeeded", "did", kp.DID, "expires_in", lifetime.String())
	return nil
}

func (a *authService) authenticate(ctx context.Context, kp *identity.Keypair) (*client.VerifyResponse, error) {
	ch, err := a.client.GetChallenge(ctx, kp.DID)
	if err != nil {
		return nil, err
	}

	signature, err := cryptox.Sign(ch.Challenge, kp.PrivateKey)
	if err != nil {
		return nil, err
	}

	verified, err := a.client.Verify(ctx, client.VerifyRequest{
		DID:       kp.DID,
		Challenge: ch.Challenge,
		Signature: signature,
	})
	if err != nil {
		return nil, err
	}
	if verified.DID != "" && verified.DID != kp.DID {
		return nil, fmt.Errorf("verify: %w: token issued for %s", client.ErrProtocol, verified.DID)
	}
	return verified, nil
}

func (a *authService) Logout(ctx context.Context) error {
	return a.sessions.ClearToken(ctx)
}

func (a *authService) CurrentUser(ctx context.Context) (*client.UserInfo, error) {
	return a.client.Me(ctx)
}

func (a *authService) Status(ctx context.Context) (*Status, error) {
	st := &Status{}

	kp, err := a.identities.Load(ctx)
	switch {
	case err == nil:
		st.DID = kp.DID
		st.HasIdentity = true
	case !isNoIdentity(err):
		return nil, err
	}

	_, ok, err := a.sessions.GetToken(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return st, nil
	}

	expired, err := a.sessions.IsExpired(ctx)
	if err != nil {
		return nil, err
	}
	st.Expired = expired
	st.Authenticated = !expired

	if at, ok, err := a.sessions.ExpiresAt(ctx); err == nil && ok {
		st.ExpiresAt = at
	}
	return st, nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

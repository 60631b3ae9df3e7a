package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/didkeeper/internal/client/session"
	"github.com/dmitrijs2005/didkeeper/internal/common"
	"github.com/dmitrijs2005/didkeeper/internal/logging"
	"github.com/dmitrijs2005/didkeeper/internal/netx"
)

type noAuthKey struct{}

// WithoutAuth marks requests made with ctx as public: AuthorizedClient sends
// them as they are.
func WithoutAuth(ctx context.Context) context.Context {
	return context.WithValue(ctx, noAuthKey{}, true)
}

func requiresAuth(ctx context.Context) bool {
	v, _ := ctx.Value(noAuthKey{}).(bool)
	return !v
}

// AuthorizedClient attaches the session token to every request unless its
// context is marked WithoutAuth.
//
// Nothing is sent when there is no token (common.ErrNotAuthenticated) or the
// token has expired locally (common.ErrSessionExpired, the token is
// cleared). A 401 answer clears the token and is reported as
// common.ErrSessionRejected. All other answers are returned untouched.
type AuthorizedClient struct {
	next    Doer
	session *session.Store
	logger  logging.Logger
}

// NewAuthorizedClient wraps next, or an http.Client with DefaultTimeout when
// next is nil.
func NewAuthorizedClient(next Doer, s *session.Store, logger logging.Logger) *AuthorizedClient {
	if next == nil {
		next = &http.Client{Timeout: DefaultTimeout}
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &AuthorizedClient{next: next, session: s, logger: logger}
}

func (c *AuthorizedClient) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if !requiresAuth(ctx) {
		return c.next.Do(req)
	}

	token, ok, err := c.session.GetToken(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrNotAuthenticated
	}

	expired, err := c.session.IsExpired(ctx)
	if err != nil {
		return nil, err
	}
	if expired {
		if err := c.session.ClearToken(ctx); err != nil {
			return nil, err
		}
		c.logger.Info(ctx, "session expired locally, token cleared")
		return nil, common.ErrSessionExpired
	}

	req = req.Clone(ctx)
	req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)

	resp, err := c.next.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		netx.DrainAndClose(resp)
		if err := c.session.ClearToken(ctx); err != nil {
			return nil, err
		}
		c.logger.Info(ctx, "session rejected by server, token cleared", "path", req.URL.Path)
		return nil, common.ErrSessionRejected
	}
	return resp, nil
}

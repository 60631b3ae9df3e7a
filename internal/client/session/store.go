// Package session keeps the bearer token issued after a successful login and
// its absolute expiry. It is the only place that decides whether the device
// currently holds a usable session.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/didkeeper/internal/client/storage"
	"github.com/dmitrijs2005/didkeeper/internal/common"
)

// Store reads and writes the session token and its expiry in storage.
type Store struct {
	storage storage.Storage
	now     func() time.Time
}

// NewStore returns a Store reading the time from now, or time.Now if nil.
func NewStore(s storage.Storage, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{storage: s, now: now}
}

// SetToken stores token. With a non-nil expiresIn the absolute expiry
// now+expiresIn is stored next to it in milliseconds; without one any
// previously recorded expiry is removed, so the token never expires locally.
func (s *Store) SetToken(ctx context.Context, token string, expiresIn *time.Duration) error {
	if expiresIn == nil {
		return s.storage.Update(ctx,
			map[string]string{common.StorageKeyToken: token},
			[]string{common.StorageKeyTokenExpiry})
	}

	expiry := s.now().Add(*expiresIn).UnixMilli()
	return s.storage.Update(ctx, map[string]string{
		common.StorageKeyToken:       token,
		common.StorageKeyTokenExpiry: strconv.FormatInt(expiry, 10),
	}, nil)
}

// GetToken returns the stored token and whether there is one.
func (s *Store) GetToken(ctx context.Context) (string, bool, error) {
	return s.storage.Get(ctx, common.StorageKeyToken)
}

// ExpiresAt returns the recorded expiry. ok is false when none is recorded.
func (s *Store) ExpiresAt(ctx context.Context) (t time.Time, ok bool, err error) {
	raw, ok, err := s.storage.Get(ctx, common.StorageKeyTokenExpiry)
	if err != nil || !ok {
		return time.Time{}, false, err
	}

	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: malformed token expiry %q", common.ErrInvalidToken, raw)
	}
	return time.UnixMilli(ms), true, nil
}

// IsExpired is false when no expiry is recorded and true once the clock
// reaches the recorded expiry. A malformed expiry counts as expired.
func (s *Store) IsExpired(ctx context.Context) (bool, error) {
	expiry, ok, err := s.ExpiresAt(ctx)
	if errors.Is(err, common.ErrInvalidToken) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return !s.now().Before(expiry), nil
}

// ClearToken removes the token and its expiry. It is idempotent.
func (s *Store) ClearToken(ctx context.Context) error {
	return s.storage.Remove(ctx, common.StorageKeyToken, common.StorageKeyTokenExpiry)
}

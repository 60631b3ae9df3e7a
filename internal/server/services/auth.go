// Package services contains the business logic of the Auth API: the
// challenge-response login and campaign submissions.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/didkeeper/internal/common"
	"github.com/dmitrijs2005/didkeeper/internal/cryptox"
	"github.com/dmitrijs2005/didkeeper/internal/logging"
	"github.com/dmitrijs2005/didkeeper/internal/server/auth"
	"github.com/dmitrijs2005/didkeeper/internal/server/config"
	"github.com/dmitrijs2005/didkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/didkeeper/internal/server/models"
	"github.com/dmitrijs2005/didkeeper/internal/server/ratelimit"
	"github.com/dmitrijs2005/didkeeper/internal/server/repositories/repomanager"
)

// challengeBytes is the entropy of a challenge; it is sent hex encoded.
const challengeBytes = 32

// Session is what a successful verification hands back to the client.
type Session struct {
	AccessToken string
	TokenType   string
	DID         string
	ExpiresAt   time.Time
	ExpiresIn   int64
}

// AuthService runs the challenge-response login:
//   - IssueChallenge: hand a DID a fresh one-time challenge
//   - Verify: check the signed challenge and mint a session token
type AuthService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	challengeTTL                time.Duration
	allowedMethods              []string
	limiter                     *ratelimit.MapLimiter
	metrics                     *metrics.Metrics
	logger                      logging.Logger

	now func() time.Time
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, mtr *metrics.Metrics, logger logging.Logger) *AuthService {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &AuthService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		challengeTTL:                cfg.ChallengeTTL,
		allowedMethods:              cfg.AllowedDIDMethods,
		limiter:                     ratelimit.New(cfg.ChallengeRate, cfg.ChallengeBurst, 0),
		metrics:                     mtr,
		logger:                      logger,
		now:                         time.Now,
	}
}

// IssueChallenge stores and returns a new challenge for did, replacing any
// earlier one.
func (s *AuthService) IssueChallenge(ctx context.Context, did string) (*models.Challenge, error) {
	if !strings.HasPrefix(did, cryptox.DIDPrefix) {
		return nil, ErrInvalidDID
	}

	now := s.now()
	if !s.limiter.Allow(did, now) {
		s.metrics.ChallengesThrottled.Inc()
		return nil, ErrRateLimited
	}

	value, err := common.MakeRandHexString(challengeBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrRandomUnavailable, err)
	}

	c := &models.Challenge{DID: did, Value: value, ExpiresAt: now.Add(s.challengeTTL)}
	if err := s.repomanager.Challenges(s.db).Save(ctx, c); err != nil {
		return nil, fmt.Errorf("error saving challenge: %w", err)
	}

	s.metrics.ChallengesIssued.Inc()
	s.logger.Debug(ctx, "challenge issued", "did", did)
	return c, nil
}

// Verify consumes the DID's challenge and checks that signature is a valid
// assertion over it made with the key embedded in the DID. The challenge is
// spent even when the signature turns out to be wrong.
func (s *AuthService) Verify(ctx context.Context, did, challenge, signature string) (*Session, error) {
	now := s.now()

	if err := s.repomanager.Challenges(s.db).Consume(ctx, did, challenge, now); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.metrics.Verifications.WithLabelValues(metrics.ResultInvalidChallenge).Inc()
			return nil, ErrChallengeInvalid
		}
		return nil, fmt.Errorf("error consuming challenge: %w", err)
	}

	if err := s.verifySignature(did, challenge, signature); err != nil {
		s.metrics.Verifications.WithLabelValues(metrics.ResultInvalidSignature).Inc()
		s.logger.Info(ctx, "signature rejected", "did", did, "reason", err.Error())
		return nil, ErrSignatureInvalid
	}

	token, expiresAt, err := auth.GenerateToken(did, s.jwtSecret, s.accessTokenValidityDuration, now)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	s.metrics.Verifications.WithLabelValues(metrics.ResultSuccess).Inc()
	s.logger.Info(ctx, "did authenticated", "did", did)
	return &Session{
		AccessToken: token,
		TokenType:   "bearer",
		DID:         did,
		ExpiresAt:   expiresAt,
		ExpiresIn:   int64(s.accessTokenValidityDuration / time.Second),
	}, nil
}

func (s *AuthService) verifySignature(did, challenge, signature string) error {
	pub, err := cryptox.PublicKeyFromDID(did, s.allowedMethods...)
	if err != nil {
		return err
	}
	payload, err := cryptox.VerifyAssertion(signature, pub)
	if err != nil {
		return err
	}
	if payload != challenge {
		return fmt.Errorf("%w: payload does not match the challenge", common.ErrInvalidAssertion)
	}
	return nil
}

// PurgeExpired drops challenges that can no longer be answered.
func (s *AuthService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repomanager.Challenges(s.db).DeleteExpired(ctx, s.now())
}

// ParseToken validates a session token minted by Verify.
func (s *AuthService) ParseToken(token string) (*auth.Claims, error) {
	return auth.ParseToken(token, s.jwtSecret, s.now)
}

// SecretKey is the HMAC key of session tokens.
func (s *AuthService) SecretKey() []byte {
	return s.jwtSecret
}

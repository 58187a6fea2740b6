package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Behnamfe76/contacts-directory/internal/auth"
	"github.com/Behnamfe76/contacts-directory/internal/config"
	"github.com/Behnamfe76/contacts-directory/internal/domain"
	"github.com/Behnamfe76/contacts-directory/internal/events"
	"github.com/Behnamfe76/contacts-directory/internal/observability"
	"github.com/Behnamfe76/contacts-directory/internal/repository"
)

// AuthService issues bearer tokens for valid credentials and caches them per username.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	cache      auth.TokenCache
	hasher     auth.PasswordHasher
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger

	trustCache bool
	signing    singleflight.Group

	// evictions counts EvictToken calls per username. A signing flight that
	// observes a change skips the cache write.
	evictMu   sync.Mutex
	evictions map[string]uint64
}

// AuthDependencies encapsulates collaborators for the auth service.
// Dispatcher, Metrics and Logger are optional.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Tokens     *auth.TokenManager
	Cache      auth.TokenCache
	Hasher     auth.PasswordHasher
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokens:     deps.Tokens,
		cache:      deps.Cache,
		hasher:     deps.Hasher,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		trustCache: cfg.TrustCachedTokens,
		evictions:  make(map[string]uint64),
	}
}

// IssueToken returns a signed token for valid credentials. Unknown users,
// inactive users and wrong passwords yield (nil, nil); an error means the
// credential store itself failed.
//
// A live cached token for the username is returned as is. Unless the service
// trusts cached tokens, the password is still checked before reuse.
func (s *AuthService) IssueToken(ctx context.Context, username, password string) (*domain.IssuedToken, error) {
	generation := s.generation(username)
	cached, hit := s.cachedToken(ctx, username)
	if hit && s.trustCache {
		s.issued(ctx, username, cached, true)
		return cached, nil
	}

	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, pgx.ErrNoRows) {
		s.metrics.RecordTokenIssue(observability.TokenOutcomeRejected)
		return nil, nil
	}
	if err != nil {
		s.metrics.RecordTokenIssue(observability.TokenOutcomeError)
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !user.Active || !s.hasher.Matches(user.Password, password) {
		s.metrics.RecordTokenIssue(observability.TokenOutcomeRejected)
		return nil, nil
	}

	if hit {
		s.issued(ctx, username, cached, true)
		return cached, nil
	}

	// Concurrent misses for one username sign a single token.
	v, err, _ := s.signing.Do(username, func() (interface{}, error) {
		if again, ok := s.cachedToken(ctx, username); ok {
			return again, nil
		}
		issued, err := s.tokens.GenerateToken(user.Username, user.Role)
		if err != nil {
			return nil, err
		}
		if s.generation(username) != generation {
			// The account changed while signing; these claims may be stale.
			return issued, nil
		}
		entry := auth.CachedToken{Token: issued.Token, ExpiresAt: issued.ExpiresAt}
		if err := s.cache.Set(ctx, username, entry, s.tokens.TTL()); err != nil {
			s.logger.Warn("token cache write failed", zap.String("username", username), zap.Error(err))
		}
		return issued, nil
	})
	if err != nil {
		s.metrics.RecordTokenIssue(observability.TokenOutcomeError)
		return nil, fmt.Errorf("sign token: %w", err)
	}

	issued := v.(*domain.IssuedToken)
	s.issued(ctx, username, issued, false)
	return &domain.IssuedToken{Token: issued.Token, ExpiresAt: issued.ExpiresAt}, nil
}

// EvictToken drops the cached token for username and keeps any signing
// already in flight from caching claims read before the eviction.
func (s *AuthService) EvictToken(ctx context.Context, username string) error {
	s.evictMu.Lock()
	s.evictions[username]++
	s.evictMu.Unlock()
	s.signing.Forget(username)
	return s.cache.Delete(ctx, username)
}

func (s *AuthService) generation(username string) uint64 {
	s.evictMu.Lock()
	defer s.evictMu.Unlock()
	return s.evictions[username]
}

// cachedToken treats cache read failures as misses so a cache outage never blocks logins.
func (s *AuthService) cachedToken(ctx context.Context, username string) (*domain.IssuedToken, bool) {
	entry, ok, err := s.cache.Get(ctx, username)
	if err != nil {
		s.logger.Warn("token cache read failed", zap.String("username", username), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return &domain.IssuedToken{Token: entry.Token, ExpiresAt: entry.ExpiresAt}, true
}

func (s *AuthService) issued(ctx context.Context, username string, token *domain.IssuedToken, fromCache bool) {
	outcome := observability.TokenOutcomeIssued
	if fromCache {
		outcome = observability.TokenOutcomeCached
	}
	s.metrics.RecordTokenIssue(outcome)

	if s.dispatcher == nil {
		return
	}
	event := events.NewEvent(events.EventTokenIssued, events.Actor{Username: username}, events.TokenIssuedPayload{
		Username:  username,
		ExpiresAt: token.ExpiresAt,
		FromCache: fromCache,
	})
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("token_issued subscribers failed", zap.Error(err))
	}
}

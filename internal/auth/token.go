package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Behnamfe76/contacts-directory/internal/domain"
)

// Verification failures. Callers at the HTTP boundary treat all of them as unauthorized.
var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenSignature = errors.New("token signature invalid")
	ErrTokenClaims    = errors.New("token claims invalid")
)

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager. A non-positive ttl falls back to 24 hours.
func NewTokenManager(secret []byte, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: secret, ttl: ttl, now: time.Now}
}

// WithClock replaces the time source used for issuing and verifying.
func (tm *TokenManager) WithClock(now func() time.Time) *TokenManager {
	tm.now = now
	return tm
}

// TTL returns the token lifetime.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// Claims describes JWT payload.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Verification is the result of a successful token check.
type Verification struct {
	Subject   string
	Role      domain.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// GenerateToken builds and signs a JWT carrying the username and role.
func (tm *TokenManager) GenerateToken(username string, role domain.Role) (*domain.IssuedToken, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("generate token: invalid role %d", int16(role))
	}

	now := tm.now()
	claims := &Claims{
		Role: role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return nil, err
	}
	// The truncated exp claim is authoritative so the cache never outlives the token.
	return &domain.IssuedToken{Token: tokenString, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Verify checks signature and expiry and extracts the identity claims.
// It never consults the token cache.
func (tm *TokenManager) Verify(tokenStr string) (*Verification, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		return nil, classify(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenClaims
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenClaims)
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenClaims, err)
	}

	v := &Verification{
		Subject:   claims.Subject,
		Role:      role,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		v.IssuedAt = claims.IssuedAt.Time
	}
	return v, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrTokenSignature, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenClaims, err)
	}
}

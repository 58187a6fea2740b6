package auth

import (
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Behnamfe76/contacts-directory/internal/domain"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)}
}

func TestTokenManager_GenerateAndVerify(t *testing.T) {
	clock := newClock()
	tm := NewTokenManager(testSecret, 24*time.Hour).WithClock(clock.Now)

	issued, err := tm.GenerateToken("alice", domain.RoleAdministrator)
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)
	assert.True(t, clock.t.Add(24*time.Hour).Equal(issued.ExpiresAt))
	assert.Len(t, strings.Split(issued.Token, "."), 3)

	v, err := tm.Verify(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", v.Subject)
	assert.Equal(t, domain.RoleAdministrator, v.Role)
	assert.True(t, issued.ExpiresAt.Equal(v.ExpiresAt))
	assert.True(t, clock.t.Equal(v.IssuedAt))
}

func TestTokenManager_ExpiryBoundary(t *testing.T) {
	clock := newClock()
	tm := NewTokenManager(testSecret, 24*time.Hour).WithClock(clock.Now)

	issued, err := tm.GenerateToken("bob", domain.RoleCommonUser)
	require.NoError(t, err)

	clock.Advance(23*time.Hour + 59*time.Minute)
	_, err = tm.Verify(issued.Token)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = tm.Verify(issued.Token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenManager_RoleClaimUsesName(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	issued, err := tm.GenerateToken("carol", domain.RoleSupervisor)
	require.NoError(t, err)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(issued.Token, claims)
	require.NoError(t, err)
	assert.Equal(t, "Supervisor", claims.Role)
	assert.Equal(t, "carol", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenManager_RejectsForeignSecret(t *testing.T) {
	other := NewTokenManager([]byte("ffffffffffffffffffffffffffffffff"), time.Hour)
	tm := NewTokenManager(testSecret, time.Hour)

	for _, role := range domain.Roles() {
		issued, err := other.GenerateToken("mallory", role)
		require.NoError(t, err)

		_, err = tm.Verify(issued.Token)
		assert.ErrorIs(t, err, ErrTokenSignature, role.String())
	}
}

func TestTokenManager_RejectsOtherAlgorithms(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	claims := &Claims{
		Role: "Administrator",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "eve",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testSecret)
	require.NoError(t, err)
	_, err = tm.Verify(hs512)
	assert.ErrorIs(t, err, ErrTokenSignature)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tm.Verify(none)
	assert.Error(t, err)
}

func TestTokenManager_RejectsBadClaims(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	sign := func(c *Claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(testSecret)
		require.NoError(t, err)
		return s
	}
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	t.Run("unknown role", func(t *testing.T) {
		_, err := tm.Verify(sign(&Claims{Role: "-1", RegisteredClaims: jwt.RegisteredClaims{Subject: "x", ExpiresAt: exp}}))
		assert.ErrorIs(t, err, ErrTokenClaims)
	})
	t.Run("missing subject", func(t *testing.T) {
		_, err := tm.Verify(sign(&Claims{Role: "Guest", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}))
		assert.ErrorIs(t, err, ErrTokenClaims)
	})
	t.Run("missing expiry", func(t *testing.T) {
		_, err := tm.Verify(sign(&Claims{Role: "Guest", RegisteredClaims: jwt.RegisteredClaims{Subject: "x"}}))
		assert.Error(t, err)
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := tm.Verify("not-a-token")
		assert.ErrorIs(t, err, ErrTokenMalformed)
	})
	t.Run("tampered payload", func(t *testing.T) {
		good := sign(&Claims{Role: "Guest", RegisteredClaims: jwt.RegisteredClaims{Subject: "x", ExpiresAt: exp}})
		forged := sign(&Claims{Role: "Administrator", RegisteredClaims: jwt.RegisteredClaims{Subject: "x", ExpiresAt: exp}})
		g, f := strings.Split(good, "."), strings.Split(forged, ".")
		_, err := tm.Verify(g[0] + "." + f[1] + "." + g[2])
		assert.ErrorIs(t, err, ErrTokenSignature)
	})
}

func TestTokenManager_InvalidRole(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	_, err := tm.GenerateToken("x", domain.Role(42))
	assert.Error(t, err)
}

func TestNewTokenManager_DefaultTTL(t *testing.T) {
	tm := NewTokenManager(testSecret, 0)
	assert.Equal(t, 24*time.Hour, tm.TTL())
}

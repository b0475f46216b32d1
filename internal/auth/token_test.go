package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RealCodeCrafter/trt-backend/internal/domain"
)

func TestTokenManager_IssueVerifyRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	id := Identity{ID: 42, Username: "alice", Role: domain.RoleAdmin}

	issued, err := tm.Issue(id)
	require.NoError(t, err)
	require.NotEmpty(t, issued.Value)
	assert.WithinDuration(t, time.Now().Add(time.Hour), issued.ExpiresAt, 2*time.Second)

	claims, err := tm.Verify(issued.Value)
	require.NoError(t, err)
	assert.Equal(t, id, claims.Identity())
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, issued.ExpiresAt, claims.ExpiresAt.Time, time.Second)
}

func TestTokenManager_DefaultTTLIsOneDay(t *testing.T) {
	tm := NewTokenManager("s", 0)
	assert.Equal(t, 24*time.Hour, tm.TTL())
}

func TestTokenManager_ExpiredToken(t *testing.T) {
	past := time.Now().Add(-48 * time.Hour)
	issuer := NewTokenManager("test-secret", 24*time.Hour, WithClock(func() time.Time { return past }))
	verifier := NewTokenManager("test-secret", 24*time.Hour)

	for i := 0; i < 5; i++ {
		issued, err := issuer.Issue(Identity{ID: int64(i + 1), Username: "bob", Role: domain.RoleUser})
		require.NoError(t, err)

		// Valid at issuance time.
		_, err = issuer.Verify(issued.Value)
		require.NoError(t, err)

		_, err = verifier.Verify(issued.Value)
		kind, ok := KindOf(err)
		require.True(t, ok, "expected AuthError, got %v", err)
		assert.Equal(t, KindExpired, kind)
	}
}

func TestTokenManager_RotatedSecretIsMalformed(t *testing.T) {
	old := NewTokenManager("old-secret", time.Hour)
	current := NewTokenManager("new-secret", time.Hour)

	issued, err := old.Issue(Identity{ID: 1, Username: "alice", Role: domain.RoleUser})
	require.NoError(t, err)

	_, err = current.Verify(issued.Value)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindMalformed, kind)
}

func TestTokenManager_RejectsBadTokens(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID: 1, Username: "mallory", Role: domain.RoleSuperAdmin,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: 1, Username: "a", Role: domain.RoleUser}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)

	rootRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: 1, Username: "root", Role: domain.Role("root"),
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		kind  ErrorKind
	}{
		{name: "empty", token: "", kind: KindMissing},
		{name: "garbage", token: "not-a-jwt", kind: KindMalformed},
		{name: "truncated", token: "eyJhbGciOiJIUzI1NiJ9.eyJpZCI6MX0", kind: KindMalformed},
		{name: "alg none", token: noneToken, kind: KindMalformed},
		{name: "missing exp", token: noExp, kind: KindMalformed},
		{name: "unknown role", token: rootRole, kind: KindMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := tm.Verify(tt.token)
			assert.Nil(t, claims)
			kind, ok := KindOf(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, kind)
		})
	}
}

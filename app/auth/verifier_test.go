package auth

import (
	"context"
	"testing"
	"time"

	"inkfeed/app/domain"
	"inkfeed/app/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "somesupersecretsecret"

func testUser() *models.User {
	return &models.User{ID: "u1", Email: "duc@example.com", Name: "Duc"}
}

func newTestVerifier(t *testing.T) *Verifier {
	t.Helper()
	v, err := NewVerifier(testSecret, time.Hour)
	require.NoError(t, err)
	return v
}

func TestNewVerifier(t *testing.T) {
	_, err := NewVerifier("", time.Hour)
	assert.Error(t, err)

	v, err := NewVerifier(testSecret, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTTL, v.ttl)
}

func TestVerify(t *testing.T) {
	v := newTestVerifier(t)

	valid, err := v.Issue(testUser())
	require.NoError(t, err)

	other, err := NewVerifier("another-secret", time.Hour)
	require.NoError(t, err)
	foreign, err := other.Issue(testUser())
	require.NoError(t, err)

	expiredVerifier := newTestVerifier(t)
	expiredVerifier.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredVerifier.Issue(testUser())
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name       string
		token      string
		wantUserID string
		wantErr    bool
	}{
		{name: "valid token", token: valid, wantUserID: "u1"},
		{name: "empty token is anonymous", token: ""},
		{name: "malformed", token: "not.a.token", wantErr: true},
		{name: "wrong secret", token: foreign, wantErr: true},
		{name: "expired", token: expired, wantErr: true},
		{name: "wrong algorithm", token: hs512, wantErr: true},
		{name: "alg none", token: unsigned, wantErr: true},
		{name: "missing expiry", token: noExpiry, wantErr: true},
		{name: "missing subject", token: noSubject, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := v.Verify(tt.token)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrUnauthenticated)
				assert.False(t, id.IsAuthenticated())
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantUserID, id.UserID)
			assert.Equal(t, tt.wantUserID != "", id.IsAuthenticated())
		})
	}
}

func TestIssueClaims(t *testing.T) {
	v := newTestVerifier(t)
	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	v.now = func() time.Time { return fixed }

	token, err := v.Issue(testUser())
	require.NoError(t, err)

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	}, jwt.WithTimeFunc(func() time.Time { return fixed }))
	require.NoError(t, err)

	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "duc@example.com", claims.Email)
	assert.True(t, fixed.Add(time.Hour).Equal(claims.ExpiresAt.Time), "expires at %v", claims.ExpiresAt.Time)
}

func TestIdentity(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		err := Anonymous.Require()
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		assert.Equal(t, "Not authenticated.", domain.As(err).Message)
	})

	t.Run("rejected credential", func(t *testing.T) {
		id := Rejected(domain.Unauthenticated("Invalid credential."))
		err := id.Require()
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		assert.Equal(t, "Invalid credential.", domain.As(err).Message)
	})

	t.Run("authenticated", func(t *testing.T) {
		assert.NoError(t, Authenticated("u1", "").Require())
	})

	t.Run("context round trip", func(t *testing.T) {
		assert.Equal(t, Anonymous, FromContext(context.Background()))

		ctx := WithIdentity(context.Background(), Authenticated("u1", "duc@example.com"))
		assert.Equal(t, "u1", FromContext(ctx).UserID)
	})
}

package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/vladimiradmaev/diabetes-companion/internal/errors"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestHashPassword(t *testing.T) {
	_, err := HashPassword("short", bcrypt.MinCost)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	_, err = HashPassword(strings.Repeat("x", 73), bcrypt.MinCost)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := CheckPassword(hash, "correct horse")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hash, "wrong horse")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = CheckPassword("not-a-hash", "correct horse")
	assert.Error(t, err)
}

func TestTokenService_IssueValidate(t *testing.T) {
	ctx := context.Background()
	svc := NewTokenService(testSecret, time.Hour, nil)

	token, expiresAt, err := svc.Issue("user-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.Validate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.NotEmpty(t, claims.ID)

	other, _, err := svc.Issue("user-1")
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestTokenService_Rejects(t *testing.T) {
	ctx := context.Background()
	svc := NewTokenService(testSecret, time.Hour, nil)

	_, err := svc.Validate(ctx, "garbage")
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))

	foreign := NewTokenService("another-secret-another-secret", time.Hour, nil)
	token, _, err := foreign.Issue("user-1")
	require.NoError(t, err)
	_, err = svc.Validate(ctx, token)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))

	// expired
	past := NewTokenService(testSecret, time.Hour, nil)
	past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err = past.Issue("user-1")
	require.NoError(t, err)
	_, err = svc.Validate(ctx, token)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))

	// unsigned
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "user-1"})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Validate(ctx, raw)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestTokenService_Revoke(t *testing.T) {
	ctx := context.Background()
	svc := NewTokenService(testSecret, time.Hour, NewMemoryRevoker())

	token, _, err := svc.Issue("user-1")
	require.NoError(t, err)
	keep, _, err := svc.Issue("user-1")
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, token))
	_, err = svc.Validate(ctx, token)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))

	_, err = svc.Validate(ctx, keep)
	assert.NoError(t, err)

	assert.Error(t, svc.Revoke(ctx, "garbage"))
}

func TestMemoryRevoker_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r := NewMemoryRevoker()
	r.now = func() time.Time { return now }

	require.NoError(t, r.Revoke(ctx, "a", now.Add(time.Minute)))
	require.NoError(t, r.Revoke(ctx, "already-expired", now.Add(-time.Minute)))

	revoked, _ := r.IsRevoked(ctx, "a")
	assert.True(t, revoked)
	revoked, _ = r.IsRevoked(ctx, "already-expired")
	assert.False(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, _ = r.IsRevoked(ctx, "a")
	assert.False(t, revoked)

	require.NoError(t, r.Revoke(ctx, "b", now.Add(time.Minute)))
	assert.Len(t, r.revoked, 1)
}

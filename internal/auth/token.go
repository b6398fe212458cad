package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/vladimiradmaev/diabetes-companion/internal/errors"
	"github.com/vladimiradmaev/diabetes-companion/internal/logger"
)

const issuer = "diabetes-companion"

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenService issues and validates signed session tokens
type TokenService struct {
	secretKey []byte
	ttl       time.Duration
	revoker   Revoker
	now       func() time.Time
}

func NewTokenService(secret string, ttl time.Duration, revoker Revoker) *TokenService {
	if revoker == nil {
		revoker = NewMemoryRevoker()
	}
	return &TokenService{
		secretKey: []byte(secret),
		ttl:       ttl,
		revoker:   revoker,
		now:       time.Now,
	}
}

// Issue returns a signed token for the user and its expiry time
func (s *TokenService) Issue(userID string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, apperrors.NewInternalError(err)
	}
	return signed, expiresAt, nil
}

func (s *TokenService) parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return s.secretKey, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" || claims.ID == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// Validate returns the claims of a valid, unrevoked token
func (s *TokenService) Validate(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		logger.Debug("Invalid token", "error", err)
		return nil, apperrors.NewPermissionError("invalid or expired token")
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, apperrors.NewPermissionError("invalid or expired token")
	}
	return claims, nil
}

// Revoke invalidates the token until it would have expired anyway
func (s *TokenService) Revoke(ctx context.Context, tokenString string) error {
	claims, err := s.parse(tokenString)
	if err != nil {
		return apperrors.NewPermissionError("invalid or expired token")
	}
	return s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

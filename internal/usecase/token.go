package usecase

import (
	"errors"
	"time"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	msgInvalidToken = "Invalid token, please login again"
	msgExpiredToken = "Your token has expired, please login again"
)

// Claims are the JWT claims issued to users.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 access tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    Clock
}

func NewTokenManager(secret string, ttl time.Duration, now Clock) *TokenManager {
	if now == nil {
		now = SystemClock
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: now}
}

func (m *TokenManager) Issue(user *domain.User) (string, error) {
	now := m.now()
	claims := Claims{
		UserID: user.ID.Hex(),
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse verifies the signature and expiry of token.
func (m *TokenManager) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, &domain.AppError{Kind: domain.KindUnauthorized, Message: msgExpiredToken, Err: err}
		}
		return nil, &domain.AppError{Kind: domain.KindUnauthorized, Message: msgInvalidToken, Err: err}
	}
	if claims.IssuedAt == nil {
		return nil, domain.Unauthorized(msgInvalidToken)
	}
	return claims, nil
}

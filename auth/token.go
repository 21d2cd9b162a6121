package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-pkgz/auth/v2/token"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/krishkalaria12/pic-profile-maker/models"
)

const tokenAudience = "pic-profile-maker"

// ErrInvalidToken is returned for malformed, tampered or expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// TokenManager issues and parses the bearer JWTs handed out by /userlogin.
type TokenManager struct {
	svc      *token.Service
	issuer   string
	duration time.Duration
}

func NewTokenManager(secret, issuer string, duration time.Duration) *TokenManager {
	svc := token.NewService(token.Opts{
		SecretReader: token.SecretFunc(func(string) (string, error) {
			return secret, nil
		}),
		TokenDuration: duration,
		Issuer:        issuer,
	})

	return &TokenManager{svc: svc, issuer: issuer, duration: duration}
}

func (m *TokenManager) Duration() time.Duration {
	return m.duration
}

// Issue signs a token whose identity claim is the user id.
func (m *TokenManager) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := token.Claims{
		User: &token.User{
			ID:    user.ID.String(),
			Name:  user.Name,
			Email: user.Email,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    m.issuer,
			Audience:  []string{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	tokenStr, err := m.svc.Token(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenStr, nil
}

// Parse validates tokenStr and returns the user id it carries.
// The token library tolerates expired tokens, so expiry is checked here.
func (m *TokenManager) Parse(tokenStr string) (uuid.UUID, error) {
	claims, err := m.svc.Parse(tokenStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		return uuid.Nil, fmt.Errorf("%w: expired", ErrInvalidToken)
	}

	if claims.User == nil {
		return uuid.Nil, fmt.Errorf("%w: no user claim", ErrInvalidToken)
	}

	id, err := uuid.Parse(claims.User.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad user id", ErrInvalidToken)
	}

	return id, nil
}

// Package token issues and verifies signed session tokens.
package token

import (
	"errors"
	"time"

	"github.com/campuswatt/gridline/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/fx"
)

const sessionTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid_token")

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs and parses HMAC session tokens.
type Manager struct {
	secret []byte
}

func NewManager(cfg config.Config) *Manager {
	return &Manager{secret: []byte(cfg.AuthJWTSecret)}
}

func (m *Manager) Issue(userID, role string, now time.Time) (string, error) {
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *Manager) Parse(raw string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

var Module = fx.Module("auth.token",
	fx.Provide(NewManager),
)

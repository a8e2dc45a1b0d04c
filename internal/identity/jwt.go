package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken indicates the token could not be verified.
	ErrInvalidToken = errors.New("invalid token")
	// ErrMissingSecret indicates the provider was built without a signing secret.
	ErrMissingSecret = errors.New("jwt secret not configured")
)

// Resolver turns a bearer token into a session user.
type Resolver interface {
	Resolve(ctx context.Context, token string) (User, error)
}

// JWT issues and verifies HS256 session tokens.
type JWT struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWT creates a token provider. A zero ttl defaults to seven days.
func NewJWT(secret string, ttl time.Duration) *JWT {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &JWT{secret: []byte(secret), ttl: ttl, now: time.Now}
}

type claims struct {
	Name      string `json:"name,omitempty"`
	Anonymous bool   `json:"anon,omitempty"`
	jwt.RegisteredClaims
}

// Issue signs a token for user.
func (j *JWT) Issue(user User) (string, error) {
	if len(j.secret) == 0 {
		return "", ErrMissingSecret
	}
	if strings.TrimSpace(user.ID) == "" {
		return "", fmt.Errorf("issue token: %w", ErrInvalidToken)
	}
	now := j.now()
	c := claims{
		Name:      user.DisplayName,
		Anonymous: user.Anonymous,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return t.SignedString(j.secret)
}

// Resolve verifies token and returns the user it was issued for.
func (j *JWT) Resolve(_ context.Context, token string) (User, error) {
	if len(j.secret) == 0 {
		return User{}, ErrMissingSecret
	}
	var c claims
	t, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return j.secret, nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil || !t.Valid {
		return User{}, ErrInvalidToken
	}
	if strings.TrimSpace(c.Subject) == "" {
		return User{}, ErrInvalidToken
	}
	return User{ID: c.Subject, DisplayName: c.Name, Anonymous: c.Anonymous}, nil
}

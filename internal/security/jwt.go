package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tazhibayda/tasks-service/internal/apperr"
)

// Parse failure modes. Both present to the client as a generic 401; the
// distinction exists for logging and tests.
var (
	ErrExpired = errors.New("token expired")
	ErrInvalid = errors.New("token invalid")
)

type Claims struct {
	UID   string `json:"uid"`
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies the service's bearer tokens. The secret is
// checked once at construction; per-request code can assume it is present.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, apperr.New(apperr.KindConfiguration, "jwt signing secret is not configured")
	}
	if ttl <= 0 {
		return nil, apperr.New(apperr.KindConfiguration, "token ttl must be positive")
	}
	return &Tokens{secret: []byte(secret), ttl: ttl}, nil
}

func (t *Tokens) TTL() time.Duration { return t.ttl }

func (t *Tokens) Issue(uid, name, email string) (string, error) {
	now := time.Now()
	c := Claims{
		UID: uid, Name: name, Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := tok.SignedString(t.secret)
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnknown, "sign token", err)
	}
	return signed, nil
}

// Parse validates signature and expiry. Expired and malformed/forged tokens
// come back as distinct causes under a single Unauthorized kind.
func (t *Tokens) Parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(tk *jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.Wrap(apperr.KindUnauthorized, "token expired", fmt.Errorf("%w: %w", ErrExpired, err))
		}
		return nil, apperr.Wrap(apperr.KindUnauthorized, "invalid token", fmt.Errorf("%w: %w", ErrInvalid, err))
	}
	c, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, apperr.Wrap(apperr.KindUnauthorized, "invalid token", ErrInvalid)
	}
	return c, nil
}

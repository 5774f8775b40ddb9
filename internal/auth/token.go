// Package auth issues and checks the bearer tokens that authorise moves on
// one game.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "matchflash"

var (
	ErrInvalidToken = errors.New("invalid game token")
	ErrWrongGame    = errors.New("token was issued for another game")
)

// Claims binds a token to one game id (the subject) and its player.
type Claims struct {
	Player string `json:"player"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock replaces the time source, for tests.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

// Issue signs an HS256 token for gameID.
func (i *Issuer) Issue(gameID, player string) (string, error) {
	now := i.now()
	claims := Claims{
		Player: player,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   gameID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, expiry and that the token belongs to gameID.
func (i *Issuer) Verify(token, gameID string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject != gameID {
		return nil, ErrWrongGame
	}
	return claims, nil
}

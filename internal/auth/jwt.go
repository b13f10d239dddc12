package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token kinds carried in the "typ" claim so a refresh token cannot be used
// as an access token and vice versa.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// ErrWrongTokenKind is returned when a token of the other kind is presented.
var ErrWrongTokenKind = errors.New("wrong token kind")

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Claims struct {
	UserID int64  `json:"uid"`
	Email  string `json:"email"`
	Kind   string `json:"typ"`
	jwt.RegisteredClaims
}

func MintTokens(userID int64, email, secret string, accessTTL, refreshTTL time.Duration) (TokenPair, error) {
	now := time.Now()
	at, err := sign(Claims{
		UserID: userID,
		Email:  email,
		Kind:   KindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "setlistr",
		},
	}, secret)
	if err != nil {
		return TokenPair{}, err
	}
	rt, err := sign(Claims{
		UserID: userID,
		Email:  email,
		Kind:   KindRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "setlistr",
		},
	}, secret)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: at, RefreshToken: rt}, nil
}

func sign(c Claims, secret string) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}

// ParseClaims validates tokenStr and returns its claims. Only HS256 is accepted.
func ParseClaims(tokenStr, secret string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid {
		return c, nil
	}
	return nil, jwt.ErrTokenInvalidClaims
}

// ParseAccess parses an access token.
func ParseAccess(tokenStr, secret string) (*Claims, error) {
	return parseKind(tokenStr, secret, KindAccess)
}

// ParseRefresh parses a refresh token.
func ParseRefresh(tokenStr, secret string) (*Claims, error) {
	return parseKind(tokenStr, secret, KindRefresh)
}

func parseKind(tokenStr, secret, kind string) (*Claims, error) {
	c, err := ParseClaims(tokenStr, secret)
	if err != nil {
		return nil, err
	}
	if c.Kind != kind {
		return nil, ErrWrongTokenKind
	}
	return c, nil
}

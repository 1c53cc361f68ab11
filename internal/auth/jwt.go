package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by consumer session tokens.
type Claims struct {
	Name     string `json:"name"`
	CANumber string `json:"ca_number"`
	jwt.RegisteredClaims
}

// Signer issues and validates HS256 session tokens.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner constructs a signer.
func NewSigner(secret []byte, ttl time.Duration) (*Signer, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: empty secret")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: non-positive token ttl")
	}
	return &Signer{secret: secret, ttl: ttl}, nil
}

// Issue signs a session token for a logged-in consumer.
func (s *Signer) Issue(name, caNumber string) (string, error) {
	if name == "" || caNumber == "" {
		return "", errors.New("auth: missing name or ca number")
	}
	now := time.Now().UTC()
	claims := Claims{
		Name:     name,
		CANumber: caNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caNumber,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse validates a session token and returns its claims.
func (s *Signer) Parse(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("auth: empty token")
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("auth: invalid signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("auth: invalid token")
	}
	if claims.CANumber == "" {
		return nil, errors.New("auth: missing ca number")
	}
	if claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time) {
		return nil, errors.New("auth: token expired")
	}
	return claims, nil
}

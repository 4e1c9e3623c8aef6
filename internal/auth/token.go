package auth

import (
	"errors"
	"fmt"
	"time"

	"hostelfix/backend/internal/config"
	"hostelfix/backend/internal/models"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Identity is what a verified session token proves.
type Identity struct {
	UserID     string
	Role       models.Role
	HostelCode string
}

// Claims carry role and hostel so protected routes need no user lookup.
type Claims struct {
	jwt.RegisteredClaims
	Role       models.Role `json:"role"`
	HostelCode string      `json:"hostelCode"`
}

// Tokens signs and verifies HS256 session tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = config.DefaultTokenTTL
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token carrying the user's id, role and hostel code.
func (t *Tokens) Issue(user *models.User) (string, error) {
	now := t.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    config.TokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		Role:       user.Role,
		HostelCode: user.HostelCode,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse verifies signature, algorithm and expiry.
func (t *Tokens) Parse(raw string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return nil, errors.New("token is missing identity claims")
	}
	return &Identity{UserID: claims.Subject, Role: claims.Role, HostelCode: claims.HostelCode}, nil
}

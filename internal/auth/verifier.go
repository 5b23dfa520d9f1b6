package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized is returned for any missing, malformed or expired credential.
var ErrUnauthorized = errors.New("invalid authentication token")

// Identity is the authenticated account a bearer token resolves to.
type Identity struct {
	UserID string
	Email  string
}

// Claims is the JWT payload carried by bearer tokens.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 bearer tokens and resolves the account identity.
type Verifier struct {
	secret   []byte
	tokenTTL time.Duration
}

// NewVerifier creates a new token verifier
func NewVerifier(secret string, tokenTTL time.Duration) *Verifier {
	return &Verifier{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// Verify parses and validates a bearer token, returning the account identity.
func (v *Verifier) Verify(token string) (*Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrUnauthorized
	}
	if claims.Subject == "" {
		return nil, ErrUnauthorized
	}

	return &Identity{
		UserID: claims.Subject,
		Email:  claims.Email,
	}, nil
}

// IssueToken signs a token for the given account. Used by tests and tooling;
// the production login flow lives outside this service.
func (v *Verifier) IssueToken(userID, email string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

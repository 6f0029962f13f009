// Package auth issues and verifies bearer tokens and carries the caller
// identity through a request.
package auth

import (
	"errors"
	"fmt"
	"time"

	"inkfeed/app/domain"
	"inkfeed/app/models"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is how long an issued token stays valid.
const DefaultTTL = time.Hour

// Claims is the signed token payload.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Verifier signs and checks HS256 tokens with one shared secret.
type Verifier struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewVerifier creates a verifier. A zero ttl means DefaultTTL.
func NewVerifier(secret string, ttl time.Duration) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("signing secret cannot be empty")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Verifier{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue creates a token for user.
func (v *Verifier) Issue(user *models.User) (string, error) {
	now := v.now()
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify turns a raw token into an identity. An empty token is Anonymous with
// no error; any token that fails to verify yields an Unauthenticated error.
func (v *Verifier) Verify(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Anonymous, nil
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil || !token.Valid {
		return Anonymous, invalidCredential()
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return Anonymous, invalidCredential()
	}
	if claims.UserID != "" && claims.UserID != claims.Subject {
		return Anonymous, invalidCredential()
	}

	return Authenticated(claims.Subject, claims.Email), nil
}

func invalidCredential() *domain.Error {
	return domain.Unauthenticated("Invalid credential.")
}

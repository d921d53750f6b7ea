package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ambufleet/ambufleet/internal/model"
)

// Token verification errors. Both map to 401 at the boundary; the
// split exists so expiry can be told apart from tampering in logs.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// tokenClaims is the JWT claim set for session tokens.
type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Issuer creates and verifies signed session tokens. Tokens are
// self-contained: verification needs no store lookup, so a demoted or
// deactivated user's token stays valid until expiry unless the user is
// put on the revocation list.
type Issuer struct {
	secret []byte
	expiry time.Duration
}

// NewIssuer creates an Issuer signing with the given secret.
func NewIssuer(secret []byte, expiry time.Duration) *Issuer {
	return &Issuer{secret: secret, expiry: expiry}
}

// Expiry returns the configured token lifetime.
func (i *Issuer) Expiry() time.Duration {
	return i.expiry
}

// Issue signs a token carrying the user's id, email and role.
// Expiry is absolute wall-clock, not sliding.
func (i *Issuer) Issue(user *model.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expiry)),
		},
		Email: user.Email,
		Role:  user.Role,
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify checks the signature and expiry of a token and returns the
// embedded claims. Returns ErrExpiredToken when the embedded expiry has
// passed even if the signature is valid, ErrInvalidToken otherwise.
func (i *Issuer) Verify(tokenString string) (*model.Claims, error) {
	claims := &tokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return i.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return &model.Claims{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}

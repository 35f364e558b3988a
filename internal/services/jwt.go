package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// accessClaims are the claims Authorizer puts in its HMAC-signed access tokens
type accessClaims struct {
	jwt.RegisteredClaims
	Email       string  `json:"email"`
	GivenName   *string `json:"given_name,omitempty"`
	FamilyName  *string `json:"family_name,omitempty"`
	Nickname    *string `json:"nickname,omitempty"`
	Picture     *string `json:"picture,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

// JWTAuthenticator verifies bearer access tokens locally with the provider's shared secret
type JWTAuthenticator struct {
	secret []byte
}

// NewJWTAuthenticator creates a JWTAuthenticator
func NewJWTAuthenticator(secret string) *JWTAuthenticator {
	return &JWTAuthenticator{secret: []byte(secret)}
}

// Authenticate implements Authenticator
func (a *JWTAuthenticator) Authenticate(ctx context.Context, creds Credentials) (*Identity, error) {
	if creds.BearerToken == "" {
		return nil, ErrNoCredentials
	}
	if len(a.secret) == 0 {
		return nil, errors.New("bearer tokens are not accepted")
	}

	claims := &accessClaims{}
	_, err := jwt.ParseWithClaims(creds.BearerToken, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid access token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("access token has no subject")
	}

	return &Identity{
		ID:    claims.Subject,
		Email: claims.Email,
		Name:  displayName(claims.GivenName, claims.FamilyName, claims.Nickname),
		Image: nonEmpty(claims.Picture),
		Phone: nonEmpty(claims.PhoneNumber),
	}, nil
}

package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/localnerve/jam-build-rentals/internal/models"
	"github.com/localnerve/jam-build-rentals/internal/types"
)

// ErrNoCredentials is returned by an Authenticator that found nothing it understands
var ErrNoCredentials = errors.New("no credentials")

// Credentials are what a request carries to prove who it is
type Credentials struct {
	Cookie      string
	BearerToken string
}

// Empty reports whether the request carried no credentials at all
func (c Credentials) Empty() bool {
	return c.Cookie == "" && c.BearerToken == ""
}

// Identity is the account the auth provider vouches for
type Identity struct {
	ID    string
	Email string
	Name  *string
	Image *string
	Phone *string
}

// Authenticator turns request credentials into a provider identity
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (*Identity, error)
}

// AuthenticatorChain tries each authenticator in order until one accepts the credentials
type AuthenticatorChain []Authenticator

// Authenticate implements Authenticator
func (chain AuthenticatorChain) Authenticate(ctx context.Context, creds Credentials) (*Identity, error) {
	lastErr := ErrNoCredentials
	for _, a := range chain {
		identity, err := a.Authenticate(ctx, creds)
		if err == nil {
			return identity, nil
		}
		if !errors.Is(err, ErrNoCredentials) {
			lastErr = err
		}
	}
	return nil, lastErr
}

// SessionResolver produces the SessionUser for a request. Any failure along the
// way yields an anonymous request, never an error.
type SessionResolver struct {
	Auth  Authenticator
	Roles *RoleService
	Log   *slog.Logger
}

// NewSessionResolver creates a resolver
func NewSessionResolver(auth Authenticator, roles *RoleService, log *slog.Logger) *SessionResolver {
	return &SessionResolver{Auth: auth, Roles: roles, Log: log}
}

// Resolve returns the request's user or nil when the request is anonymous
func (r *SessionResolver) Resolve(ctx context.Context, creds Credentials) *models.SessionUser {
	if creds.Empty() {
		sessionResolutions.WithLabelValues("anonymous").Inc()
		return nil
	}

	identity, err := r.Auth.Authenticate(ctx, creds)
	if err != nil || identity == nil || identity.ID == "" {
		r.Log.Debug("session rejected", "error", err)
		sessionResolutions.WithLabelValues("rejected").Inc()
		return nil
	}

	role, account, err := r.Roles.Lookup(ctx, identity.ID)
	if err != nil {
		r.Log.Warn("role lookup failed, treating request as anonymous", "user", identity.ID, "error", err)
		sessionResolutions.WithLabelValues("error").Inc()
		return nil
	}

	user := &models.SessionUser{
		ID:    identity.ID,
		Email: identity.Email,
		Name:  identity.Name,
		Image: identity.Image,
		Phone: identity.Phone,
		Role:  role,
	}
	// Local profile edits win over the provider's copy
	if account != nil {
		if account.Name != nil {
			user.Name = account.Name
		}
		if account.Image != nil {
			user.Image = account.Image
		}
		if account.Phone != nil {
			user.Phone = account.Phone
		}
	}

	sessionResolutions.WithLabelValues("authenticated").Inc()
	return user
}

// Require resolves the request's user and fails with Unauthorized when there is none
func (r *SessionResolver) Require(ctx context.Context, creds Credentials) (*models.SessionUser, error) {
	user := r.Resolve(ctx, creds)
	if user == nil {
		return nil, types.Unauthorized("Authentication required")
	}
	return user, nil
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/localnerve/authorizer-go"
	"github.com/localnerve/jam-build-rentals/internal/config"
	"github.com/localnerve/jam-build-rentals/internal/utils"
)

// AuthorizerService talks to the Authorizer identity provider. The client is
// created on first use, after the provider answers a ping, and creation is
// retried on later calls until it succeeds.
type AuthorizerService struct {
	cfg *config.Config
	log *slog.Logger

	mu     sync.Mutex
	client *authorizer.AuthorizerClient
}

// NewAuthorizerService creates an AuthorizerService
func NewAuthorizerService(cfg *config.Config, log *slog.Logger) *AuthorizerService {
	return &AuthorizerService{cfg: cfg, log: log}
}

// IsInitialized returns true if the Authorizer client has been created
func (s *AuthorizerService) IsInitialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client != nil
}

// Client returns the Authorizer client, creating it if needed
func (s *AuthorizerService) Client() (*authorizer.AuthorizerClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}

	if err := utils.PingAuthorizer(s.cfg.AuthzURL); err != nil {
		return nil, fmt.Errorf("authorizer ping failed: %w", err)
	}

	redirectURL := s.cfg.PublicURL
	s.log.Info("initializing authorizer client",
		"authorizerURL", s.cfg.AuthzURL, "clientID", s.cfg.AuthzClientID, "redirectURL", redirectURL)

	client, err := authorizer.NewAuthorizerClient(s.cfg.AuthzClientID, s.cfg.AuthzURL, redirectURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create authorizer client: %w", err)
	}
	s.client = client
	return client, nil
}

// Authenticate validates the provider's session cookie
func (s *AuthorizerService) Authenticate(ctx context.Context, creds Credentials) (*Identity, error) {
	if creds.Cookie == "" {
		return nil, ErrNoCredentials
	}

	client, err := s.Client()
	if err != nil {
		return nil, err
	}

	res, err := client.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: creds.Cookie,
	})
	if err != nil {
		return nil, fmt.Errorf("session validation failed: %w", err)
	}
	if res == nil || !res.IsValid {
		return nil, fmt.Errorf("session is not valid")
	}

	return identityFromProvider(res.User)
}

// Login exchanges an email and password for an access token
func (s *AuthorizerService) Login(ctx context.Context, email, password string) (string, *Identity, error) {
	client, err := s.Client()
	if err != nil {
		return "", nil, err
	}

	res, err := client.Login(&authorizer.LoginInput{
		Email:    &email,
		Password: password,
	})
	if err != nil {
		return "", nil, fmt.Errorf("login failed: %w", err)
	}
	if res == nil {
		return "", nil, fmt.Errorf("empty login response")
	}
	return tokenResult(res.AccessToken, res.User)
}

// SignUp registers a new account and returns its access token
func (s *AuthorizerService) SignUp(ctx context.Context, email, password string) (string, *Identity, error) {
	client, err := s.Client()
	if err != nil {
		return "", nil, err
	}

	res, err := client.SignUp(&authorizer.SignUpInput{
		Email:           &email,
		Password:        password,
		ConfirmPassword: password,
	})
	if err != nil {
		return "", nil, fmt.Errorf("signup failed: %w", err)
	}
	if res == nil {
		return "", nil, fmt.Errorf("empty signup response")
	}
	return tokenResult(res.AccessToken, res.User)
}

func tokenResult(accessToken *string, user interface{}) (string, *Identity, error) {
	if accessToken == nil || *accessToken == "" {
		return "", nil, fmt.Errorf("no access token returned")
	}
	identity, err := identityFromProvider(user)
	if err != nil {
		return "", nil, err
	}
	return *accessToken, identity, nil
}

// providerUser is the subset of the provider's user record the service reads
type providerUser struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	GivenName   *string `json:"given_name"`
	FamilyName  *string `json:"family_name"`
	Nickname    *string `json:"nickname"`
	Picture     *string `json:"picture"`
	PhoneNumber *string `json:"phone_number"`
}

// identityFromProvider decodes whatever user value the SDK hands back through
// its JSON form
func identityFromProvider(user interface{}) (*Identity, error) {
	if user == nil {
		return nil, fmt.Errorf("no user in provider response")
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to encode provider user: %w", err)
	}
	var pu providerUser
	if err := json.Unmarshal(raw, &pu); err != nil {
		return nil, fmt.Errorf("failed to decode provider user: %w", err)
	}
	if pu.ID == "" {
		return nil, fmt.Errorf("provider user has no id")
	}

	return &Identity{
		ID:    pu.ID,
		Email: pu.Email,
		Name:  displayName(pu.GivenName, pu.FamilyName, pu.Nickname),
		Image: nonEmpty(pu.Picture),
		Phone: nonEmpty(pu.PhoneNumber),
	}, nil
}

func displayName(given, family, nickname *string) *string {
	parts := make([]string, 0, 2)
	for _, p := range []*string{given, family} {
		if p != nil && strings.TrimSpace(*p) != "" {
			parts = append(parts, strings.TrimSpace(*p))
		}
	}
	if len(parts) > 0 {
		name := strings.Join(parts, " ")
		return &name
	}
	return nonEmpty(nickname)
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

package testhelpers

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"net/http"
	"sync"

	"github.com/localnerve/jam-build-rentals/internal/middleware"
	"github.com/localnerve/jam-build-rentals/internal/services"
)

// FakeAuth stands in for the identity provider. Each registered session
// cookie maps to one identity.
type FakeAuth struct {
	mu       sync.Mutex
	sessions map[string]services.Identity
	accounts map[string]string
	Fail     error
}

// NewFakeAuth creates an empty FakeAuth
func NewFakeAuth() *FakeAuth {
	return &FakeAuth{
		sessions: map[string]services.Identity{},
		accounts: map[string]string{},
	}
}

// AddSession registers a session cookie value for identity and returns the cookie
func (f *FakeAuth) AddSession(cookie string, identity services.Identity) *http.Cookie {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[cookie] = identity
	return &http.Cookie{Name: middleware.SessionCookie, Value: cookie}
}

// Authenticate implements services.Authenticator
func (f *FakeAuth) Authenticate(ctx context.Context, creds services.Credentials) (*services.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail != nil {
		return nil, f.Fail
	}
	if creds.Cookie == "" {
		return nil, services.ErrNoCredentials
	}
	identity, ok := f.sessions[creds.Cookie]
	if !ok {
		return nil, errors.New("session is not valid")
	}
	return &identity, nil
}

// SignUp implements handlers.AccountProvider
func (f *FakeAuth) SignUp(ctx context.Context, email, password string) (string, *services.Identity, error) {
	f.mu.Lock()
	if _, exists := f.accounts[email]; exists {
		f.mu.Unlock()
		return "", nil, errors.New("user already exists")
	}
	f.accounts[email] = password
	f.mu.Unlock()
	return f.Login(ctx, email, password)
}

// Login implements handlers.AccountProvider
func (f *FakeAuth) Login(ctx context.Context, email, password string) (string, *services.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if stored, ok := f.accounts[email]; !ok || stored != password {
		return "", nil, errors.New("bad credentials")
	}
	identity := services.Identity{ID: "user-" + email, Email: email}
	token := "token-" + email
	f.sessions[token] = identity
	return token, &identity, nil
}

func randInt(max int) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(max)))
	return int(n.Int64())
}

// GeneratePassword generates a 10 character password with a capital and special char
func GeneratePassword() string {
	const (
		lower   = "abcdefghijklmnopqrstuvwxyz"
		upper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
		special = "!@#$%^&*"
		numbers = "0123456789"
		all     = lower + upper + special + numbers
	)

	password := make([]byte, 10)
	password[0] = upper[randInt(len(upper))]
	password[1] = special[randInt(len(special))]
	password[2] = numbers[randInt(len(numbers))]
	for i := 3; i < 10; i++ {
		password[i] = all[randInt(len(all))]
	}
	for i := range password {
		j := randInt(len(password))
		password[i], password[j] = password[j], password[i]
	}
	return string(password)
}

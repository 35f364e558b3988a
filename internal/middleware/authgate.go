package middleware

import (
	"net/url"
	"strings"
)

// AuthGate builds the hosted login URL the frontend sends anonymous users to
type AuthGate struct {
	AuthzURL  string
	PublicURL string
}

// NewAuthGate creates an AuthGate
func NewAuthGate(authzURL, publicURL string) *AuthGate {
	return &AuthGate{
		AuthzURL:  strings.TrimSuffix(authzURL, "/"),
		PublicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

// SafeRedirect returns next when it is a path on this site and "/" otherwise
func SafeRedirect(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return "/"
	}
	return next
}

// CallbackURL is where the provider sends the user back to after login
func (g *AuthGate) CallbackURL(next string) string {
	return g.PublicURL + "/api/auth/callback?next=" + url.QueryEscape(SafeRedirect(next))
}

// RequestAuth returns the provider login URL that comes back to next
func (g *AuthGate) RequestAuth(next string) string {
	return g.AuthzURL + "/app?redirect_uri=" + url.QueryEscape(g.CallbackURL(next))
}

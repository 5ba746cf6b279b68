package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Arisudan/Varshini-Industrries/internal/apperr"
)

// ErrNoCredentials means the request carried neither a token nor a session.
var ErrNoCredentials = fmt.Errorf("no credentials: %w", apperr.ErrUnauthorized)

const (
	MethodToken   = "token"
	MethodSession = "session"
)

// Principal is an authenticated back-office user.
type Principal struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Method   string `json:"-"`
}

// Strategy authenticates a request.
type Strategy interface {
	Authenticate(r *http.Request) (*Principal, error)
}

// TokenStrategy accepts "Authorization: Bearer <jwt>".
type TokenStrategy struct {
	Issuer *TokenIssuer
}

func (s TokenStrategy) Authenticate(r *http.Request) (*Principal, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, ErrNoCredentials
	}
	parts := strings.SplitN(header, " ", 2)
	if !strings.EqualFold(parts[0], "Bearer") {
		// another scheme (e.g. Basic from a proxy) is not ours to judge
		return nil, ErrNoCredentials
	}
	if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
		return nil, fmt.Errorf("invalid authorization format: %w", apperr.ErrUnauthorized)
	}
	return s.Issuer.Parse(strings.TrimSpace(parts[1]))
}

// SessionStrategy accepts the session cookie.
type SessionStrategy struct {
	Sessions *SessionManager
}

func (s SessionStrategy) Authenticate(r *http.Request) (*Principal, error) {
	return s.Sessions.Principal(r)
}

// Chain tries each strategy in turn. A strategy that finds credentials decides
// the outcome, so a bad token is rejected even when a session is present.
type Chain []Strategy

func (c Chain) Authenticate(r *http.Request) (*Principal, error) {
	for _, s := range c {
		p, err := s.Authenticate(r)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrNoCredentials) {
			return nil, err
		}
	}
	return nil, ErrNoCredentials
}

// NewStrategy picks the strategy for an AUTH_MODE value.
func NewStrategy(mode string, issuer *TokenIssuer, sessions *SessionManager) (Strategy, error) {
	switch mode {
	case "token":
		return TokenStrategy{Issuer: issuer}, nil
	case "session":
		return SessionStrategy{Sessions: sessions}, nil
	case "", "hybrid":
		return Chain{TokenStrategy{Issuer: issuer}, SessionStrategy{Sessions: sessions}}, nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", mode)
	}
}

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Arisudan/Varshini-Industrries/internal/apperr"
	"github.com/Arisudan/Varshini-Industrries/internal/models"
	"github.com/Arisudan/Varshini-Industrries/internal/store"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
	User      models.UserSummary `json:"user"`
	Principal *Principal         `json:"-"`
}

// Authenticator checks credentials against the stored users.
type Authenticator struct {
	store  store.DocumentStore
	issuer *TokenIssuer
}

func NewAuthenticator(s store.DocumentStore, issuer *TokenIssuer) *Authenticator {
	return &Authenticator{store: s, issuer: issuer}
}

// Login verifies username and password and issues a token.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("invalid credentials: %w", apperr.ErrUnauthorized)
	}
	doc, err := store.Snapshot(ctx, a.store)
	if err != nil {
		return nil, err
	}
	u, found := doc.FindUser(username)
	if !found {
		return nil, fmt.Errorf("invalid credentials: %w", apperr.ErrUnauthorized)
	}
	ok, legacy := CheckPassword(u.Password, password)
	if !ok {
		return nil, fmt.Errorf("invalid credentials: %w", apperr.ErrUnauthorized)
	}
	if legacy {
		slog.WarnContext(ctx, "user has a plaintext password; run `admin hash-passwords`", "username", u.Username)
	}

	token, exp, err := a.issuer.Issue(u)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &LoginResult{
		Token:     token,
		ExpiresAt: exp,
		User:      u.Summary(),
		Principal: &Principal{Username: u.Username, Name: u.Name, Role: u.Role},
	}, nil
}

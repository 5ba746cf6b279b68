package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/Arisudan/Varshini-Industrries/internal/apperr"
	"github.com/Arisudan/Varshini-Industrries/internal/models"
	"github.com/Arisudan/Varshini-Industrries/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-test-secret-test-sec")

func newTestStore(t *testing.T, users ...models.User) store.DocumentStore {
	t.Helper()
	s := store.NewFileStore(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, s.Update(context.Background(), func(d *models.Document) error {
		d.Users = users
		return nil
	}))
	return s
}

func TestCheckPassword(t *testing.T) {
	h, err := HashPassword("s3cret")
	require.NoError(t, err)

	ok, legacy := CheckPassword(h, "s3cret")
	assert.True(t, ok)
	assert.False(t, legacy)

	ok, _ = CheckPassword(h, "wrong")
	assert.False(t, ok)

	ok, legacy = CheckPassword("plain", "plain")
	assert.True(t, ok)
	assert.True(t, legacy)

	ok, _ = CheckPassword("", "")
	assert.False(t, ok)
}

func TestHashLegacyPasswords(t *testing.T) {
	h, _ := HashPassword("x")
	doc := &models.Document{Users: []models.User{{Username: "a", Password: "plain"}, {Username: "b", Password: h}}}
	n, err := HashLegacyPasswords(doc)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, IsHashed(doc.Users[0].Password))
	assert.Equal(t, h, doc.Users[1].Password)
}

func TestTokenIssuer_ValidUntilExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer(testSecret, time.Hour)
	issuer.now = func() time.Time { return now }

	token, exp, err := issuer.Issue(models.User{Username: "admin", Name: "Admin", Role: "Owner"})
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), exp)

	p, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", p.Username)
	assert.Equal(t, "Owner", p.Role)

	now = now.Add(2 * time.Hour)
	_, err = issuer.Parse(token)
	assert.True(t, errors.Is(err, ErrTokenExpired))
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
}

func TestTokenIssuer_RejectsForeignSignature(t *testing.T) {
	other := NewTokenIssuer([]byte("another-secret"), time.Hour)
	token, _, err := other.Issue(models.User{Username: "admin"})
	require.NoError(t, err)

	_, err = NewTokenIssuer(testSecret, time.Hour).Parse(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestChain_Outcomes(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	sessions := NewSessionManager(testSecret, time.Hour, false, "")
	strategy, err := NewStrategy("hybrid", issuer, sessions)
	require.NoError(t, err)

	// no credentials
	_, err = strategy.Authenticate(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, apperr.Status(err))

	// bad token
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	_, err = strategy.Authenticate(req)
	assert.Equal(t, http.StatusForbidden, apperr.Status(err))

	// malformed header
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	_, err = strategy.Authenticate(req)
	assert.Equal(t, http.StatusUnauthorized, apperr.Status(err))

	// good token
	token, _, _ := issuer.Issue(models.User{Username: "admin", Name: "Admin"})
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	p, err := strategy.Authenticate(req)
	require.NoError(t, err)
	assert.Equal(t, MethodToken, p.Method)

	// session cookie
	w := httptest.NewRecorder()
	require.NoError(t, sessions.Start(w, httptest.NewRequest(http.MethodPost, "/", nil), &Principal{Username: "admin", Name: "Admin", Role: "Owner"}))
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	p, err = strategy.Authenticate(req)
	require.NoError(t, err)
	assert.Equal(t, MethodSession, p.Method)
	assert.Equal(t, "Owner", p.Role)
}

func sessionRequest(w *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSessionManager_Clear(t *testing.T) {
	sessions := NewSessionManager(testSecret, time.Hour, false, "")
	w := httptest.NewRecorder()
	require.NoError(t, sessions.Start(w, httptest.NewRequest(http.MethodPost, "/", nil), &Principal{Username: "a"}))
	req := sessionRequest(w)

	w = httptest.NewRecorder()
	require.NoError(t, sessions.Clear(w, req))
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.True(t, cookies[0].MaxAge < 0)
}

func TestSessionManager_ClearRevokesCopiedCookie(t *testing.T) {
	sessions := NewSessionManager(testSecret, time.Hour, false, "")
	w := httptest.NewRecorder()
	require.NoError(t, sessions.Start(w, httptest.NewRequest(http.MethodPost, "/", nil), &Principal{Username: "admin"}))
	copied := sessionRequest(w)

	p, err := SessionStrategy{Sessions: sessions}.Authenticate(copied)
	require.NoError(t, err)
	assert.Equal(t, "admin", p.Username)

	require.NoError(t, sessions.Clear(httptest.NewRecorder(), sessionRequest(w)))

	_, err = SessionStrategy{Sessions: sessions}.Authenticate(sessionRequest(w))
	assert.True(t, errors.Is(err, ErrNoCredentials))
}

func TestSessionManager_ExpiresAfterTTL(t *testing.T) {
	sessions := NewSessionManager(testSecret, time.Hour, false, "")
	now := time.Now()
	sessions.now = func() time.Time { return now }

	w := httptest.NewRecorder()
	require.NoError(t, sessions.Start(w, httptest.NewRequest(http.MethodPost, "/", nil), &Principal{Username: "admin"}))
	for _, c := range w.Result().Cookies() {
		assert.Equal(t, 3600, c.MaxAge)
	}
	_, err := sessions.Principal(sessionRequest(w))
	require.NoError(t, err)

	now = now.Add(time.Hour + time.Minute)
	_, err = sessions.Principal(sessionRequest(w))
	assert.True(t, errors.Is(err, ErrNoCredentials))
}

func TestSessionManager_RestartForgetsSessions(t *testing.T) {
	first := NewSessionManager(testSecret, time.Hour, false, "")
	w := httptest.NewRecorder()
	require.NoError(t, first.Start(w, httptest.NewRequest(http.MethodPost, "/", nil), &Principal{Username: "admin"}))

	second := NewSessionManager(testSecret, time.Hour, false, "")
	_, err := second.Principal(sessionRequest(w))
	assert.True(t, errors.Is(err, ErrNoCredentials))
}

func TestChain_ForeignSchemeFallsBackToSession(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	sessions := NewSessionManager(testSecret, time.Hour, false, "")
	strategy, err := NewStrategy("hybrid", issuer, sessions)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, sessions.Start(w, httptest.NewRequest(http.MethodPost, "/", nil), &Principal{Username: "admin"}))
	req := sessionRequest(w)
	req.Header.Set("Authorization", "Basic YWRtaW46YWRtaW4=")

	p, err := strategy.Authenticate(req)
	require.NoError(t, err)
	assert.Equal(t, MethodSession, p.Method)

	// an empty bearer is still a malformed header
	req.Header.Set("Authorization", "Bearer ")
	_, err = strategy.Authenticate(req)
	assert.Equal(t, http.StatusUnauthorized, apperr.Status(err))
	assert.False(t, errors.Is(err, ErrNoCredentials))
}

func TestNewStrategy_Modes(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	sessions := NewSessionManager(testSecret, time.Hour, false, "")

	s, err := NewStrategy("token", issuer, sessions)
	require.NoError(t, err)
	assert.IsType(t, TokenStrategy{}, s)

	s, err = NewStrategy("session", issuer, sessions)
	require.NoError(t, err)
	assert.IsType(t, SessionStrategy{}, s)

	_, err = NewStrategy("local", issuer, sessions)
	assert.Error(t, err)
}

func TestAuthenticator_Login(t *testing.T) {
	h, _ := HashPassword("pump123")
	s := newTestStore(t,
		models.User{Username: "admin", Password: h, Name: "Admin", Role: "Owner"},
		models.User{Username: "old", Password: "legacy", Name: "Old", Role: "Staff"},
	)
	a := NewAuthenticator(s, NewTokenIssuer(testSecret, time.Hour))
	ctx := context.Background()

	res, err := a.Login(ctx, "admin", "pump123")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, models.UserSummary{Name: "Admin", Role: "Owner"}, res.User)

	_, err = a.Login(ctx, "old", "legacy")
	require.NoError(t, err)

	_, err = a.Login(ctx, "admin", "nope")
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
	_, err = a.Login(ctx, "ghost", "x")
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
}

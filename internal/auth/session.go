package auth

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

// SessionName is the cookie holding the admin session.
const SessionName = "varshini_admin"

// SessionManager stores the logged-in principal in a signed cookie. The cookie
// only carries a session id; the id must also be live in the manager, so
// Clear revokes a session even if a copy of the cookie survives.
type SessionManager struct {
	store *sessions.CookieStore
	ttl   time.Duration
	now   func() time.Time

	mu   sync.Mutex
	live map[string]time.Time // session id -> expiry
}

// NewSessionManager builds a cookie store keyed by key.
func NewSessionManager(key []byte, ttl time.Duration, secure bool, domain string) *SessionManager {
	store := sessions.NewCookieStore(key)
	// MaxAge also bounds the securecookie codec, not just the cookie header.
	store.MaxAge(int(ttl.Seconds()))
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = secure
	store.Options.SameSite = http.SameSiteLaxMode
	if domain != "" {
		store.Options.Domain = domain
	}
	return &SessionManager{
		store: store,
		ttl:   ttl,
		now:   time.Now,
		live:  make(map[string]time.Time),
	}
}

// Start records p in the session cookie and registers a fresh session id.
func (m *SessionManager) Start(w http.ResponseWriter, r *http.Request, p *Principal) error {
	session, _ := m.store.Get(r, SessionName)
	if old, ok := session.Values["sid"].(string); ok {
		m.revoke(old)
	}
	sid := uuid.NewString()
	m.register(sid)

	session.Values["sid"] = sid
	session.Values["authenticated"] = true
	session.Values["username"] = p.Username
	session.Values["name"] = p.Name
	session.Values["role"] = p.Role
	return session.Save(r, w)
}

// Principal returns the session principal, or ErrNoCredentials.
func (m *SessionManager) Principal(r *http.Request) (*Principal, error) {
	session, err := m.store.Get(r, SessionName)
	if err != nil || session.IsNew {
		return nil, ErrNoCredentials
	}
	if ok, _ := session.Values["authenticated"].(bool); !ok {
		return nil, ErrNoCredentials
	}
	sid, _ := session.Values["sid"].(string)
	if !m.isLive(sid) {
		return nil, ErrNoCredentials
	}
	username, _ := session.Values["username"].(string)
	name, _ := session.Values["name"].(string)
	role, _ := session.Values["role"].(string)
	return &Principal{Username: username, Name: name, Role: role, Method: MethodSession}, nil
}

// Clear revokes the session id and expires the cookie.
func (m *SessionManager) Clear(w http.ResponseWriter, r *http.Request) error {
	session, _ := m.store.Get(r, SessionName)
	if sid, ok := session.Values["sid"].(string); ok {
		m.revoke(sid)
	}
	session.Values = map[interface{}]interface{}{}
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

func (m *SessionManager) register(sid string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for id, exp := range m.live {
		if now.After(exp) {
			delete(m.live, id)
		}
	}
	m.live[sid] = now.Add(m.ttl)
}

func (m *SessionManager) revoke(sid string) {
	m.mu.Lock()
	delete(m.live, sid)
	m.mu.Unlock()
}

func (m *SessionManager) isLive(sid string) bool {
	if sid == "" {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.live[sid]
	if !ok {
		return false
	}
	if m.now().After(exp) {
		delete(m.live, sid)
		return false
	}
	return true
}

// Package session holds the signed-in state of the console. It is created
// once per process and handed to whatever needs a token, instead of being
// read from ambient storage.
package session

import (
	"errors"
	"os"
	"strings"
	"sync"
	"time"
)

// EnvVar overrides any stored token.
const EnvVar = "MENUADMIN_TOKEN"

var (
	ErrEmptyToken = errors.New("empty token")
	// ErrEnvToken is returned by Teardown when the token comes from EnvVar
	// and so cannot be removed by signing out.
	ErrEnvToken = errors.New("token is provided by " + EnvVar)
)

// Session is the process-wide sign-in state.
type Session struct {
	store  Store
	getenv func(string) string
	now    func() time.Time

	mu   sync.RWMutex
	info *Info
}

func New(store Store) *Session {
	return &Session{store: store, getenv: os.Getenv, now: time.Now}
}

// Restore loads an existing session: the env override first, then the store.
// Finding nothing is not an error.
func (s *Session) Restore() error {
	if env := strings.TrimSpace(s.getenv(EnvVar)); env != "" {
		info := &Info{Token: stripBearer(env), Source: "env"}
		info.ExpiresAt = expiryOf(info.Token)
		s.set(info)
		return nil
	}
	info, err := s.store.Load()
	if err != nil {
		return err
	}
	if info != nil {
		info.Token = stripBearer(info.Token)
	}
	s.set(info)
	return nil
}

// Init signs in with token and persists it. When expires is nil and the
// token is a JWT, the exp claim is used.
func (s *Session) Init(token string, expires *time.Time) error {
	token = stripBearer(token)
	if token == "" {
		return ErrEmptyToken
	}
	if expires == nil {
		expires = expiryOf(token)
	}
	info := Info{Token: token, CreatedAt: s.now(), ExpiresAt: expires}
	if err := s.store.Save(info); err != nil {
		return err
	}
	info.Source = "store"
	if loaded, err := s.store.Load(); err == nil && loaded != nil {
		info.Source = loaded.Source
	}
	s.set(&info)
	return nil
}

// Teardown signs out: the in-memory token is dropped and the stored one
// deleted.
func (s *Session) Teardown() error {
	s.mu.Lock()
	fromEnv := s.info != nil && s.info.Source == "env"
	s.info = nil
	s.mu.Unlock()
	if fromEnv {
		return ErrEnvToken
	}
	return s.store.Delete()
}

// Token implements api.TokenSource. Expired tokens are still returned; the
// backend decides.
func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.info == nil || s.info.Token == "" {
		return "", false
	}
	return s.info.Token, true
}

// Info returns a copy of the current session, or nil when signed out.
func (s *Session) Info() *Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.info == nil {
		return nil
	}
	cp := *s.info
	return &cp
}

// Active reports whether a token is present and not expired.
func (s *Session) Active() bool {
	info := s.Info()
	return info != nil && info.Token != "" && !info.Expired(s.now())
}

func (s *Session) set(info *Info) {
	s.mu.Lock()
	s.info = info
	s.mu.Unlock()
}

// stripBearer drops a pasted "Bearer" scheme and surrounding space. A lone
// scheme yields "".
func stripBearer(s string) string {
	s = strings.TrimSpace(s)
	scheme, rest, _ := strings.Cut(s, " ")
	if strings.EqualFold(scheme, "bearer") {
		return strings.TrimSpace(rest)
	}
	return s
}

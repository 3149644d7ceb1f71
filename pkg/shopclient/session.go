package shopclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type SessionState struct {
	Token     string    `json:"token"`
	User      *User     `json:"user"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// SessionStore persists the session between runs.
type SessionStore interface {
	Load() (*SessionState, error)
	Save(*SessionState) error
	Clear() error
}

type MemoryStore struct {
	mu    sync.Mutex
	state *SessionState
}

func (m *MemoryStore) Load() (*SessionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil, nil
	}
	cp := *m.state
	return &cp, nil
}

func (m *MemoryStore) Save(s *SessionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.state = &cp
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = nil
	return nil
}

// FileStore keeps the session as a JSON file readable only by the owner.
type FileStore struct {
	Path string
}

func (f FileStore) Load() (*SessionState, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s SessionState
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (f FileStore) Save(s *SessionState) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return os.Rename(tmp, f.Path)
}

func (f FileStore) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// Session is the caller's current login. Safe for concurrent use.
type Session struct {
	mu    sync.RWMutex
	store SessionStore
	state *SessionState
	now   func() time.Time
}

func NewSession(store SessionStore) *Session {
	if store == nil {
		store = &MemoryStore{}
	}
	return &Session{store: store, now: time.Now}
}

// Load restores the persisted session. An expired one is dropped.
func (s *Session) Load() error {
	st, err := s.store.Load()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if st != nil && st.Token != "" && !s.expired(st) {
		s.state = st
		return nil
	}
	s.state = nil
	if st != nil {
		return s.store.Clear()
	}
	return nil
}

func (s *Session) Set(st SessionState) error {
	if err := s.store.Save(&st); err != nil {
		return err
	}
	s.mu.Lock()
	s.state = &st
	s.mu.Unlock()
	return nil
}

func (s *Session) Clear() error {
	s.mu.Lock()
	s.state = nil
	s.mu.Unlock()
	return s.store.Clear()
}

func (s *Session) expired(st *SessionState) bool {
	return !st.ExpiresAt.IsZero() && !s.now().Before(st.ExpiresAt)
}

func (s *Session) valid() *SessionState {
	if s.state == nil || s.expired(s.state) {
		return nil
	}
	return s.state
}

// Current returns a copy of the logged-in user, or nil.
func (s *Session) Current() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.valid()
	if st == nil || st.User == nil {
		return nil
	}
	u := *st.User
	return &u
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st := s.valid(); st != nil {
		return st.Token
	}
	return ""
}

func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

func (s *Session) IsAdmin() bool {
	u := s.Current()
	return u != nil && u.Role == "admin"
}

package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"kyri56xcaesar/teamops/internal/appstate"
	"kyri56xcaesar/teamops/internal/logger"
)

// Session is the saved acting-user state: who is logged in, which top-level
// view was open last, and the theme preference. It is read once at bootstrap
// and written on every user/view change; it is not part of the entity store.
type Session struct {
	UserID   string `json:"userId,omitempty"`
	LastView string `json:"lastView,omitempty"`
	Theme    string `json:"theme,omitempty"`
}

type SessionStore interface {
	Load() (Session, error)
	Save(Session) error
}

// FileSessionStore keeps the session in a small JSON file.
type FileSessionStore struct {
	Path string
}

func (f *FileSessionStore) Load() (Session, error) {
	var s Session
	raw, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return Session{}, fmt.Errorf("corrupt session file %s: %w", f.Path, err)
	}
	return s, nil
}

func (f *FileSessionStore) Save(s Session) error {
	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, raw, 0o600)
}

// MemorySessionStore is the test double.
type MemorySessionStore struct {
	Session Session
}

func (m *MemorySessionStore) Load() (Session, error) { return m.Session, nil }
func (m *MemorySessionStore) Save(s Session) error { m.Session = s; return nil }

// CurrentSession returns the acting-user state.
func (c *Controller) CurrentSession() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// ActingUser resolves the session's user against the store.
func (c *Controller) ActingUser() (appstate.TeamMember, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session.UserID == "" {
		return appstate.TeamMember{}, false
	}
	return c.store.Member(c.session.UserID)
}

// SetLastView persists the last-selected top-level view.
func (c *Controller) SetLastView(view string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.LastView = view
	c.saveSession()
}

// SetTheme persists the light/dark preference.
func (c *Controller) SetTheme(theme string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.Theme = theme
	c.saveSession()
}

// Logout clears the acting user but keeps view/theme preferences.
func (c *Controller) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.UserID = ""
	c.saveSession()
	c.rebuild()
}

// saveSession is best effort; a failed save never fails the mutation that
// triggered it.
func (c *Controller) saveSession() {
	if c.sessions == nil {
		return
	}
	if err := c.sessions.Save(c.session); err != nil {
		logger.Error("failed to save session", "err", err)
	}
}

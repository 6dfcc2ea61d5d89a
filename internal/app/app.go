// Package app holds the mutation coordinator: the single writer of the
// in-memory entity store. Every user intent becomes (a) derived-field
// computation, (b) one or more persistence gateway calls, (c) the matching
// store updates, (d) a view rebuild — in that order, so the store never
// reflects a write the gateway has not confirmed.
package app

import (
	"sync"
	"time"

	"kyri56xcaesar/teamops/internal/appstate"
	"kyri56xcaesar/teamops/internal/gateway"
)

// Renderer is the view-rebuild trigger. The presentation layer implements it;
// the coordinator invokes it after every successful mutation and after load.
type Renderer interface {
	Rebuild(*appstate.Store)
}

// RendererFunc adapts a plain function to the Renderer interface.
type RendererFunc func(*appstate.Store)

func (f RendererFunc) Rebuild(s *appstate.Store) { f(s) }

// Controller owns the entity store and coordinates every mutation against the
// persistence gateway. The mutex serializes operations: each one runs to
// completion before the next starts.
type Controller struct {
	mu sync.Mutex

	store    *appstate.Store
	gw       gateway.Gateway
	renderer Renderer
	sessions SessionStore
	session  Session

	nowFn func() time.Time
}

type Option func(*Controller)

func WithRenderer(r Renderer) Option {
	return func(c *Controller) { c.renderer = r }
}

func WithSessionStore(s SessionStore) Option {
	return func(c *Controller) { c.sessions = s }
}

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.nowFn = now }
}

func New(gw gateway.Gateway, opts ...Option) *Controller {
	c := &Controller{
		store: appstate.NewStore(),
		gw:    gw,
		nowFn: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) now() time.Time {
	return c.nowFn().Truncate(time.Second)
}

func (c *Controller) rebuild() {
	if c.renderer != nil {
		c.renderer.Rebuild(c.store)
	}
}

// Snapshot runs fn against the store under the coordinator's lock. Read-only
// accessors for the presentation layer.
func (c *Controller) Snapshot(fn func(*appstate.Store)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.store)
}

// Projects returns the current project list.
func (c *Controller) Projects() []appstate.Project {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Projects()
}

// Members returns the current team list.
func (c *Controller) Members() []appstate.TeamMember {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Members()
}

// AttendanceRecords returns every attendance record.
func (c *Controller) AttendanceRecords() []appstate.AttendanceRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.AttendanceRecords()
}

// Notes returns every note.
func (c *Controller) Notes() []appstate.Note {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Notes()
}

// WorkLogs returns every work log entry.
func (c *Controller) WorkLogs() []appstate.WorkLog {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.WorkLogs()
}

// Activities returns the recent-activity feed, newest first.
func (c *Controller) Activities() []appstate.Activity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Activities()
}

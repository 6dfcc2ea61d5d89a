package app

import (
	"context"

	"github.com/google/uuid"

	"kyri56xcaesar/teamops/internal/appstate"
)

// CreateNote stores a note owned by the acting user.
func (c *Controller) CreateNote(ctx context.Context, actor string, n appstate.Note) (appstate.Note, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.UserID = actor
	now := c.now()
	n.CreatedAt = now
	n.UpdatedAt = now

	fields, err := appstate.DocOf(n)
	if err != nil {
		return appstate.Note{}, &WriteError{Entity: "note", Op: "create", Err: err}
	}
	if err := c.gw.SetDocument(ctx, appstate.ColNotes, n.ID, fields); err != nil {
		return appstate.Note{}, &WriteError{Entity: "note", Op: "create", Err: err}
	}

	c.store.PutNote(n)
	c.rebuild()
	return n, nil
}

// UpdateNote replaces a note's content. Ownership and creation time never
// change.
func (c *Controller) UpdateNote(ctx context.Context, n appstate.Note) (appstate.Note, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev, ok := c.store.Note(n.ID)
	if !ok {
		return appstate.Note{}, &NotFoundError{Entity: "note", ID: n.ID}
	}
	n.UserID = prev.UserID
	n.CreatedAt = prev.CreatedAt
	n.UpdatedAt = c.now()

	fields, err := appstate.DocOf(n)
	if err != nil {
		return appstate.Note{}, &WriteError{Entity: "note", Op: "update", Err: err}
	}
	if err := c.gw.SetDocument(ctx, appstate.ColNotes, n.ID, fields); err != nil {
		return appstate.Note{}, &WriteError{Entity: "note", Op: "update", Err: err}
	}

	c.store.PutNote(n)
	c.rebuild()
	return n, nil
}

// DeleteNote removes a note.
func (c *Controller) DeleteNote(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.gw.DeleteDocument(ctx, appstate.ColNotes, id); err != nil {
		return &WriteError{Entity: "note", Op: "delete", Err: err}
	}

	c.store.RemoveNote(id)
	c.rebuild()
	return nil
}

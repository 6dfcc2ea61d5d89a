package app

import (
	"context"

	"kyri56xcaesar/teamops/internal/appstate"
)

// appendActivity persists a feed entry under a gateway-assigned id and then
// stores it. Callers hold the coordinator lock.
func (c *Controller) appendActivity(ctx context.Context, typ, userID string, details map[string]any) (appstate.Activity, error) {
	a := appstate.Activity{
		Type:      typ,
		UserID:    userID,
		Timestamp: c.now(),
		Details:   details,
	}

	fields, err := appstate.DocOf(a)
	if err != nil {
		return appstate.Activity{}, err
	}

	id, err := c.gw.AddDocument(ctx, appstate.ColActivities, fields)
	if err != nil {
		return appstate.Activity{}, err
	}

	a.ID = id
	c.store.PutActivity(a)
	return a, nil
}

// RecordLogin notes a successful login in the activity feed and makes the
// member the acting user.
func (c *Controller) RecordLogin(ctx context.Context, memberID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	member, ok := c.store.Member(memberID)
	if !ok {
		return &NotFoundError{Entity: "team member", ID: memberID}
	}

	if _, err := c.appendActivity(ctx, appstate.ActivityLogin, member.ID, map[string]any{
		"name": member.Name,
	}); err != nil {
		return &WriteError{Entity: "activity", Op: "record", Err: err}
	}

	c.session.UserID = member.ID
	c.saveSession()
	c.rebuild()
	return nil
}

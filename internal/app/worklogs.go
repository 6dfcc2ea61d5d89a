package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"kyri56xcaesar/teamops/internal/appstate"
	"kyri56xcaesar/teamops/internal/gateway"
	"kyri56xcaesar/teamops/internal/logger"
)

// AddWorkLogs persists a batch of work-log entries atomically: either every
// entry is written or none is. Each stored entry also gets an activity-feed
// item, written best effort after the batch lands.
func (c *Controller) AddWorkLogs(ctx context.Context, entries []appstate.WorkLog) ([]appstate.WorkLog, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(entries) == 0 {
		return nil, nil
	}

	now := c.now()
	for i := range entries {
		if entries[i].TimeSpentMinutes < 0 {
			return nil, fmt.Errorf("work log %d: negative time spent", i)
		}
		if entries[i].MemberID == "" {
			return nil, fmt.Errorf("work log %d: missing member", i)
		}
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
		entries[i].CreatedAt = now
		entries[i].UpdatedAt = now
	}

	records := make([]gateway.Record, 0, len(entries))
	for _, e := range entries {
		fields, err := appstate.DocOf(e)
		if err != nil {
			return nil, &WriteError{Entity: "work log", Op: "add", Err: err}
		}
		records = append(records, gateway.Record{ID: e.ID, Fields: fields})
	}
	if err := c.gw.BatchWrite(ctx, appstate.ColWorkLogs, records); err != nil {
		return nil, &WriteError{Entity: "work log", Op: "add", Err: err}
	}

	for _, e := range entries {
		c.store.PutWorkLog(e)
	}

	for _, e := range entries {
		details := map[string]any{
			"memberId":         e.MemberID,
			"taskName":         e.TaskName,
			"timeSpentMinutes": e.TimeSpentMinutes,
		}
		if _, err := c.appendActivity(ctx, appstate.ActivityWorkLogAdd, e.MemberID, details); err != nil {
			logger.Error("could not record work log activity", "worklog", e.ID, "error", err)
		}
	}

	c.rebuild()
	return entries, nil
}

// DeleteWorkLog removes a single entry.
func (c *Controller) DeleteWorkLog(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.gw.DeleteDocument(ctx, appstate.ColWorkLogs, id); err != nil {
		return &WriteError{Entity: "work log", Op: "delete", Err: err}
	}

	c.store.RemoveWorkLog(id)
	c.rebuild()
	return nil
}

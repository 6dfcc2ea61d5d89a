package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"kyri56xcaesar/teamops/internal/appstate"
	"kyri56xcaesar/teamops/internal/utils"
)

// CreateProject persists a new project and inserts it into the store. The id
// is assigned here when absent.
func (c *Controller) CreateProject(ctx context.Context, p appstate.Project) (appstate.Project, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = appstate.StatusToDo
	}
	now := c.now()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.CompletionDate = nil

	fields, err := appstate.DocOf(p)
	if err != nil {
		return appstate.Project{}, &WriteError{Entity: "project", Op: "create", Err: err}
	}
	if err := c.gw.SetDocument(ctx, appstate.ColProjects, p.ID, fields); err != nil {
		return appstate.Project{}, &WriteError{Entity: "project", Op: "create", Err: err}
	}

	c.store.PutProject(p)
	c.rebuild()
	return p, nil
}

// UpdateProject replaces an existing project. The first transition into Done
// stamps the completion date and appends a project_completed activity
// attributed to the actor; marking an already-Done project Done again does
// neither.
func (c *Controller) UpdateProject(ctx context.Context, actor string, updated appstate.Project) (appstate.Project, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev, ok := c.store.Project(updated.ID)
	if !ok {
		return appstate.Project{}, &NotFoundError{Entity: "project", ID: updated.ID}
	}

	now := c.now()
	updated.CreatedAt = prev.CreatedAt
	updated.UpdatedAt = now
	updated.CompletionDate = prev.CompletionDate

	completing := prev.Status != appstate.StatusDone && updated.Status == appstate.StatusDone
	if completing {
		updated.CompletionDate = &now
		if _, err := c.appendActivity(ctx, appstate.ActivityProjectCompleted, actor, map[string]any{
			"projectId":   updated.ID,
			"projectName": updated.Name,
			"assignees":   append([]string(nil), updated.Assignees...),
		}); err != nil {
			return appstate.Project{}, &WriteError{Entity: "project activity", Op: "record", Err: err}
		}
	}

	fields, err := appstate.DocOf(updated)
	if err != nil {
		return appstate.Project{}, &WriteError{Entity: "project", Op: "update", Err: err}
	}
	if err := c.gw.SetDocument(ctx, appstate.ColProjects, updated.ID, fields); err != nil {
		return appstate.Project{}, &WriteError{Entity: "project", Op: "update", Err: err}
	}

	c.store.PutProject(updated)
	c.rebuild()
	return updated, nil
}

// DeleteProject removes the project and cascade-deletes its work logs. Each
// work-log deletion is persisted independently; the store drops only the
// entries whose deletion the gateway confirmed.
func (c *Controller) DeleteProject(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.store.Project(id); !ok {
		return &NotFoundError{Entity: "project", ID: id}
	}

	if err := c.gw.DeleteDocument(ctx, appstate.ColProjects, id); err != nil {
		return &WriteError{Entity: "project", Op: "delete", Err: err}
	}
	c.store.RemoveProject(id)

	logs := utils.Filter(c.store.WorkLogs(), func(w appstate.WorkLog) bool {
		return w.ProjectID == id
	})

	errs := make([]error, len(logs))
	var wg sync.WaitGroup
	for i, w := range logs {
		wg.Add(1)
		go func(i int, logID string) {
			defer wg.Done()
			errs[i] = c.gw.DeleteDocument(ctx, appstate.ColWorkLogs, logID)
		}(i, w.ID)
	}
	wg.Wait()

	var failed []error
	for i, w := range logs {
		if errs[i] != nil {
			failed = append(failed, fmt.Errorf("work log %s: %w", w.ID, errs[i]))
			continue
		}
		c.store.RemoveWorkLog(w.ID)
	}

	c.rebuild()

	if len(failed) > 0 {
		return &WriteError{Entity: "project work logs", Op: "cascade delete", Err: errors.Join(failed...)}
	}
	return nil
}

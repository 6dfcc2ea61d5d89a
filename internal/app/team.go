package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"kyri56xcaesar/teamops/internal/appstate"
	"kyri56xcaesar/teamops/internal/utils"
)

// CreateMember persists a new team member. The display color is derived from
// list position and never stored.
func (c *Controller) CreateMember(ctx context.Context, m appstate.TeamMember) (appstate.TeamMember, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Role == "" {
		m.Role = appstate.RoleMember
	}
	if m.Status == "" {
		m.Status = appstate.MemberActive
	}

	if s, ok := c.store.Settings(); ok && s.MaxTeamSize > 0 && c.store.MemberCount() >= s.MaxTeamSize {
		return appstate.TeamMember{}, fmt.Errorf("team is full (max %d members)", s.MaxTeamSize)
	}

	position := c.store.MemberCount()

	persisted := m
	persisted.Color = ""
	fields, err := appstate.DocOf(persisted)
	if err != nil {
		return appstate.TeamMember{}, &WriteError{Entity: "team member", Op: "create", Err: err}
	}
	if err := c.gw.SetDocument(ctx, appstate.ColTeam, m.ID, fields); err != nil {
		return appstate.TeamMember{}, &WriteError{Entity: "team member", Op: "create", Err: err}
	}

	m.Color = PaletteColor(position)
	c.store.PutMember(m)
	c.rebuild()
	return m, nil
}

// UpdateMember replaces an existing member record, keeping the derived color.
func (c *Controller) UpdateMember(ctx context.Context, m appstate.TeamMember) (appstate.TeamMember, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev, ok := c.store.Member(m.ID)
	if !ok {
		return appstate.TeamMember{}, &NotFoundError{Entity: "team member", ID: m.ID}
	}

	persisted := m
	persisted.Color = ""
	fields, err := appstate.DocOf(persisted)
	if err != nil {
		return appstate.TeamMember{}, &WriteError{Entity: "team member", Op: "update", Err: err}
	}
	if err := c.gw.SetDocument(ctx, appstate.ColTeam, m.ID, fields); err != nil {
		return appstate.TeamMember{}, &WriteError{Entity: "team member", Op: "update", Err: err}
	}

	m.Color = prev.Color
	c.store.PutMember(m)
	c.rebuild()
	return m, nil
}

// stripMemberRefs removes every reference to a member from a project:
// assignee entry, team lead, goal-metric owner. Reports whether anything
// changed.
func stripMemberRefs(p appstate.Project, memberID string) (appstate.Project, bool) {
	changed := false

	if utils.Contains(p.Assignees, memberID) {
		p.Assignees = utils.Filter(p.Assignees, func(id string) bool { return id != memberID })
		changed = true
	}
	if p.TeamLeadID == memberID {
		p.TeamLeadID = ""
		changed = true
	}
	for gi, g := range p.Goals {
		for mi, metric := range g.Metrics {
			if metric.MemberID == memberID {
				p.Goals[gi].Metrics[mi].MemberID = ""
				changed = true
			}
		}
	}

	return p, changed
}

// DeleteMember removes a member and everything referencing them: projects lose
// the member as assignee/lead/metric owner, and all attendance and work-log
// rows for the member are bulk-deleted. The independent steps fan out
// concurrently. There is no cross-collection transaction, so a partial
// failure leaves the backend in whatever state it reached; the declared
// recovery is a full reload, surfaced as a CascadeError.
func (c *Controller) DeleteMember(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.store.Member(id); !ok {
		return &NotFoundError{Entity: "team member", ID: id}
	}

	now := c.now()
	var stripped []appstate.Project
	for _, p := range c.store.Projects() {
		if updated, changed := stripMemberRefs(p, id); changed {
			updated.UpdatedAt = now
			stripped = append(stripped, updated)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range stripped {
		p := p
		g.Go(func() error {
			fields, err := appstate.DocOf(p)
			if err != nil {
				return fmt.Errorf("project %s: %w", p.ID, err)
			}
			if err := c.gw.SetDocument(gctx, appstate.ColProjects, p.ID, fields); err != nil {
				return fmt.Errorf("project %s: %w", p.ID, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		return c.gw.DeleteByQuery(gctx, appstate.ColAttendance, "memberId", id)
	})
	g.Go(func() error {
		return c.gw.DeleteByQuery(gctx, appstate.ColWorkLogs, "memberId", id)
	})

	err := g.Wait()
	if err == nil {
		err = c.gw.DeleteDocument(ctx, appstate.ColTeam, id)
	}
	if err != nil {
		reloadErr := c.loadLocked(ctx)
		return &CascadeError{Entity: "team member", ID: id, Err: err, ReloadErr: reloadErr}
	}

	for _, p := range stripped {
		c.store.PutProject(p)
	}
	c.store.RemoveAttendanceWhere(func(a appstate.AttendanceRecord) bool { return a.MemberID == id })
	c.store.RemoveWorkLogsWhere(func(w appstate.WorkLog) bool { return w.MemberID == id })
	c.store.RemoveMember(id)

	// deleting the acting user ends their session
	if c.session.UserID == id {
		c.session.UserID = ""
		c.saveSession()
	}

	c.rebuild()
	return nil
}

package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"kyri56xcaesar/teamops/internal/appstate"
	"kyri56xcaesar/teamops/internal/gateway"
	"kyri56xcaesar/teamops/internal/logger"
)

// memberPalette supplies display colors assigned by list position.
var memberPalette = []string{
	"#3b82f6", "#ef4444", "#10b981", "#f59e0b", "#8b5cf6",
	"#ec4899", "#14b8a6", "#f97316", "#6366f1", "#84cc16",
}

// PaletteColor returns the display color for the i-th member.
func PaletteColor(i int) string {
	return memberPalette[i%len(memberPalette)]
}

func seedMembers() []appstate.TeamMember {
	return []appstate.TeamMember{
		{ID: uuid.NewString(), Name: "Alex Morgan", Role: appstate.RoleManager, Status: appstate.MemberActive, Designation: "Team Lead"},
		{ID: uuid.NewString(), Name: "Sam Riley", Role: appstate.RoleMember, Status: appstate.MemberActive, Designation: "Engineer"},
		{ID: uuid.NewString(), Name: "Jordan Lee", Role: appstate.RoleMember, Status: appstate.MemberActive, Designation: "QA Analyst"},
	}
}

// Load performs the one-shot bootstrap: fetch every collection concurrently,
// repair settings, seed the team when empty, assign display colors, restore
// the saved session.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked(ctx)
}

// Reload refetches everything, discarding local store state. Used after a
// cascade failure and after CSV import.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked(ctx)
}

// decodeAll decodes a collection's records, skipping the undecodable ones
// with a warning rather than failing the whole load.
func decodeAll[T any](collection string, records []gateway.Record) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		v, err := appstate.FromDoc[T](r.ID, r.Fields)
		if err != nil {
			logger.Warn("skipping undecodable record", "collection", collection, "id", r.ID, "error", err)
			continue
		}
		out = append(out, v)
	}
	return out
}

func (c *Controller) loadLocked(ctx context.Context) error {
	var (
		teamRecs, projectRecs, attendanceRecs []gateway.Record
		noteRecs, worklogRecs, activityRecs   []gateway.Record
		settingsRecs                          []gateway.Record
	)

	g, gctx := errgroup.WithContext(ctx)
	fetch := func(col string, dst *[]gateway.Record) {
		g.Go(func() error {
			recs, err := c.gw.GetCollection(gctx, col)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", col, err)
			}
			*dst = recs
			return nil
		})
	}
	fetch(appstate.ColTeam, &teamRecs)
	fetch(appstate.ColProjects, &projectRecs)
	fetch(appstate.ColAttendance, &attendanceRecs)
	fetch(appstate.ColNotes, &noteRecs)
	fetch(appstate.ColWorkLogs, &worklogRecs)
	fetch(appstate.ColActivities, &activityRecs)
	fetch(appstate.ColSettings, &settingsRecs)
	if err := g.Wait(); err != nil {
		return fmt.Errorf("could not load application state: %w", err)
	}

	members := decodeAll[appstate.TeamMember](appstate.ColTeam, teamRecs)
	projects := decodeAll[appstate.Project](appstate.ColProjects, projectRecs)
	attendance := decodeAll[appstate.AttendanceRecord](appstate.ColAttendance, attendanceRecs)
	notes := decodeAll[appstate.Note](appstate.ColNotes, noteRecs)
	worklogs := decodeAll[appstate.WorkLog](appstate.ColWorkLogs, worklogRecs)
	activities := decodeAll[appstate.Activity](appstate.ColActivities, activityRecs)

	// settings: take the well-known doc if present, fill gaps, persist the
	// repaired doc back (best effort)
	settings := defaultSettings()
	changed := true
	for _, r := range settingsRecs {
		if r.ID != appstate.SettingsDocID {
			continue
		}
		decoded, err := appstate.FromDoc[appstate.AppSettings](r.ID, r.Fields)
		if err != nil {
			logger.Warn("settings document is undecodable, using defaults", "error", err)
			break
		}
		settings, changed = fillSettingsDefaults(decoded, r.Fields)
		break
	}
	if changed {
		if fields, err := appstate.DocOf(settings); err == nil {
			if err := c.gw.SetDocument(ctx, appstate.ColSettings, appstate.SettingsDocID, fields); err != nil {
				logger.Error("could not persist repaired settings", "error", err)
			}
		}
	}

	// seed a starter team only when the collection is empty
	if len(members) == 0 {
		members = seedMembers()
		records := make([]gateway.Record, 0, len(members))
		for _, m := range members {
			fields, err := appstate.DocOf(m)
			if err != nil {
				return fmt.Errorf("could not seed team: %w", err)
			}
			records = append(records, gateway.Record{ID: m.ID, Fields: fields})
		}
		if err := c.gw.BatchWrite(ctx, appstate.ColTeam, records); err != nil {
			return fmt.Errorf("could not seed team: %w", err)
		}
	}

	// colors come from list position, so the list order must be stable
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	for i := range members {
		members[i].Color = PaletteColor(i)
	}

	c.store.SetMembers(members)
	c.store.SetProjects(projects)
	c.store.SetAttendanceRecords(attendance)
	c.store.SetNotes(notes)
	c.store.SetWorkLogs(worklogs)
	c.store.SetActivities(activities)
	c.store.SetSettings(settings)

	// restore the saved session; a stale user id falls back to logged out
	if c.sessions != nil {
		sess, err := c.sessions.Load()
		if err != nil {
			logger.Warn("could not restore session", "error", err)
		} else {
			c.session = sess
		}
	}
	if c.session.UserID != "" {
		if _, ok := c.store.Member(c.session.UserID); !ok {
			c.session.UserID = ""
			c.saveSession()
		}
	}

	c.rebuild()
	return nil
}

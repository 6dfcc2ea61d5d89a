package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kyri56xcaesar/teamops/internal/appstate"
	"kyri56xcaesar/teamops/internal/csvio"
	"kyri56xcaesar/teamops/internal/gateway"
)

// faultyGateway wraps the in-memory gateway and fails chosen operations on
// chosen collections.
type faultyGateway struct {
	*gateway.Memory
	failBatchWrite map[string]bool
	failAdd        map[string]bool
	failDeleteByQ  map[string]bool
	failDeleteDoc  map[string]bool // keyed collection + "/" + id
}

func newFaultyGateway() *faultyGateway {
	return &faultyGateway{
		Memory:         gateway.NewMemory(),
		failBatchWrite: map[string]bool{},
		failAdd:        map[string]bool{},
		failDeleteByQ:  map[string]bool{},
		failDeleteDoc:  map[string]bool{},
	}
}

func (f *faultyGateway) BatchWrite(ctx context.Context, collection string, records []gateway.Record) error {
	if f.failBatchWrite[collection] {
		return errors.New("batch write refused")
	}
	return f.Memory.BatchWrite(ctx, collection, records)
}

func (f *faultyGateway) AddDocument(ctx context.Context, collection string, fields map[string]any) (string, error) {
	if f.failAdd[collection] {
		return "", errors.New("add refused")
	}
	return f.Memory.AddDocument(ctx, collection, fields)
}

func (f *faultyGateway) DeleteDocument(ctx context.Context, collection, id string) error {
	if f.failDeleteDoc[collection+"/"+id] {
		return errors.New("delete refused")
	}
	return f.Memory.DeleteDocument(ctx, collection, id)
}

func (f *faultyGateway) DeleteByQuery(ctx context.Context, collection, field string, value any) error {
	if f.failDeleteByQ[collection] {
		return errors.New("delete by query refused")
	}
	return f.Memory.DeleteByQuery(ctx, collection, field, value)
}

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	}
}

func newTestController(t *testing.T, gw gateway.Gateway) *Controller {
	t.Helper()
	c := New(gw,
		WithSessionStore(&MemorySessionStore{}),
		WithClock(fixedClock()),
	)
	require.NoError(t, c.Load(context.Background()))
	return c
}

func addMember(t *testing.T, c *Controller, name string) appstate.TeamMember {
	t.Helper()
	m, err := c.CreateMember(context.Background(), appstate.TeamMember{Name: name})
	require.NoError(t, err)
	return m
}

func TestMutationMatchesGatewayState(t *testing.T) {
	gw := gateway.NewMemory()
	c := newTestController(t, gw)

	p, err := c.CreateProject(context.Background(), appstate.Project{Name: "rollout"})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, appstate.StatusToDo, p.Status)

	recs, err := gw.GetCollection(context.Background(), appstate.ColProjects)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	stored, err := appstate.FromDoc[appstate.Project](recs[0].ID, recs[0].Fields)
	require.NoError(t, err)
	assert.Equal(t, p, stored)

	// the store holds exactly what the gateway confirmed
	projects := c.Projects()
	require.Len(t, projects, 1)
	assert.Equal(t, p, projects[0])
}

func TestFailedWriteLeavesStoreUntouched(t *testing.T) {
	gw := newFaultyGateway()
	c := newTestController(t, gw)

	gw.failBatchWrite[appstate.ColWorkLogs] = true
	_, err := c.AddWorkLogs(context.Background(), []appstate.WorkLog{
		{MemberID: "m1", TaskName: "triage", TimeSpentMinutes: 30},
	})
	require.Error(t, err)

	var write *WriteError
	require.ErrorAs(t, err, &write)
	assert.Empty(t, c.WorkLogs())
}

func TestDoneTransitionStampsCompletionOnce(t *testing.T) {
	gw := gateway.NewMemory()
	c := newTestController(t, gw)

	p, err := c.CreateProject(context.Background(), appstate.Project{Name: "migration"})
	require.NoError(t, err)
	require.Nil(t, p.CompletionDate)

	p.Status = appstate.StatusDone
	done, err := c.UpdateProject(context.Background(), "", p)
	require.NoError(t, err)
	require.NotNil(t, done.CompletionDate)
	first := *done.CompletionDate

	acts := c.Activities()
	require.Len(t, acts, 1)
	assert.Equal(t, appstate.ActivityProjectCompleted, acts[0].Type)

	// editing a project that is already Done must not re-stamp or re-log
	done.Description = "wrapped up"
	again, err := c.UpdateProject(context.Background(), "", done)
	require.NoError(t, err)
	require.NotNil(t, again.CompletionDate)
	assert.Equal(t, first, *again.CompletionDate)
	assert.Len(t, c.Activities(), 1)

	// leaving Done and entering it again stamps fresh
	again.Status = appstate.StatusInProgress
	reopened, err := c.UpdateProject(context.Background(), "", again)
	require.NoError(t, err)
	reopened.Status = appstate.StatusDone
	redone, err := c.UpdateProject(context.Background(), "", reopened)
	require.NoError(t, err)
	require.NotNil(t, redone.CompletionDate)
	assert.Len(t, c.Activities(), 2)
}

func TestDeleteMemberCascades(t *testing.T) {
	gw := gateway.NewMemory()
	c := newTestController(t, gw)

	victim := addMember(t, c, "Casey")
	other := addMember(t, c, "Robin")

	ctx := context.Background()
	p1, err := c.CreateProject(ctx, appstate.Project{
		Name:       "alpha",
		Assignees:  []string{victim.ID, other.ID},
		TeamLeadID: victim.ID,
	})
	require.NoError(t, err)
	p2, err := c.CreateProject(ctx, appstate.Project{
		Name:  "beta",
		Goals: []appstate.Goal{{Name: "ship", Metrics: []appstate.GoalMetric{{Name: "reviews", MemberID: victim.ID}}}},
	})
	require.NoError(t, err)
	p3, err := c.CreateProject(ctx, appstate.Project{Name: "gamma", Assignees: []string{other.ID}})
	require.NoError(t, err)

	_, err = c.UpsertAttendance(ctx, AttendanceUpdate{MemberID: victim.ID, Date: "2025-03-10"})
	require.NoError(t, err)
	_, err = c.UpsertAttendance(ctx, AttendanceUpdate{MemberID: other.ID, Date: "2025-03-10"})
	require.NoError(t, err)

	_, err = c.AddWorkLogs(ctx, []appstate.WorkLog{
		{MemberID: victim.ID, ProjectID: p1.ID, TaskName: "dev", TimeSpentMinutes: 60},
		{MemberID: other.ID, ProjectID: p1.ID, TaskName: "dev", TimeSpentMinutes: 45},
	})
	require.NoError(t, err)

	require.NoError(t, c.DeleteMember(ctx, victim.ID))

	for _, m := range c.Members() {
		assert.NotEqual(t, victim.ID, m.ID)
	}

	byID := map[string]appstate.Project{}
	for _, p := range c.Projects() {
		byID[p.ID] = p
	}
	assert.Equal(t, []string{other.ID}, byID[p1.ID].Assignees)
	assert.Empty(t, byID[p1.ID].TeamLeadID)
	assert.Empty(t, byID[p2.ID].Goals[0].Metrics[0].MemberID)
	assert.Equal(t, []string{other.ID}, byID[p3.ID].Assignees)

	for _, a := range c.AttendanceRecords() {
		assert.NotEqual(t, victim.ID, a.MemberID)
	}
	for _, w := range c.WorkLogs() {
		assert.NotEqual(t, victim.ID, w.MemberID)
	}

	// the untouched member keeps their rows
	assert.Len(t, c.AttendanceRecords(), 1)
	assert.Len(t, c.WorkLogs(), 1)
}

func TestDeleteMemberFailureReloads(t *testing.T) {
	gw := newFaultyGateway()
	c := newTestController(t, gw)

	victim := addMember(t, c, "Casey")
	_, err := c.UpsertAttendance(context.Background(), AttendanceUpdate{MemberID: victim.ID, Date: "2025-03-10"})
	require.NoError(t, err)

	gw.failDeleteByQ[appstate.ColAttendance] = true
	err = c.DeleteMember(context.Background(), victim.ID)
	require.Error(t, err)

	var cascade *CascadeError
	require.ErrorAs(t, err, &cascade)
	assert.NoError(t, cascade.ReloadErr)

	// the member survives: the reload reconciled against the backend,
	// which never deleted the member document
	found := false
	for _, m := range c.Members() {
		if m.ID == victim.ID {
			found = true
		}
	}
	assert.True(t, found)
}

func TestDeleteProjectCascadesWorkLogs(t *testing.T) {
	gw := gateway.NewMemory()
	c := newTestController(t, gw)

	member := addMember(t, c, "Casey")

	ctx := context.Background()
	doomed, err := c.CreateProject(ctx, appstate.Project{Name: "alpha"})
	require.NoError(t, err)
	kept, err := c.CreateProject(ctx, appstate.Project{Name: "beta"})
	require.NoError(t, err)

	_, err = c.AddWorkLogs(ctx, []appstate.WorkLog{
		{MemberID: member.ID, ProjectID: doomed.ID, TaskName: "dev", TimeSpentMinutes: 60},
		{MemberID: member.ID, ProjectID: doomed.ID, TaskName: "review", TimeSpentMinutes: 30},
		{MemberID: member.ID, ProjectID: kept.ID, TaskName: "dev", TimeSpentMinutes: 45},
	})
	require.NoError(t, err)

	require.NoError(t, c.DeleteProject(ctx, doomed.ID))

	for _, p := range c.Projects() {
		assert.NotEqual(t, doomed.ID, p.ID)
	}
	logs := c.WorkLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, kept.ID, logs[0].ProjectID)

	recs, err := gw.GetCollection(ctx, appstate.ColWorkLogs)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, logs[0].ID, recs[0].ID)

	var notFound *NotFoundError
	require.ErrorAs(t, c.DeleteProject(ctx, doomed.ID), &notFound)
}

func TestDeleteProjectPartialCascadeKeepsFailedEntry(t *testing.T) {
	gw := newFaultyGateway()
	c := newTestController(t, gw)

	member := addMember(t, c, "Casey")

	ctx := context.Background()
	p, err := c.CreateProject(ctx, appstate.Project{Name: "alpha"})
	require.NoError(t, err)

	logs, err := c.AddWorkLogs(ctx, []appstate.WorkLog{
		{MemberID: member.ID, ProjectID: p.ID, TaskName: "dev", TimeSpentMinutes: 60},
		{MemberID: member.ID, ProjectID: p.ID, TaskName: "review", TimeSpentMinutes: 30},
	})
	require.NoError(t, err)

	gw.failDeleteDoc[appstate.ColWorkLogs+"/"+logs[0].ID] = true
	err = c.DeleteProject(ctx, p.ID)
	require.Error(t, err)

	var write *WriteError
	require.ErrorAs(t, err, &write)
	assert.Equal(t, "cascade delete", write.Op)

	// the project itself is gone: its deletion was confirmed before the
	// work-log fan-out started
	for _, pr := range c.Projects() {
		assert.NotEqual(t, p.ID, pr.ID)
	}

	// only the confirmed deletion left the store; the refused entry stays
	remaining := c.WorkLogs()
	require.Len(t, remaining, 1)
	assert.Equal(t, logs[0].ID, remaining[0].ID)

	recs, err := gw.GetCollection(ctx, appstate.ColWorkLogs)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, logs[0].ID, recs[0].ID)
}

func TestUpsertAttendanceDropsLeaveType(t *testing.T) {
	gw := gateway.NewMemory()
	c := newTestController(t, gw)
	m := addMember(t, c, "Casey")

	ctx := context.Background()
	leave := appstate.AttendanceLeave
	lt := "Sick Leave"
	rec, err := c.UpsertAttendance(ctx, AttendanceUpdate{
		MemberID: m.ID, Date: "2025-03-10",
		Status: &leave, LeaveType: &lt,
	})
	require.NoError(t, err)
	assert.Equal(t, "Sick Leave", rec.LeaveType)
	assert.Equal(t, appstate.AttendanceID(m.ID, "2025-03-10"), rec.ID)

	present := appstate.AttendancePresent
	rec, err = c.UpsertAttendance(ctx, AttendanceUpdate{
		MemberID: m.ID, Date: "2025-03-10",
		Status: &present,
	})
	require.NoError(t, err)
	assert.Empty(t, rec.LeaveType)

	// one record per member per day
	assert.Len(t, c.AttendanceRecords(), 1)

	recs, err := gw.GetCollection(ctx, appstate.ColAttendance)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	_, has := recs[0].Fields["leaveType"]
	assert.False(t, has)
}

func TestCSVRoundTrip(t *testing.T) {
	gw := gateway.NewMemory()
	c := newTestController(t, gw)
	m := addMember(t, c, "Casey")

	ctx := context.Background()
	_, err := c.CreateProject(ctx, appstate.Project{
		Name:      "alpha",
		Assignees: []string{m.ID},
		Tags:      []string{"infra", "urgent"},
		DueDate:   "2025-04-01",
	})
	require.NoError(t, err)

	headers, rows, err := c.ExportCSV(appstate.ColProjects)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Contains(t, headers, "assignees")
	assert.Equal(t, "infra;urgent", rows[0]["tags"])
	assert.Equal(t, "01-04-2025", rows[0]["dueDate"])

	before := c.Projects()
	require.NoError(t, c.ImportCSV(ctx, appstate.ColProjects, rows))
	after := c.Projects()

	require.Len(t, after, 1)
	assert.Equal(t, before[0].ID, after[0].ID)
	assert.Equal(t, before[0].Assignees, after[0].Assignees)
	assert.Equal(t, before[0].Tags, after[0].Tags)
	assert.Equal(t, before[0].DueDate, after[0].DueDate)

	// timestamps keep the calendar date, not the time of day
	assert.Equal(t, "2025-03-10", after[0].CreatedAt.Format("2006-01-02"))
	assert.Equal(t, "2025-03-10", after[0].UpdatedAt.Format("2006-01-02"))
}

func TestImportRequiresIDsExceptWorkLogs(t *testing.T) {
	gw := gateway.NewMemory()
	c := newTestController(t, gw)
	ctx := context.Background()

	err := c.ImportCSV(ctx, appstate.ColTeam, []csvio.Row{
		{"id": "m-1", "name": "Casey", "role": "Member", "status": "Active"},
		{"name": "NoID", "role": "Member", "status": "Active"},
	})
	var imp *ImportError
	require.ErrorAs(t, err, &imp)
	assert.Equal(t, 2, imp.Row)

	// nothing was written: the bad row rejected the import up front
	recs, gerr := gw.GetCollection(ctx, appstate.ColTeam)
	require.NoError(t, gerr)
	for _, r := range recs {
		assert.NotEqual(t, "m-1", r.ID)
	}

	err = c.ImportCSV(ctx, appstate.ColWorkLogs, []csvio.Row{
		{"memberId": "m-1", "date": "10-03-2025", "taskName": "dev", "timeSpentMinutes": "30"},
	})
	require.NoError(t, err)
	require.Len(t, c.WorkLogs(), 1)
	assert.NotEmpty(t, c.WorkLogs()[0].ID)
	assert.Equal(t, "2025-03-10", c.WorkLogs()[0].Date)
}

func TestFailedWorkLogBatchLeavesNothing(t *testing.T) {
	gw := newFaultyGateway()
	c := newTestController(t, gw)
	m := addMember(t, c, "Casey")

	gw.failBatchWrite[appstate.ColWorkLogs] = true
	_, err := c.AddWorkLogs(context.Background(), []appstate.WorkLog{
		{MemberID: m.ID, TaskName: "dev", TimeSpentMinutes: 30},
		{MemberID: m.ID, TaskName: "review", TimeSpentMinutes: 15},
	})
	require.Error(t, err)

	assert.Empty(t, c.WorkLogs())
	assert.Empty(t, c.Activities())
}

func TestWorkLogActivityFailureDoesNotRollBack(t *testing.T) {
	gw := newFaultyGateway()
	c := newTestController(t, gw)
	m := addMember(t, c, "Casey")

	gw.failAdd[appstate.ColActivities] = true
	logs, err := c.AddWorkLogs(context.Background(), []appstate.WorkLog{
		{MemberID: m.ID, TaskName: "dev", TimeSpentMinutes: 30},
	})
	require.NoError(t, err)
	require.Len(t, logs, 1)

	assert.Len(t, c.WorkLogs(), 1)
	assert.Empty(t, c.Activities())
}

func TestSessionRestoreDropsStaleUser(t *testing.T) {
	gw := gateway.NewMemory()
	sessions := &MemorySessionStore{Session: Session{UserID: "ghost", LastView: "board"}}
	c := New(gw, WithSessionStore(sessions), WithClock(fixedClock()))
	require.NoError(t, c.Load(context.Background()))

	sess := c.CurrentSession()
	assert.Empty(t, sess.UserID)
	assert.Equal(t, "board", sess.LastView)
}

func TestLoginRecordsActivityAndSession(t *testing.T) {
	gw := gateway.NewMemory()
	c := newTestController(t, gw)
	m := addMember(t, c, "Casey")

	require.NoError(t, c.RecordLogin(context.Background(), m.ID))

	sess := c.CurrentSession()
	assert.Equal(t, m.ID, sess.UserID)

	acts := c.Activities()
	require.Len(t, acts, 1)
	assert.Equal(t, appstate.ActivityLogin, acts[0].Type)
	assert.Equal(t, "Casey", acts[0].Details["name"])
}

func TestSettingsDefaultedOnLoad(t *testing.T) {
	gw := gateway.NewMemory()
	c := newTestController(t, gw)

	s := c.Settings()
	assert.Equal(t, "TeamOps", s.AppName)
	assert.NotEmpty(t, s.WorkLogTasks)
	assert.NotZero(t, s.MaxTeamSize)

	// the repaired document was persisted back
	recs, err := gw.GetCollection(context.Background(), appstate.ColSettings)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, appstate.SettingsDocID, recs[0].ID)
}

func TestSettingsLegacyTaskMigration(t *testing.T) {
	gw := gateway.NewMemory()
	ctx := context.Background()
	require.NoError(t, gw.SetDocument(ctx, appstate.ColSettings, appstate.SettingsDocID, map[string]any{
		"appName":     "OldName",
		"taskOptions": []any{"Planning", "Design"},
	}))

	c := newTestController(t, gw)
	s := c.Settings()
	assert.Equal(t, "OldName", s.AppName)
	assert.Equal(t, []string{"Planning", "Design"}, s.WorkLogTasks)
}

func TestMemberColorsAssignedByPosition(t *testing.T) {
	gw := gateway.NewMemory()
	c := newTestController(t, gw)

	addMember(t, c, "Casey")
	addMember(t, c, "Robin")

	require.NoError(t, c.Reload(context.Background()))

	members := c.Members()
	require.GreaterOrEqual(t, len(members), 2)
	for i, m := range members {
		assert.Equal(t, PaletteColor(i), m.Color)
	}

	// color never reaches the backend
	recs, err := gw.GetCollection(context.Background(), appstate.ColTeam)
	require.NoError(t, err)
	for _, r := range recs {
		_, has := r.Fields["color"]
		assert.False(t, has)
	}
}

func TestSeedTeamWhenEmpty(t *testing.T) {
	gw := gateway.NewMemory()
	c := New(gw, WithSessionStore(&MemorySessionStore{}), WithClock(fixedClock()))
	require.NoError(t, c.Load(context.Background()))

	members := c.Members()
	assert.NotEmpty(t, members)

	recs, err := gw.GetCollection(context.Background(), appstate.ColTeam)
	require.NoError(t, err)
	assert.Len(t, recs, len(members))

	// a second load must not re-seed
	require.NoError(t, c.Reload(context.Background()))
	assert.Len(t, c.Members(), len(members))
}

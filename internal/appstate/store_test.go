package appstate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreIsolation(t *testing.T) {
	s := NewStore()
	s.PutProject(Project{ID: "p1", Name: "Rollout", Assignees: []string{"u1"}})

	got, ok := s.Project("p1")
	require.True(t, ok)
	got.Assignees[0] = "mutated"
	got.Name = "mutated"

	again, _ := s.Project("p1")
	assert.Equal(t, "Rollout", again.Name)
	assert.Equal(t, []string{"u1"}, again.Assignees)
}

func TestRemoveWhere(t *testing.T) {
	s := NewStore()
	s.PutWorkLog(WorkLog{ID: "w1", MemberID: "u1", ProjectID: "p1"})
	s.PutWorkLog(WorkLog{ID: "w2", MemberID: "u2", ProjectID: "p1"})
	s.PutWorkLog(WorkLog{ID: "w3", MemberID: "u1", ProjectID: "p2"})

	removed := s.RemoveWorkLogsWhere(func(w WorkLog) bool { return w.MemberID == "u1" })
	assert.Equal(t, 2, removed)

	left := s.WorkLogs()
	require.Len(t, left, 1)
	assert.Equal(t, "w2", left[0].ID)
}

func TestActivityFeedOrder(t *testing.T) {
	s := NewStore()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.PutActivity(Activity{ID: "a1", Type: ActivityLogin, Timestamp: base})
	s.PutActivity(Activity{ID: "a2", Type: ActivityWorkLogAdd, Timestamp: base.Add(time.Hour)})
	s.PutActivity(Activity{ID: "a3", Type: ActivityLogin, Timestamp: base.Add(30 * time.Minute)})

	feed := s.Activities()
	require.Len(t, feed, 3)
	assert.Equal(t, []string{"a2", "a3", "a1"}, []string{feed[0].ID, feed[1].ID, feed[2].ID})
}

func TestDocRoundTrip(t *testing.T) {
	done := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	p := Project{
		ID:             "p9",
		Name:           "Migration",
		Status:         StatusDone,
		Assignees:      []string{"u1", "u2"},
		Tags:           []string{"infra"},
		Goals:          []Goal{{Name: "q1", Metrics: []GoalMetric{{Name: "uptime", MemberID: "u1"}}}},
		CreatedAt:      done.Add(-48 * time.Hour),
		UpdatedAt:      done,
		CompletionDate: &done,
	}

	fields, err := DocOf(p)
	require.NoError(t, err)
	assert.NotContains(t, fields, "id")

	back, err := FromDoc[Project]("p9", fields)
	require.NoError(t, err)
	assert.Equal(t, p, back)
}

func TestDocOfDropsDerivedColor(t *testing.T) {
	m := TeamMember{ID: "u1", Name: "Avery", Role: RoleMember, Status: MemberActive}
	fields, err := DocOf(m)
	require.NoError(t, err)
	assert.NotContains(t, fields, "id")
	// color is omitempty and unset here; a set color is stripped by the coordinator
	assert.NotContains(t, fields, "color")
}

func TestAttendanceID(t *testing.T) {
	assert.Equal(t, "u1-2026-03-05", AttendanceID("u1", "2026-03-05"))
}

package appstate

import "sort"

// Store holds the current known-good snapshot of every entity collection,
// keyed by id. It is the single source of truth for rendering. The store does
// no validation and no locking: the mutation coordinator is its only writer
// and serializes access.
type Store struct {
	members    map[string]TeamMember
	projects   map[string]Project
	attendance map[string]AttendanceRecord
	notes      map[string]Note
	worklogs   map[string]WorkLog
	activities map[string]Activity

	settings    AppSettings
	hasSettings bool
}

func NewStore() *Store {
	return &Store{
		members:    make(map[string]TeamMember),
		projects:   make(map[string]Project),
		attendance: make(map[string]AttendanceRecord),
		notes:      make(map[string]Note),
		worklogs:   make(map[string]WorkLog),
		activities: make(map[string]Activity),
	}
}

func cloneMember(m TeamMember) TeamMember { return m }

func cloneProject(p Project) Project {
	cp := p
	cp.Assignees = append([]string(nil), p.Assignees...)
	cp.Tags = append([]string(nil), p.Tags...)
	if p.Goals != nil {
		cp.Goals = make([]Goal, len(p.Goals))
		for i, g := range p.Goals {
			cg := g
			cg.Metrics = append([]GoalMetric(nil), g.Metrics...)
			cp.Goals[i] = cg
		}
	}
	if p.CompletionDate != nil {
		d := *p.CompletionDate
		cp.CompletionDate = &d
	}
	return cp
}

func cloneAttendance(a AttendanceRecord) AttendanceRecord { return a }

func cloneNote(n Note) Note {
	cp := n
	cp.Tags = append([]string(nil), n.Tags...)
	return cp
}

func cloneWorkLog(w WorkLog) WorkLog { return w }

func cloneActivity(a Activity) Activity {
	cp := a
	if a.Details != nil {
		cp.Details = make(map[string]any, len(a.Details))
		for k, v := range a.Details {
			cp.Details[k] = v
		}
	}
	return cp
}

func cloneSettings(s AppSettings) AppSettings {
	cp := s
	cp.WorkLogTasks = append([]string(nil), s.WorkLogTasks...)
	cp.InternalTeams = append([]string(nil), s.InternalTeams...)
	cp.Holidays = append([]string(nil), s.Holidays...)
	cp.LeaveTypes = append([]string(nil), s.LeaveTypes...)
	cp.DefaultColors = append([]string(nil), s.DefaultColors...)
	return cp
}

// --- team members ---

func (s *Store) Member(id string) (TeamMember, bool) {
	m, ok := s.members[id]
	return cloneMember(m), ok
}

// Members returns all team members ordered by id for stable list rendering.
func (s *Store) Members() []TeamMember {
	out := make([]TeamMember, 0, len(s.members))
	for _, m := range s.members {
		out = append(out, cloneMember(m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) PutMember(m TeamMember) { s.members[m.ID] = cloneMember(m) }
func (s *Store) RemoveMember(id string) { delete(s.members, id) }
func (s *Store) MemberCount() int { return len(s.members) }

func (s *Store) SetMembers(ms []TeamMember) {
	s.members = make(map[string]TeamMember, len(ms))
	for _, m := range ms {
		s.members[m.ID] = cloneMember(m)
	}
}

// --- projects ---

func (s *Store) Project(id string) (Project, bool) {
	p, ok := s.projects[id]
	return cloneProject(p), ok
}

func (s *Store) Projects() []Project {
	out := make([]Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, cloneProject(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) PutProject(p Project) { s.projects[p.ID] = cloneProject(p) }
func (s *Store) RemoveProject(id string) { delete(s.projects, id) }

func (s *Store) SetProjects(ps []Project) {
	s.projects = make(map[string]Project, len(ps))
	for _, p := range ps {
		s.projects[p.ID] = cloneProject(p)
	}
}

// --- attendance ---

func (s *Store) Attendance(id string) (AttendanceRecord, bool) {
	a, ok := s.attendance[id]
	return cloneAttendance(a), ok
}

func (s *Store) AttendanceRecords() []AttendanceRecord {
	out := make([]AttendanceRecord, 0, len(s.attendance))
	for _, a := range s.attendance {
		out = append(out, cloneAttendance(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) PutAttendance(a AttendanceRecord) { s.attendance[a.ID] = cloneAttendance(a) }
func (s *Store) RemoveAttendance(id string) { delete(s.attendance, id) }

// RemoveAttendanceWhere drops every record matching the predicate and returns
// how many were removed.
func (s *Store) RemoveAttendanceWhere(match func(AttendanceRecord) bool) int {
	removed := 0
	for id, a := range s.attendance {
		if match(a) {
			delete(s.attendance, id)
			removed++
		}
	}
	return removed
}

func (s *Store) SetAttendanceRecords(as []AttendanceRecord) {
	s.attendance = make(map[string]AttendanceRecord, len(as))
	for _, a := range as {
		s.attendance[a.ID] = cloneAttendance(a)
	}
}

// --- notes ---

func (s *Store) Note(id string) (Note, bool) {
	n, ok := s.notes[id]
	return cloneNote(n), ok
}

func (s *Store) Notes() []Note {
	out := make([]Note, 0, len(s.notes))
	for _, n := range s.notes {
		out = append(out, cloneNote(n))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) PutNote(n Note) { s.notes[n.ID] = cloneNote(n) }
func (s *Store) RemoveNote(id string) { delete(s.notes, id) }

func (s *Store) SetNotes(ns []Note) {
	s.notes = make(map[string]Note, len(ns))
	for _, n := range ns {
		s.notes[n.ID] = cloneNote(n)
	}
}

// --- work logs ---

func (s *Store) WorkLog(id string) (WorkLog, bool) {
	w, ok := s.worklogs[id]
	return cloneWorkLog(w), ok
}

func (s *Store) WorkLogs() []WorkLog {
	out := make([]WorkLog, 0, len(s.worklogs))
	for _, w := range s.worklogs {
		out = append(out, cloneWorkLog(w))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) PutWorkLog(w WorkLog) { s.worklogs[w.ID] = cloneWorkLog(w) }
func (s *Store) RemoveWorkLog(id string) { delete(s.worklogs, id) }

func (s *Store) RemoveWorkLogsWhere(match func(WorkLog) bool) int {
	removed := 0
	for id, w := range s.worklogs {
		if match(w) {
			delete(s.worklogs, id)
			removed++
		}
	}
	return removed
}

func (s *Store) SetWorkLogs(ws []WorkLog) {
	s.worklogs = make(map[string]WorkLog, len(ws))
	for _, w := range ws {
		s.worklogs[w.ID] = cloneWorkLog(w)
	}
}

// --- activities ---

// Activities returns the feed sorted newest first. Sorting happens here, at
// read time, not at storage time.
func (s *Store) Activities() []Activity {
	out := make([]Activity, 0, len(s.activities))
	for _, a := range s.activities {
		out = append(out, cloneActivity(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

func (s *Store) PutActivity(a Activity) { s.activities[a.ID] = cloneActivity(a) }
func (s *Store) ActivityCount() int { return len(s.activities) }

func (s *Store) SetActivities(as []Activity) {
	s.activities = make(map[string]Activity, len(as))
	for _, a := range as {
		s.activities[a.ID] = cloneActivity(a)
	}
}

// --- settings ---

func (s *Store) Settings() (AppSettings, bool) {
	return cloneSettings(s.settings), s.hasSettings
}

func (s *Store) SetSettings(cfg AppSettings) {
	s.settings = cloneSettings(cfg)
	s.hasSettings = true
}

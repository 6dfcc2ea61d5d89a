package appstate

import "time"

// Collection names as stored in the backing document database.
const (
	ColTeam       = "team"
	ColProjects   = "projects"
	ColAttendance = "attendance"
	ColNotes      = "notes"
	ColWorkLogs   = "worklogs"
	ColActivities = "activities"
	ColSettings   = "settings"
)

// SettingsDocID is the single well-known settings document.
const SettingsDocID = "app"

const (
	RoleManager = "Manager"
	RoleMember  = "Member"

	MemberActive = "Active"
)

// Project statuses drive the kanban columns. Transitions are free; only
// entering Done has a side effect (completion stamp + activity).
const (
	StatusToDo       = "To Do"
	StatusInProgress = "In Progress"
	StatusQC         = "QC"
	StatusBlocked    = "Blocked"
	StatusDone       = "Done"
)

const (
	AttendancePresent = "Present"
	AttendanceWFH     = "Work From Home"
	AttendanceLeave   = "Leave"
)

const (
	NotePending   = "Pending"
	NoteCompleted = "Completed"
)

const (
	ActivityLogin            = "login"
	ActivityWorkLogAdd       = "worklog_add"
	ActivityProjectCompleted = "project_completed"
)

type TeamMember struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	EmployeeID   string `json:"employeeId,omitempty"`
	JoinDate     string `json:"joinDate,omitempty"`
	BirthDate    string `json:"birthDate,omitempty"`
	Designation  string `json:"designation,omitempty"`
	Department   string `json:"department,omitempty"`
	Company      string `json:"company,omitempty"`
	MobileNumber string `json:"mobileNumber,omitempty"`
	Role         string `json:"role"`
	Status       string `json:"status"`

	// Color is derived from list position at load time and never persisted.
	Color string `json:"color,omitempty"`
}

type GoalMetric struct {
	Name     string `json:"name"`
	MemberID string `json:"memberId,omitempty"`
}

type Goal struct {
	Name    string       `json:"name"`
	Metrics []GoalMetric `json:"metrics,omitempty"`
}

type Project struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	Status         string     `json:"status"`
	Assignees      []string   `json:"assignees,omitempty"`
	DueDate        string     `json:"dueDate,omitempty"`
	Priority       string     `json:"priority,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	TeamLeadID     string     `json:"teamLeadId,omitempty"`
	Category       string     `json:"category,omitempty"`
	Type           string     `json:"type,omitempty"`
	Goals          []Goal     `json:"goals,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	CompletionDate *time.Time `json:"completionDate,omitempty"`
}

// AttendanceRecord ids follow the {memberID}-{date} convention, one record per
// member per day. The convention lives in the caller, not the store.
type AttendanceRecord struct {
	ID        string `json:"id"`
	MemberID  string `json:"memberId"`
	Date      string `json:"date"`
	Status    string `json:"status"`
	LeaveType string `json:"leaveType,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

func AttendanceID(memberID, date string) string {
	return memberID + "-" + date
}

type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	Status    string    `json:"status"`
	DueDate   string    `json:"dueDate,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Color     string    `json:"color,omitempty"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type WorkLog struct {
	ID               string    `json:"id"`
	MemberID         string    `json:"memberId"`
	ProjectID        string    `json:"projectId"`
	Date             string    `json:"date"`
	TaskName         string    `json:"taskName"`
	TimeSpentMinutes int       `json:"timeSpentMinutes"`
	Comments         string    `json:"comments,omitempty"`
	RequestedFrom    string    `json:"requestedFrom,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Activity entries are append-only; they are never updated or deleted.
type Activity struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	UserID    string         `json:"userId"`
	Timestamp time.Time      `json:"timestamp"`
	Details   map[string]any `json:"details,omitempty"`
}

type AppSettings struct {
	ID              string   `json:"id"`
	AppName         string   `json:"appName"`
	LogoURL         string   `json:"logoUrl,omitempty"`
	WorkLogTasks    []string `json:"workLogTasks,omitempty"`
	InternalTeams   []string `json:"internalTeams,omitempty"`
	Holidays        []string `json:"holidays,omitempty"`
	LeaveTypes      []string `json:"leaveTypes,omitempty"`
	MaxTeamSize     int      `json:"maxTeamSize,omitempty"`
	DefaultPriority string   `json:"defaultPriority,omitempty"`
	DefaultTheme    string   `json:"defaultTheme,omitempty"`
	DefaultColors   []string `json:"defaultColors,omitempty"`
	WelcomeMessage  string   `json:"welcomeMessage,omitempty"`
}

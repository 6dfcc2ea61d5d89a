package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"kyri56xcaesar/teamops/internal/appstate"
	"kyri56xcaesar/teamops/internal/csvio"
	"kyri56xcaesar/teamops/internal/gateway"
	"kyri56xcaesar/teamops/internal/utils"
)

// displayDay renders a timestamp's calendar date in display format; the time
// of day does not survive the CSV round trip.
func displayDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(utils.DisplayDateFormat)
}

// dayStart parses a canonical date back to a midnight-UTC timestamp.
func dayStart(iso string) time.Time {
	t, err := time.Parse(utils.ISODateFormat, iso)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ExportCSV flattens a collection into string-keyed rows: list fields are
// semicolon-joined, dates rendered in display (DD-MM-YYYY) format.
func (c *Controller) ExportCSV(collection string) ([]string, []csvio.Row, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch collection {
	case appstate.ColTeam:
		headers := []string{"id", "name", "email", "employeeId", "joinDate", "birthDate", "designation", "department", "company", "mobileNumber", "role", "status"}
		rows := utils.Map(c.store.Members(), func(m appstate.TeamMember) csvio.Row {
			return csvio.Row{
				"id": m.ID, "name": m.Name, "email": m.Email,
				"employeeId":  m.EmployeeID,
				"joinDate":    utils.ToDisplayDate(m.JoinDate),
				"birthDate":   utils.ToDisplayDate(m.BirthDate),
				"designation": m.Designation, "department": m.Department,
				"company": m.Company, "mobileNumber": m.MobileNumber,
				"role": m.Role, "status": m.Status,
			}
		})
		return headers, rows, nil

	case appstate.ColProjects:
		headers := []string{"id", "name", "description", "status", "assignees", "dueDate", "priority", "tags", "teamLeadId", "category", "type", "createdAt", "updatedAt"}
		rows := utils.Map(c.store.Projects(), func(p appstate.Project) csvio.Row {
			return csvio.Row{
				"id": p.ID, "name": p.Name, "description": p.Description,
				"status":     p.Status,
				"assignees":  utils.JoinList(p.Assignees),
				"dueDate":    utils.ToDisplayDate(p.DueDate),
				"priority":   p.Priority,
				"tags":       utils.JoinList(p.Tags),
				"teamLeadId": p.TeamLeadID,
				"category":   p.Category, "type": p.Type,
				"createdAt":  displayDay(p.CreatedAt),
				"updatedAt":  displayDay(p.UpdatedAt),
			}
		})
		return headers, rows, nil

	case appstate.ColAttendance:
		headers := []string{"id", "memberId", "date", "status", "leaveType", "notes"}
		rows := utils.Map(c.store.AttendanceRecords(), func(a appstate.AttendanceRecord) csvio.Row {
			return csvio.Row{
				"id": a.ID, "memberId": a.MemberID,
				"date":   utils.ToDisplayDate(a.Date),
				"status": a.Status, "leaveType": a.LeaveType,
				"notes": a.Notes,
			}
		})
		return headers, rows, nil

	case appstate.ColNotes:
		headers := []string{"id", "title", "content", "status", "dueDate", "tags", "color", "userId"}
		rows := utils.Map(c.store.Notes(), func(n appstate.Note) csvio.Row {
			return csvio.Row{
				"id": n.ID, "title": n.Title, "content": n.Content,
				"status":  n.Status,
				"dueDate": utils.ToDisplayDate(n.DueDate),
				"tags":    utils.JoinList(n.Tags),
				"color":   n.Color, "userId": n.UserID,
			}
		})
		return headers, rows, nil

	case appstate.ColWorkLogs:
		headers := []string{"id", "memberId", "projectId", "date", "taskName", "timeSpentMinutes", "comments", "requestedFrom"}
		rows := utils.Map(c.store.WorkLogs(), func(w appstate.WorkLog) csvio.Row {
			return csvio.Row{
				"id": w.ID, "memberId": w.MemberID, "projectId": w.ProjectID,
				"date":             utils.ToDisplayDate(w.Date),
				"taskName":         w.TaskName,
				"timeSpentMinutes": strconv.Itoa(w.TimeSpentMinutes),
				"comments":         w.Comments,
				"requestedFrom":    w.RequestedFrom,
			}
		})
		return headers, rows, nil
	}

	return nil, nil, fmt.Errorf("collection %q cannot be exported", collection)
}

// ImportCSV validates and coerces every row, persists the whole set in one
// batch, then reloads from the gateway: the store is never patched
// incrementally after an import. Any bad row rejects the import before any
// write. Only the work-log collection may omit ids.
func (c *Controller) ImportCSV(ctx context.Context, collection string, rows []csvio.Row) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := coerceRows(collection, rows)
	if err != nil {
		return err
	}

	if err := c.gw.BatchWrite(ctx, collection, records); err != nil {
		return &WriteError{Entity: collection, Op: "import", Err: err}
	}

	return c.loadLocked(ctx)
}

func coerceRows(collection string, rows []csvio.Row) ([]gateway.Record, error) {
	records := make([]gateway.Record, 0, len(rows))
	for i, row := range rows {
		id := utils.TrimBlank(row["id"])
		if id == "" {
			if collection != appstate.ColWorkLogs {
				return nil, &ImportError{Collection: collection, Row: i + 1, Reason: "missing id"}
			}
			id = uuid.NewString()
		}

		var badDate *ImportError
		isoDate := func(field string) string {
			v, derr := utils.ToISODate(row[field])
			if derr != nil && badDate == nil {
				badDate = &ImportError{Collection: collection, Row: i + 1, Reason: "invalid " + field}
			}
			return v
		}

		var entity any
		switch collection {
		case appstate.ColTeam:
			entity = appstate.TeamMember{
				ID: id, Name: row["name"], Email: row["email"],
				EmployeeID:  row["employeeId"],
				JoinDate:    isoDate("joinDate"),
				BirthDate:   isoDate("birthDate"),
				Designation: row["designation"], Department: row["department"],
				Company: row["company"], MobileNumber: row["mobileNumber"],
				Role: row["role"], Status: row["status"],
			}
		case appstate.ColProjects:
			entity = appstate.Project{
				ID: id, Name: row["name"], Description: row["description"],
				Status:     row["status"],
				Assignees:  utils.SplitList(row["assignees"]),
				DueDate:    isoDate("dueDate"),
				Priority:   row["priority"],
				Tags:       utils.SplitList(row["tags"]),
				TeamLeadID: row["teamLeadId"],
				Category:   row["category"], Type: row["type"],
				CreatedAt:  dayStart(isoDate("createdAt")),
				UpdatedAt:  dayStart(isoDate("updatedAt")),
			}
		case appstate.ColAttendance:
			entity = appstate.AttendanceRecord{
				ID: id, MemberID: row["memberId"],
				Date:   isoDate("date"),
				Status: row["status"], LeaveType: row["leaveType"],
				Notes: row["notes"],
			}
		case appstate.ColNotes:
			entity = appstate.Note{
				ID: id, Title: row["title"], Content: row["content"],
				Status:  row["status"],
				DueDate: isoDate("dueDate"),
				Tags:    utils.SplitList(row["tags"]),
				Color:   row["color"], UserID: row["userId"],
			}
		case appstate.ColWorkLogs:
			minutes := 0
			if raw := utils.TrimBlank(row["timeSpentMinutes"]); raw != "" {
				parsed, perr := strconv.Atoi(raw)
				if perr != nil || parsed < 0 {
					return nil, &ImportError{Collection: collection, Row: i + 1, Reason: "invalid timeSpentMinutes"}
				}
				minutes = parsed
			}
			entity = appstate.WorkLog{
				ID: id, MemberID: row["memberId"], ProjectID: row["projectId"],
				Date:             isoDate("date"),
				TaskName:         row["taskName"],
				TimeSpentMinutes: minutes,
				Comments:         row["comments"], RequestedFrom: row["requestedFrom"],
			}
		default:
			return nil, fmt.Errorf("collection %q cannot be imported", collection)
		}
		if badDate != nil {
			return nil, badDate
		}

		fields, err := appstate.DocOf(entity)
		if err != nil {
			return nil, &ImportError{Collection: collection, Row: i + 1, Reason: err.Error()}
		}
		records = append(records, gateway.Record{ID: id, Fields: fields})
	}

	return records, nil
}

package app

import (
	"context"
	"fmt"

	"kyri56xcaesar/teamops/internal/appstate"
	"kyri56xcaesar/teamops/internal/utils"
)

// AttendanceUpdate is a partial update for one member on one day. Nil fields
// keep whatever the existing record has.
type AttendanceUpdate struct {
	MemberID  string
	Date      string
	Status    *string
	LeaveType *string
	Notes     *string
}

// UpsertAttendance merges an update over the day's existing record, or creates
// one with status defaulting to Present. A leave type only survives on records
// whose status is Leave.
func (c *Controller) UpsertAttendance(ctx context.Context, u AttendanceUpdate) (appstate.AttendanceRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if u.MemberID == "" || u.Date == "" {
		return appstate.AttendanceRecord{}, fmt.Errorf("attendance update needs a member and a date")
	}
	if _, ok := c.store.Member(u.MemberID); !ok {
		return appstate.AttendanceRecord{}, &NotFoundError{Entity: "team member", ID: u.MemberID}
	}

	id := appstate.AttendanceID(u.MemberID, u.Date)
	rec, ok := c.store.Attendance(id)
	if !ok {
		rec = appstate.AttendanceRecord{
			ID:       id,
			MemberID: u.MemberID,
			Date:     u.Date,
			Status:   appstate.AttendancePresent,
		}
	}

	if u.Status != nil {
		rec.Status = *u.Status
	}
	if u.LeaveType != nil {
		rec.LeaveType = *u.LeaveType
	}
	if u.Notes != nil {
		rec.Notes = utils.TrimBlank(*u.Notes)
	}
	if rec.Status != appstate.AttendanceLeave {
		rec.LeaveType = ""
	}

	fields, err := appstate.DocOf(rec)
	if err != nil {
		return appstate.AttendanceRecord{}, &WriteError{Entity: "attendance record", Op: "save", Err: err}
	}
	if err := c.gw.SetDocument(ctx, appstate.ColAttendance, id, fields); err != nil {
		return appstate.AttendanceRecord{}, &WriteError{Entity: "attendance record", Op: "save", Err: err}
	}

	c.store.PutAttendance(rec)
	c.rebuild()
	return rec, nil
}

// DeleteAttendance clears a member's record for one day.
func (c *Controller) DeleteAttendance(ctx context.Context, memberID, date string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := appstate.AttendanceID(memberID, date)
	if err := c.gw.DeleteDocument(ctx, appstate.ColAttendance, id); err != nil {
		return &WriteError{Entity: "attendance record", Op: "delete", Err: err}
	}

	c.store.RemoveAttendance(id)
	c.rebuild()
	return nil
}

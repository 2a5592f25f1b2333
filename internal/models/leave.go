package models

import "time"

// LeaveStatus enumerates the lifecycle of a leave request. Only approved
// requests participate in constraint compilation and rescheduling.
type LeaveStatus string

const (
	LeavePending  LeaveStatus = "pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveRejected LeaveStatus = "rejected"
)

// LeaveRequest records a faculty member's absence for one (date, period).
// Faculty is referenced by display name, matching the roster entry.
type LeaveRequest struct {
	ID          string      `db:"id" json:"id"`
	FacultyName string      `db:"faculty_name" json:"faculty_name"`
	Date        string      `db:"date" json:"date"`
	Period      string      `db:"period" json:"period"`
	Reason      string      `db:"reason" json:"reason"`
	Status      LeaveStatus `db:"status" json:"status"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// LeaveFilter captures supported filters for listing leave requests.
type LeaveFilter struct {
	FacultyName string
	Status      string
	Page        int
	PageSize    int
}

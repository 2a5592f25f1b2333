package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

// LeaveRepository manages persistence for leave requests.
type LeaveRepository struct {
	db *sqlx.DB
}

// NewLeaveRepository constructs a LeaveRepository.
func NewLeaveRepository(db *sqlx.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

const leaveColumns = "id, faculty_name, date, period, reason, status, created_at, updated_at"

// List returns leave requests matching the filter, newest first.
func (r *LeaveRepository) List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveRequest, error) {
	query := "SELECT " + leaveColumns + " FROM leave_requests WHERE 1=1"
	var args []interface{}

	if filter.FacultyName != "" {
		args = append(args, filter.FacultyName)
		query += fmt.Sprintf(" AND faculty_name = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	leaves := []models.LeaveRequest{}
	if err := r.db.SelectContext(ctx, &leaves, query, args...); err != nil {
		return nil, fmt.Errorf("list leave requests: %w", err)
	}
	return leaves, nil
}

// ListApproved returns all approved leave requests.
func (r *LeaveRepository) ListApproved(ctx context.Context) ([]models.LeaveRequest, error) {
	return r.List(ctx, models.LeaveFilter{Status: string(models.LeaveApproved)})
}

// FindByID returns a leave request by ID.
func (r *LeaveRepository) FindByID(ctx context.Context, id string) (*models.LeaveRequest, error) {
	var leave models.LeaveRequest
	err := r.db.GetContext(ctx, &leave, "SELECT "+leaveColumns+" FROM leave_requests WHERE id = $1", id)
	if err != nil {
		return nil, err
	}
	return &leave, nil
}

// Create inserts a pending leave request.
func (r *LeaveRepository) Create(ctx context.Context, leave *models.LeaveRequest) error {
	if leave.ID == "" {
		leave.ID = uuid.NewString()
	}
	if leave.Status == "" {
		leave.Status = models.LeavePending
	}
	now := time.Now().UTC()
	leave.CreatedAt = now
	leave.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO leave_requests (id, faculty_name, date, period, reason, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
		leave.ID, leave.FacultyName, leave.Date, leave.Period, leave.Reason, leave.Status, leave.CreatedAt, leave.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create leave request: %w", err)
	}
	return nil
}

// UpdateStatus transitions a leave request to a new status.
func (r *LeaveRepository) UpdateStatus(ctx context.Context, id string, status models.LeaveStatus) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE leave_requests SET status = $1, updated_at = $2 WHERE id = $3",
		status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update leave status: %w", err)
	}
	return requireRowAffected(result)
}

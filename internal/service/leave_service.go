package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/engine"
	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type leaveRepository interface {
	List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveRequest, error)
	FindByID(ctx context.Context, id string) (*models.LeaveRequest, error)
	Create(ctx context.Context, leave *models.LeaveRequest) error
	UpdateStatus(ctx context.Context, id string, status models.LeaveStatus) error
}

type leaveFacultyReader interface {
	FindByName(ctx context.Context, name string) (*models.Faculty, error)
}

type leaveRescheduler interface {
	Reschedule(ctx context.Context, req dto.RescheduleRequest) (*dto.RescheduleResponse, error)
}

// LeaveService handles the leave request lifecycle. Approving a request
// triggers a best-effort repair of the published timetable.
type LeaveService struct {
	repo        leaveRepository
	faculty     leaveFacultyReader
	rescheduler leaveRescheduler
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewLeaveService creates a new leave service. The rescheduler is optional.
func NewLeaveService(repo leaveRepository, faculty leaveFacultyReader, rescheduler leaveRescheduler, validate *validator.Validate, logger *zap.Logger) *LeaveService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaveService{repo: repo, faculty: faculty, rescheduler: rescheduler, validator: validate, logger: logger}
}

// List returns leave requests, optionally filtered by faculty or status.
func (s *LeaveService) List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveRequest, error) {
	leaves, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list leave requests")
	}
	return leaves, nil
}

// Create files a pending leave request for a registered faculty member.
func (s *LeaveService) Create(ctx context.Context, req dto.CreateLeaveRequest) (*models.LeaveRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid leave payload")
	}
	if !validPeriod(req.Period) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "period must match a timetable slot")
	}

	if _, err := s.faculty.FindByName(ctx, req.FacultyName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}

	leave := &models.LeaveRequest{
		FacultyName: req.FacultyName,
		Date:        req.Date,
		Period:      req.Period,
		Reason:      req.Reason,
		Status:      models.LeavePending,
	}
	if err := s.repo.Create(ctx, leave); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create leave request")
	}
	return leave, nil
}

// UpdateStatus moves a pending leave request to approved or rejected. On
// approval the published timetable is repaired when one exists; a repair
// failure does not roll back the approval.
func (s *LeaveService) UpdateStatus(ctx context.Context, id string, req dto.UpdateLeaveStatusRequest) (*models.LeaveRequest, *dto.RescheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}

	leave, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "leave request not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave request")
	}
	if leave.Status != models.LeavePending {
		return nil, nil, appErrors.Clone(appErrors.ErrConflict, "leave request already resolved")
	}

	status := models.LeaveStatus(req.Status)
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update leave status")
	}
	leave.Status = status

	var repair *dto.RescheduleResponse
	if status == models.LeaveApproved && s.rescheduler != nil {
		repair, err = s.rescheduler.Reschedule(ctx, dto.RescheduleRequest{LeaveRequestID: id})
		if err != nil {
			var appErr *appErrors.Error
			if errors.As(err, &appErr) && appErr.Code == appErrors.ErrPreconditionFailed.Code {
				// No published timetable yet; nothing to repair.
				repair = nil
			} else {
				s.logger.Warn("automatic reschedule after approval failed",
					zap.String("leaveRequestId", id), zap.Error(err))
				repair = nil
			}
		}
	}
	return leave, repair, nil
}

func validPeriod(period string) bool {
	for _, p := range engine.Periods {
		if p == period {
			return true
		}
	}
	return false
}

package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type stubLeaveRepo struct {
	byID    map[string]*models.LeaveRequest
	created []*models.LeaveRequest
	updated map[string]models.LeaveStatus
}

func (s *stubLeaveRepo) List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveRequest, error) {
	out := make([]models.LeaveRequest, 0, len(s.byID))
	for _, leave := range s.byID {
		out = append(out, *leave)
	}
	return out, nil
}

func (s *stubLeaveRepo) FindByID(ctx context.Context, id string) (*models.LeaveRequest, error) {
	if leave, ok := s.byID[id]; ok {
		cp := *leave
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubLeaveRepo) Create(ctx context.Context, leave *models.LeaveRequest) error {
	leave.ID = "lr-new"
	s.created = append(s.created, leave)
	return nil
}

func (s *stubLeaveRepo) UpdateStatus(ctx context.Context, id string, status models.LeaveStatus) error {
	if _, ok := s.byID[id]; !ok {
		return sql.ErrNoRows
	}
	if s.updated == nil {
		s.updated = make(map[string]models.LeaveStatus)
	}
	s.updated[id] = status
	return nil
}

type stubLeaveFacultyReader struct {
	known map[string]*models.Faculty
}

func (s *stubLeaveFacultyReader) FindByName(ctx context.Context, name string) (*models.Faculty, error) {
	if faculty, ok := s.known[name]; ok {
		return faculty, nil
	}
	return nil, sql.ErrNoRows
}

type stubRescheduler struct {
	calls int
	resp  *dto.RescheduleResponse
	err   error
}

func (s *stubRescheduler) Reschedule(ctx context.Context, req dto.RescheduleRequest) (*dto.RescheduleResponse, error) {
	s.calls++
	return s.resp, s.err
}

func pendingLeaveRepo() *stubLeaveRepo {
	return &stubLeaveRepo{byID: map[string]*models.LeaveRequest{
		"lr-1": {ID: "lr-1", FacultyName: "Dr. Smith", Date: "2026-01-05", Period: "9:00-10:00", Status: models.LeavePending},
	}}
}

func TestLeaveServiceCreate(t *testing.T) {
	repo := &stubLeaveRepo{byID: map[string]*models.LeaveRequest{}}
	faculty := &stubLeaveFacultyReader{known: map[string]*models.Faculty{
		"Dr. Smith": {ID: "f1", Name: "Dr. Smith"},
	}}
	svc := NewLeaveService(repo, faculty, nil, nil, zap.NewNop())

	leave, err := svc.Create(context.Background(), dto.CreateLeaveRequest{
		FacultyName: "Dr. Smith",
		Date:        "2026-01-05",
		Period:      "9:00-10:00",
		Reason:      "medical",
	})
	require.NoError(t, err)
	assert.Equal(t, "lr-new", leave.ID)
	assert.Equal(t, models.LeavePending, leave.Status)
	require.Len(t, repo.created, 1)
}

func TestLeaveServiceCreateRejectsUnknownPeriod(t *testing.T) {
	svc := NewLeaveService(&stubLeaveRepo{}, &stubLeaveFacultyReader{}, nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), dto.CreateLeaveRequest{
		FacultyName: "Dr. Smith",
		Date:        "2026-01-05",
		Period:      "8:00-9:00",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestLeaveServiceCreateUnknownFaculty(t *testing.T) {
	svc := NewLeaveService(&stubLeaveRepo{}, &stubLeaveFacultyReader{}, nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), dto.CreateLeaveRequest{
		FacultyName: "Dr. Nobody",
		Date:        "2026-01-05",
		Period:      "9:00-10:00",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestLeaveServiceApprovalTriggersReschedule(t *testing.T) {
	repo := pendingLeaveRepo()
	rescheduler := &stubRescheduler{resp: &dto.RescheduleResponse{Outcome: RescheduleSubstituted}}
	svc := NewLeaveService(repo, &stubLeaveFacultyReader{}, rescheduler, nil, zap.NewNop())

	leave, repair, err := svc.UpdateStatus(context.Background(), "lr-1", dto.UpdateLeaveStatusRequest{Status: "approved"})
	require.NoError(t, err)
	assert.Equal(t, models.LeaveApproved, leave.Status)
	assert.Equal(t, models.LeaveApproved, repo.updated["lr-1"])
	require.NotNil(t, repair)
	assert.Equal(t, RescheduleSubstituted, repair.Outcome)
	assert.Equal(t, 1, rescheduler.calls)
}

func TestLeaveServiceRejectionSkipsReschedule(t *testing.T) {
	repo := pendingLeaveRepo()
	rescheduler := &stubRescheduler{}
	svc := NewLeaveService(repo, &stubLeaveFacultyReader{}, rescheduler, nil, zap.NewNop())

	leave, repair, err := svc.UpdateStatus(context.Background(), "lr-1", dto.UpdateLeaveStatusRequest{Status: "rejected"})
	require.NoError(t, err)
	assert.Equal(t, models.LeaveRejected, leave.Status)
	assert.Nil(t, repair)
	assert.Equal(t, 0, rescheduler.calls)
}

func TestLeaveServiceApprovalSurvivesMissingPublishedTimetable(t *testing.T) {
	repo := pendingLeaveRepo()
	rescheduler := &stubRescheduler{err: appErrors.Clone(appErrors.ErrPreconditionFailed, "no published timetable to reschedule")}
	svc := NewLeaveService(repo, &stubLeaveFacultyReader{}, rescheduler, nil, zap.NewNop())

	leave, repair, err := svc.UpdateStatus(context.Background(), "lr-1", dto.UpdateLeaveStatusRequest{Status: "approved"})
	require.NoError(t, err)
	assert.Equal(t, models.LeaveApproved, leave.Status)
	assert.Nil(t, repair)
	assert.Equal(t, 1, rescheduler.calls)
}

func TestLeaveServiceUpdateStatusAlreadyResolved(t *testing.T) {
	repo := &stubLeaveRepo{byID: map[string]*models.LeaveRequest{
		"lr-1": {ID: "lr-1", Status: models.LeaveApproved},
	}}
	svc := NewLeaveService(repo, &stubLeaveFacultyReader{}, nil, nil, zap.NewNop())

	_, _, err := svc.UpdateStatus(context.Background(), "lr-1", dto.UpdateLeaveStatusRequest{Status: "rejected"})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestLeaveServiceUpdateStatusUnknownID(t *testing.T) {
	svc := NewLeaveService(&stubLeaveRepo{}, &stubLeaveFacultyReader{}, nil, nil, zap.NewNop())

	_, _, err := svc.UpdateStatus(context.Background(), "missing", dto.UpdateLeaveStatusRequest{Status: "approved"})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

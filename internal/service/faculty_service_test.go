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

type stubFacultyRepo struct {
	byID    map[string]*models.Faculty
	taken   map[string]bool
	created []*models.Faculty
	deleted []string
}

func (s *stubFacultyRepo) List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, error) {
	out := make([]models.Faculty, 0, len(s.byID))
	for _, f := range s.byID {
		out = append(out, *f)
	}
	return out, nil
}

func (s *stubFacultyRepo) FindByID(ctx context.Context, id string) (*models.Faculty, error) {
	if f, ok := s.byID[id]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubFacultyRepo) ExistsByNameOrEmail(ctx context.Context, name, email string) (bool, error) {
	return s.taken[name] || s.taken[email], nil
}

func (s *stubFacultyRepo) Create(ctx context.Context, faculty *models.Faculty) error {
	faculty.ID = "f-new"
	s.created = append(s.created, faculty)
	return nil
}

func (s *stubFacultyRepo) Update(ctx context.Context, faculty *models.Faculty) error {
	if _, ok := s.byID[faculty.ID]; !ok {
		return sql.ErrNoRows
	}
	s.byID[faculty.ID] = faculty
	return nil
}

func (s *stubFacultyRepo) Delete(ctx context.Context, id string) error {
	if _, ok := s.byID[id]; !ok {
		return sql.ErrNoRows
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func TestFacultyServiceCreateNormalizesInput(t *testing.T) {
	repo := &stubFacultyRepo{}
	svc := NewFacultyService(repo, nil, zap.NewNop())

	faculty, err := svc.Create(context.Background(), dto.CreateFacultyRequest{
		Name:    "  Dr. Smith  ",
		Subject: " Physics ",
		Email:   " Dr.Smith@Example.COM ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Dr. Smith", faculty.Name)
	assert.Equal(t, "Physics", faculty.Subject)
	assert.Equal(t, "dr.smith@example.com", faculty.Email)
	assert.Equal(t, "f-new", faculty.ID)
}

func TestFacultyServiceCreateConflict(t *testing.T) {
	repo := &stubFacultyRepo{taken: map[string]bool{"Dr. Smith": true}}
	svc := NewFacultyService(repo, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), dto.CreateFacultyRequest{
		Name:    "Dr. Smith",
		Subject: "Physics",
		Email:   "smith@example.com",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Empty(t, repo.created)
}

func TestFacultyServiceUpdateMergesFields(t *testing.T) {
	repo := &stubFacultyRepo{byID: map[string]*models.Faculty{
		"f1": {ID: "f1", Name: "Dr. Smith", Subject: "Physics", Email: "smith@example.com"},
	}}
	svc := NewFacultyService(repo, nil, zap.NewNop())

	faculty, err := svc.Update(context.Background(), "f1", dto.UpdateFacultyRequest{Subject: "Chemistry"})
	require.NoError(t, err)
	assert.Equal(t, "Dr. Smith", faculty.Name)
	assert.Equal(t, "Chemistry", faculty.Subject)
	assert.Equal(t, "smith@example.com", faculty.Email)
}

func TestFacultyServiceUpdateNotFound(t *testing.T) {
	svc := NewFacultyService(&stubFacultyRepo{}, nil, zap.NewNop())

	_, err := svc.Update(context.Background(), "missing", dto.UpdateFacultyRequest{Name: "X Y"})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestFacultyServiceDeleteNotFound(t *testing.T) {
	svc := NewFacultyService(&stubFacultyRepo{}, nil, zap.NewNop())

	err := svc.Delete(context.Background(), "missing")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

// FacultyRepository manages persistence for faculty members.
type FacultyRepository struct {
	db *sqlx.DB
}

// NewFacultyRepository constructs a FacultyRepository.
func NewFacultyRepository(db *sqlx.DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

// List returns faculty matching the filter ordered by name.
func (r *FacultyRepository) List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, error) {
	query := "SELECT id, name, subject, email, created_at, updated_at FROM faculty WHERE 1=1"
	var args []interface{}

	if filter.Subject != "" {
		args = append(args, filter.Subject)
		query += fmt.Sprintf(" AND LOWER(subject) = LOWER($%d)", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		query += fmt.Sprintf(" AND (LOWER(name) LIKE $%d OR LOWER(email) LIKE $%d)", len(args), len(args))
	}
	query += " ORDER BY name ASC"

	faculty := []models.Faculty{}
	if err := r.db.SelectContext(ctx, &faculty, query, args...); err != nil {
		return nil, fmt.Errorf("list faculty: %w", err)
	}
	return faculty, nil
}

func (r *FacultyRepository) FindByID(ctx context.Context, id string) (*models.Faculty, error) {
	var faculty models.Faculty
	err := r.db.GetContext(ctx, &faculty,
		"SELECT id, name, subject, email, created_at, updated_at FROM faculty WHERE id = $1", id)
	if err != nil {
		return nil, err
	}
	return &faculty, nil
}

// FindByName returns a faculty member by display name.
func (r *FacultyRepository) FindByName(ctx context.Context, name string) (*models.Faculty, error) {
	var faculty models.Faculty
	err := r.db.GetContext(ctx, &faculty,
		"SELECT id, name, subject, email, created_at, updated_at FROM faculty WHERE LOWER(name) = LOWER($1)", name)
	if err != nil {
		return nil, err
	}
	return &faculty, nil
}

// ExistsByNameOrEmail reports whether a faculty with the given name or email
// is already registered, ignoring case.
func (r *FacultyRepository) ExistsByNameOrEmail(ctx context.Context, name, email string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM faculty WHERE LOWER(name) = LOWER($1) OR LOWER(email) = LOWER($2)", name, email)
	if err != nil {
		return false, fmt.Errorf("check faculty uniqueness: %w", err)
	}
	return count > 0, nil
}

// Create inserts a faculty member, assigning an ID when absent.
func (r *FacultyRepository) Create(ctx context.Context, faculty *models.Faculty) error {
	if faculty.ID == "" {
		faculty.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	faculty.CreatedAt = now
	faculty.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO faculty (id, name, subject, email, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)",
		faculty.ID, faculty.Name, faculty.Subject, faculty.Email, faculty.CreatedAt, faculty.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create faculty: %w", err)
	}
	return nil
}

// Update modifies an existing faculty member.
func (r *FacultyRepository) Update(ctx context.Context, faculty *models.Faculty) error {
	faculty.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		"UPDATE faculty SET name = $1, subject = $2, email = $3, updated_at = $4 WHERE id = $5",
		faculty.Name, faculty.Subject, faculty.Email, faculty.UpdatedAt, faculty.ID)
	if err != nil {
		return fmt.Errorf("update faculty: %w", err)
	}
	return requireRowAffected(result)
}

// Delete removes a faculty member by ID.
func (r *FacultyRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM faculty WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete faculty: %w", err)
	}
	return requireRowAffected(result)
}

func requireRowAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

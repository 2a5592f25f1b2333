package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestFacultyRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFacultyRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "subject", "email", "created_at", "updated_at"}).
		AddRow("f1", "Dr. Smith", "Physics", "smith@example.com", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, subject, email, created_at, updated_at FROM faculty WHERE 1=1 ORDER BY name ASC")).
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), models.FacultyFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, "Dr. Smith", list[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacultyRepositoryListWithSubjectFilter(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFacultyRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("AND LOWER(subject) = LOWER($1)")).
		WithArgs("physics").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "subject", "email", "created_at", "updated_at"}))

	_, err := repo.List(context.Background(), models.FacultyFilter{Subject: "physics"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacultyRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFacultyRepository(db)

	mock.ExpectExec("INSERT INTO faculty").
		WithArgs(sqlmock.AnyArg(), "Dr. Smith", "Physics", "smith@example.com", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	faculty := &models.Faculty{Name: "Dr. Smith", Subject: "Physics", Email: "smith@example.com"}
	require.NoError(t, repo.Create(context.Background(), faculty))
	assert.NotEmpty(t, faculty.ID)
	assert.False(t, faculty.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacultyRepositoryExistsByNameOrEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFacultyRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM faculty WHERE LOWER(name) = LOWER($1) OR LOWER(email) = LOWER($2)")).
		WithArgs("Dr. Smith", "smith@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.ExistsByNameOrEmail(context.Background(), "Dr. Smith", "smith@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacultyRepositoryDeleteMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFacultyRepository(db)

	mock.ExpectExec("DELETE FROM faculty").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

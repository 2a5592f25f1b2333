package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

// QueryObserver receives query timing samples for instrumentation.
type QueryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// TimetableRepository stores generated timetables and tracks the single
// published version. Grids and metrics are persisted as JSON documents.
type TimetableRepository struct {
	db       *sqlx.DB
	observer QueryObserver
}

// NewTimetableRepository constructs a TimetableRepository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// WithObserver attaches a query observer and returns the repository.
func (r *TimetableRepository) WithObserver(observer QueryObserver) *TimetableRepository {
	r.observer = observer
	return r
}

func (r *TimetableRepository) observe(label string, start time.Time) {
	if r.observer != nil {
		r.observer.ObserveDBQuery(label, time.Since(start))
	}
}

const timetableColumns = "id, grid, score, metrics, fallback, published, generated_at, created_at"

// Save persists a timetable and returns its assigned ID.
func (r *TimetableRepository) Save(ctx context.Context, timetable *models.Timetable) (string, error) {
	defer r.observe("timetable_save", time.Now())

	gridJSON, err := json.Marshal(timetable.Grid)
	if err != nil {
		return "", fmt.Errorf("encode timetable grid: %w", err)
	}
	metricsJSON, err := json.Marshal(timetable.Metrics)
	if err != nil {
		return "", fmt.Errorf("encode timetable metrics: %w", err)
	}

	id := timetable.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO timetables (id, grid, score, metrics, fallback, published, generated_at, created_at) VALUES ($1, $2, $3, $4, $5, FALSE, $6, $7)",
		id, gridJSON, timetable.Score, metricsJSON, timetable.Fallback, timetable.GeneratedAt, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("save timetable: %w", err)
	}
	return id, nil
}

// Publish marks one timetable as published and unpublishes any previous one
// inside a single transaction.
func (r *TimetableRepository) Publish(ctx context.Context, id string) error {
	defer r.observe("timetable_publish", time.Now())

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin publish tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "UPDATE timetables SET published = FALSE WHERE published = TRUE"); err != nil {
		return fmt.Errorf("unpublish previous timetable: %w", err)
	}
	result, err := tx.ExecContext(ctx, "UPDATE timetables SET published = TRUE WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("publish timetable: %w", err)
	}
	if err := requireRowAffected(result); err != nil {
		return err
	}
	return tx.Commit()
}

// GetPublished returns the currently published timetable, or sql.ErrNoRows.
func (r *TimetableRepository) GetPublished(ctx context.Context) (*models.Timetable, error) {
	defer r.observe("timetable_get_published", time.Now())

	var record models.TimetableRecord
	err := r.db.GetContext(ctx, &record,
		"SELECT "+timetableColumns+" FROM timetables WHERE published = TRUE ORDER BY created_at DESC LIMIT 1")
	if err != nil {
		return nil, err
	}
	return decodeTimetable(&record)
}

// FindByID returns a stored timetable by ID.
func (r *TimetableRepository) FindByID(ctx context.Context, id string) (*models.Timetable, error) {
	var record models.TimetableRecord
	err := r.db.GetContext(ctx, &record, "SELECT "+timetableColumns+" FROM timetables WHERE id = $1", id)
	if err != nil {
		return nil, err
	}
	return decodeTimetable(&record)
}

func decodeTimetable(record *models.TimetableRecord) (*models.Timetable, error) {
	timetable := &models.Timetable{
		ID:          record.ID,
		Score:       record.Score,
		Fallback:    record.Fallback,
		Published:   record.Published,
		GeneratedAt: record.GeneratedAt,
	}
	if err := json.Unmarshal(record.Grid, &timetable.Grid); err != nil {
		return nil, fmt.Errorf("decode timetable grid: %w", err)
	}
	if len(record.Metrics) > 0 {
		if err := json.Unmarshal(record.Metrics, &timetable.Metrics); err != nil {
			return nil, fmt.Errorf("decode timetable metrics: %w", err)
		}
	}
	return timetable, nil
}

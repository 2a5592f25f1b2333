package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

// RoomRepository manages persistence for rooms.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs a RoomRepository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// List returns rooms matching the filter ordered by name.
func (r *RoomRepository) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, error) {
	query := "SELECT id, name, capacity, category, created_at, updated_at FROM rooms WHERE 1=1"
	var args []interface{}

	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		query += fmt.Sprintf(" AND LOWER(name) LIKE $%d", len(args))
	}
	query += " ORDER BY name ASC"

	rooms := []models.Room{}
	if err := r.db.SelectContext(ctx, &rooms, query, args...); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// ExistsByName reports whether a room with the given name exists, ignoring case.
func (r *RoomRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM rooms WHERE LOWER(name) = LOWER($1)", name)
	if err != nil {
		return false, fmt.Errorf("check room uniqueness: %w", err)
	}
	return count > 0, nil
}

// Create inserts a room, assigning an ID when absent.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	room.CreatedAt = now
	room.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO rooms (id, name, capacity, category, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)",
		room.ID, room.Name, room.Capacity, room.Category, room.CreatedAt, room.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

// Delete removes a room by ID.
func (r *RoomRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM rooms WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	return requireRowAffected(result)
}

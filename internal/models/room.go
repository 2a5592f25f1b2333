package models

import "time"

// RoomCategory enumerates the supported room kinds.
type RoomCategory string

const (
	RoomClassroom  RoomCategory = "classroom"
	RoomLab        RoomCategory = "lab"
	RoomAuditorium RoomCategory = "auditorium"
)

// Room represents a bookable teaching room.
type Room struct {
	ID        string       `db:"id" json:"id"`
	Name      string       `db:"name" json:"name"`
	Capacity  int          `db:"capacity" json:"capacity"`
	Category  RoomCategory `db:"category" json:"category"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

// RoomFilter captures supported filters for listing rooms.
type RoomFilter struct {
	Category  string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

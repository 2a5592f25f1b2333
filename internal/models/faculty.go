package models

import "time"

// Faculty represents a teaching staff member. A faculty member carries a
// single teachable subject label; the engine widens this via the
// compatibility relation at constraint-compile time.
type Faculty struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Subject   string    `db:"subject" json:"subject"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// FacultyFilter captures supported filters for listing faculty.
type FacultyFilter struct {
	Subject   string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

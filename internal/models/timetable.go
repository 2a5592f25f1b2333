package models

import "time"

// SlotType discriminates the payload of a grid cell.
type SlotType string

const (
	SlotRegular   SlotType = "regular"
	SlotPractical SlotType = "practical"
	SlotBreak     SlotType = "break"
)

// Slot is a single non-empty timetable cell. Break cells carry only the
// break name; practical cells additionally carry duration and description.
type Slot struct {
	Subject     string   `json:"subject"`
	Faculty     string   `json:"faculty"`
	Room        string   `json:"room"`
	Type        SlotType `json:"type"`
	Duration    int      `json:"duration,omitempty"`
	Description string   `json:"description,omitempty"`
	Name        string   `json:"name,omitempty"`
}

// Grid maps day name -> period label -> slot. A nil entry is an empty cell.
// Day and period enumerations are fixed ordered constants (engine.Days,
// engine.Periods) and round-trip exactly through JSON.
type Grid map[string]map[string]*Slot

// Break defines a recurring unavailable interval. Day is optional; an empty
// value applies the break to every day of the week.
type Break struct {
	Name      string `json:"name"`
	StartTime string `json:"start_time"`
	Duration  int    `json:"duration"`
	Day       string `json:"day,omitempty"`
}

// Practical marks a (subject, faculty, room) combination as a lab-style
// session. It is applied post hoc to any matching grid cell.
type Practical struct {
	Subject     string `json:"subject"`
	Faculty     string `json:"faculty"`
	Room        string `json:"room"`
	Duration    int    `json:"duration"`
	Description string `json:"description"`
}

// TimetableMetrics is the quality record computed for a completed grid.
type TimetableMetrics struct {
	Score               float64        `json:"score"`
	UtilizationRate     float64        `json:"utilization_rate"`
	WorkloadBalance     float64        `json:"workload_balance"`
	RoomUtilization     float64        `json:"room_utilization"`
	SubjectDiversity    float64        `json:"subject_diversity"`
	FilledSlots         int            `json:"filled_slots"`
	BreakSlots          int            `json:"break_slots"`
	PracticalSlots      int            `json:"practical_slots"`
	TotalSlots          int            `json:"total_slots"`
	FacultyLoad         map[string]int `json:"faculty_load"`
	RoomUsage           map[string]int `json:"room_usage"`
	SubjectDistribution map[string]int `json:"subject_distribution"`
}

// Timetable is the full weekly grid plus its score and metrics. It is the
// only mutable artifact of a scheduling run; repairs always produce a fresh
// copy and leave the original intact.
type Timetable struct {
	ID          string           `json:"id,omitempty"`
	Grid        Grid             `json:"timetable"`
	Score       float64          `json:"score"`
	Metrics     TimetableMetrics `json:"metrics"`
	Published   bool             `json:"published,omitempty"`
	Fallback    bool             `json:"fallback,omitempty"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// TimetableRecord is the persisted form of a timetable; the grid and metrics
// are stored as JSON documents.
type TimetableRecord struct {
	ID          string    `db:"id" json:"id"`
	Grid        []byte    `db:"grid" json:"-"`
	Score       float64   `db:"score" json:"score"`
	Metrics     []byte    `db:"metrics" json:"-"`
	Fallback    bool      `db:"fallback" json:"fallback"`
	Published   bool      `db:"published" json:"published"`
	GeneratedAt time.Time `db:"generated_at" json:"generated_at"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

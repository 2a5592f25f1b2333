package dto

import "github.com/noah-isme/timetable-api/internal/models"

// BreakRequest defines a recurring break window for a generation run.
type BreakRequest struct {
	Name      string `json:"name" validate:"required"`
	StartTime string `json:"startTime" validate:"required"`
	Duration  int    `json:"duration" validate:"required,min=30,max=240"`
	Day       string `json:"day" validate:"omitempty,oneof=Monday Tuesday Wednesday Thursday Friday"`
}

// PracticalRequest marks a subject-faculty-room combination as a lab session.
type PracticalRequest struct {
	Subject     string `json:"subject" validate:"required"`
	Faculty     string `json:"faculty" validate:"required"`
	Room        string `json:"room" validate:"required"`
	Duration    int    `json:"duration" validate:"omitempty,min=60,max=240"`
	Description string `json:"description"`
}

// GenerateTimetableRequest instructs the engine to build candidate timetables
// from the current faculty, room, subject and approved-leave rosters.
type GenerateTimetableRequest struct {
	Breaks     []BreakRequest     `json:"breaks" validate:"omitempty,dive"`
	Practicals []PracticalRequest `json:"practicals" validate:"omitempty,dive"`
}

// TimetableCandidate summarises a ranked alternative from a generation run.
type TimetableCandidate struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// GenerateTimetableResponse carries the best candidate in full plus the
// ranked alternatives by reference.
type GenerateTimetableResponse struct {
	ID         string                  `json:"id"`
	Timetable  models.Grid             `json:"timetable"`
	Score      float64                 `json:"score"`
	Metrics    models.TimetableMetrics `json:"metrics"`
	Fallback   bool                    `json:"fallback"`
	Candidates []TimetableCandidate    `json:"candidates"`
}

// PublishTimetableRequest selects a stored candidate to become the single
// published timetable.
type PublishTimetableRequest struct {
	ID string `json:"id" validate:"required"`
}

// RescheduleRequest triggers a localized repair of the published timetable
// for an approved leave request.
type RescheduleRequest struct {
	LeaveRequestID string `json:"leaveRequestId" validate:"required"`
}

// RescheduleResponse reports the repair outcome. Outcome is one of
// "substituted", "vacated" or "unchanged"; Timetable is nil when unchanged.
type RescheduleResponse struct {
	Outcome   string            `json:"outcome"`
	Timetable *models.Timetable `json:"timetable,omitempty"`
}

// TimetableStatisticsResponse aggregates the published timetable's quality
// metrics with a system snapshot.
type TimetableStatisticsResponse struct {
	Published bool                     `json:"published"`
	Score     float64                  `json:"score,omitempty"`
	Metrics   *models.TimetableMetrics `json:"metrics,omitempty"`
	System    models.SystemMetrics     `json:"system"`
}

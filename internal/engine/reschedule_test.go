package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
)

func publishedFixture() *models.Timetable {
	grid := emptyGrid()
	grid["Monday"]["9:00-10:00"] = &models.Slot{Subject: "Math", Faculty: "A", Room: "R1", Type: models.SlotRegular}
	grid["Monday"]["10:00-11:00"] = &models.Slot{Subject: "Math", Faculty: "C", Room: "R2", Type: models.SlotRegular}
	grid["Tuesday"]["9:00-10:00"] = &models.Slot{Subject: "Physics", Faculty: "B", Room: "R1", Type: models.SlotRegular}
	grid["Tuesday"]["10:00-11:00"] = &models.Slot{Subject: "Math", Faculty: "D", Room: "R2", Type: models.SlotRegular}
	grid["Tuesday"]["11:00-12:00"] = &models.Slot{Subject: "Math", Faculty: "D", Room: "R2", Type: models.SlotRegular}
	return &models.Timetable{Grid: grid, Score: 75}
}

func rescheduleFaculty() []models.Faculty {
	return makeFaculty("A", "Math", "B", "Physics", "C", "Math", "D", "Math")
}

func approvedLeave(faculty, date, period string) models.LeaveRequest {
	return models.LeaveRequest{FacultyName: faculty, Date: date, Period: period, Status: models.LeaveApproved}
}

func TestRescheduleSubstitutesLeastLoadedCompatible(t *testing.T) {
	e := newTestEngine()
	published := publishedFixture()

	// 2026-01-05 is a Monday. C teaches 1 Math session, D teaches 2: C wins.
	repaired, ok := e.Reschedule(published, approvedLeave("A", "2026-01-05", "9:00-10:00"), rescheduleFaculty(), makeRooms("R1", "R2"))
	require.True(t, ok)

	slot := repaired.Grid["Monday"]["9:00-10:00"]
	require.NotNil(t, slot)
	assert.Equal(t, "C", slot.Faculty)
	assert.Equal(t, "Math", slot.Subject, "subject unchanged")
	assert.Equal(t, "R1", slot.Room, "room unchanged")
}

func TestRescheduleVacatesWhenNoSubstitute(t *testing.T) {
	e := newTestEngine()
	published := publishedFixture()

	// B is the only Physics-compatible faculty; nobody can cover Tuesday 9:00.
	repaired, ok := e.Reschedule(published, approvedLeave("B", "2026-01-06", "9:00-10:00"), rescheduleFaculty(), makeRooms("R1", "R2"))
	require.True(t, ok)
	assert.Nil(t, repaired.Grid["Tuesday"]["9:00-10:00"])
}

func TestRescheduleLocality(t *testing.T) {
	e := newTestEngine()
	published := publishedFixture()

	repaired, ok := e.Reschedule(published, approvedLeave("A", "2026-01-05", "9:00-10:00"), rescheduleFaculty(), makeRooms("R1", "R2"))
	require.True(t, ok)

	changed := 0
	for _, day := range Days {
		for _, period := range Periods {
			before, after := published.Grid[day][period], repaired.Grid[day][period]
			if before == after {
				continue
			}
			if before != nil && after != nil && *before == *after {
				continue
			}
			changed++
		}
	}
	assert.Equal(t, 1, changed, "repair must touch exactly one cell")

	// Untouched day rows are shared with the original grid.
	for _, day := range Days {
		if day == "Monday" {
			continue
		}
		assert.Equal(t, published.Grid[day]["9:00-10:00"], repaired.Grid[day]["9:00-10:00"])
	}

	// Original grid untouched.
	assert.Equal(t, "A", published.Grid["Monday"]["9:00-10:00"].Faculty)
}

func TestRescheduleNoChangeCases(t *testing.T) {
	e := newTestEngine()
	published := publishedFixture()
	faculty := rescheduleFaculty()
	rooms := makeRooms("R1", "R2")

	t.Run("empty cell", func(t *testing.T) {
		_, ok := e.Reschedule(published, approvedLeave("A", "2026-01-05", "2:00-3:00"), faculty, rooms)
		assert.False(t, ok)
	})

	t.Run("different faculty in cell", func(t *testing.T) {
		_, ok := e.Reschedule(published, approvedLeave("B", "2026-01-05", "9:00-10:00"), faculty, rooms)
		assert.False(t, ok)
	})

	t.Run("malformed date", func(t *testing.T) {
		_, ok := e.Reschedule(published, approvedLeave("A", "someday", "9:00-10:00"), faculty, rooms)
		assert.False(t, ok)
	})

	t.Run("weekend date", func(t *testing.T) {
		_, ok := e.Reschedule(published, approvedLeave("A", "2026-01-10", "9:00-10:00"), faculty, rooms)
		assert.False(t, ok)
	})

	t.Run("unknown period", func(t *testing.T) {
		_, ok := e.Reschedule(published, approvedLeave("A", "2026-01-05", "7:00-8:00"), faculty, rooms)
		assert.False(t, ok)
	})

	t.Run("pending leave", func(t *testing.T) {
		leave := approvedLeave("A", "2026-01-05", "9:00-10:00")
		leave.Status = models.LeavePending
		_, ok := e.Reschedule(published, leave, faculty, rooms)
		assert.False(t, ok)
	})
}

func TestRescheduleRecomputesMetrics(t *testing.T) {
	e := newTestEngine()
	published := publishedFixture()

	repaired, ok := e.Reschedule(published, approvedLeave("B", "2026-01-06", "9:00-10:00"), rescheduleFaculty(), makeRooms("R1", "R2"))
	require.True(t, ok)

	assert.Equal(t, repaired.Metrics.Score, repaired.Score)
	assert.Equal(t, 4, repaired.Metrics.FilledSlots, "one session vacated")
}

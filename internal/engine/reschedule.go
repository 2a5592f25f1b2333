package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
)

// Reschedule performs a localized repair of a published timetable after a
// leave approval: the affected cell either gets the least-loaded compatible
// substitute faculty or is vacated. Exactly one cell changes; every other
// cell is shared with the input grid, which is never mutated. The second
// return value is false when no repair was needed or possible.
func (e *Engine) Reschedule(
	published *models.Timetable,
	leave models.LeaveRequest,
	faculty []models.Faculty,
	rooms []models.Room,
) (*models.Timetable, bool) {
	if published == nil || leave.Status != models.LeaveApproved {
		return nil, false
	}

	day := dayFromDate(leave.Date)
	if day == "" || periodIndex(leave.Period) < 0 {
		return nil, false
	}

	affected := published.Grid[day][leave.Period]
	if affected == nil || affected.Type == models.SlotBreak || affected.Faculty != leave.FacultyName {
		return nil, false
	}

	loads := weeklyLoads(published.Grid)
	replacement := ""
	best := -1
	for _, f := range faculty {
		if f.Name == leave.FacultyName {
			continue
		}
		if !e.cfg.Compatibility.Allows(f.Subject, affected.Subject) {
			continue
		}
		if best < 0 || loads[f.Name] < best {
			best = loads[f.Name]
			replacement = f.Name
		}
	}

	grid := cloneDayRow(published.Grid, day)
	if replacement != "" {
		repaired := *affected
		repaired.Faculty = replacement
		grid[day][leave.Period] = &repaired
		e.logger.Info("rescheduled slot",
			zap.String("day", day),
			zap.String("period", leave.Period),
			zap.String("from", leave.FacultyName),
			zap.String("to", replacement))
	} else {
		grid[day][leave.Period] = nil
		e.logger.Info("no substitute available, slot vacated",
			zap.String("day", day),
			zap.String("period", leave.Period))
	}

	metrics := Evaluate(grid, facultyNames(faculty), roomNames(rooms), gridSubjectUniverse(published), e.cfg.Weights)
	return &models.Timetable{
		Grid:        grid,
		Score:       metrics.Score,
		Metrics:     metrics,
		GeneratedAt: time.Now().UTC(),
	}, true
}

// weeklyLoads counts non-break sessions per faculty name.
func weeklyLoads(grid models.Grid) map[string]int {
	loads := make(map[string]int)
	for _, day := range Days {
		for _, period := range Periods {
			slot := grid[day][period]
			if slot == nil || slot.Type == models.SlotBreak {
				continue
			}
			loads[slot.Faculty]++
		}
	}
	return loads
}

// cloneDayRow returns a grid sharing every day row with the source except
// the named day, which is shallow-copied so a single cell can be replaced.
func cloneDayRow(grid models.Grid, day string) models.Grid {
	clone := make(models.Grid, len(grid))
	for name, row := range grid {
		clone[name] = row
	}
	row := make(map[string]*models.Slot, len(grid[day]))
	for period, slot := range grid[day] {
		row[period] = slot
	}
	clone[day] = row
	return clone
}

// gridSubjectUniverse recovers the subject denominator used when the
// published timetable was scored, so a repair does not shift the diversity
// metric's baseline.
func gridSubjectUniverse(published *models.Timetable) []string {
	if len(published.Metrics.SubjectDistribution) > 0 {
		names := make([]string, 0, len(published.Metrics.SubjectDistribution))
		for name := range published.Metrics.SubjectDistribution {
			names = append(names, name)
		}
		return names
	}
	seen := make(map[string]bool)
	var names []string
	for _, day := range Days {
		for _, period := range Periods {
			slot := published.Grid[day][period]
			if slot == nil || slot.Type == models.SlotBreak || seen[slot.Subject] {
				continue
			}
			seen[slot.Subject] = true
			names = append(names, slot.Subject)
		}
	}
	return names
}

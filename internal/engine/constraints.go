package engine

import (
	"time"

	"github.com/noah-isme/timetable-api/internal/models"
)

// Config carries the tunable limits for a scheduling run. Zero values are
// replaced with the defaults the production configuration also uses.
type Config struct {
	Attempts         int
	AttemptBudget    time.Duration
	MinLoad          int
	MaxLoad          int
	MaxSubjectPerDay int
	SeedBase         int64
	Weights          MetricWeights
	Compatibility    CompatibilityTable
}

func (c Config) withDefaults() Config {
	if c.Attempts <= 0 {
		c.Attempts = 3
	}
	if c.AttemptBudget <= 0 {
		c.AttemptBudget = 45 * time.Second
	}
	if c.MinLoad <= 0 {
		c.MinLoad = 2
	}
	if c.MaxLoad <= 0 {
		c.MaxLoad = 8
	}
	if c.MaxSubjectPerDay <= 0 {
		c.MaxSubjectPerDay = 3
	}
	if c.Weights.isZero() {
		c.Weights = DefaultMetricWeights()
	}
	if c.Compatibility == nil {
		c.Compatibility = DefaultCompatibilityTable()
	}
	return c
}

// ConstraintSet is the compiled form of a scheduling problem. All lookups are
// flat arrays addressed by computed offsets so the solver's hard-constraint
// scans stay cache-friendly.
type ConstraintSet struct {
	Faculty  []models.Faculty
	Rooms    []models.Room
	Subjects []models.Subject

	canTeach     [][]bool       // [faculty][subject]
	breakAt      []*models.Break // per cell, nil when the cell is schedulable
	leaveBlocked [][]bool       // [faculty][cell]

	minLoad          int
	maxLoad          int
	maxSubjectPerDay int
}

// Compile resolves compatibility, break coverage and approved leaves into a
// constraint set. Malformed leave or break entries are excluded rather than
// rejected.
func Compile(
	faculty []models.Faculty,
	rooms []models.Room,
	subjects []models.Subject,
	leaves []models.LeaveRequest,
	breaks []models.Break,
	cfg Config,
) *ConstraintSet {
	cfg = cfg.withDefaults()

	cs := &ConstraintSet{
		Faculty:          faculty,
		Rooms:            rooms,
		Subjects:         subjects,
		minLoad:          cfg.MinLoad,
		maxLoad:          cfg.MaxLoad,
		maxSubjectPerDay: cfg.MaxSubjectPerDay,
	}

	cs.canTeach = make([][]bool, len(faculty))
	for f, fac := range faculty {
		cs.canTeach[f] = make([]bool, len(subjects))
		for s, subject := range subjects {
			cs.canTeach[f][s] = cfg.Compatibility.Allows(fac.Subject, subject.Name)
		}
	}

	cs.breakAt = make([]*models.Break, NumCells())
	for i := range breaks {
		applyBreak(cs.breakAt, &breaks[i])
	}

	cs.leaveBlocked = make([][]bool, len(faculty))
	for f := range faculty {
		cs.leaveBlocked[f] = make([]bool, NumCells())
	}
	for _, leave := range leaves {
		if leave.Status != models.LeaveApproved {
			continue
		}
		day := dayIndex(dayFromDate(leave.Date))
		period := periodIndex(leave.Period)
		if day < 0 || period < 0 {
			continue
		}
		for f, fac := range faculty {
			if fac.Name == leave.FacultyName {
				cs.leaveBlocked[f][cellIndex(day, period)] = true
			}
		}
	}

	return cs
}

// applyBreak expands one break definition into per-cell markers. Coverage is
// every period whose start falls within [start, start+duration), on the
// restricted day or on all days when no restriction is given.
func applyBreak(breakAt []*models.Break, b *models.Break) {
	startPeriod := -1
	for i, period := range Periods {
		if periodStart(period) == b.StartTime {
			startPeriod = i
			break
		}
	}
	if startPeriod < 0 {
		return
	}

	covered := b.Duration / 60
	if covered < 1 {
		covered = 1
	}

	days := make([]int, 0, len(Days))
	if b.Day != "" {
		day := dayIndex(b.Day)
		if day < 0 {
			return
		}
		days = append(days, day)
	} else {
		for d := range Days {
			days = append(days, d)
		}
	}

	for _, day := range days {
		for p := startPeriod; p < startPeriod+covered && p < len(Periods); p++ {
			breakAt[cellIndex(day, p)] = b
		}
	}
}

// CanTeach reports the compiled compatibility for a (faculty, subject) index pair.
func (cs *ConstraintSet) CanTeach(faculty, subject int) bool {
	return cs.canTeach[faculty][subject]
}

// BreakAt returns the break covering a cell, or nil.
func (cs *ConstraintSet) BreakAt(cell int) *models.Break {
	return cs.breakAt[cell]
}

// OnLeave reports whether a faculty member has an approved leave for a cell.
func (cs *ConstraintSet) OnLeave(faculty, cell int) bool {
	return cs.leaveBlocked[faculty][cell]
}

// SchedulableCells counts cells not covered by a break.
func (cs *ConstraintSet) SchedulableCells() int {
	count := 0
	for _, b := range cs.breakAt {
		if b == nil {
			count++
		}
	}
	return count
}

// teachableSubjects returns the subject indices a faculty member may cover.
func (cs *ConstraintSet) teachableSubjects(faculty int) []int {
	var subjects []int
	for s := range cs.Subjects {
		if cs.canTeach[faculty][s] {
			subjects = append(subjects, s)
		}
	}
	return subjects
}

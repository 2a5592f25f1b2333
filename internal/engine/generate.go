package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

// Engine is the scheduling core: it compiles constraints, runs independent
// solver attempts, scores the results and falls back to a deterministic
// greedy schedule when the search finds nothing feasible. It performs no I/O.
type Engine struct {
	cfg    Config
	solver Solver
	logger *zap.Logger
}

// New constructs an Engine. A nil solver selects the default heuristic
// solver; a nil logger is replaced with a no-op logger.
func New(cfg Config, solver Solver, logger *zap.Logger) *Engine {
	if solver == nil {
		solver = NewHeuristicSolver()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cfg: cfg.withDefaults(), solver: solver, logger: logger}
}

// Generate runs the full scheduling pipeline and returns 1+ candidate
// timetables sorted by score descending. Attempts are independent and run
// concurrently; ties keep the earlier attempt. When every attempt is
// infeasible the fallback schedule is returned with a degraded score.
func (e *Engine) Generate(
	ctx context.Context,
	faculty []models.Faculty,
	rooms []models.Room,
	subjects []models.Subject,
	leaves []models.LeaveRequest,
	breaks []models.Break,
	practicals []models.Practical,
) ([]*models.Timetable, error) {
	if len(faculty) == 0 || len(rooms) == 0 || len(subjects) == 0 {
		return nil, appErrors.Clone(appErrors.ErrInsufficientInput, fmt.Sprintf(
			"need at least 1 faculty (%d), 1 room (%d) and 1 subject (%d)",
			len(faculty), len(rooms), len(subjects)))
	}

	cs := Compile(faculty, rooms, subjects, leaves, breaks, e.cfg)
	practicalIndex := indexPracticals(practicals)

	attempts := make([]*Assignment, e.cfg.Attempts)
	var wg sync.WaitGroup
	for i := 0; i < e.cfg.Attempts; i++ {
		wg.Add(1)
		go func(attempt int) {
			defer wg.Done()
			seed := e.cfg.SeedBase + int64(attempt)
			assign, ok := e.solver.Solve(ctx, cs, seed, e.cfg.AttemptBudget)
			if ok {
				attempts[attempt] = assign
			}
		}(i)
	}
	wg.Wait()

	var candidates []*models.Timetable
	for i, assign := range attempts {
		if assign == nil {
			continue
		}
		timetable := e.render(assign, cs, practicalIndex)
		e.logger.Debug("solver attempt feasible",
			zap.Int("attempt", i),
			zap.Float64("score", timetable.Score))
		candidates = append(candidates, timetable)
	}

	if len(candidates) == 0 {
		e.logger.Info("no feasible candidate found, using fallback schedule")
		timetable := e.render(Fallback(cs), cs, practicalIndex)
		timetable.Score = FallbackScore(timetable.Metrics.Score)
		timetable.Fallback = true
		return []*models.Timetable{timetable}, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates, nil
}

// render turns a solver assignment into a complete timetable with break
// markers, practical annotations, metrics and score.
func (e *Engine) render(assign *Assignment, cs *ConstraintSet, practicalIndex map[string]*models.Practical) *models.Timetable {
	grid := make(models.Grid, len(Days))
	for d, day := range Days {
		row := make(map[string]*models.Slot, len(Periods))
		for p, period := range Periods {
			cell := cellIndex(d, p)
			if b := cs.BreakAt(cell); b != nil {
				row[period] = breakSlot(b)
				continue
			}
			if !assign.Filled(cell) {
				row[period] = nil
				continue
			}
			slot := &models.Slot{
				Subject: cs.Subjects[assign.Subject[cell]].Name,
				Faculty: cs.Faculty[assign.Faculty[cell]].Name,
				Room:    cs.Rooms[assign.Room[cell]].Name,
				Type:    models.SlotRegular,
			}
			if practical, ok := practicalIndex[practicalKey(slot.Subject, slot.Faculty, slot.Room)]; ok {
				slot.Type = models.SlotPractical
				slot.Duration = practical.Duration
				if slot.Duration == 0 {
					slot.Duration = 120
				}
				slot.Description = practical.Description
			}
			row[period] = slot
		}
		grid[day] = row
	}

	metrics := Evaluate(grid, facultyNames(cs.Faculty), roomNames(cs.Rooms), subjectNames(cs.Subjects), e.cfg.Weights)
	return &models.Timetable{
		Grid:        grid,
		Score:       metrics.Score,
		Metrics:     metrics,
		GeneratedAt: time.Now().UTC(),
	}
}

func breakSlot(b *models.Break) *models.Slot {
	name := b.Name
	if name == "" {
		name = "Break Time"
	}
	return &models.Slot{
		Subject: "BREAK",
		Faculty: "N/A",
		Room:    "N/A",
		Type:    models.SlotBreak,
		Name:    name,
	}
}

func practicalKey(subject, faculty, room string) string {
	return subject + "|" + faculty + "|" + room
}

func indexPracticals(practicals []models.Practical) map[string]*models.Practical {
	index := make(map[string]*models.Practical, len(practicals))
	for i := range practicals {
		p := &practicals[i]
		index[practicalKey(p.Subject, p.Faculty, p.Room)] = p
	}
	return index
}

func facultyNames(faculty []models.Faculty) []string {
	names := make([]string, len(faculty))
	for i, f := range faculty {
		names[i] = f.Name
	}
	return names
}

func roomNames(rooms []models.Room) []string {
	names := make([]string, len(rooms))
	for i, r := range rooms {
		names[i] = r.Name
	}
	return names
}

func subjectNames(subjects []models.Subject) []string {
	names := make([]string, len(subjects))
	for i, s := range subjects {
		names[i] = s.Name
	}
	return names
}

package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
)

func solveOrFail(t *testing.T, cs *ConstraintSet, seed int64) *Assignment {
	t.Helper()
	assign, ok := NewHeuristicSolver().Solve(context.Background(), cs, seed, 10*time.Second)
	require.True(t, ok, "expected a feasible assignment")
	return assign
}

func TestSolverSatisfiesHardConstraints(t *testing.T) {
	faculty := makeFaculty("A", "Math", "B", "Physics", "C", "Math")
	rooms := makeRooms("R1", "R2")
	subjects := makeSubjects("Math", "Physics")
	leaves := []models.LeaveRequest{
		{FacultyName: "A", Date: "2026-01-05", Period: "9:00-10:00", Status: models.LeaveApproved},
	}
	breaks := []models.Break{{Name: "Lunch", StartTime: "12:00", Duration: 60}}
	cs := Compile(faculty, rooms, subjects, leaves, breaks, Config{})

	assign := solveOrFail(t, cs, 7)

	loads := make([]int, len(faculty))
	subjectDay := map[[2]int]int{}
	for cell := 0; cell < NumCells(); cell++ {
		if cs.BreakAt(cell) != nil {
			assert.False(t, assign.Filled(cell), "break cell must stay empty")
			continue
		}
		if !assign.Filled(cell) {
			continue
		}
		f, s := assign.Faculty[cell], assign.Subject[cell]
		assert.True(t, cs.CanTeach(f, s), "compatibility must hold")
		assert.False(t, cs.OnLeave(f, cell), "leave cells must be respected")
		loads[f]++
		subjectDay[[2]int{cellDay(cell), s}]++
	}
	for f, load := range loads {
		assert.GreaterOrEqual(t, load, 2, "faculty %d below min load", f)
		assert.LessOrEqual(t, load, 8, "faculty %d above max load", f)
	}
	for key, count := range subjectDay {
		assert.LessOrEqual(t, count, 3, "subject %d exceeds daily cap on day %d", key[1], key[0])
	}
}

func TestSolverDeterministicPerSeed(t *testing.T) {
	faculty := makeFaculty("A", "Math", "B", "Physics")
	cs := Compile(faculty, makeRooms("R1", "R2"), makeSubjects("Math", "Physics"), nil, nil, Config{})

	first := solveOrFail(t, cs, 42)
	second := solveOrFail(t, cs, 42)

	assert.Equal(t, first.Faculty, second.Faculty)
	assert.Equal(t, first.Room, second.Room)
	assert.Equal(t, first.Subject, second.Subject)
}

func TestSolverDifferentSeedsDiversify(t *testing.T) {
	faculty := makeFaculty("A", "Math", "B", "Physics")
	cs := Compile(faculty, makeRooms("R1", "R2"), makeSubjects("Math", "Physics"), nil, nil, Config{})

	a := solveOrFail(t, cs, 0)
	b := solveOrFail(t, cs, 1)

	same := true
	for cell := range a.Faculty {
		if a.Faculty[cell] != b.Faculty[cell] || a.Subject[cell] != b.Subject[cell] {
			same = false
			break
		}
	}
	assert.False(t, same, "distinct seeds should explore distinct assignments")
}

func TestSolverInfeasibleWhenFacultyCannotTeachAnything(t *testing.T) {
	faculty := makeFaculty("A", "Underwater Basket Weaving")
	cs := Compile(faculty, makeRooms("R1"), makeSubjects("Math"), nil, nil, Config{})

	_, ok := NewHeuristicSolver().Solve(context.Background(), cs, 0, time.Second)
	assert.False(t, ok)
}

func TestSolverInfeasibleWhenMinLoadExceedsCells(t *testing.T) {
	// Every cell is a break except one period per day; 5 cells cannot carry
	// min load 2 for six faculty members.
	breaks := []models.Break{
		{Name: "B1", StartTime: "9:00", Duration: 60},
		{Name: "B2", StartTime: "10:00", Duration: 60},
		{Name: "B3", StartTime: "11:00", Duration: 60},
		{Name: "B4", StartTime: "12:00", Duration: 60},
		{Name: "B5", StartTime: "2:00", Duration: 60},
	}
	faculty := makeFaculty("A", "Math", "B", "Math", "C", "Math", "D", "Math", "E", "Math", "F", "Math")
	cs := Compile(faculty, makeRooms("R1"), makeSubjects("Math"), nil, breaks, Config{})

	_, ok := NewHeuristicSolver().Solve(context.Background(), cs, 0, time.Second)
	assert.False(t, ok)
}

func TestSolverHonoursCancelledContext(t *testing.T) {
	faculty := makeFaculty("A", "Math", "B", "Physics")
	cs := Compile(faculty, makeRooms("R1"), makeSubjects("Math", "Physics"), nil, nil, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok := NewHeuristicSolver().Solve(ctx, cs, 0, time.Second)
	assert.False(t, ok, "cancelled context before min-load seeding means no feasible result")
}

package engine

import (
	"context"
	"math/rand"
	"time"
)

// Assignment is the flat decision structure produced by a solver: one
// (faculty, room, subject) index triple per grid cell, -1 marking empty.
type Assignment struct {
	Faculty []int
	Room    []int
	Subject []int
}

func newAssignment() *Assignment {
	a := &Assignment{
		Faculty: make([]int, NumCells()),
		Room:    make([]int, NumCells()),
		Subject: make([]int, NumCells()),
	}
	for i := range a.Faculty {
		a.Faculty[i] = -1
		a.Room[i] = -1
		a.Subject[i] = -1
	}
	return a
}

// Filled reports whether a cell carries a session.
func (a *Assignment) Filled(cell int) bool {
	return a.Faculty[cell] >= 0
}

// Solver finds a feasible assignment for a compiled constraint set within a
// time budget, or reports infeasibility. Implementations must be reproducible
// for identical inputs and seed.
type Solver interface {
	Solve(ctx context.Context, cs *ConstraintSet, seed int64, budget time.Duration) (*Assignment, bool)
}

// NewHeuristicSolver returns the default solver: seeded randomized greedy
// construction followed by bounded local improvement. The iteration count is
// fixed per problem size, so two runs with the same seed produce the same
// assignment as long as neither hits the wall-clock cutoff.
func NewHeuristicSolver() Solver {
	return &heuristicSolver{}
}

type heuristicSolver struct{}

const improvementIterations = 5000

type solveState struct {
	cs         *ConstraintSet
	assign     *Assignment
	load       []int   // sessions per faculty
	subjectDay [][]int // [day][subject] sessions
	roomCount  []int   // sessions per room across the week
}

func newSolveState(cs *ConstraintSet) *solveState {
	subjectDay := make([][]int, len(Days))
	for d := range subjectDay {
		subjectDay[d] = make([]int, len(cs.Subjects))
	}
	return &solveState{
		cs:         cs,
		assign:     newAssignment(),
		load:       make([]int, len(cs.Faculty)),
		subjectDay: subjectDay,
		roomCount:  make([]int, len(cs.Rooms)),
	}
}

func (st *solveState) canPlace(cell, faculty, subject int) bool {
	if st.assign.Filled(cell) || st.cs.BreakAt(cell) != nil {
		return false
	}
	if st.cs.OnLeave(faculty, cell) {
		return false
	}
	if !st.cs.CanTeach(faculty, subject) {
		return false
	}
	if st.load[faculty] >= st.cs.maxLoad {
		return false
	}
	return st.subjectDay[cellDay(cell)][subject] < st.cs.maxSubjectPerDay
}

func (st *solveState) place(cell, faculty, room, subject int) {
	st.assign.Faculty[cell] = faculty
	st.assign.Room[cell] = room
	st.assign.Subject[cell] = subject
	st.load[faculty]++
	st.subjectDay[cellDay(cell)][subject]++
	st.roomCount[room]++
}

func (st *solveState) distinctRooms() int {
	count := 0
	for _, c := range st.roomCount {
		if c > 0 {
			count++
		}
	}
	return count
}

func (s *heuristicSolver) Solve(ctx context.Context, cs *ConstraintSet, seed int64, budget time.Duration) (*Assignment, bool) {
	deadline := time.Now().Add(budget)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	expired := func() bool {
		return ctx.Err() != nil || !time.Now().Before(deadline)
	}

	if len(cs.Faculty) == 0 || len(cs.Rooms) == 0 || len(cs.Subjects) == 0 {
		return nil, false
	}
	if cs.minLoad > cs.maxLoad {
		return nil, false
	}
	for f := range cs.Faculty {
		if len(cs.teachableSubjects(f)) == 0 {
			return nil, false
		}
	}
	if cs.minLoad*len(cs.Faculty) > cs.SchedulableCells() {
		return nil, false
	}

	rng := rand.New(rand.NewSource(seed))
	st := newSolveState(cs)

	cells := make([]int, 0, NumCells())
	for cell := 0; cell < NumCells(); cell++ {
		if cs.BreakAt(cell) == nil {
			cells = append(cells, cell)
		}
	}
	rng.Shuffle(len(cells), func(i, j int) { cells[i], cells[j] = cells[j], cells[i] })

	if !s.seedMinimumLoads(st, cells, rng, expired) {
		return nil, false
	}
	s.fillRemaining(st, cells, rng, expired)
	s.improve(st, cells, rng, expired)

	for f := range cs.Faculty {
		if st.load[f] < cs.minLoad || st.load[f] > cs.maxLoad {
			return nil, false
		}
	}
	return st.assign, true
}

// seedMinimumLoads places each faculty member's minimum weekly sessions
// before anything else, so the min-load hard constraint is never repaired
// after the fact.
func (s *heuristicSolver) seedMinimumLoads(st *solveState, cells []int, rng *rand.Rand, expired func() bool) bool {
	order := rng.Perm(len(st.cs.Faculty))
	for _, f := range order {
		teachable := st.cs.teachableSubjects(f)
		for st.load[f] < st.cs.minLoad {
			if expired() {
				return false
			}
			placed := false
			for _, cell := range cells {
				subject, ok := s.pickSubject(st, cell, f, teachable, rng)
				if !ok {
					continue
				}
				st.place(cell, f, rng.Intn(len(st.cs.Rooms)), subject)
				placed = true
				break
			}
			if !placed {
				return false
			}
		}
	}
	return true
}

func (s *heuristicSolver) pickSubject(st *solveState, cell, faculty int, teachable []int, rng *rand.Rand) (int, bool) {
	if len(teachable) == 0 {
		return 0, false
	}
	offset := rng.Intn(len(teachable))
	for i := 0; i < len(teachable); i++ {
		subject := teachable[(offset+i)%len(teachable)]
		if st.canPlace(cell, faculty, subject) {
			return subject, true
		}
	}
	return 0, false
}

// fillRemaining greedily assigns empty cells, always trying the currently
// least-loaded faculty first to keep the workload spread small.
func (s *heuristicSolver) fillRemaining(st *solveState, cells []int, rng *rand.Rand, expired func() bool) {
	for _, cell := range cells {
		if expired() {
			return
		}
		if st.assign.Filled(cell) {
			continue
		}
		for _, f := range facultyByLoad(st.load) {
			teachable := st.cs.teachableSubjects(f)
			subject, ok := s.pickSubject(st, cell, f, teachable, rng)
			if !ok {
				continue
			}
			st.place(cell, f, rng.Intn(len(st.cs.Rooms)), subject)
			break
		}
	}
}

// improve runs a bounded local search: rebalancing sessions toward
// less-loaded faculty and steering unused rooms into service. Moves are only
// applied when they cannot violate a hard constraint, so the assignment stays
// feasible throughout.
func (s *heuristicSolver) improve(st *solveState, cells []int, rng *rand.Rand, expired func() bool) {
	for iter := 0; iter < improvementIterations; iter++ {
		if expired() {
			return
		}
		cell := cells[rng.Intn(len(cells))]
		if !st.assign.Filled(cell) {
			continue
		}
		switch iter % 2 {
		case 0:
			s.rebalance(st, cell)
		case 1:
			s.diversifyRoom(st, cell)
		}
	}
}

func (s *heuristicSolver) rebalance(st *solveState, cell int) {
	from := st.assign.Faculty[cell]
	subject := st.assign.Subject[cell]
	if st.load[from] <= st.cs.minLoad {
		return
	}
	for g := range st.cs.Faculty {
		if g == from || st.load[g]+1 >= st.load[from] {
			continue
		}
		if st.load[g] >= st.cs.maxLoad || st.cs.OnLeave(g, cell) || !st.cs.CanTeach(g, subject) {
			continue
		}
		st.load[from]--
		st.load[g]++
		st.assign.Faculty[cell] = g
		return
	}
}

func (s *heuristicSolver) diversifyRoom(st *solveState, cell int) {
	current := st.assign.Room[cell]
	if st.roomCount[current] <= 1 {
		return
	}
	for r := range st.cs.Rooms {
		if st.roomCount[r] == 0 {
			st.roomCount[current]--
			st.roomCount[r]++
			st.assign.Room[cell] = r
			return
		}
	}
}

// facultyByLoad returns faculty indices ordered by current load ascending,
// ties broken by input order.
func facultyByLoad(load []int) []int {
	order := make([]int, len(load))
	for i := range order {
		order[i] = i
	}
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && load[order[j]] < load[order[j-1]]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	return order
}

package engine

// fallbackMaxSubjectPerDay caps same-subject repetition in the fallback
// path; tighter than the search engine's limit since the greedy walk has no
// balancing pass.
const fallbackMaxSubjectPerDay = 2

// fallbackScoreFloor is the minimum score reported for a fallback timetable.
const fallbackScoreFloor = 10

// Fallback deterministically fills the grid with a round-robin walk over
// (faculty, room, subject) combinations. It always terminates and always
// returns an assignment, possibly sparse: a cell is abandoned after
// 2x|subjects| combinations were tried without a fit.
func Fallback(cs *ConstraintSet) *Assignment {
	st := newSolveState(cs)
	if len(cs.Faculty) == 0 || len(cs.Rooms) == 0 || len(cs.Subjects) == 0 {
		return st.assign
	}

	facultyIdx, roomIdx, subjectIdx := 0, 0, 0
	for cell := 0; cell < NumCells(); cell++ {
		if cs.BreakAt(cell) != nil {
			continue
		}

		for attempts := 0; attempts < 2*len(cs.Subjects); attempts++ {
			f := facultyIdx % len(cs.Faculty)
			r := roomIdx % len(cs.Rooms)
			s := subjectIdx % len(cs.Subjects)

			if cs.CanTeach(f, s) && !cs.OnLeave(f, cell) &&
				st.subjectDay[cellDay(cell)][s] < fallbackMaxSubjectPerDay {
				st.place(cell, f, r, s)
				break
			}

			subjectIdx++
			if subjectIdx%len(cs.Subjects) == 0 {
				facultyIdx++
				if facultyIdx%len(cs.Faculty) == 0 {
					roomIdx++
				}
			}
		}

		facultyIdx++
		roomIdx++
		subjectIdx++
	}
	return st.assign
}

// FallbackScore converts a metrics score into the degraded-quality score
// reported for fallback timetables: halved and floored.
func FallbackScore(metricsScore float64) float64 {
	score := metricsScore / 2
	if score < fallbackScoreFloor {
		return fallbackScoreFloor
	}
	return score
}

package engine

import (
	"math"

	"github.com/noah-isme/timetable-api/internal/models"
)

// MetricWeights combines the four quality metrics into a single score. The
// defaults are a fixed policy constant, kept configurable rather than
// hard-coded.
type MetricWeights struct {
	Utilization float64
	Balance     float64
	Room        float64
	Diversity   float64
}

// DefaultMetricWeights returns the standard 0.35/0.25/0.25/0.15 weighting.
func DefaultMetricWeights() MetricWeights {
	return MetricWeights{Utilization: 0.35, Balance: 0.25, Room: 0.25, Diversity: 0.15}
}

func (w MetricWeights) isZero() bool {
	return w.Utilization == 0 && w.Balance == 0 && w.Room == 0 && w.Diversity == 0
}

// Evaluate computes the quality record for a completed grid. It is a pure
// function: the same grid and universe always yield the same metrics.
func Evaluate(grid models.Grid, facultyNames, roomNames, subjectNames []string, w MetricWeights) models.TimetableMetrics {
	if w.isZero() {
		w = DefaultMetricWeights()
	}

	m := models.TimetableMetrics{
		TotalSlots:          len(Days) * len(Periods),
		FacultyLoad:         make(map[string]int, len(facultyNames)),
		RoomUsage:           make(map[string]int, len(roomNames)),
		SubjectDistribution: make(map[string]int),
	}
	for _, name := range facultyNames {
		m.FacultyLoad[name] = 0
	}
	for _, name := range roomNames {
		m.RoomUsage[name] = 0
	}

	for _, day := range Days {
		for _, period := range Periods {
			slot := grid[day][period]
			if slot == nil {
				continue
			}
			switch slot.Type {
			case models.SlotBreak:
				m.BreakSlots++
				continue
			case models.SlotPractical:
				m.PracticalSlots++
				m.FilledSlots++
			default:
				m.FilledSlots++
			}
			if slot.Faculty != "" && slot.Faculty != "N/A" {
				m.FacultyLoad[slot.Faculty]++
			}
			if slot.Room != "" && slot.Room != "N/A" {
				m.RoomUsage[slot.Room]++
			}
			if slot.Subject != "" {
				m.SubjectDistribution[slot.Subject]++
			}
		}
	}

	available := m.TotalSlots - m.BreakSlots
	if available > 0 {
		m.UtilizationRate = round2(float64(m.FilledSlots) / float64(available) * 100)
	}

	m.WorkloadBalance = round2(100 - math.Min(workloadStddev(m.FacultyLoad)*10, 100))

	if len(roomNames) > 0 {
		used := 0
		for _, count := range m.RoomUsage {
			if count > 0 {
				used++
			}
		}
		m.RoomUtilization = round2(float64(used) / float64(len(roomNames)) * 100)
	}

	if len(subjectNames) > 0 {
		m.SubjectDiversity = round2(float64(len(m.SubjectDistribution)) / float64(len(subjectNames)) * 100)
	}

	m.Score = round2(m.UtilizationRate*w.Utilization +
		m.WorkloadBalance*w.Balance +
		m.RoomUtilization*w.Room +
		m.SubjectDiversity*w.Diversity)
	return m
}

func workloadStddev(loads map[string]int) float64 {
	if len(loads) == 0 {
		return 0
	}
	sum := 0
	for _, load := range loads {
		sum += load
	}
	mean := float64(sum) / float64(len(loads))

	variance := 0.0
	for _, load := range loads {
		diff := float64(load) - mean
		variance += diff * diff
	}
	return math.Sqrt(variance / float64(len(loads)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/timetable-api/internal/models"
)

func emptyGrid() models.Grid {
	grid := make(models.Grid, len(Days))
	for _, day := range Days {
		row := make(map[string]*models.Slot, len(Periods))
		for _, period := range Periods {
			row[period] = nil
		}
		grid[day] = row
	}
	return grid
}

func TestEvaluateKnownGrid(t *testing.T) {
	grid := emptyGrid()
	grid["Monday"]["9:00-10:00"] = &models.Slot{Subject: "Math", Faculty: "A", Room: "R1", Type: models.SlotRegular}
	grid["Monday"]["10:00-11:00"] = &models.Slot{Subject: "Physics", Faculty: "B", Room: "R2", Type: models.SlotPractical, Duration: 120}
	grid["Monday"]["12:00-1:00"] = &models.Slot{Subject: "BREAK", Faculty: "N/A", Room: "N/A", Type: models.SlotBreak, Name: "Lunch"}

	m := Evaluate(grid, []string{"A", "B"}, []string{"R1", "R2"}, []string{"Math", "Physics"}, DefaultMetricWeights())

	assert.Equal(t, 30, m.TotalSlots)
	assert.Equal(t, 2, m.FilledSlots)
	assert.Equal(t, 1, m.BreakSlots)
	assert.Equal(t, 1, m.PracticalSlots)
	assert.InDelta(t, 6.9, m.UtilizationRate, 0.01, "2 of 29 available cells")
	assert.Equal(t, 100.0, m.WorkloadBalance, "loads are perfectly even")
	assert.Equal(t, 100.0, m.RoomUtilization)
	assert.Equal(t, 100.0, m.SubjectDiversity)
	assert.Equal(t, map[string]int{"A": 1, "B": 1}, m.FacultyLoad)

	expected := round2(m.UtilizationRate*0.35 + 100*0.25 + 100*0.25 + 100*0.15)
	assert.Equal(t, expected, m.Score)
}

func TestEvaluateIsPure(t *testing.T) {
	grid := emptyGrid()
	grid["Tuesday"]["2:00-3:00"] = &models.Slot{Subject: "Math", Faculty: "A", Room: "R1", Type: models.SlotRegular}

	first := Evaluate(grid, []string{"A"}, []string{"R1"}, []string{"Math"}, DefaultMetricWeights())
	second := Evaluate(grid, []string{"A"}, []string{"R1"}, []string{"Math"}, DefaultMetricWeights())

	assert.Equal(t, first, second)
	assert.Equal(t, first.Score, second.Score)
}

func TestEvaluateWorkloadImbalancePenalty(t *testing.T) {
	grid := emptyGrid()
	grid["Monday"]["9:00-10:00"] = &models.Slot{Subject: "Math", Faculty: "A", Room: "R1", Type: models.SlotRegular}
	grid["Monday"]["10:00-11:00"] = &models.Slot{Subject: "Math", Faculty: "A", Room: "R1", Type: models.SlotRegular}
	grid["Tuesday"]["9:00-10:00"] = &models.Slot{Subject: "Math", Faculty: "A", Room: "R1", Type: models.SlotRegular}
	grid["Tuesday"]["10:00-11:00"] = &models.Slot{Subject: "Math", Faculty: "A", Room: "R1", Type: models.SlotRegular}

	m := Evaluate(grid, []string{"A", "B"}, []string{"R1"}, []string{"Math"}, DefaultMetricWeights())

	// Loads 4 and 0: stddev 2, penalty 20.
	assert.Equal(t, 80.0, m.WorkloadBalance)
}

func TestEvaluateCustomWeights(t *testing.T) {
	grid := emptyGrid()
	grid["Monday"]["9:00-10:00"] = &models.Slot{Subject: "Math", Faculty: "A", Room: "R1", Type: models.SlotRegular}

	heavy := Evaluate(grid, []string{"A"}, []string{"R1"}, []string{"Math"}, MetricWeights{Utilization: 1})
	assert.Equal(t, heavy.UtilizationRate, heavy.Score, "score follows the single weighted term")
}

func TestEvaluateEmptyUniverse(t *testing.T) {
	m := Evaluate(emptyGrid(), nil, nil, nil, DefaultMetricWeights())
	assert.Equal(t, 0.0, m.UtilizationRate)
	assert.Equal(t, 0.0, m.RoomUtilization)
	assert.Equal(t, 0.0, m.SubjectDiversity)
	assert.Equal(t, 100.0, m.WorkloadBalance)
}

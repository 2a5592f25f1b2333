package engine

import (
	"strings"
	"time"
)

// Days and Periods are the fixed coordinate system every constraint is
// expressed over. Order is part of the serialization contract.
var Days = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

var Periods = []string{"9:00-10:00", "10:00-11:00", "11:00-12:00", "12:00-1:00", "2:00-3:00", "3:00-4:00"}

// NumCells is the total number of grid cells in a week.
func NumCells() int {
	return len(Days) * len(Periods)
}

func cellIndex(day, period int) int {
	return day*len(Periods) + period
}

func cellDay(cell int) int {
	return cell / len(Periods)
}

func cellPeriod(cell int) int {
	return cell % len(Periods)
}

// dayIndex returns -1 for unknown day names; callers treat that as
// non-matching rather than fatal.
func dayIndex(name string) int {
	for i, day := range Days {
		if strings.EqualFold(day, name) {
			return i
		}
	}
	return -1
}

func periodIndex(label string) int {
	for i, period := range Periods {
		if period == label {
			return i
		}
	}
	return -1
}

// periodStart extracts the start portion of a period label ("9:00-10:00" -> "9:00").
func periodStart(label string) string {
	if idx := strings.Index(label, "-"); idx > 0 {
		return label[:idx]
	}
	return label
}

// dayFromDate maps a calendar date (YYYY-MM-DD) to its weekday name, or ""
// when the date is malformed or falls outside the teaching week.
func dayFromDate(date string) string {
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(date))
	if err != nil {
		return ""
	}
	name := parsed.Weekday().String()
	if dayIndex(name) < 0 {
		return ""
	}
	return name
}

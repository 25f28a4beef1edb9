// Package calendar implements the date arithmetic behind the month view:
// fixed 6x7 grids, month navigation, and per-day event bucketing.
// Everything here is pure and safe for concurrent use.
package calendar

import (
	"sort"
	"time"
)

// WeekStart is the first column of the grid.
const WeekStart = time.Sunday

// GridCells is the fixed size of a month grid: six full weeks.
const GridCells = 42

// Cell is one day slot in a month grid.
type Cell struct {
	Date    time.Time
	InMonth bool
}

// MonthGrid returns the 42-cell grid covering the requested month,
// padded with leading and trailing days from the adjacent months so
// every row is a complete week.
func MonthGrid(year int, month time.Month) []Cell {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(first.Weekday()) - int(WeekStart) + 7) % 7
	start := first.AddDate(0, 0, -offset)

	cells := make([]Cell, GridCells)
	for i := range cells {
		date := start.AddDate(0, 0, i)
		cells[i] = Cell{
			Date:    date,
			InMonth: date.Month() == first.Month() && date.Year() == first.Year(),
		}
	}
	return cells
}

// Navigate offsets (year, month) by delta whole months, wrapping the
// month and adjusting the year on overflow or underflow.
func Navigate(year int, month time.Month, delta int) (int, time.Month) {
	shifted := time.Date(year, month+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	return shifted.Year(), shifted.Month()
}

// DaysInMonth returns the number of days in the given month,
// accounting for leap years.
func DaysInMonth(year int, month time.Month) int {
	// Day zero of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsLeapYear reports whether year has a February 29th.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// EventRef is the minimal projection of a stored event that bucketing
// needs. Refs are expected in creation order; ties on Time preserve it.
type EventRef struct {
	ID   int64
	Date time.Time
	Time string // zero-padded "15:04"
}

// BucketEvents groups the refs that fall inside (year, month) by day of
// month, each day sorted by time of day ascending.
func BucketEvents(refs []EventRef, year int, month time.Month) map[int][]EventRef {
	buckets := make(map[int][]EventRef)
	for _, ref := range refs {
		if ref.Date.Year() != year || ref.Date.Month() != month {
			continue
		}
		day := ref.Date.Day()
		buckets[day] = append(buckets[day], ref)
	}
	for day, items := range buckets {
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Time < items[j].Time
		})
		buckets[day] = items
	}
	return buckets
}

package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMonthGridAlwaysFortyTwoCells(t *testing.T) {
	for year := 2020; year <= 2030; year++ {
		for month := time.January; month <= time.December; month++ {
			cells := MonthGrid(year, month)

			require.Len(t, cells, GridCells)
			require.Equal(t, WeekStart, cells[0].Date.Weekday())
			for i := 1; i < len(cells); i++ {
				require.Equal(t, 24*time.Hour, cells[i].Date.Sub(cells[i-1].Date))
			}
		}
	}
}

func TestMonthGridMarksRealDaysInMonth(t *testing.T) {
	cells := MonthGrid(2024, time.February)

	var first, last *Cell
	for i := range cells {
		if !cells[i].InMonth {
			continue
		}
		if first == nil {
			first = &cells[i]
		}
		last = &cells[i]
	}

	require.NotNil(t, first)
	require.Equal(t, 1, first.Date.Day())
	require.Equal(t, 29, last.Date.Day())
	require.Equal(t, time.February, first.Date.Month())
}

func TestMonthGridLeadingCellsFromPreviousMonth(t *testing.T) {
	// September 2026 starts on a Tuesday, so the grid leads with
	// Sunday and Monday from August.
	cells := MonthGrid(2026, time.September)

	require.False(t, cells[0].InMonth)
	require.Equal(t, time.August, cells[0].Date.Month())
	require.Equal(t, 30, cells[0].Date.Day())
	require.True(t, cells[2].InMonth)
	require.Equal(t, 1, cells[2].Date.Day())
}

func TestNavigateWrapsYearBoundaries(t *testing.T) {
	year, month := Navigate(2024, time.January, -1)
	require.Equal(t, 2023, year)
	require.Equal(t, time.December, month)

	year, month = Navigate(2024, time.December, 1)
	require.Equal(t, 2025, year)
	require.Equal(t, time.January, month)
}

func TestNavigateTwelveMonthsIsOneYear(t *testing.T) {
	for month := time.January; month <= time.December; month++ {
		year, got := Navigate(2024, month, 12)
		require.Equal(t, 2025, year)
		require.Equal(t, month, got)

		year, got = Navigate(2024, month, 0)
		require.Equal(t, 2024, year)
		require.Equal(t, month, got)
	}
}

func TestNavigateLargeDeltas(t *testing.T) {
	year, month := Navigate(2024, time.June, -30)
	require.Equal(t, 2021, year)
	require.Equal(t, time.December, month)
}

func TestDaysInMonthLeapYears(t *testing.T) {
	require.Equal(t, 29, DaysInMonth(2024, time.February))
	require.Equal(t, 28, DaysInMonth(1900, time.February))
	require.Equal(t, 29, DaysInMonth(2000, time.February))
	require.Equal(t, 28, DaysInMonth(2023, time.February))
	require.Equal(t, 31, DaysInMonth(2024, time.January))
	require.Equal(t, 30, DaysInMonth(2024, time.April))
}

func TestIsLeapYear(t *testing.T) {
	require.True(t, IsLeapYear(2024))
	require.True(t, IsLeapYear(2000))
	require.False(t, IsLeapYear(1900))
	require.False(t, IsLeapYear(2023))
}

func TestBucketEventsSortsByTime(t *testing.T) {
	day := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	refs := []EventRef{
		{ID: 1, Date: day, Time: "14:00"},
		{ID: 2, Date: day, Time: "09:00"},
	}

	buckets := BucketEvents(refs, 2024, time.March)

	require.Len(t, buckets, 1)
	require.Equal(t, int64(2), buckets[15][0].ID)
	require.Equal(t, int64(1), buckets[15][1].ID)
}

func TestBucketEventsTieBreaksByCreationOrder(t *testing.T) {
	day := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	refs := []EventRef{
		{ID: 7, Date: day, Time: "12:00"},
		{ID: 3, Date: day, Time: "12:00"},
	}

	buckets := BucketEvents(refs, 2024, time.March)

	require.Equal(t, int64(7), buckets[15][0].ID)
	require.Equal(t, int64(3), buckets[15][1].ID)
}

func TestBucketEventsExcludesOtherMonths(t *testing.T) {
	refs := []EventRef{
		{ID: 1, Date: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), Time: "10:00"},
		{ID: 2, Date: time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), Time: "10:00"},
		{ID: 3, Date: time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC), Time: "10:00"},
	}

	buckets := BucketEvents(refs, 2024, time.March)

	require.Len(t, buckets, 1)
	require.Len(t, buckets[1], 1)
	require.Equal(t, int64(1), buckets[1][0].ID)
}

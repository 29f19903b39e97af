package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseWeekKey(t *testing.T) {
	t.Run("month and week", func(t *testing.T) {
		key := parseWeekKey("Jan-Wk3")
		assert.False(t, key.malformed)
		assert.Equal(t, 0, key.year)
		assert.Equal(t, 1, key.month)
		assert.Equal(t, 3, key.week)
	})

	t.Run("year month and week", func(t *testing.T) {
		key := parseWeekKey("2024-Dec-Wk1")
		assert.False(t, key.malformed)
		assert.Equal(t, 2024, key.year)
		assert.Equal(t, 12, key.month)
		assert.Equal(t, 1, key.week)
	})

	t.Run("case insensitive", func(t *testing.T) {
		key := parseWeekKey("SEPT-WK2")
		assert.False(t, key.malformed)
		assert.Equal(t, 9, key.month)
		assert.Equal(t, 2, key.week)
	})

	t.Run("unknown month sorts first in its year", func(t *testing.T) {
		key := parseWeekKey("Foo-Wk1")
		assert.False(t, key.malformed)
		assert.Equal(t, 0, key.month)
	})

	t.Run("malformed labels", func(t *testing.T) {
		for _, label := range []string{"", "Jan", "Jan-WkX", "x-Jan-Wk1", "a-b-c-d"} {
			assert.True(t, parseWeekKey(label).malformed, "label %q", label)
		}
	})
}

func TestSortWeekLabels(t *testing.T) {
	t.Run("chronological within a year", func(t *testing.T) {
		labels := []string{"Dec-Wk4", "Jan-Wk2", "Feb-Wk1", "Jan-Wk1"}
		SortWeekLabels(labels)
		assert.Equal(t, []string{"Jan-Wk1", "Jan-Wk2", "Feb-Wk1", "Dec-Wk4"}, labels)
	})

	t.Run("year takes precedence", func(t *testing.T) {
		labels := []string{"2025-Jan-Wk1", "2024-Dec-Wk4"}
		SortWeekLabels(labels)
		assert.Equal(t, []string{"2024-Dec-Wk4", "2025-Jan-Wk1"}, labels)
	})

	t.Run("yearless labels precede dated ones", func(t *testing.T) {
		labels := []string{"2024-Jan-Wk1", "Dec-Wk4"}
		SortWeekLabels(labels)
		assert.Equal(t, []string{"Dec-Wk4", "2024-Jan-Wk1"}, labels)
	})

	t.Run("malformed labels sort last", func(t *testing.T) {
		labels := []string{"zzz", "Jan-Wk1", "bogus", "Feb-Wk2"}
		SortWeekLabels(labels)
		assert.Equal(t, []string{"Jan-Wk1", "Feb-Wk2", "bogus", "zzz"}, labels)
	})
}

func TestCompareWeekLabels(t *testing.T) {
	assert.Negative(t, CompareWeekLabels("Jan-Wk1", "Jan-Wk2"))
	assert.Positive(t, CompareWeekLabels("Mar-Wk1", "Feb-Wk4"))
	assert.Zero(t, CompareWeekLabels("Jan-Wk1", "Jan-Wk1"))
}

func TestNextWeeks(t *testing.T) {
	t.Run("continues within a month", func(t *testing.T) {
		labels, err := NextWeeks("Sep-Wk1", 3)
		assert.NoError(t, err)
		assert.Equal(t, []string{"Sep-Wk2", "Sep-Wk3", "Sep-Wk4"}, labels)
	})

	t.Run("rolls into the next month after week four", func(t *testing.T) {
		labels, err := NextWeeks("Sep-Wk4", 5)
		assert.NoError(t, err)
		assert.Equal(t, []string{"Oct-Wk1", "Oct-Wk2", "Oct-Wk3", "Oct-Wk4", "Nov-Wk1"}, labels)
	})

	t.Run("wraps December to January", func(t *testing.T) {
		labels, err := NextWeeks("Dec-Wk3", 2)
		assert.NoError(t, err)
		assert.Equal(t, []string{"Dec-Wk4", "Jan-Wk1"}, labels)
	})

	t.Run("carries the year across the wrap", func(t *testing.T) {
		labels, err := NextWeeks("2024-Dec-Wk4", 2)
		assert.NoError(t, err)
		assert.Equal(t, []string{"2025-Jan-Wk1", "2025-Jan-Wk2"}, labels)
	})

	t.Run("malformed seed", func(t *testing.T) {
		_, err := NextWeeks("bogus", 3)
		assert.Error(t, err)
	})

	t.Run("non-positive count", func(t *testing.T) {
		labels, err := NextWeeks("Sep-Wk1", 0)
		assert.NoError(t, err)
		assert.Empty(t, labels)
	})
}

func TestHorizon(t *testing.T) {
	labels := Horizon(15)
	assert.Len(t, labels, 15)
	assert.Equal(t, "Sep-Wk1", labels[0])
	assert.Equal(t, "Oct-Wk1", labels[4])
	assert.Equal(t, "Dec-Wk3", labels[14])

	assert.Nil(t, Horizon(0))
}

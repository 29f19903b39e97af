package forecast

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var monthNumbers = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "sept": 9, "oct": 10, "nov": 11, "dec": 12,
}

// weekKey is the sortable form of a week label. Labels look like "Jan-Wk3"
// or "2024-Jan-Wk3"; anything else is malformed and sorts after all
// well-formed labels, by raw string.
type weekKey struct {
	year      int
	month     int
	week      int
	malformed bool
	raw       string
}

func parseWeekKey(label string) weekKey {
	key := weekKey{raw: label}

	parts := strings.Split(label, "-")
	var monthPart, weekPart string
	switch len(parts) {
	case 3:
		year, err := strconv.Atoi(parts[0])
		if err != nil {
			key.malformed = true
			return key
		}
		key.year = year
		monthPart, weekPart = parts[1], parts[2]
	case 2:
		monthPart, weekPart = parts[0], parts[1]
	default:
		key.malformed = true
		return key
	}

	// Unknown month tokens sort first within their year rather than
	// failing the parse.
	key.month = monthNumbers[strings.ToLower(monthPart)]

	weekPart = strings.TrimPrefix(strings.ToLower(weekPart), "wk")
	week, err := strconv.Atoi(weekPart)
	if err != nil {
		key.malformed = true
		return key
	}
	key.week = week

	return key
}

func (k weekKey) less(other weekKey) bool {
	if k.malformed != other.malformed {
		return other.malformed
	}
	if k.malformed {
		return k.raw < other.raw
	}
	if k.year != other.year {
		return k.year < other.year
	}
	if k.month != other.month {
		return k.month < other.month
	}
	if k.week != other.week {
		return k.week < other.week
	}
	return k.raw < other.raw
}

// CompareWeekLabels orders two week labels chronologically. It returns a
// negative number when a comes first, zero when the labels are equivalent,
// and a positive number when b comes first.
func CompareWeekLabels(a, b string) int {
	ka, kb := parseWeekKey(a), parseWeekKey(b)
	switch {
	case ka.less(kb):
		return -1
	case kb.less(ka):
		return 1
	default:
		return 0
	}
}

// SortWeekLabels sorts week labels chronologically in place. Malformed
// labels sort last, ordered by their raw strings.
func SortWeekLabels(labels []string) {
	sort.SliceStable(labels, func(i, j int) bool {
		return CompareWeekLabels(labels[i], labels[j]) < 0
	})
}

var monthNames = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// NextWeeks returns n week labels continuing the four-weeks-per-month
// scheme after the given label: the week number cycles 1..4, the month
// advances every four weeks and wraps after December. A year prefix on the
// seed label is carried through the wrap ("2024-Dec-Wk4" is followed by
// "2025-Jan-Wk1").
func NextWeeks(after string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	key := parseWeekKey(after)
	if key.malformed || key.month == 0 {
		return nil, fmt.Errorf("malformed week label %q", after)
	}

	labels := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		idx := key.week + i - 1
		week := idx%4 + 1
		months := key.month - 1 + idx/4
		name := monthNames[months%12]
		if key.year != 0 {
			labels = append(labels, fmt.Sprintf("%d-%s-Wk%d", key.year+months/12, name, week))
		} else {
			labels = append(labels, fmt.Sprintf("%s-Wk%d", name, week))
		}
	}
	return labels, nil
}

// Horizon returns the canonical demo horizon: n labels beginning at
// "Sep-Wk1".
func Horizon(n int) []string {
	if n <= 0 {
		return nil
	}
	labels := []string{"Sep-Wk1"}
	rest, _ := NextWeeks("Sep-Wk1", n-1)
	return append(labels, rest...)
}

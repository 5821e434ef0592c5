package nlq

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// monthsInOrder is scanned in calendar order so month detection is
// deterministic regardless of phrasing.
var monthsInOrder = []struct {
	name  string
	month time.Month
}{
	{"january", time.January}, {"february", time.February},
	{"march", time.March}, {"april", time.April},
	{"may", time.May}, {"june", time.June},
	{"july", time.July}, {"august", time.August},
	{"september", time.September}, {"october", time.October},
	{"november", time.November}, {"december", time.December},
}

var yearPattern = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)

// ExtractDateRange recognizes a small set of informal date phrases and
// returns the inclusive range they denote, or nil when no phrase is
// recognized. Recognized, in priority order: "last month" relative to
// now; "first week" of a named month; a named month with an explicit
// year. A "first week" phrase without a year falls back to refYear.
func ExtractDateRange(question string, now time.Time, refYear int) *DateRange {
	q := strings.ToLower(question)

	if strings.Contains(q, "last month") {
		firstOfCurrent := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		lastOfPrevious := firstOfCurrent.AddDate(0, 0, -1)
		return &DateRange{
			Start: startOfDay(time.Date(lastOfPrevious.Year(), lastOfPrevious.Month(), 1, 0, 0, 0, 0, now.Location())),
			End:   endOfDay(lastOfPrevious),
		}
	}

	month, found := findMonth(q)
	if !found {
		return nil
	}

	year := refYear
	hasYear := false
	if m := yearPattern.FindString(q); m != "" {
		year, _ = strconv.Atoi(m)
		hasYear = true
	}

	if strings.Contains(q, "first week") {
		return &DateRange{
			Start: startOfDay(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)),
			End:   endOfDay(time.Date(year, month, 7, 0, 0, 0, 0, time.UTC)),
		}
	}

	if hasYear {
		first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		last := first.AddDate(0, 1, -1)
		return &DateRange{Start: startOfDay(first), End: endOfDay(last)}
	}

	return nil
}

func findMonth(q string) (time.Month, bool) {
	for _, m := range monthsInOrder {
		if strings.Contains(q, m.name) {
			return m.month, true
		}
	}
	return 0, false
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// endOfDay returns 23:59:59.999 of t's day; the range boundary policy
// is inclusive at millisecond precision.
func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999*int(time.Millisecond), t.Location())
}

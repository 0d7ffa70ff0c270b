package codec

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	naiveLayout    = "2006-01-02T15:04:05"
	monthDayLayout = "01-02T15:04:05"

	// Years outside this range are written with an explicit sign.
	minPlainYear = 0
	maxPlainYear = 9999

	maxYearDigits = 9
)

// FormatTimestamp renders t as the naive ISO-8601 text of its UTC wall clock.
// Sub-second precision is written only when non-zero, as 3, 6 or 9 digits,
// whichever is the shortest exact form. Years before 0 or after 9999 carry a
// sign and at least four digits, e.g. "+10000-01-01T00:00:00".
func FormatTimestamp(t time.Time) string {
	t = t.UTC()

	var base string
	if y := t.Year(); y < minPlainYear || y > maxPlainYear {
		base = fmt.Sprintf("%+05d-%s", y, t.Format(monthDayLayout))
	} else {
		base = t.Format(naiveLayout)
	}

	ns := t.Nanosecond()
	switch {
	case ns == 0:
		return base
	case ns%1_000_000 == 0:
		return fmt.Sprintf("%s.%03d", base, ns/1_000_000)
	case ns%1_000 == 0:
		return fmt.Sprintf("%s.%06d", base, ns/1_000)
	default:
		return fmt.Sprintf("%s.%09d", base, ns)
	}
}

// FormatRFC3339 renders t in UTC with an explicit "+00:00" offset, the form
// used when deriving identifiers from a creation date.
func FormatRFC3339(t time.Time) string {
	return FormatTimestamp(t) + "+00:00"
}

// ParseTimestamp parses the output of FormatTimestamp. The result is in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	if s != "" && (s[0] == '+' || s[0] == '-') {
		return parseSignedYear(s)
	}
	// time.Parse accepts a fractional second after the seconds field even
	// though the layout does not name one.
	return time.ParseInLocation(naiveLayout, s, time.UTC)
}

func parseSignedYear(s string) (time.Time, error) {
	digits, rest, ok := strings.Cut(s[1:], "-")
	if !ok || len(digits) < 4 || len(digits) > maxYearDigits || strings.Trim(digits, "0123456789") != "" {
		return time.Time{}, fmt.Errorf("invalid signed year in %q", s)
	}

	year, err := strconv.Atoi(digits)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid signed year in %q: %w", s, err)
	}
	if s[0] == '-' {
		year = -year
	}

	// Parsed against year 0, a leap year, so Feb 29 is checked below.
	md, err := time.ParseInLocation(monthDayLayout, rest, time.UTC)
	if err != nil {
		return time.Time{}, err
	}

	t := time.Date(year, md.Month(), md.Day(), md.Hour(), md.Minute(), md.Second(), md.Nanosecond(), time.UTC)
	if t.Month() != md.Month() {
		return time.Time{}, fmt.Errorf("day %d out of range for %s %d", md.Day(), md.Month(), year)
	}
	return t, nil
}

package ledger

import (
	"fmt"
	"time"
)

// Date is a calendar date with no time component. Persisted as fixed-width
// YYYYMMDD text or, from older databases, a Unix epoch integer.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates a time to its calendar date in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{Year: y, Month: m, Day: d}
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// String renders the fixed-width YYYYMMDD encoding.
func (d Date) String() string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, int(d.Month), d.Day)
}

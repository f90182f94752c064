// internal/domain/invoice/period.go
package invoice

import "time"

// Period identifies a billing period and the due date computed for it.
type Period struct {
	Month   int
	Year    int
	DueDate time.Time
}

// ComputePeriod maps a reference date and a tenant's billing cycle start day
// to the billing period and due date. The period is the reference date's
// calendar month; the due date is the cycle start day of the following month,
// clamped to that month's last day when the start day exceeds its length
// (e.g. start day 30 in February). Deterministic and side-effect free so that
// repeated generation runs agree on both the idempotency key and the due date.
func ComputePeriod(referenceDate time.Time, cycleStartDay int) Period {
	ref := referenceDate.UTC()

	nextMonth := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)

	day := cycleStartDay
	if last := lastDayOfMonth(nextMonth.Year(), nextMonth.Month()); day > last {
		day = last
	}

	return Period{
		Month:   int(ref.Month()),
		Year:    ref.Year(),
		DueDate: time.Date(nextMonth.Year(), nextMonth.Month(), day, 0, 0, 0, 0, time.UTC),
	}
}

func lastDayOfMonth(year int, month time.Month) int {
	// Day 0 of the following month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

package billing

import (
	"fmt"
	"time"

	"github.com/rentdesk/backend/internal/domain/shared"
)

// Period identifies one billable calendar month of a contract.
// Its key form is "YYYY-MM" (zero-padded), e.g. "2024-02".
type Period struct {
	Year  int
	Month time.Month
}

// NewPeriod creates a period after validating the month
func NewPeriod(year int, month time.Month) (Period, error) {
	if month < time.January || month > time.December {
		return Period{}, shared.NewDomainError("INVALID_PERIOD", fmt.Sprintf("Month %d is out of range", month))
	}
	if year < 1 {
		return Period{}, shared.NewDomainError("INVALID_PERIOD", fmt.Sprintf("Year %d is out of range", year))
	}
	return Period{Year: year, Month: month}, nil
}

// PeriodOf returns the period containing the given date
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod parses a "YYYY-MM" key
func ParsePeriod(key string) (Period, error) {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return Period{}, shared.NewDomainError("INVALID_PERIOD", fmt.Sprintf("Period %q is not in YYYY-MM form", key))
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

// Key returns the "YYYY-MM" representation
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// String returns the period key
func (p Period) String() string {
	return p.Key()
}

// Next returns the following calendar month
func (p Period) Next() Period {
	if p.Month == time.December {
		return Period{Year: p.Year + 1, Month: time.January}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// Before reports whether p precedes other
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

// DaysIn returns the number of days in the period's month
func (p Period) DaysIn() int {
	// day 0 of the next month is the last day of this month
	return time.Date(p.Year, p.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DueDate returns the calendar due date for this period given the contract's
// due day. Due days beyond the month's length are clamped to the last day of
// the same month (a dueDay=31 contract bills on Feb 28/29), never rolled
// into the next month.
func (p Period) DueDate(dueDay int) time.Time {
	if dueDay < 1 {
		dueDay = 1
	}
	if max := p.DaysIn(); dueDay > max {
		dueDay = max
	}
	return time.Date(p.Year, p.Month, dueDay, 0, 0, 0, 0, time.UTC)
}

// PeriodsBetween returns every calendar month from startDate's month through
// endDate's month inclusive, in order. A contract spanning part of a month
// still bills that whole month, so a range inside a single month yields
// exactly one period. Callers must reject inverted ranges beforehand.
func PeriodsBetween(startDate, endDate time.Time) []Period {
	start := PeriodOf(startDate)
	end := PeriodOf(endDate)

	periods := make([]Period, 0, 12)
	for p := start; !end.Before(p); p = p.Next() {
		periods = append(periods, p)
	}
	return periods
}

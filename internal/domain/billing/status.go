package billing

import "time"

// InstallmentStatus represents the lifecycle status of an installment
type InstallmentStatus string

const (
	StatusUpcoming    InstallmentStatus = "UPCOMING"     // due date in the future
	StatusDueToday    InstallmentStatus = "DUE_TODAY"    // due date is today
	StatusOverdue     InstallmentStatus = "OVERDUE"      // due date passed, unpaid
	StatusInAgreement InstallmentStatus = "IN_AGREEMENT" // manual override, suppresses overdue escalation
	StatusPartial     InstallmentStatus = "PARTIAL"      // partially paid
	StatusPaid        InstallmentStatus = "PAID"         // fully paid for the billing cycle
)

// IsValid checks if the status is a valid InstallmentStatus
func (s InstallmentStatus) IsValid() bool {
	switch s {
	case StatusUpcoming, StatusDueToday, StatusOverdue,
		StatusInAgreement, StatusPartial, StatusPaid:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s InstallmentStatus) String() string {
	return string(s)
}

// IsDateDerived returns true for statuses that are pure functions of
// (dueDate, today). Only these may be rewritten by the daily recompute sweep.
func (s InstallmentStatus) IsDateDerived() bool {
	return s == StatusUpcoming || s == StatusDueToday || s == StatusOverdue
}

// IsPaymentDerived returns true for statuses set by payment application.
// These take precedence over date-derived recomputation.
func (s InstallmentStatus) IsPaymentDerived() bool {
	return s == StatusPartial || s == StatusPaid
}

// DateDerivedStatuses lists the statuses eligible for the recompute sweep
func DateDerivedStatuses() []InstallmentStatus {
	return []InstallmentStatus{StatusUpcoming, StatusDueToday, StatusOverdue}
}

// dayNumber collapses a timestamp to a comparable whole-calendar-day integer.
// Comparing these avoids timezone/millisecond drift that subtracting two
// timestamps would introduce.
func dayNumber(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// ClassifyDueDate derives the date-relative status of an installment from its
// due date and a reference "today". Both are truncated to whole calendar days,
// so the result is invariant to the time-of-day of either input.
//
// The classifier never inspects payment or agreement state; callers must
// short-circuit PAID/PARTIAL/IN_AGREEMENT before applying the result.
//
// Batch jobs pass the UTC calendar day (server-side daily cutover) while
// interactive paths pass the local day (user-facing "today"). That divergence
// is intentional and must not be unified silently.
func ClassifyDueDate(dueDate, referenceDate time.Time) InstallmentStatus {
	due := dayNumber(dueDate)
	today := dayNumber(referenceDate)

	switch {
	case due > today:
		return StatusUpcoming
	case due == today:
		return StatusDueToday
	default:
		return StatusOverdue
	}
}

package timesheet

import (
	"time"

	"clubhouse/internal/domain/person"
	"clubhouse/internal/domain/position"
)

const (
	ReviewPending  = "pending"
	ReviewApproved = "approved"
	ReviewRejected = "rejected"
	ReviewVerified = "verified"
)

// Shift is a single on-duty/off-duty interval worked by a person in one
// position. OffDuty is nil while the person is still on duty.
type Shift struct {
	ID           int64
	PersonID     int64
	PositionID   int64
	OnDuty       time.Time
	OffDuty      *time.Time
	ReviewStatus string

	Person   person.Summary
	Position position.Summary
}

// Verified reports whether the shift has passed payroll review.
func (s Shift) Verified() bool {
	return s.ReviewStatus == ReviewVerified || s.ReviewStatus == ReviewApproved
}

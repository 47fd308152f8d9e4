package position

import "time"

type Position struct {
	ID                       int64  `json:"id"`
	Title                    string `json:"title"`
	Paycode                  string `json:"paycode"`
	NoPayrollHoursAdjustment bool   `json:"no_payroll_hours_adjustment"`
	Active                   bool   `json:"active"`
}

// Summary carries the position columns joined onto timesheet rows.
type Summary struct {
	ID                       int64
	Title                    string
	Paycode                  string
	NoPayrollHoursAdjustment bool
}

// CreditRate is a pay-rate-per-hour valid over [StartTime, EndTime).
// EndTime must be after StartTime. Windows for the same position may
// overlap; credit computation sums every matching window, so overlapping
// windows stack.
type CreditRate struct {
	ID             int64     `json:"id"`
	PositionID     int64     `json:"position_id"`
	CreditsPerHour float64   `json:"credits_per_hour"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	Description    string    `json:"description"`
}

package person

import "time"

const (
	StatusActive            = "active"
	StatusAlpha             = "alpha"
	StatusAuditor           = "auditor"
	StatusBonked            = "bonked"
	StatusDeceased          = "deceased"
	StatusDismissed         = "dismissed"
	StatusInactive          = "inactive"
	StatusInactiveExtension = "inactive extension"
	StatusNonRanger         = "non ranger"
	StatusPastProspective   = "past prospective"
	StatusProspective       = "prospective"
	StatusResigned          = "resigned"
	StatusRetired           = "retired"
	StatusSuspended         = "suspended"
	StatusUberbonked        = "uberbonked"
)

type Person struct {
	ID         int64     `json:"id"`
	Callsign   string    `json:"callsign"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Status     string    `json:"status"`
	EmployeeID string    `json:"employee_id"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	Country    string    `json:"country"`
	LMSID      string    `json:"lms_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Summary carries the person columns joined onto payroll and timesheet rows.
type Summary struct {
	ID         int64
	Callsign   string
	FirstName  string
	LastName   string
	Email      string
	EmployeeID string
}

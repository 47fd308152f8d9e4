package payroll

import "time"

type ReportOptions struct {
	Start                time.Time
	End                  time.Time
	BreakAfterHours      int
	BreakDurationMinutes int
	PositionIDs          []int64
}

type ShiftEntry struct {
	ID            int64      `json:"id"`
	PositionID    int64      `json:"position_id"`
	PositionTitle string     `json:"position_title"`
	Paycode       string     `json:"paycode"`
	Verified      bool       `json:"verified"`
	OrigOnDuty    string     `json:"orig_on_duty"`
	OrigOffDuty   string     `json:"orig_off_duty"`
	OrigDuration  int64      `json:"orig_duration"`
	OnDuty        string     `json:"on_duty"`
	OffDuty       string     `json:"off_duty"`
	Duration      int64      `json:"duration"`
	StillOnDuty   bool       `json:"still_on_duty,omitempty"`
	MealAdjusted  *MealBreak `json:"meal_adjusted,omitempty"`
	Notes         string     `json:"notes"`
}

type PersonGroup struct {
	ID         int64        `json:"id"`
	Callsign   string       `json:"callsign"`
	FirstName  string       `json:"first_name"`
	LastName   string       `json:"last_name"`
	Email      string       `json:"email"`
	EmployeeID string       `json:"employee_id"`
	Shifts     []ShiftEntry `json:"shifts"`
}

type Report struct {
	People           []PersonGroup `json:"people"`
	PeopleWithoutIDs []PersonGroup `json:"people_without_ids"`
}

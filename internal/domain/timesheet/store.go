package timesheet

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// ShiftsForPeriod returns every shift for the given positions that touches
// the pay period, ordered by on-duty time, joined with person and position
// summary columns.
//
// The WHERE clause is a deliberate OR of four boundary conditions (shift
// contains the period, shift within the period, shift ends within the
// period, shift begins within the period) so that shifts touching a period
// boundary exactly are always included. Do not collapse it into a generic
// overlap test.
func (s *Store) ShiftsForPeriod(ctx context.Context, positionIDs []int64, start, end time.Time) ([]Shift, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT t.id, t.person_id, t.position_id, t.on_duty, t.off_duty, t.review_status,
           p.callsign, p.first_name, p.last_name, p.email, COALESCE(p.employee_id, ''),
           pos.title, COALESCE(pos.paycode, ''), pos.no_payroll_hours_adjustment
    FROM timesheet t
    JOIN person p ON p.id = t.person_id
    JOIN position pos ON pos.id = t.position_id
    WHERE t.position_id = ANY($1)
      AND (
        (t.on_duty <= $2 AND t.off_duty >= $3)
        OR (t.on_duty >= $2 AND t.off_duty <= $3)
        OR (t.off_duty > $2 AND t.off_duty <= $3)
        OR (t.on_duty >= $2 AND t.on_duty < $3)
      )
    ORDER BY t.on_duty
  `, positionIDs, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shifts []Shift
	for rows.Next() {
		var sh Shift
		if err := rows.Scan(&sh.ID, &sh.PersonID, &sh.PositionID, &sh.OnDuty, &sh.OffDuty, &sh.ReviewStatus,
			&sh.Person.Callsign, &sh.Person.FirstName, &sh.Person.LastName, &sh.Person.Email, &sh.Person.EmployeeID,
			&sh.Position.Title, &sh.Position.Paycode, &sh.Position.NoPayrollHoursAdjustment); err != nil {
			return nil, err
		}
		sh.Person.ID = sh.PersonID
		sh.Position.ID = sh.PositionID
		shifts = append(shifts, sh)
	}
	return shifts, nil
}

// FindYears returns the distinct years the person worked at least one
// shift, ascending.
func (s *Store) FindYears(ctx context.Context, personID int64) ([]int, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT DISTINCT EXTRACT(YEAR FROM on_duty)::int AS year
    FROM timesheet
    WHERE person_id = $1
    ORDER BY year
  `, personID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var year int
		if err := rows.Scan(&year); err != nil {
			return nil, err
		}
		years = append(years, year)
	}
	return years, nil
}

// ListForPersonYear returns a person's shifts for a year, ordered by
// on-duty time.
func (s *Store) ListForPersonYear(ctx context.Context, personID int64, year int) ([]Shift, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT t.id, t.person_id, t.position_id, t.on_duty, t.off_duty, t.review_status,
           p.callsign, p.first_name, p.last_name, p.email, COALESCE(p.employee_id, ''),
           pos.title, COALESCE(pos.paycode, ''), pos.no_payroll_hours_adjustment
    FROM timesheet t
    JOIN person p ON p.id = t.person_id
    JOIN position pos ON pos.id = t.position_id
    WHERE t.person_id = $1
      AND EXTRACT(YEAR FROM t.on_duty) = $2
    ORDER BY t.on_duty
  `, personID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shifts []Shift
	for rows.Next() {
		var sh Shift
		if err := rows.Scan(&sh.ID, &sh.PersonID, &sh.PositionID, &sh.OnDuty, &sh.OffDuty, &sh.ReviewStatus,
			&sh.Person.Callsign, &sh.Person.FirstName, &sh.Person.LastName, &sh.Person.Email, &sh.Person.EmployeeID,
			&sh.Position.Title, &sh.Position.Paycode, &sh.Position.NoPayrollHoursAdjustment); err != nil {
			return nil, err
		}
		sh.Person.ID = sh.PersonID
		sh.Position.ID = sh.PositionID
		shifts = append(shifts, sh)
	}
	return shifts, nil
}

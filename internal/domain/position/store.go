package position

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) List(ctx context.Context) ([]Position, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, title, COALESCE(paycode, ''), no_payroll_hours_adjustment, active
    FROM position
    ORDER BY title
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []Position
	for rows.Next() {
		var p Position
		if err := rows.Scan(&p.ID, &p.Title, &p.Paycode, &p.NoPayrollHoursAdjustment, &p.Active); err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, nil
}

const creditRateColumns = `
    SELECT id, position_id, credits_per_hour, start_time, end_time, COALESCE(description, '')
    FROM position_credit
`

func scanCreditRates(rows pgx.Rows) ([]CreditRate, error) {
	defer rows.Close()
	var rates []CreditRate
	for rows.Next() {
		var r CreditRate
		if err := rows.Scan(&r.ID, &r.PositionID, &r.CreditsPerHour, &r.StartTime, &r.EndTime, &r.Description); err != nil {
			return nil, err
		}
		rates = append(rates, r)
	}
	return rates, nil
}

// RatesForYearPosition returns the credit rates for one position whose start
// and end both fall within the given year, ordered by start time.
func (s *Store) RatesForYearPosition(ctx context.Context, year int, positionID int64) ([]CreditRate, error) {
	rows, err := s.DB.Query(ctx, creditRateColumns+`
    WHERE position_id = $1
      AND EXTRACT(YEAR FROM start_time) = $2
      AND EXTRACT(YEAR FROM end_time) = $2
    ORDER BY start_time
  `, positionID, year)
	if err != nil {
		return nil, err
	}
	return scanCreditRates(rows)
}

// RatesForYearPositions is the batched form used by cache warming.
func (s *Store) RatesForYearPositions(ctx context.Context, year int, positionIDs []int64) ([]CreditRate, error) {
	rows, err := s.DB.Query(ctx, creditRateColumns+`
    WHERE position_id = ANY($1)
      AND EXTRACT(YEAR FROM start_time) = $2
      AND EXTRACT(YEAR FROM end_time) = $2
    ORDER BY start_time
  `, positionIDs, year)
	if err != nil {
		return nil, err
	}
	return scanCreditRates(rows)
}

// RatesForYear returns every credit rate effective in the year, regardless
// of position.
func (s *Store) RatesForYear(ctx context.Context, year int) ([]CreditRate, error) {
	rows, err := s.DB.Query(ctx, creditRateColumns+`
    WHERE EXTRACT(YEAR FROM start_time) = $1
      AND EXTRACT(YEAR FROM end_time) = $1
    ORDER BY start_time
  `, year)
	if err != nil {
		return nil, err
	}
	return scanCreditRates(rows)
}

// AllRates returns the entire rate table with no year filter. The sanity
// checker needs this; year-filtered queries can never return a window that
// spans years or is inverted.
func (s *Store) AllRates(ctx context.Context) ([]CreditRate, error) {
	rows, err := s.DB.Query(ctx, creditRateColumns+" ORDER BY position_id, start_time")
	if err != nil {
		return nil, err
	}
	return scanCreditRates(rows)
}

func (s *Store) CreateCreditRate(ctx context.Context, rate CreditRate) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, `
    INSERT INTO position_credit (position_id, credits_per_hour, start_time, end_time, description)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, rate.PositionID, rate.CreditsPerHour, rate.StartTime, rate.EndTime, rate.Description).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) DeleteCreditRate(ctx context.Context, id int64) error {
	_, err := s.DB.Exec(ctx, "DELETE FROM position_credit WHERE id = $1", id)
	return err
}

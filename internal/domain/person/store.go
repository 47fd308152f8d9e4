package person

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Get(ctx context.Context, id int64) (Person, error) {
	var p Person
	err := s.DB.QueryRow(ctx, `
    SELECT id, callsign, first_name, last_name, email, status,
           COALESCE(employee_id, ''), COALESCE(city, ''), COALESCE(state, ''),
           COALESCE(country, ''), COALESCE(lms_id, ''), created_at
    FROM person
    WHERE id = $1
  `, id).Scan(&p.ID, &p.Callsign, &p.FirstName, &p.LastName, &p.Email, &p.Status,
		&p.EmployeeID, &p.City, &p.State, &p.Country, &p.LMSID, &p.CreatedAt)
	return p, err
}

func (s *Store) Search(ctx context.Context, query string, limit int) ([]Person, error) {
	if limit <= 0 {
		limit = 25
	}
	rows, err := s.DB.Query(ctx, `
    SELECT id, callsign, first_name, last_name, email, status,
           COALESCE(employee_id, ''), COALESCE(city, ''), COALESCE(state, ''),
           COALESCE(country, ''), COALESCE(lms_id, ''), created_at
    FROM person
    WHERE callsign ILIKE '%' || $1 || '%'
       OR last_name ILIKE '%' || $1 || '%'
       OR email ILIKE '%' || $1 || '%'
    ORDER BY callsign
    LIMIT $2
  `, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var people []Person
	for rows.Next() {
		var p Person
		if err := rows.Scan(&p.ID, &p.Callsign, &p.FirstName, &p.LastName, &p.Email, &p.Status,
			&p.EmployeeID, &p.City, &p.State, &p.Country, &p.LMSID, &p.CreatedAt); err != nil {
			return nil, err
		}
		people = append(people, p)
	}
	return people, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id int64, status string) error {
	_, err := s.DB.Exec(ctx, "UPDATE person SET status = $1 WHERE id = $2", status, id)
	return err
}

func (s *Store) UpdateLMSID(ctx context.Context, id int64, lmsID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE person SET lms_id = $1 WHERE id = $2", lmsID, id)
	return err
}

package training

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

// FindForYear lists everyone who completed online training in a year.
func (s *Store) FindForYear(ctx context.Context, year int, personID int64) ([]Completion, error) {
	query := `
    SELECT ot.id, ot.person_id, p.callsign, ot.course_type, ot.completed_at
    FROM person_online_training ot
    JOIN person p ON p.id = ot.person_id
    WHERE EXTRACT(YEAR FROM ot.completed_at) = $1
  `
	args := []any{year}
	if personID != 0 {
		query += " AND ot.person_id = $2"
		args = append(args, personID)
	}
	query += " ORDER BY ot.completed_at"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var completions []Completion
	for rows.Next() {
		var c Completion
		if err := rows.Scan(&c.ID, &c.PersonID, &c.Callsign, &c.CourseType, &c.CompletedAt); err != nil {
			return nil, err
		}
		completions = append(completions, c)
	}
	return completions, nil
}

func (s *Store) MarkCompleted(ctx context.Context, personID int64, courseType string, completedAt time.Time) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, `
    INSERT INTO person_online_training (person_id, course_type, completed_at)
    VALUES ($1,$2,$3)
    RETURNING id
  `, personID, courseType, completedAt).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

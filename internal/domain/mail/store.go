package mail

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

type Query struct {
	PersonID int64
	Year     int
	Page     int
	PageSize int
}

func (s *Store) List(ctx context.Context, q Query) ([]LogEntry, int, error) {
	if q.PageSize <= 0 {
		q.PageSize = 50
	}
	if q.Page <= 0 {
		q.Page = 1
	}

	where := " WHERE 1=1"
	args := []any{}
	if q.PersonID != 0 {
		args = append(args, q.PersonID)
		where += " AND person_id = $1"
	}
	if q.Year != 0 {
		args = append(args, q.Year)
		where += " AND EXTRACT(YEAR FROM created_at) = $" + itoa(len(args))
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM mail_log"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
    SELECT id, person_id, email, COALESCE(message_id, ''), COALESCE(subject, ''), status, created_at
    FROM mail_log` + where + `
    ORDER BY created_at DESC
    LIMIT $` + itoa(len(args)+1) + ` OFFSET $` + itoa(len(args)+2)
	args = append(args, q.PageSize, (q.Page-1)*q.PageSize)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.ID, &e.PersonID, &e.Email, &e.MessageID, &e.Subject, &e.Status, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, nil
}

func (s *Store) Record(ctx context.Context, personID *int64, email, messageID, subject string) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO mail_log (person_id, email, message_id, subject, status)
    VALUES ($1,$2,$3,$4,$5)
  `, personID, email, messageID, subject, StatusSent)
	return err
}

func (s *Store) RetrieveStats(ctx context.Context, personID int64) (Stats, error) {
	stats := Stats{Counts: map[string]int{}}

	where := ""
	args := []any{}
	if personID != 0 {
		where = " WHERE person_id = $1"
		args = append(args, personID)
	}

	rows, err := s.DB.Query(ctx, `
    SELECT DISTINCT EXTRACT(YEAR FROM created_at)::int AS year
    FROM mail_log`+where+`
    ORDER BY year
  `, args...)
	if err != nil {
		return stats, err
	}
	for rows.Next() {
		var year int
		if err := rows.Scan(&year); err != nil {
			rows.Close()
			return stats, err
		}
		stats.Years = append(stats.Years, year)
	}
	rows.Close()

	rows, err = s.DB.Query(ctx, `
    SELECT status, COUNT(1)
    FROM mail_log`+where+`
    GROUP BY status
  `, args...)
	if err != nil {
		return stats, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return stats, err
		}
		stats.Counts[status] = count
	}
	return stats, nil
}

func (s *Store) MarkStatusForEmail(ctx context.Context, email, status string) error {
	_, err := s.DB.Exec(ctx, "UPDATE mail_log SET status = $1 WHERE email = $2 AND status = $3", status, email, StatusSent)
	return err
}

func itoa(value int) string {
	return strconv.Itoa(value)
}

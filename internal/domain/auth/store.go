package auth

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

type LoginRecord struct {
	PersonID     int64
	Callsign     string
	Status       string
	PasswordHash string
	Admin        bool
}

func (s *Store) FindForLogin(ctx context.Context, email string) (LoginRecord, error) {
	var rec LoginRecord
	err := s.DB.QueryRow(ctx, `
    SELECT id, callsign, status, COALESCE(password, ''), admin
    FROM person
    WHERE email = $1
  `, email).Scan(&rec.PersonID, &rec.Callsign, &rec.Status, &rec.PasswordHash, &rec.Admin)
	return rec, err
}

func (s *Store) UpdatePassword(ctx context.Context, personID int64, hash string) error {
	_, err := s.DB.Exec(ctx, "UPDATE person SET password = $1 WHERE id = $2", hash, personID)
	return err
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

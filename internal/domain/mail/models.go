package mail

import "time"

const (
	StatusSent      = "sent"
	StatusBounced   = "bounced"
	StatusComplaint = "complaint"
)

type LogEntry struct {
	ID        int64     `json:"id"`
	PersonID  *int64    `json:"person_id"`
	Email     string    `json:"email"`
	MessageID string    `json:"message_id"`
	Subject   string    `json:"subject"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type Stats struct {
	Years  []int          `json:"years"`
	Counts map[string]int `json:"counts"`
}

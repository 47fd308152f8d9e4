package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
)

const (
	NotificationBounce    = "Bounce"
	NotificationComplaint = "Complaint"
)

type Recipient struct {
	EmailAddress string `json:"emailAddress"`
}

type bounceDetail struct {
	BounceType        string      `json:"bounceType"`
	BouncedRecipients []Recipient `json:"bouncedRecipients"`
}

type complaintDetail struct {
	ComplainedRecipients []Recipient `json:"complainedRecipients"`
}

// Notification is the delivery-feedback payload posted by the mail
// provider. Signature validation happens at the edge; payloads arrive here
// already verified.
type Notification struct {
	NotificationType string           `json:"notificationType"`
	Bounce           *bounceDetail    `json:"bounce,omitempty"`
	Complaint        *complaintDetail `json:"complaint,omitempty"`
}

func ParseNotification(data []byte) (Notification, error) {
	var n Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return Notification{}, fmt.Errorf("malformed notification: %w", err)
	}

	switch n.NotificationType {
	case NotificationBounce:
		if n.Bounce == nil {
			return Notification{}, fmt.Errorf("bounce notification missing bounce detail")
		}
	case NotificationComplaint:
		if n.Complaint == nil {
			return Notification{}, fmt.Errorf("complaint notification missing complaint detail")
		}
	default:
		return Notification{}, fmt.Errorf("unsupported notification type %q", n.NotificationType)
	}
	return n, nil
}

// Recipients returns the affected email addresses.
func (n Notification) Recipients() []string {
	var out []string
	switch n.NotificationType {
	case NotificationBounce:
		for _, r := range n.Bounce.BouncedRecipients {
			out = append(out, r.EmailAddress)
		}
	case NotificationComplaint:
		for _, r := range n.Complaint.ComplainedRecipients {
			out = append(out, r.EmailAddress)
		}
	}
	return out
}

// StatusMarker updates the delivery status of logged mail; *Store
// satisfies it.
type StatusMarker interface {
	MarkStatusForEmail(ctx context.Context, email, status string) error
}

type Service struct {
	store StatusMarker
}

func NewService(store StatusMarker) *Service {
	return &Service{store: store}
}

// ProcessNotification marks every affected address in the mail log. Bounce
// and complaint notifications are recorded; anything else is rejected.
func (s *Service) ProcessNotification(ctx context.Context, data []byte) error {
	notification, err := ParseNotification(data)
	if err != nil {
		return err
	}

	status := StatusBounced
	if notification.NotificationType == NotificationComplaint {
		status = StatusComplaint
	}

	for _, email := range notification.Recipients() {
		if err := s.store.MarkStatusForEmail(ctx, email, status); err != nil {
			return err
		}
		log.Printf("mail %s recorded for %s", status, email)
	}
	return nil
}

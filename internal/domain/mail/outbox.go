package mail

import (
	"context"

	"github.com/google/uuid"
)

// Sender delivers a plain-text message. The platform SMTP mailer
// satisfies it.
type Sender interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// DeliveryLog records outbound deliveries; *Store satisfies it.
type DeliveryLog interface {
	Record(ctx context.Context, personID *int64, email, messageID, subject string) error
}

// Outbox is the outbound-mail path. Every delivery is recorded in the
// mail log at send time, so bounce notifications arriving later find the
// address they reference. Failed sends are not logged.
type Outbox struct {
	sender Sender
	log    DeliveryLog
}

func NewOutbox(sender Sender, log DeliveryLog) *Outbox {
	return &Outbox{sender: sender, log: log}
}

func (o *Outbox) Send(ctx context.Context, personID *int64, from, to, subject, body string) error {
	if err := o.sender.Send(ctx, from, to, subject, body); err != nil {
		return err
	}
	return o.log.Record(ctx, personID, to, uuid.NewString(), subject)
}

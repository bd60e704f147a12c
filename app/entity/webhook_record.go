package entity

import "time"

const (
	WebhookStatusProcessed int32 = 10
	WebhookStatusRejected  int32 = 20
)

type WebhookRecord struct {
	ID uint64

	PurchaseID *uint64

	Provider    string
	EventID     string
	EventType   string
	Signature   string
	PayloadJSON string
	Status      int32
	Error       *string

	CreatedAt time.Time
}

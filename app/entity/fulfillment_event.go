package entity

import "time"

type FulfillmentEvent struct {
	ID uint64

	PurchaseID uint64
	SessionID  string

	EventType string
	Detail    *string

	CreatedAt time.Time
}

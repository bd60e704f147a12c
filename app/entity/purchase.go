package entity

import "time"

// PurchaseStatusCompleted is the only status this service ever writes.
// Refunds and disputes are handled outside the fulfillment subsystem.
const PurchaseStatusCompleted = "completed"

type Purchase struct {
	ID uint64

	// SessionID is the processor checkout-session identifier and the
	// idempotency key: the purchases table carries a unique index on it.
	SessionID      string
	TransactionRef string
	Provider       string

	// BuyerID is nil for guest purchases, which are identified only by
	// the contact email snapshot.
	BuyerID        *string
	EventID        string
	PhotographerID string

	GrossCents    int64
	PlatformCents int64
	SellerCents   int64
	Currency      string

	Status       string
	ContactEmail string

	CompletedAt time.Time
	CreatedAt   time.Time
}

type PurchaseItem struct {
	ID         uint64
	PurchaseID uint64
	PhotoID    string
	CreatedAt  time.Time
}

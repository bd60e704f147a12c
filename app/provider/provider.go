package provider

import (
	"context"
	"errors"
	"time"
)

var (
	ErrSessionNotFound = errors.New("checkout session not found")
	ErrUnavailable     = errors.New("payment processor unavailable")
)

// Session is the processor's authoritative view of one checkout attempt.
// Metadata is only trustworthy once Paid is true.
type Session struct {
	ID             string
	Paid           bool
	AmountCents    int64
	Currency       string
	TransactionRef string
	CustomerEmail  string
	Metadata       map[string]string
}

// WebhookEvent is a verified, parsed completion signal from the processor.
type WebhookEvent struct {
	EventID   string
	EventType string
	SessionID string
	Completed bool
}

type Provider interface {
	Name() string
	GetSession(ctx context.Context, sessionID string) (*Session, error)
	ListPaidSessions(ctx context.Context, since time.Time, limit int) ([]*Session, error)
	VerifyAndParseWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error)
}

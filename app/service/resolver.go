package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vibast-solutions/ms-go-purchases/app/provider"
)

// guestBuyerSentinel is what checkout-session creation writes into the
// buyer_id metadata key for unauthenticated buyers.
const guestBuyerSentinel = "guest"

// ResolvedSession is the normalized, validated view of a paid checkout
// session, ready for the purchase writer.
type ResolvedSession struct {
	SessionID      string
	TransactionRef string
	Provider       string
	AmountCents    int64
	Currency       string
	Paid           bool

	BuyerID        *string
	EventID        string
	PhotographerID string
	PhotoIDs       []string
	ContactEmail   string
}

func (s *FulfillmentService) resolveSession(ctx context.Context, p provider.Provider, sessionID string) (*ResolvedSession, error) {
	ctx, cancel := context.WithTimeout(ctx, s.fulfillmentCfg.ResolveTimeout)
	defer cancel()

	session, err := p.GetSession(ctx, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, provider.ErrSessionNotFound):
			return nil, fmt.Errorf("%w: session %q", ErrSessionNotFound, sessionID)
		case errors.Is(err, provider.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
			return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
		default:
			return nil, err
		}
	}

	return normalizeSession(p.Name(), session)
}

// normalizeSession validates and parses session metadata. Metadata is only
// checked once the session is paid; an unpaid session resolves with Paid=false
// and nothing else filled in.
func normalizeSession(providerName string, session *provider.Session) (*ResolvedSession, error) {
	resolved := &ResolvedSession{
		SessionID:      session.ID,
		TransactionRef: strings.TrimSpace(session.TransactionRef),
		Provider:       providerName,
		AmountCents:    session.AmountCents,
		Currency:       session.Currency,
		Paid:           session.Paid,
	}
	if !session.Paid {
		return resolved, nil
	}

	if session.AmountCents < 0 {
		return nil, fmt.Errorf("%w: negative amount %d", ErrInvalidMetadata, session.AmountCents)
	}

	eventID := strings.TrimSpace(session.Metadata["event_id"])
	if eventID == "" {
		return nil, fmt.Errorf("%w: event_id is missing", ErrInvalidMetadata)
	}
	resolved.EventID = eventID

	photographerID := strings.TrimSpace(session.Metadata["photographer_id"])
	if photographerID == "" {
		return nil, fmt.Errorf("%w: photographer_id is missing", ErrInvalidMetadata)
	}
	resolved.PhotographerID = photographerID

	photoIDs, err := parsePhotoIDs(session.Metadata["photo_ids"])
	if err != nil {
		return nil, err
	}
	resolved.PhotoIDs = photoIDs

	buyerID := strings.TrimSpace(session.Metadata["buyer_id"])
	if buyerID != "" && !strings.EqualFold(buyerID, guestBuyerSentinel) {
		resolved.BuyerID = &buyerID
	}

	email := strings.TrimSpace(session.CustomerEmail)
	if email == "" {
		email = strings.TrimSpace(session.Metadata["contact_email"])
	}
	resolved.ContactEmail = email

	return resolved, nil
}

// parsePhotoIDs parses the serialized photo_ids metadata value, a JSON string
// array. The order is preserved; repeated identifiers are dropped.
func parsePhotoIDs(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: photo_ids is missing", ErrInvalidMetadata)
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("%w: photo_ids is not a JSON string array: %v", ErrInvalidMetadata, err)
	}

	seen := make(map[string]struct{}, len(ids))
	photoIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("%w: photo_ids contains an empty identifier", ErrInvalidMetadata)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		photoIDs = append(photoIDs, id)
	}

	if len(photoIDs) == 0 {
		return nil, fmt.Errorf("%w: photo_ids is empty", ErrInvalidMetadata)
	}

	return photoIDs, nil
}

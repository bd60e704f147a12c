package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-purchases/app/entity"
	"github.com/vibast-solutions/ms-go-purchases/app/provider"
)

// HandleWebhook processes completion path A: a processor-pushed event. The
// signature is verified before anything else runs; rejected deliveries are
// persisted for audit and never reach the orchestrator. A nil result with a
// nil error means the event was authentic but not a completion signal.
func (s *FulfillmentService) HandleWebhook(ctx context.Context, providerName string, payload []byte, signature string) (*FulfillmentResult, error) {
	providerClient, err := s.providerReg.Get(providerName)
	if err != nil {
		if errors.Is(err, provider.ErrProviderNotSupported) {
			return nil, ErrProviderUnsupported
		}
		return nil, err
	}

	event, err := providerClient.VerifyAndParseWebhook(ctx, payload, signature)
	if err != nil {
		s.recordWebhook(ctx, nil, providerName, &provider.WebhookEvent{}, payload, signature,
			entity.WebhookStatusRejected, fmt.Sprintf("webhook validation failed: %v", err))
		return nil, ErrWebhookRejected
	}

	if !event.Completed {
		s.recordWebhook(ctx, nil, providerName, event, payload, signature, entity.WebhookStatusProcessed, "")
		s.logger.WithFields(map[string]interface{}{
			"provider":   providerName,
			"event_type": event.EventType,
		}).Debug("Ignoring non-completion webhook event")
		return nil, nil
	}

	if strings.TrimSpace(event.SessionID) == "" {
		s.recordWebhook(ctx, nil, providerName, event, payload, signature,
			entity.WebhookStatusRejected, "completion event carries no session id")
		return nil, ErrWebhookRejected
	}

	result, err := s.Fulfill(ctx, providerName, event.SessionID)
	if err != nil {
		s.recordWebhook(ctx, nil, providerName, event, payload, signature,
			entity.WebhookStatusRejected, truncate(err.Error(), 1024))
		return nil, err
	}

	var purchaseID *uint64
	if result.Purchase != nil {
		id := result.Purchase.ID
		purchaseID = &id
	}
	s.recordWebhook(ctx, purchaseID, providerName, event, payload, signature, entity.WebhookStatusProcessed, "")

	return result, nil
}

func (s *FulfillmentService) recordWebhook(
	ctx context.Context,
	purchaseID *uint64,
	providerName string,
	event *provider.WebhookEvent,
	payload []byte,
	signature string,
	status int32,
	errMsg string,
) {
	record := &entity.WebhookRecord{
		PurchaseID:  purchaseID,
		Provider:    strings.ToLower(strings.TrimSpace(providerName)),
		EventID:     event.EventID,
		EventType:   event.EventType,
		Signature:   strings.TrimSpace(signature),
		PayloadJSON: string(payload),
		Status:      status,
		CreatedAt:   time.Now().UTC(),
	}
	if errMsg = strings.TrimSpace(errMsg); errMsg != "" {
		trimmed := truncate(errMsg, 1024)
		record.Error = &trimmed
	}

	if err := s.webhookRepo.Create(ctx, record); err != nil {
		s.logger.WithError(err).Warn("Failed to persist webhook record")
	}
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max]
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-purchases/app/entity"
	"github.com/vibast-solutions/ms-go-purchases/app/notifier"
	"github.com/vibast-solutions/ms-go-purchases/app/provider"
	"github.com/vibast-solutions/ms-go-purchases/app/repository"
	"github.com/vibast-solutions/ms-go-purchases/config"
)

const defaultBatchSize = int32(100)

type purchaseRepository interface {
	CreateWithItems(ctx context.Context, purchase *entity.Purchase, photoIDs []string) (bool, error)
	FindByID(ctx context.Context, id uint64) (*entity.Purchase, error)
	FindBySessionID(ctx context.Context, sessionID string) (*entity.Purchase, error)
	List(ctx context.Context, filter repository.PurchaseFilter) ([]*entity.Purchase, error)
	ListItems(ctx context.Context, purchaseID uint64) ([]*entity.PurchaseItem, error)
}

type fulfillmentEventRepository interface {
	Create(ctx context.Context, event *entity.FulfillmentEvent) error
}

type webhookRecordRepository interface {
	Create(ctx context.Context, record *entity.WebhookRecord) error
}

type mailer interface {
	SendBuyerReceipt(ctx context.Context, receipt *notifier.BuyerReceipt) error
	SendPayoutNotice(ctx context.Context, notice *notifier.PayoutNotice) error
}

type FulfillmentOutcome string

const (
	OutcomeCreated       FulfillmentOutcome = "created"
	OutcomeAlreadyExists FulfillmentOutcome = "already_exists"
	OutcomeDeferred      FulfillmentOutcome = "deferred"
)

// FulfillmentResult is the orchestrator's answer for one session. NotifyErr
// is advisory: a failed notification never fails the fulfillment.
type FulfillmentResult struct {
	Outcome   FulfillmentOutcome
	Purchase  *entity.Purchase
	NotifyErr error
}

type FulfillmentService struct {
	purchaseRepo   purchaseRepository
	eventRepo      fulfillmentEventRepository
	webhookRepo    webhookRecordRepository
	providerReg    *provider.Registry
	mailer         mailer
	fulfillmentCfg config.FulfillmentConfig
	logger         logrus.FieldLogger
}

func NewFulfillmentService(
	purchaseRepo purchaseRepository,
	eventRepo fulfillmentEventRepository,
	webhookRepo webhookRecordRepository,
	providerReg *provider.Registry,
	mailerClient mailer,
	fulfillmentCfg config.FulfillmentConfig,
	logger logrus.FieldLogger,
) *FulfillmentService {
	if fulfillmentCfg.ResolveTimeout <= 0 {
		fulfillmentCfg.ResolveTimeout = 10 * time.Second
	}
	if fulfillmentCfg.WriteTimeout <= 0 {
		fulfillmentCfg.WriteTimeout = 10 * time.Second
	}
	if fulfillmentCfg.NotifyTimeout <= 0 {
		fulfillmentCfg.NotifyTimeout = 5 * time.Second
	}

	return &FulfillmentService{
		purchaseRepo:   purchaseRepo,
		eventRepo:      eventRepo,
		webhookRepo:    webhookRepo,
		providerReg:    providerReg,
		mailer:         mailerClient,
		fulfillmentCfg: fulfillmentCfg,
		logger:         logger,
	}
}

// Fulfill turns a payment-completed signal into a committed purchase. It is
// safe to call concurrently and repeatedly with the same session identifier:
// both completion paths (processor webhook and client confirmation) go
// through here without coordination, and the unique session_id key in the
// datastore decides who creates the row.
func (s *FulfillmentService) Fulfill(ctx context.Context, providerName, sessionID string) (*FulfillmentResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrInvalidRequest)
	}

	providerClient, err := s.providerReg.Get(providerName)
	if err != nil {
		if errors.Is(err, provider.ErrProviderNotSupported) {
			return nil, ErrProviderUnsupported
		}
		return nil, err
	}

	resolved, err := s.resolveSession(ctx, providerClient, sessionID)
	if err != nil {
		return nil, err
	}

	if !resolved.Paid {
		s.logger.WithField("session_id", sessionID).Info("Session not paid yet, deferring fulfillment")
		return &FulfillmentResult{Outcome: OutcomeDeferred}, nil
	}

	platformCents, sellerCents, err := SplitFee(resolved.AmountCents, s.fulfillmentCfg.PlatformFeeBps)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	purchase := &entity.Purchase{
		SessionID:      resolved.SessionID,
		TransactionRef: resolved.TransactionRef,
		Provider:       resolved.Provider,
		BuyerID:        resolved.BuyerID,
		EventID:        resolved.EventID,
		PhotographerID: resolved.PhotographerID,
		GrossCents:     resolved.AmountCents,
		PlatformCents:  platformCents,
		SellerCents:    sellerCents,
		Currency:       resolved.Currency,
		Status:         entity.PurchaseStatusCompleted,
		ContactEmail:   resolved.ContactEmail,
		CompletedAt:    now,
		CreatedAt:      now,
	}

	created, err := s.writePurchase(ctx, purchase, resolved.PhotoIDs)
	if err != nil {
		return nil, err
	}

	eventType := "purchase_created"
	outcome := OutcomeCreated
	if !created {
		eventType = "purchase_replayed"
		outcome = OutcomeAlreadyExists
	}

	_ = s.eventRepo.Create(ctx, &entity.FulfillmentEvent{
		PurchaseID: purchase.ID,
		SessionID:  purchase.SessionID,
		EventType:  eventType,
		CreatedAt:  time.Now().UTC(),
	})

	s.logger.WithFields(logrus.Fields{
		"session_id":  purchase.SessionID,
		"purchase_id": purchase.ID,
		"outcome":     string(outcome),
		"photos":      len(resolved.PhotoIDs),
	}).Info("Fulfillment committed")

	// Re-sending a receipt on a replayed session is acceptable; skipping one
	// because a racing call already created the row is not.
	notifyErr := s.notifyPurchase(ctx, purchase, len(resolved.PhotoIDs))

	return &FulfillmentResult{Outcome: outcome, Purchase: purchase, NotifyErr: notifyErr}, nil
}

func (s *FulfillmentService) writePurchase(ctx context.Context, purchase *entity.Purchase, photoIDs []string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.fulfillmentCfg.WriteTimeout)
	defer cancel()

	created, err := s.purchaseRepo.CreateWithItems(ctx, purchase, photoIDs)
	if err != nil {
		if errors.Is(err, repository.ErrStorage) || errors.Is(err, context.DeadlineExceeded) {
			return false, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		return false, err
	}

	return created, nil
}

func (s *FulfillmentService) GetPurchase(ctx context.Context, id uint64) (*entity.Purchase, []*entity.PurchaseItem, error) {
	purchase, err := s.purchaseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if purchase == nil {
		return nil, nil, ErrPurchaseNotFound
	}

	items, err := s.purchaseRepo.ListItems(ctx, purchase.ID)
	if err != nil {
		return nil, nil, err
	}

	return purchase, items, nil
}

func (s *FulfillmentService) ListPurchases(ctx context.Context, filter repository.PurchaseFilter) ([]*entity.Purchase, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultBatchSize
	}
	return s.purchaseRepo.List(ctx, filter)
}

func (s *FulfillmentService) batchSize() int32 {
	if s.fulfillmentCfg.JobBatchSize > 0 {
		return s.fulfillmentCfg.JobBatchSize
	}
	return defaultBatchSize
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vibast-solutions/ms-go-purchases/app/entity"
	"github.com/vibast-solutions/ms-go-purchases/app/notifier"
)

// notifyPurchase dispatches the buyer receipt and the photographer payout
// notice. The two attempts run independently: one failing does not stop the
// other, and neither failure propagates past the returned advisory error.
// The whole fan-out is capped by NotifyTimeout so slow mail delivery cannot
// make fulfillment itself look slow or failed.
func (s *FulfillmentService) notifyPurchase(ctx context.Context, purchase *entity.Purchase, photoCount int) error {
	ctx, cancel := context.WithTimeout(ctx, s.fulfillmentCfg.NotifyTimeout)
	defer cancel()

	var wg sync.WaitGroup
	var buyerErr, payoutErr error

	if purchase.ContactEmail != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buyerErr = s.mailer.SendBuyerReceipt(ctx, &notifier.BuyerReceipt{
				ContactEmail: purchase.ContactEmail,
				EventID:      purchase.EventID,
				PurchaseID:   purchase.ID,
				PhotoCount:   photoCount,
				GrossCents:   purchase.GrossCents,
				Currency:     purchase.Currency,
			})
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		payoutErr = s.mailer.SendPayoutNotice(ctx, &notifier.PayoutNotice{
			PhotographerID: purchase.PhotographerID,
			EventID:        purchase.EventID,
			PurchaseID:     purchase.ID,
			PhotoCount:     photoCount,
			SellerCents:    purchase.SellerCents,
			Currency:       purchase.Currency,
		})
	}()

	wg.Wait()

	if buyerErr != nil {
		s.logger.WithError(buyerErr).WithField("purchase_id", purchase.ID).Warn("Buyer receipt dispatch failed")
		buyerErr = fmt.Errorf("buyer receipt: %w", buyerErr)
	}
	if payoutErr != nil {
		s.logger.WithError(payoutErr).WithField("purchase_id", purchase.ID).Warn("Payout notice dispatch failed")
		payoutErr = fmt.Errorf("payout notice: %w", payoutErr)
	}

	return errors.Join(buyerErr, payoutErr)
}

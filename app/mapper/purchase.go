package mapper

import (
	"time"

	"github.com/vibast-solutions/ms-go-purchases/app/entity"
	"github.com/vibast-solutions/ms-go-purchases/app/types"
)

func PurchaseToResponse(item *entity.Purchase, items []*entity.PurchaseItem) *types.Purchase {
	if item == nil {
		return nil
	}

	photoIDs := make([]string, 0, len(items))
	for _, link := range items {
		photoIDs = append(photoIDs, link.PhotoID)
	}

	return &types.Purchase{
		Id:             item.ID,
		SessionId:      item.SessionID,
		TransactionRef: item.TransactionRef,
		Provider:       item.Provider,
		BuyerId:        derefString(item.BuyerID),
		EventId:        item.EventID,
		PhotographerId: item.PhotographerID,
		GrossCents:     item.GrossCents,
		PlatformCents:  item.PlatformCents,
		SellerCents:    item.SellerCents,
		Currency:       item.Currency,
		Status:         item.Status,
		ContactEmail:   item.ContactEmail,
		PhotoIds:       photoIDs,
		CompletedAt:    item.CompletedAt.UTC().Format(time.RFC3339),
		CreatedAt:      item.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func PurchasesToResponse(items []*entity.Purchase) []*types.Purchase {
	result := make([]*types.Purchase, 0, len(items))
	for _, item := range items {
		result = append(result, PurchaseToResponse(item, nil))
	}
	return result
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

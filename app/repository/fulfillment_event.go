package repository

import (
	"context"

	"github.com/vibast-solutions/ms-go-purchases/app/entity"
)

type FulfillmentEventRepository struct {
	db DBTX
}

func NewFulfillmentEventRepository(db DBTX) *FulfillmentEventRepository {
	return &FulfillmentEventRepository{db: db}
}

func (r *FulfillmentEventRepository) Create(ctx context.Context, event *entity.FulfillmentEvent) error {
	query := `
		INSERT INTO fulfillment_events (purchase_id, session_id, event_type, detail, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		event.PurchaseID,
		event.SessionID,
		event.EventType,
		nullableStringValue(event.Detail),
		event.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	event.ID = uint64(id)
	return nil
}

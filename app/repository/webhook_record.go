package repository

import (
	"context"

	"github.com/vibast-solutions/ms-go-purchases/app/entity"
)

type WebhookRecordRepository struct {
	db DBTX
}

func NewWebhookRecordRepository(db DBTX) *WebhookRecordRepository {
	return &WebhookRecordRepository{db: db}
}

func (r *WebhookRecordRepository) Create(ctx context.Context, record *entity.WebhookRecord) error {
	query := `
		INSERT INTO webhook_records (purchase_id, provider, event_id, event_type, signature, payload_json, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		nullableUint64Value(record.PurchaseID),
		record.Provider,
		record.EventID,
		record.EventType,
		record.Signature,
		record.PayloadJSON,
		record.Status,
		nullableStringValue(record.Error),
		record.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	record.ID = uint64(id)
	return nil
}

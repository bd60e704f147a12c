package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-purchases/app/entity"
)

var (
	ErrPurchaseNotFound = errors.New("purchase not found")
	ErrStorage          = errors.New("purchase store unavailable")
)

type PurchaseFilter struct {
	EventID        string
	PhotographerID string
	BuyerID        string
	Limit          int32
	Offset         int32
}

type PurchaseRepository struct {
	db DB
}

func NewPurchaseRepository(db DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

const purchaseColumns = `id, session_id, transaction_ref, provider, buyer_id, event_id,
		photographer_id, gross_cents, platform_cents, seller_cents, currency,
		status, contact_email, completed_at, created_at`

// CreateWithItems inserts the purchase row and one row per photo in a single
// transaction. The unique key on session_id is the only guard against racing
// writers: the insert goes first and a duplicate-key failure means another
// writer already committed, in which case the existing row is returned with
// created=false. The purchase and its item links either all commit or none do.
func (r *PurchaseRepository) CreateWithItems(ctx context.Context, purchase *entity.Purchase, photoIDs []string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer func() { _ = tx.Rollback() }()

	insert := `
		INSERT INTO purchases (
			session_id, transaction_ref, provider, buyer_id, event_id,
			photographer_id, gross_cents, platform_cents, seller_cents, currency,
			status, contact_email, completed_at, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, insert,
		purchase.SessionID,
		purchase.TransactionRef,
		purchase.Provider,
		nullableStringValue(purchase.BuyerID),
		purchase.EventID,
		purchase.PhotographerID,
		purchase.GrossCents,
		purchase.PlatformCents,
		purchase.SellerCents,
		purchase.Currency,
		purchase.Status,
		purchase.ContactEmail,
		purchase.CompletedAt,
		purchase.CreatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			_ = tx.Rollback()
			existing, findErr := r.FindBySessionID(ctx, purchase.SessionID)
			if findErr != nil {
				return false, findErr
			}
			if existing == nil {
				return false, fmt.Errorf("%w: duplicate session_id %q but no committed row", ErrStorage, purchase.SessionID)
			}
			*purchase = *existing
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	purchase.ID = uint64(id)

	itemInsert := `INSERT INTO purchase_items (purchase_id, photo_id, created_at) VALUES (?, ?, ?)`
	for _, photoID := range photoIDs {
		if _, err := tx.ExecContext(ctx, itemInsert, purchase.ID, photoID, purchase.CreatedAt); err != nil {
			return false, fmt.Errorf("%w: %v", ErrStorage, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return true, nil
}

func (r *PurchaseRepository) FindByID(ctx context.Context, id uint64) (*entity.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE id = ?`

	purchase := &entity.Purchase{}
	if err := scanPurchase(r.db.QueryRowContext(ctx, query, id), purchase); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return purchase, nil
}

func (r *PurchaseRepository) FindBySessionID(ctx context.Context, sessionID string) (*entity.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE session_id = ? LIMIT 1`

	purchase := &entity.Purchase{}
	if err := scanPurchase(r.db.QueryRowContext(ctx, query, sessionID), purchase); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return purchase, nil
}

func (r *PurchaseRepository) List(ctx context.Context, filter PurchaseFilter) ([]*entity.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases`

	conditions := make([]string, 0, 3)
	args := make([]interface{}, 0, 5)

	if strings.TrimSpace(filter.EventID) != "" {
		conditions = append(conditions, "event_id = ?")
		args = append(args, filter.EventID)
	}
	if strings.TrimSpace(filter.PhotographerID) != "" {
		conditions = append(conditions, "photographer_id = ?")
		args = append(args, filter.PhotographerID)
	}
	if strings.TrimSpace(filter.BuyerID) != "" {
		conditions = append(conditions, "buyer_id = ?")
		args = append(args, filter.BuyerID)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer rows.Close()

	purchases := make([]*entity.Purchase, 0)
	for rows.Next() {
		item := &entity.Purchase{}
		if err := scanPurchase(rows, item); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		purchases = append(purchases, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return purchases, nil
}

func (r *PurchaseRepository) ListItems(ctx context.Context, purchaseID uint64) ([]*entity.PurchaseItem, error) {
	query := `
		SELECT id, purchase_id, photo_id, created_at
		FROM purchase_items
		WHERE purchase_id = ?
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer rows.Close()

	items := make([]*entity.PurchaseItem, 0)
	for rows.Next() {
		item := &entity.PurchaseItem{}
		if err := rows.Scan(&item.ID, &item.PurchaseID, &item.PhotoID, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return items, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPurchase(scan rowScanner, purchase *entity.Purchase) error {
	var buyerID sql.NullString
	var completedAt time.Time

	err := scan.Scan(
		&purchase.ID,
		&purchase.SessionID,
		&purchase.TransactionRef,
		&purchase.Provider,
		&buyerID,
		&purchase.EventID,
		&purchase.PhotographerID,
		&purchase.GrossCents,
		&purchase.PlatformCents,
		&purchase.SellerCents,
		&purchase.Currency,
		&purchase.Status,
		&purchase.ContactEmail,
		&completedAt,
		&purchase.CreatedAt,
	)
	if err != nil {
		return err
	}

	purchase.BuyerID = stringPtrFromNull(buyerID)
	purchase.CompletedAt = completedAt

	return nil
}

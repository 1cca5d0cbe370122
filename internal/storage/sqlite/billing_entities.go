package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MatrixManAtYrService/rhizome-sub001/internal/ids"
	"github.com/MatrixManAtYrService/rhizome-sub001/internal/models"
	"github.com/MatrixManAtYrService/rhizome-sub001/internal/storage"
)

// CreateBillingEntity persists a new billing entity.
func (s *SQLiteStore) CreateBillingEntity(ctx context.Context, entity *models.BillingEntity) error {
	if entity.ID == "" {
		entity.ID = ids.NewShortID()
	}
	if entity.CreatedAt == 0 {
		entity.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO billing_entity (id, merchant_id, entity_type, country, created_at, deleted_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entity.ID, entity.MerchantID, entity.EntityType, entity.Country, entity.CreatedAt,
		nullInt64(entity.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert billing entity: %w", err)
	}
	return nil
}

// GetBillingEntity retrieves a billing entity by ID.
func (s *SQLiteStore) GetBillingEntity(ctx context.Context, id string) (*models.BillingEntity, error) {
	entity := &models.BillingEntity{}
	var deletedAt sql.NullInt64

	err := s.db.QueryRowContext(ctx,
		`SELECT id, merchant_id, entity_type, country, created_at, deleted_at
		 FROM billing_entity WHERE id = ?`,
		id,
	).Scan(&entity.ID, &entity.MerchantID, &entity.EntityType, &entity.Country, &entity.CreatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("billing entity %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get billing entity: %w", err)
	}

	entity.DeletedAt = int64Ptr(deletedAt)
	return entity, nil
}

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

// CreateSubscription persists a new subscription.
func (s *SQLiteStore) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	if sub.ID == "" {
		sub.ID = ids.NewULID()
	}
	if sub.CreatedAt == 0 {
		sub.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO subscription (id, billing_entity_id, plan_id, status, start_date, end_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.BillingEntityID, sub.PlanID, sub.Status, sub.StartDate, nullInt64(sub.EndDate), sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert subscription: %w", err)
	}
	return nil
}

// GetSubscription retrieves a subscription by ID.
func (s *SQLiteStore) GetSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	sub := &models.Subscription{}
	var endDate sql.NullInt64

	err := s.db.QueryRowContext(ctx,
		`SELECT id, billing_entity_id, plan_id, status, start_date, end_date, created_at
		 FROM subscription WHERE id = ?`,
		id,
	).Scan(&sub.ID, &sub.BillingEntityID, &sub.PlanID, &sub.Status, &sub.StartDate, &endDate, &sub.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("subscription %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	sub.EndDate = int64Ptr(endDate)
	return sub, nil
}

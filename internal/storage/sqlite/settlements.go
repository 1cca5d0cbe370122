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

const settlementColumns = `id, billing_entity_id, invoice_id, amount, currency, created_at, created_by, note, payment_ref`

// CreateSettlement persists a new settlement to the database.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	if settlement.ID == "" {
		settlement.ID = ids.NewUUID()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settlement (`+settlementColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.BillingEntityID, nullString(settlement.InvoiceID),
		settlement.Amount, settlement.Currency, settlement.CreatedAt, settlement.CreatedBy,
		settlement.Note, nullString(settlement.PaymentRef),
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSettlement(row rowScanner) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var invoiceID, note, paymentRef sql.NullString

	if err := row.Scan(&settlement.ID, &settlement.BillingEntityID, &invoiceID, &settlement.Amount,
		&settlement.Currency, &settlement.CreatedAt, &settlement.CreatedBy, &note, &paymentRef); err != nil {
		return nil, err
	}

	settlement.InvoiceID = stringPtr(invoiceID)
	settlement.PaymentRef = stringPtr(paymentRef)
	settlement.Note = note.String
	return settlement, nil
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, id string) (*models.Settlement, error) {
	settlement, err := scanSettlement(s.db.QueryRowContext(ctx,
		`SELECT `+settlementColumns+` FROM settlement WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("settlement %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return settlement, nil
}

// ListSettlementsByEntity retrieves all settlements for a billing entity.
func (s *SQLiteStore) ListSettlementsByEntity(ctx context.Context, billingEntityID string) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+settlementColumns+` FROM settlement WHERE billing_entity_id = ? ORDER BY created_at DESC, rowid DESC`,
		billingEntityID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements by billing entity: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, settlement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}

// DeleteSettlement removes a settlement by ID.
func (s *SQLiteStore) DeleteSettlement(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM settlement WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete settlement: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted settlement: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("settlement %s: %w", id, storage.ErrNotFound)
	}

	return nil
}

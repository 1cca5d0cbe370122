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

// CreateInvoice persists a new invoice and its line items.
func (s *SQLiteStore) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = ids.NewULID()
	}
	if invoice.InvoiceDate == 0 {
		invoice.InvoiceDate = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO invoice (id, billing_entity_id, subscription_id, currency, subtotal, tax, total,
		                      status, invoice_date, note, external_ref)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		invoice.ID, invoice.BillingEntityID, nullString(invoice.SubscriptionID), invoice.Currency,
		invoice.Subtotal, invoice.Tax, invoice.Total, invoice.Status, invoice.InvoiceDate,
		invoice.Note, nullString(invoice.ExternalRef),
	)
	if err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}

	for i := range invoice.LineItems {
		item := &invoice.LineItems[i]
		if item.ID == "" {
			item.ID = ids.NewULID()
		}
		item.InvoiceID = invoice.ID

		_, err = tx.ExecContext(ctx,
			`INSERT INTO invoice_line_item (id, invoice_id, fee_code, description, quantity, unit_amount, amount)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			item.ID, item.InvoiceID, item.FeeCode, item.Description, item.Quantity, item.UnitAmount, item.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert invoice line item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetInvoice retrieves an invoice by ID, including its line items.
func (s *SQLiteStore) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	invoice := &models.Invoice{}
	var subscriptionID, note, externalRef sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, billing_entity_id, subscription_id, currency, subtotal, tax, total,
		        status, invoice_date, note, external_ref
		 FROM invoice WHERE id = ?`,
		id,
	).Scan(&invoice.ID, &invoice.BillingEntityID, &subscriptionID, &invoice.Currency,
		&invoice.Subtotal, &invoice.Tax, &invoice.Total, &invoice.Status, &invoice.InvoiceDate,
		&note, &externalRef)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invoice %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	invoice.SubscriptionID = stringPtr(subscriptionID)
	invoice.ExternalRef = stringPtr(externalRef)
	invoice.Note = note.String

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, invoice_id, fee_code, description, quantity, unit_amount, amount
		 FROM invoice_line_item WHERE invoice_id = ? ORDER BY rowid`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice line items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.InvoiceLineItem
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.FeeCode, &item.Description,
			&item.Quantity, &item.UnitAmount, &item.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan invoice line item: %w", err)
		}
		invoice.LineItems = append(invoice.LineItems, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoice line items: %w", err)
	}

	return invoice, nil
}

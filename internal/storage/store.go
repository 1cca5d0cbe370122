// Package storage provides abstractions for persistent billing data.
package storage

import (
	"context"
	"errors"

	"github.com/MatrixManAtYrService/rhizome-sub001/internal/models"
	"github.com/MatrixManAtYrService/rhizome-sub001/internal/schema"
)

// ErrNotFound is wrapped by lookups that match no row.
var ErrNotFound = errors.New("not found")

// Store defines the billing storage operations.
// The sqlite package is the only backend; the interface keeps the export pipeline
// and seed generator independent of it.
type Store interface {
	// CreateBillingEntity persists a billing entity. CreatedAt is set if zero.
	CreateBillingEntity(ctx context.Context, entity *models.BillingEntity) error

	// GetBillingEntity retrieves a billing entity by ID.
	GetBillingEntity(ctx context.Context, id string) (*models.BillingEntity, error)

	// CreateSubscription persists a subscription. CreatedAt is set if zero.
	CreateSubscription(ctx context.Context, sub *models.Subscription) error

	// GetSubscription retrieves a subscription by ID.
	GetSubscription(ctx context.Context, id string) (*models.Subscription, error)

	// CreateInvoice persists an invoice and its line items in one transaction.
	// Line items are linked to the invoice regardless of their InvoiceID.
	CreateInvoice(ctx context.Context, invoice *models.Invoice) error

	// GetInvoice retrieves an invoice by ID, including its line items.
	GetInvoice(ctx context.Context, id string) (*models.Invoice, error)

	// CreateSettlement persists a settlement. CreatedAt is set if zero.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// GetSettlement retrieves a settlement by ID.
	GetSettlement(ctx context.Context, id string) (*models.Settlement, error)

	// ListSettlementsByEntity retrieves settlements of a billing entity, newest first.
	ListSettlementsByEntity(ctx context.Context, billingEntityID string) ([]*models.Settlement, error)

	// DeleteSettlement removes a settlement by ID.
	DeleteSettlement(ctx context.Context, id string) error

	RowStore

	// Close releases any resources held by the store.
	Close() error
}

// RowStore reads and writes untyped rows. Export uses it so any table described
// by a schema.TableSchema can be copied without a dedicated model.
type RowStore interface {
	// ScanRows calls fn for every row of table, selecting only columns.
	// Iteration stops at the first error returned by fn.
	ScanRows(ctx context.Context, table string, columns []string, fn func(schema.Row) error) error

	// InsertRows inserts rows into table in one transaction.
	InsertRows(ctx context.Context, table string, columns []string, rows []schema.Row) error
}

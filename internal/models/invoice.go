package models

import "github.com/MatrixManAtYrService/rhizome-sub001/internal/sanitize"

// Invoice is the bill issued to a billing entity for one period.
type Invoice struct {
	// ID is the invoice ULID.
	ID string

	// BillingEntityID references BillingEntity.ID.
	BillingEntityID string

	// SubscriptionID references Subscription.ID. Nil for one-off invoices.
	SubscriptionID *string

	// Currency is the ISO 4217 code all amounts are expressed in.
	Currency string

	// Subtotal, Tax and Total are minor units (cents).
	Subtotal int64
	Tax      int64
	Total    int64

	// Status is one of "DRAFT", "OPEN", "PAID", "VOID".
	Status string

	// InvoiceDate is the Unix timestamp the invoice was issued.
	InvoiceDate int64

	// ExternalRef is the UUID of the invoice in the upstream ledger.
	// Added in schema version 2; nil for invoices imported before that.
	ExternalRef *string

	// Note is free text shown on the invoice.
	Note string

	// LineItems are the charges making up Subtotal.
	LineItems []InvoiceLineItem
}

// InvoiceLineItem is a single charge on an invoice.
type InvoiceLineItem struct {
	// ID is the line item ULID.
	ID string

	// InvoiceID references Invoice.ID.
	InvoiceID string

	// FeeCode identifies the fee category (e.g. "SAAS_MONTHLY", "CARD_TXN").
	FeeCode string

	Description string

	Quantity int64

	// UnitAmount and Amount are minor units; Amount = Quantity * UnitAmount.
	UnitAmount int64
	Amount     int64
}

// TableName returns the database table name.
func (Invoice) TableName() string { return "invoice" }

// TableName returns the database table name.
func (InvoiceLineItem) TableName() string { return "invoice_line_item" }

// Sanitize returns a copy with identifiers replaced by surrogates, including the
// identifiers of every line item.
func (inv Invoice) Sanitize() Invoice {
	inv.ID = sanitize.HashUUIDToBase58(inv.ID, sanitize.ULIDLength)
	inv.BillingEntityID = sanitize.HashUUIDToBase58(inv.BillingEntityID, sanitize.ShortIDLength)
	inv.SubscriptionID = sanitize.UUIDField(inv.SubscriptionID, sanitize.ULIDLength)
	inv.ExternalRef = sanitize.UUIDField(inv.ExternalRef, sanitize.UUIDLength)

	if inv.LineItems != nil {
		items := make([]InvoiceLineItem, len(inv.LineItems))
		for i, item := range inv.LineItems {
			items[i] = item.Sanitize()
		}
		inv.LineItems = items
	}
	return inv
}

// Sanitize returns a copy with identifiers replaced by surrogates.
func (li InvoiceLineItem) Sanitize() InvoiceLineItem {
	li.ID = sanitize.HashUUIDToBase58(li.ID, sanitize.ULIDLength)
	li.InvoiceID = sanitize.HashUUIDToBase58(li.InvoiceID, sanitize.ULIDLength)
	return li
}

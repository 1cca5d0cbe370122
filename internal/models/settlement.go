package models

import "github.com/MatrixManAtYrService/rhizome-sub001/internal/sanitize"

// Settlement represents a payment applied to a billing entity's balance.
type Settlement struct {
	// ID is the settlement UUID.
	ID string

	// BillingEntityID references BillingEntity.ID.
	BillingEntityID string

	// InvoiceID references the invoice being paid. Nil for on-account payments.
	InvoiceID *string

	// Amount is the payment amount in minor units.
	Amount int64

	Currency string

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64

	// CreatedBy is the 13-character ID of the employee who recorded it.
	CreatedBy string

	// PaymentRef is the processor payment UUID. Added in schema version 2.
	PaymentRef *string

	// Note is an optional description for the settlement.
	Note string
}

// TableName returns the database table name.
func (Settlement) TableName() string { return "settlement" }

// Sanitize returns a copy with identifiers replaced by surrogates.
func (s Settlement) Sanitize() Settlement {
	s.ID = sanitize.HashUUIDToBase58(s.ID, sanitize.UUIDLength)
	s.BillingEntityID = sanitize.HashUUIDToBase58(s.BillingEntityID, sanitize.ShortIDLength)
	s.InvoiceID = sanitize.UUIDField(s.InvoiceID, sanitize.ULIDLength)
	s.CreatedBy = sanitize.HashUUIDToBase58(s.CreatedBy, sanitize.ShortIDLength)
	s.PaymentRef = sanitize.UUIDField(s.PaymentRef, sanitize.UUIDLength)
	return s
}

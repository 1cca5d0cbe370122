package models

import "github.com/MatrixManAtYrService/rhizome-sub001/internal/sanitize"

// BillingEntity is the account that invoices and settlements are issued against.
type BillingEntity struct {
	// ID is the 13-character billing entity identifier.
	ID string

	// MerchantID is the 13-character identifier of the merchant this entity bills.
	MerchantID string

	// EntityType is the kind of entity (e.g. "MERCHANT", "RESELLER").
	EntityType string

	// Country is the ISO 3166 alpha-2 country code.
	Country string

	// CreatedAt is the Unix timestamp when the entity was created.
	CreatedAt int64

	// DeletedAt is the Unix timestamp of a soft delete, nil while active.
	DeletedAt *int64
}

// TableName returns the database table name.
func (BillingEntity) TableName() string { return "billing_entity" }

// Sanitize returns a copy with identifiers replaced by surrogates.
func (e BillingEntity) Sanitize() BillingEntity {
	e.ID = sanitize.HashUUIDToBase58(e.ID, sanitize.ShortIDLength)
	e.MerchantID = sanitize.HashUUIDToBase58(e.MerchantID, sanitize.ShortIDLength)
	if e.DeletedAt != nil {
		deletedAt := *e.DeletedAt
		e.DeletedAt = &deletedAt
	}
	return e
}

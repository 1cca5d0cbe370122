package models

import "github.com/MatrixManAtYrService/rhizome-sub001/internal/sanitize"

// Subscription enrolls a billing entity in a plan.
type Subscription struct {
	// ID is the subscription ULID.
	ID string

	// BillingEntityID references BillingEntity.ID.
	BillingEntityID string

	// PlanID is the 13-character plan identifier.
	PlanID string

	// Status is one of "ACTIVE", "SUSPENDED", "CANCELLED".
	Status string

	// StartDate is the Unix timestamp the subscription takes effect.
	StartDate int64

	// EndDate is the Unix timestamp the subscription ends, nil if open-ended.
	EndDate *int64

	CreatedAt int64
}

// TableName returns the database table name.
func (Subscription) TableName() string { return "subscription" }

// Sanitize returns a copy with identifiers replaced by surrogates.
func (s Subscription) Sanitize() Subscription {
	s.ID = sanitize.HashUUIDToBase58(s.ID, sanitize.ULIDLength)
	s.BillingEntityID = sanitize.HashUUIDToBase58(s.BillingEntityID, sanitize.ShortIDLength)
	s.PlanID = sanitize.HashUUIDToBase58(s.PlanID, sanitize.ShortIDLength)
	if s.EndDate != nil {
		endDate := *s.EndDate
		s.EndDate = &endDate
	}
	return s
}

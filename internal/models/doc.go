// Package models defines the billing tables that fixtures are exported from.
//
// The structs mirror a representative slice of the billing schema:
//   - BillingEntity: the account that is billed (one per merchant)
//   - Subscription: a plan a billing entity is enrolled in
//   - Invoice and InvoiceLineItem: what was charged for a period
//   - Settlement: a payment applied against an invoice
//
// Identifier columns are fixed-width strings (13-character short IDs, 26-character
// ULIDs, 36-character UUIDs). Nullable identifiers are *string so that a missing
// reference survives sanitization as nil rather than as a fabricated value.
//
// Every model has a Sanitize method returning a copy with identifier fields replaced
// by deterministic surrogates of the same width and every other field untouched.
// Which columns a table has in a given schema version is described by package
// schema, not by the struct: the structs carry the newest column set.
package models

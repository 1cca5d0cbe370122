// Package seed fills a store with production-shaped sample billing data.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/MatrixManAtYrService/rhizome-sub001/internal/ids"
	"github.com/MatrixManAtYrService/rhizome-sub001/internal/models"
	"github.com/MatrixManAtYrService/rhizome-sub001/internal/storage"
)

var (
	countries  = []string{"US", "GB", "DE", "CA", "AU"}
	currencies = map[string]string{"US": "USD", "GB": "GBP", "DE": "EUR", "CA": "CAD", "AU": "AUD"}
	fees       = []struct {
		code        string
		description string
		unit        int64
	}{
		{"SAAS_MONTHLY", "Monthly software plan", 1499},
		{"CARD_TXN", "Card transaction fee", 12},
		{"HARDWARE_LEASE", "Device lease", 2500},
		{"SUPPORT_PLUS", "Premium support", 999},
	}
)

// Summary counts the rows created by Generate.
type Summary struct {
	BillingEntities int
	Subscriptions   int
	Invoices        int
	LineItems       int
	Settlements     int
}

// Generate creates n billing entities, each with a subscription, a few invoices and
// settlements for the paid ones. The same seed yields the same amounts and statuses;
// identifiers are always fresh.
func Generate(ctx context.Context, store storage.Store, n int, seed uint64) (*Summary, error) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	summary := &Summary{}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	employee := ids.NewShortID()

	for i := 0; i < n; i++ {
		country := countries[rng.IntN(len(countries))]
		entity := &models.BillingEntity{
			MerchantID: ids.NewShortID(),
			EntityType: "MERCHANT",
			Country:    country,
			CreatedAt:  start.Unix(),
		}
		if err := store.CreateBillingEntity(ctx, entity); err != nil {
			return summary, fmt.Errorf("failed to seed billing entity: %w", err)
		}
		summary.BillingEntities++

		sub := &models.Subscription{
			BillingEntityID: entity.ID,
			PlanID:          ids.NewShortID(),
			Status:          "ACTIVE",
			StartDate:       start.Unix(),
			CreatedAt:       start.Unix(),
		}
		if rng.IntN(4) == 0 {
			end := start.AddDate(1, 0, 0).Unix()
			sub.EndDate = &end
			sub.Status = "CANCELLED"
		}
		if err := store.CreateSubscription(ctx, sub); err != nil {
			return summary, fmt.Errorf("failed to seed subscription: %w", err)
		}
		summary.Subscriptions++

		months := 1 + rng.IntN(3)
		for m := 0; m < months; m++ {
			invoice := newInvoice(rng, entity, sub, start.AddDate(0, m+1, 0))
			if err := store.CreateInvoice(ctx, invoice); err != nil {
				return summary, fmt.Errorf("failed to seed invoice: %w", err)
			}
			summary.Invoices++
			summary.LineItems += len(invoice.LineItems)

			if invoice.Status != "PAID" {
				continue
			}
			paymentRef := ids.NewUUID()
			settlement := &models.Settlement{
				BillingEntityID: entity.ID,
				InvoiceID:       &invoice.ID,
				Amount:          invoice.Total,
				Currency:        invoice.Currency,
				CreatedAt:       invoice.InvoiceDate + 86400,
				CreatedBy:       employee,
				PaymentRef:      &paymentRef,
			}
			if err := store.CreateSettlement(ctx, settlement); err != nil {
				return summary, fmt.Errorf("failed to seed settlement: %w", err)
			}
			summary.Settlements++
		}
	}

	slog.Info("Sample data generated",
		"billing_entities", summary.BillingEntities,
		"invoices", summary.Invoices,
		"settlements", summary.Settlements,
	)
	return summary, nil
}

func newInvoice(rng *rand.Rand, entity *models.BillingEntity, sub *models.Subscription, issued time.Time) *models.Invoice {
	invoice := &models.Invoice{
		BillingEntityID: entity.ID,
		SubscriptionID:  &sub.ID,
		Currency:        currencies[entity.Country],
		Status:          "PAID",
		InvoiceDate:     issued.Unix(),
	}
	if rng.IntN(3) == 0 {
		invoice.Status = "OPEN"
	}
	if rng.IntN(2) == 0 {
		ref := ids.NewUUID()
		invoice.ExternalRef = &ref
	}

	for _, idx := range rng.Perm(len(fees))[:1+rng.IntN(len(fees))] {
		fee := fees[idx]
		qty := int64(1 + rng.IntN(20))
		invoice.LineItems = append(invoice.LineItems, models.InvoiceLineItem{
			FeeCode:     fee.code,
			Description: fee.description,
			Quantity:    qty,
			UnitAmount:  fee.unit,
			Amount:      qty * fee.unit,
		})
		invoice.Subtotal += qty * fee.unit
	}
	invoice.Tax = invoice.Subtotal * 8 / 100
	invoice.Total = invoice.Subtotal + invoice.Tax
	return invoice
}

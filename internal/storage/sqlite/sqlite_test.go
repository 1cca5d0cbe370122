package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/MatrixManAtYrService/rhizome-sub001/internal/models"
	"github.com/MatrixManAtYrService/rhizome-sub001/internal/schema"
	"github.com/MatrixManAtYrService/rhizome-sub001/internal/storage"
)

func newTestStore(t *testing.T, opts ...Option) *SQLiteStore {
	t.Helper()

	store, err := New(filepath.Join(t.TempDir(), "nested", "test.db"), opts...)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func ptr[T any](v T) *T { return &v }

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entity := &models.BillingEntity{MerchantID: "QRSTVWXYZ2345", EntityType: "MERCHANT", Country: "US"}

	t.Run("CreateBillingEntity generates ID and CreatedAt", func(t *testing.T) {
		if err := store.CreateBillingEntity(ctx, entity); err != nil {
			t.Fatalf("CreateBillingEntity failed: %v", err)
		}
		if len(entity.ID) != 13 {
			t.Errorf("Expected 13-character ID, got %q", entity.ID)
		}
		if entity.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}

		got, err := store.GetBillingEntity(ctx, entity.ID)
		if err != nil {
			t.Fatalf("GetBillingEntity failed: %v", err)
		}
		if got.MerchantID != entity.MerchantID || got.Country != "US" || got.DeletedAt != nil {
			t.Errorf("Unexpected billing entity: %+v", got)
		}
	})

	sub := &models.Subscription{PlanID: "PLAN000000001", Status: "ACTIVE", StartDate: 1700000000, EndDate: ptr(int64(1800000000))}

	t.Run("Subscription round trip keeps optional end date", func(t *testing.T) {
		sub.BillingEntityID = entity.ID
		if err := store.CreateSubscription(ctx, sub); err != nil {
			t.Fatalf("CreateSubscription failed: %v", err)
		}
		if len(sub.ID) != 26 {
			t.Errorf("Expected ULID, got %q", sub.ID)
		}

		got, err := store.GetSubscription(ctx, sub.ID)
		if err != nil {
			t.Fatalf("GetSubscription failed: %v", err)
		}
		if got.EndDate == nil || *got.EndDate != 1800000000 {
			t.Errorf("EndDate = %v, want 1800000000", got.EndDate)
		}
	})

	invoice := &models.Invoice{
		Currency: "USD",
		Subtotal: 1500,
		Tax:      120,
		Total:    1620,
		Status:   "OPEN",
		LineItems: []models.InvoiceLineItem{
			{FeeCode: "SAAS_MONTHLY", Description: "Monthly plan", Quantity: 1, UnitAmount: 1000, Amount: 1000},
			{FeeCode: "CARD_TXN", Description: "Card transactions", Quantity: 50, UnitAmount: 10, Amount: 500},
		},
	}

	t.Run("CreateInvoice stores line items", func(t *testing.T) {
		invoice.BillingEntityID = entity.ID
		invoice.SubscriptionID = ptr(sub.ID)
		if err := store.CreateInvoice(ctx, invoice); err != nil {
			t.Fatalf("CreateInvoice failed: %v", err)
		}

		got, err := store.GetInvoice(ctx, invoice.ID)
		if err != nil {
			t.Fatalf("GetInvoice failed: %v", err)
		}
		if got.Total != 1620 || *got.SubscriptionID != sub.ID || got.ExternalRef != nil || got.Note != "" {
			t.Errorf("Unexpected invoice: %+v", got)
		}
		if len(got.LineItems) != 2 {
			t.Fatalf("Expected 2 line items, got %d", len(got.LineItems))
		}
		for i, item := range got.LineItems {
			if item.InvoiceID != invoice.ID {
				t.Errorf("Line item %d InvoiceID = %q, want %q", i, item.InvoiceID, invoice.ID)
			}
			if item.ID != invoice.LineItems[i].ID || item.Amount != invoice.LineItems[i].Amount {
				t.Errorf("Line item %d mismatch: got %+v, want %+v", i, item, invoice.LineItems[i])
			}
		}
	})

	t.Run("Settlements list newest first and delete", func(t *testing.T) {
		older := &models.Settlement{BillingEntityID: entity.ID, InvoiceID: ptr(invoice.ID), Amount: 1000, Currency: "USD", CreatedAt: 100, CreatedBy: "EMPLOYEE00001"}
		newer := &models.Settlement{BillingEntityID: entity.ID, Amount: 620, Currency: "USD", CreatedAt: 200, CreatedBy: "EMPLOYEE00001", Note: "remainder", PaymentRef: ptr("0b6f7d8e-1c2a-4b3d-9e8f-7a6b5c4d3e2f")}
		for _, s := range []*models.Settlement{older, newer} {
			if err := store.CreateSettlement(ctx, s); err != nil {
				t.Fatalf("CreateSettlement failed: %v", err)
			}
		}

		list, err := store.ListSettlementsByEntity(ctx, entity.ID)
		if err != nil {
			t.Fatalf("ListSettlementsByEntity failed: %v", err)
		}
		if len(list) != 2 || list[0].ID != newer.ID || list[1].ID != older.ID {
			t.Fatalf("Unexpected settlement order: %+v", list)
		}
		if list[0].Note != "remainder" || *list[0].PaymentRef != *newer.PaymentRef || list[0].InvoiceID != nil {
			t.Errorf("Unexpected newer settlement: %+v", list[0])
		}

		if err := store.DeleteSettlement(ctx, older.ID); err != nil {
			t.Fatalf("DeleteSettlement failed: %v", err)
		}
		if _, err := store.GetSettlement(ctx, older.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
		if err := store.DeleteSettlement(ctx, older.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound deleting twice, got %v", err)
		}
	})

	t.Run("Lookups of missing rows return ErrNotFound", func(t *testing.T) {
		if _, err := store.GetBillingEntity(ctx, "nonexistent"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetBillingEntity: %v", err)
		}
		if _, err := store.GetSubscription(ctx, "nonexistent"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetSubscription: %v", err)
		}
		if _, err := store.GetInvoice(ctx, "nonexistent"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetInvoice: %v", err)
		}
	})

	t.Run("Foreign keys are enforced", func(t *testing.T) {
		orphan := &models.Subscription{BillingEntityID: "MISSING000000", PlanID: "PLAN000000001", Status: "ACTIVE"}
		if err := store.CreateSubscription(ctx, orphan); err == nil {
			t.Error("Expected foreign key violation, got nil")
		}
	})
}

func TestRowAccess(t *testing.T) {
	ctx := context.Background()
	table, err := schema.Default().Lookup("settlement", schema.V2)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	columns := table.ColumnNames()

	t.Run("InsertRows and ScanRows round trip", func(t *testing.T) {
		store := newTestStore(t, WithForeignKeys(false))
		rows := []schema.Row{
			{"id": "a", "billing_entity_id": "e1", "amount": int64(10), "currency": "USD", "created_at": int64(1), "created_by": "u1"},
			{"id": "b", "billing_entity_id": "e1", "invoice_id": "i1", "amount": int64(20), "currency": "EUR", "created_at": int64(2), "created_by": "u2", "note": "n"},
		}
		if err := store.InsertRows(ctx, table.Name, columns, rows); err != nil {
			t.Fatalf("InsertRows failed: %v", err)
		}

		var got []schema.Row
		err := store.ScanRows(ctx, table.Name, columns, func(row schema.Row) error {
			got = append(got, row)
			return nil
		})
		if err != nil {
			t.Fatalf("ScanRows failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("Expected 2 rows, got %d", len(got))
		}
		if got[0]["id"] != "a" || got[0]["invoice_id"] != nil || got[0]["amount"] != int64(10) {
			t.Errorf("Unexpected first row: %v", got[0])
		}
		if got[1]["invoice_id"] != "i1" || got[1]["note"] != "n" {
			t.Errorf("Unexpected second row: %v", got[1])
		}
	})

	t.Run("ScanRows sees rows written through typed methods", func(t *testing.T) {
		store := newTestStore(t)
		entity := &models.BillingEntity{MerchantID: "QRSTVWXYZ2345", EntityType: "MERCHANT", Country: "DE"}
		if err := store.CreateBillingEntity(ctx, entity); err != nil {
			t.Fatalf("CreateBillingEntity failed: %v", err)
		}

		count := 0
		err := store.ScanRows(ctx, "billing_entity", []string{"id", "country"}, func(row schema.Row) error {
			count++
			if row["id"] != entity.ID || row["country"] != "DE" {
				t.Errorf("Unexpected row: %v", row)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("ScanRows failed: %v", err)
		}
		if count != 1 {
			t.Errorf("Expected 1 row, got %d", count)
		}
	})

	t.Run("Empty notes read back as empty strings", func(t *testing.T) {
		store := newTestStore(t)
		entity := &models.BillingEntity{MerchantID: "QRSTVWXYZ2345", EntityType: "MERCHANT", Country: "DE"}
		if err := store.CreateBillingEntity(ctx, entity); err != nil {
			t.Fatalf("CreateBillingEntity failed: %v", err)
		}
		settlement := &models.Settlement{BillingEntityID: entity.ID, Amount: 5, Currency: "EUR", CreatedAt: 1, CreatedBy: "EMPLOYEE00001"}
		if err := store.CreateSettlement(ctx, settlement); err != nil {
			t.Fatalf("CreateSettlement failed: %v", err)
		}

		var notes []any
		err := store.ScanRows(ctx, "settlement", []string{"note"}, func(row schema.Row) error {
			notes = append(notes, row["note"])
			return nil
		})
		if err != nil {
			t.Fatalf("ScanRows failed: %v", err)
		}
		if len(notes) != 1 || notes[0] != "" {
			t.Errorf("Expected one empty note, got %#v", notes)
		}
	})

	t.Run("ScanRows stops at callback error", func(t *testing.T) {
		store := newTestStore(t, WithForeignKeys(false))
		columns := []string{"id", "invoice_id", "fee_code", "description", "quantity", "unit_amount", "amount"}
		rows := []schema.Row{
			{"id": "a", "invoice_id": "x", "fee_code": "F", "description": "d", "quantity": 1, "unit_amount": 1, "amount": 1},
			{"id": "b", "invoice_id": "x", "fee_code": "F", "description": "d", "quantity": 1, "unit_amount": 1, "amount": 1},
		}
		if err := store.InsertRows(ctx, "invoice_line_item", columns, rows); err != nil {
			t.Fatalf("InsertRows failed: %v", err)
		}

		stop := errors.New("stop")
		calls := 0
		err := store.ScanRows(ctx, "invoice_line_item", []string{"id"}, func(schema.Row) error {
			calls++
			return stop
		})
		if !errors.Is(err, stop) {
			t.Errorf("Expected callback error, got %v", err)
		}
		if calls != 1 {
			t.Errorf("Expected 1 callback, got %d", calls)
		}
	})

	t.Run("Invalid identifiers are rejected", func(t *testing.T) {
		store := newTestStore(t)
		err := store.ScanRows(ctx, "settlement; DROP TABLE settlement", []string{"id"}, func(schema.Row) error { return nil })
		if err == nil {
			t.Error("Expected error for invalid table name")
		}
		err = store.InsertRows(ctx, "settlement", []string{"id\""}, []schema.Row{{"id\"": "x"}})
		if err == nil {
			t.Error("Expected error for invalid column name")
		}
	})
}

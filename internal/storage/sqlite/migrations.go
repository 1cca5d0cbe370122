package sqlite

import (
	"context"
	"database/sql"
)

// schemaSQL creates the billing tables with the newest column set.
// Parent tables come first because of the foreign key constraints.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS billing_entity (
    id TEXT PRIMARY KEY,
    merchant_id TEXT NOT NULL,
    entity_type TEXT NOT NULL,
    country TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    deleted_at INTEGER
);

CREATE TABLE IF NOT EXISTS subscription (
    id TEXT PRIMARY KEY,
    billing_entity_id TEXT NOT NULL,
    plan_id TEXT NOT NULL,
    status TEXT NOT NULL,
    start_date INTEGER NOT NULL,
    end_date INTEGER,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (billing_entity_id) REFERENCES billing_entity(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS invoice (
    id TEXT PRIMARY KEY,
    billing_entity_id TEXT NOT NULL,
    subscription_id TEXT,
    currency TEXT NOT NULL,
    subtotal INTEGER NOT NULL,
    tax INTEGER NOT NULL,
    total INTEGER NOT NULL,
    status TEXT NOT NULL,
    invoice_date INTEGER NOT NULL,
    note TEXT,
    external_ref TEXT,
    FOREIGN KEY (billing_entity_id) REFERENCES billing_entity(id) ON DELETE CASCADE,
    FOREIGN KEY (subscription_id) REFERENCES subscription(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS invoice_line_item (
    id TEXT PRIMARY KEY,
    invoice_id TEXT NOT NULL,
    fee_code TEXT NOT NULL,
    description TEXT NOT NULL,
    quantity INTEGER NOT NULL,
    unit_amount INTEGER NOT NULL,
    amount INTEGER NOT NULL,
    FOREIGN KEY (invoice_id) REFERENCES invoice(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS settlement (
    id TEXT PRIMARY KEY,
    billing_entity_id TEXT NOT NULL,
    invoice_id TEXT,
    amount INTEGER NOT NULL,
    currency TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    created_by TEXT NOT NULL,
    note TEXT,
    payment_ref TEXT,
    FOREIGN KEY (billing_entity_id) REFERENCES billing_entity(id) ON DELETE CASCADE,
    FOREIGN KEY (invoice_id) REFERENCES invoice(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_subscription_billing_entity_id ON subscription(billing_entity_id);
CREATE INDEX IF NOT EXISTS idx_invoice_billing_entity_id ON invoice(billing_entity_id);
CREATE INDEX IF NOT EXISTS idx_invoice_line_item_invoice_id ON invoice_line_item(invoice_id);
CREATE INDEX IF NOT EXISTS idx_settlement_billing_entity_id ON settlement(billing_entity_id);
`

// runMigrations executes the schema setup.
func runMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schemaSQL)
	return err
}

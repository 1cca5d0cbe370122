package fixture

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MatrixManAtYrService/rhizome-sub001/internal/schema"
)

func TestService_WriteReadTable(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "fixtures")

	service, err := New(ctx, dir)
	require.NoError(t, err)

	table, err := schema.Default().Lookup("settlement", schema.V1)
	require.NoError(t, err)

	rows := []schema.Row{
		{"id": "HashAAA", "billing_entity_id": "HashBBB", "invoice_id": nil, "amount": int64(1080), "currency": "USD", "created_at": int64(1700000000), "created_by": "HashCCC", "note": "first"},
		{"id": "HashDDD", "billing_entity_id": "HashBBB", "invoice_id": "HashEEE", "amount": 12.5, "currency": "EUR", "created_at": int64(1700000001), "created_by": "HashCCC", "note": nil},
	}
	require.NoError(t, service.WriteTable(ctx, table, rows))

	t.Run("document has one line per row in column order", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(dir, "settlement.jsonl"))
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		assert.Len(t, lines, 2)
		assert.True(t, strings.HasPrefix(lines[0], `{"id":"HashAAA","billing_entity_id":"HashBBB","invoice_id":null,"amount":1080,`), lines[0])
	})

	t.Run("read back decodes numbers", func(t *testing.T) {
		got, err := service.ReadTable(ctx, "settlement")
		require.NoError(t, err)
		assert.Equal(t, rows, got)
	})

	t.Run("rewrite replaces content", func(t *testing.T) {
		require.NoError(t, service.WriteTable(ctx, table, rows[:1]))
		got, err := service.ReadTable(ctx, "settlement")
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("missing table", func(t *testing.T) {
		_, err := service.ReadTable(ctx, "invoice")
		assert.Error(t, err)
	})
}

func TestNew_EmptyURL(t *testing.T) {
	_, err := New(context.Background(), "")
	assert.Error(t, err)
}

package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/licorgest/licorgest/internal/api"
	"github.com/licorgest/licorgest/internal/catalog"
)

type fakeBackend struct {
	purchases []api.Purchase
	items     []api.LineItem
	variants  []api.Variant
}

func (f *fakeBackend) ListPurchases(context.Context) ([]api.Purchase, error) {
	return f.purchases, nil
}

func (f *fakeBackend) ListLineItems(context.Context) ([]api.LineItem, error) {
	return f.items, nil
}

func (f *fakeBackend) ListVariants(context.Context) ([]api.Variant, error) {
	return f.variants, nil
}

func variant(id int64, name string, price float64, stock int) api.Variant {
	return api.Variant{
		ID: id, Precio: price, Stock: stock,
		Producto: &api.Producto{Nombre: name},
	}
}

func TestSummaryAggregates(t *testing.T) {
	backend := &fakeBackend{
		purchases: []api.Purchase{
			{ID: 1, Fecha: "2026-08-28", Total: 20.0, IDUsuario: 7},
			{ID: 2, Fecha: "2026-08-29", Total: 9.0, IDUsuario: 7},
			{ID: 3, Fecha: "2026-08-29", Total: 35.0, IDUsuario: 8},
		},
		items: []api.LineItem{
			{ID: 1, Cantidad: 2, Subtotal: 20.0, IDCompra: 1, IDVariante: 1},
			{ID: 2, Cantidad: 6, Subtotal: 9.0, IDCompra: 2, IDVariante: 2},
			{ID: 3, Cantidad: 1, Subtotal: 35.0, IDCompra: 3, IDVariante: 3},
		},
		variants: []api.Variant{
			variant(1, "Ron Viejo", 10.0, 3),
			variant(2, "Pilsener", 1.5, 24),
			variant(3, "Whisky", 35.0, 4),
		},
	}

	store := catalog.NewStore(backend)
	_, err := store.Refresh(context.Background())
	require.NoError(t, err)

	svc := NewService(backend, store)
	sum, err := svc.Summary(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, 64.0, sum.TotalRevenue)
	assert.Equal(t, 3, sum.TotalPurchases)

	require.Len(t, sum.SalesByDay, 2)
	assert.Equal(t, DaySales{Date: "2026-08-28", Total: 20.0, Purchases: 1}, sum.SalesByDay[0])
	assert.Equal(t, DaySales{Date: "2026-08-29", Total: 44.0, Purchases: 2}, sum.SalesByDay[1])

	// Top sellers sorted by units, capped at topN.
	require.Len(t, sum.TopVariants, 2)
	assert.Equal(t, "Pilsener", sum.TopVariants[0].Name)
	assert.Equal(t, 6, sum.TopVariants[0].Units)
	assert.Equal(t, "Ron Viejo", sum.TopVariants[1].Name)

	// Low stock sorted ascending by level.
	require.Len(t, sum.LowStock, 2)
	assert.Equal(t, StockAlert{VariantID: 1, Name: "Ron Viejo", Stock: 3}, sum.LowStock[0])
	assert.Equal(t, StockAlert{VariantID: 3, Name: "Whisky", Stock: 4}, sum.LowStock[1])
}

func TestSummaryWithNoSales(t *testing.T) {
	backend := &fakeBackend{}
	store := catalog.NewStore(backend)

	svc := NewService(backend, store)
	sum, err := svc.Summary(context.Background(), 5)
	require.NoError(t, err)

	assert.Zero(t, sum.TotalRevenue)
	assert.Zero(t, sum.TotalPurchases)
	assert.Empty(t, sum.SalesByDay)
	assert.Empty(t, sum.TopVariants)
	assert.Empty(t, sum.LowStock)
}

func TestTopVariantNameFallsBackToID(t *testing.T) {
	backend := &fakeBackend{
		items: []api.LineItem{
			{ID: 1, Cantidad: 1, Subtotal: 5.0, IDCompra: 1, IDVariante: 77},
		},
	}
	store := catalog.NewStore(backend)

	svc := NewService(backend, store)
	sum, err := svc.Summary(context.Background(), 5)
	require.NoError(t, err)

	require.Len(t, sum.TopVariants, 1)
	assert.Equal(t, "variante 77", sum.TopVariants[0].Name)
}

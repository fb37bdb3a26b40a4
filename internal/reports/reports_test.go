package reports

import (
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/licorgest/licorgest/internal/api"
	"github.com/licorgest/licorgest/internal/catalog"
	"github.com/licorgest/licorgest/pkg/storage"
)

// memDisk is an in-memory storage disk for tests.
type memDisk struct{ files map[string][]byte }

func newMemDisk() *memDisk { return &memDisk{files: map[string][]byte{}} }

func (d *memDisk) Put(path string, content []byte) error {
	d.files[path] = content
	return nil
}

func (d *memDisk) Get(path string) ([]byte, error) {
	raw, ok := d.files[path]
	if !ok {
		return nil, fmt.Errorf("not found: %s", path)
	}
	return raw, nil
}

func (d *memDisk) Exists(path string) bool { _, ok := d.files[path]; return ok }

func (d *memDisk) Size(path string) (int64, error) { return int64(len(d.files[path])), nil }

func (d *memDisk) Delete(path string) error {
	delete(d.files, path)
	return nil
}

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

func newTestService(t *testing.T, backend *fakeBackend) (*Service, *memDisk) {
	t.Helper()

	disk := newMemDisk()
	storage.RegisterDisk("mem", disk)

	store := catalog.NewStore(backend)
	if len(backend.variants) > 0 {
		_, err := store.Refresh(context.Background())
		require.NoError(t, err)
	}

	svc, err := Open(":memory:", backend, store)
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC) }
	return svc, disk
}

func saleFixture() *fakeBackend {
	return &fakeBackend{
		purchases: []api.Purchase{
			{ID: 1, Fecha: "2026-08-20", Total: 20.0, IDUsuario: 7},
			{ID: 2, Fecha: "2026-08-29", Total: 9.0, IDUsuario: 8},
		},
		items: []api.LineItem{
			{ID: 10, Cantidad: 2, Subtotal: 20.0, IDCompra: 1, IDVariante: 1},
			{ID: 11, Cantidad: 6, Subtotal: 9.0, IDCompra: 2, IDVariante: 2},
		},
		variants: []api.Variant{
			{ID: 1, Precio: 10.0, Stock: 3, Cantidad: "750ml",
				Producto: &api.Producto{Nombre: "Ron Viejo", Categoria: &api.Categoria{Nombre: "Ron"}}},
			{ID: 2, Precio: 1.5, Stock: 24, Cantidad: "330ml",
				Producto: &api.Producto{Nombre: "Pilsener", Categoria: &api.Categoria{Nombre: "Cerveza"}}},
		},
	}
}

func TestGenerateSalesFiltersDateRange(t *testing.T) {
	svc, disk := newTestService(t, saleFixture())

	r, err := svc.GenerateSales(context.Background(), "2026-08-25", "2026-08-31")
	require.NoError(t, err)

	assert.Equal(t, TypeSales, r.Type)
	assert.True(t, disk.Exists(r.Path))
	assert.Equal(t, int64(len(disk.files[r.Path])), r.SizeBytes)

	rows := readCSV(t, disk.files[r.Path])
	require.Len(t, rows, 2) // header + one purchase in range
	assert.Equal(t, []string{"fecha", "compra_id", "usuario_id", "variante", "cantidad", "subtotal", "total_compra"}, rows[0])
	assert.Equal(t, []string{"2026-08-29", "2", "8", "Pilsener", "6", "9.00", "9.00"}, rows[1])
}

func TestGenerateSalesEmptyRangeStillRecords(t *testing.T) {
	svc, disk := newTestService(t, saleFixture())

	r, err := svc.GenerateSales(context.Background(), "2030-01-01", "2030-12-31")
	require.NoError(t, err)

	rows := readCSV(t, disk.files[r.Path])
	assert.Len(t, rows, 1) // header only

	ledger, err := svc.List()
	require.NoError(t, err)
	assert.Len(t, ledger, 1)
}

func TestGenerateStockListsSnapshot(t *testing.T) {
	svc, disk := newTestService(t, saleFixture())

	r, err := svc.GenerateStock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TypeStock, r.Type)
	assert.True(t, strings.HasPrefix(r.Path, "reports/stock_"))

	rows := readCSV(t, disk.files[r.Path])
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"1", "Ron Viejo", "Ron", "750ml", "10.00", "3"}, rows[1])
	assert.Equal(t, []string{"2", "Pilsener", "Cerveza", "330ml", "1.50", "24"}, rows[2])
}

func TestListNewestFirstAndDelete(t *testing.T) {
	svc, disk := newTestService(t, saleFixture())

	first, err := svc.GenerateStock(context.Background())
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2026, 8, 29, 13, 0, 0, 0, time.UTC) }
	second, err := svc.GenerateSales(context.Background(), "", "")
	require.NoError(t, err)

	ledger, err := svc.List()
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	assert.Equal(t, second.ID, ledger[0].ID)
	assert.Equal(t, first.ID, ledger[1].ID)

	require.NoError(t, svc.Delete(first.ID))
	assert.False(t, disk.Exists(first.Path))

	ledger, err = svc.List()
	require.NoError(t, err)
	assert.Len(t, ledger, 1)
}

func TestFileRoundTrip(t *testing.T) {
	svc, _ := newTestService(t, saleFixture())

	r, err := svc.GenerateStock(context.Background())
	require.NoError(t, err)

	got, raw, err := svc.File(r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.Path, got.Path)
	assert.Contains(t, string(raw), "Ron Viejo")
}

func readCSV(t *testing.T, raw []byte) [][]string {
	t.Helper()
	rows, err := csv.NewReader(strings.NewReader(string(raw))).ReadAll()
	require.NoError(t, err)
	return rows
}

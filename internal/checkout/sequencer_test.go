package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/licorgest/licorgest/internal/api"
	"github.com/licorgest/licorgest/internal/cart"
	"github.com/licorgest/licorgest/internal/catalog"
	"github.com/licorgest/licorgest/internal/identity"
)

// fakeBackend records every call and can be told to fail specific steps.
type fakeBackend struct {
	mu sync.Mutex

	purchases        []api.Purchase
	deletedPurchases []int64
	lineItems        []api.LineItem
	deletedLineItems []int64
	stockPatches     map[int64]int
	listCalls        int

	failLineItemForVariant int64
	nextLineItemID         int64
	catalog                []api.Variant
}

func newFakeBackend(variants ...api.Variant) *fakeBackend {
	return &fakeBackend{
		stockPatches:   make(map[int64]int),
		nextLineItemID: 100,
		catalog:        variants,
	}
}

func (f *fakeBackend) CreatePurchase(_ context.Context, p api.Purchase) (api.Purchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = int64(len(f.purchases) + 1)
	f.purchases = append(f.purchases, p)
	return p, nil
}

func (f *fakeBackend) DeletePurchase(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedPurchases = append(f.deletedPurchases, id)
	return nil
}

func (f *fakeBackend) CreateLineItem(_ context.Context, li api.LineItem) (api.LineItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failLineItemForVariant != 0 && li.IDVariante == f.failLineItemForVariant {
		return api.LineItem{}, errors.New("detalle rechazado")
	}
	f.nextLineItemID++
	li.ID = f.nextLineItemID
	f.lineItems = append(f.lineItems, li)
	return li, nil
}

func (f *fakeBackend) DeleteLineItem(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedLineItems = append(f.deletedLineItems, id)
	return nil
}

func (f *fakeBackend) PatchStock(_ context.Context, id int64, stock int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stockPatches[id] = stock
	return nil
}

func (f *fakeBackend) ListVariants(context.Context) ([]api.Variant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return f.catalog, nil
}

func variant(id int64, name string, price float64, stock int) api.Variant {
	return api.Variant{
		ID: id, Precio: price, Stock: stock,
		Producto: &api.Producto{Nombre: name},
	}
}

func cashier() identity.Resolution {
	return identity.Resolution{UserID: 7, Source: identity.SourceSession}
}

func newSequencer(backend *fakeBackend) (*Sequencer, *catalog.Store) {
	store := catalog.NewStore(backend)
	seq := New(backend, store, 4, WithClock(func() time.Time {
		return time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)
	}))
	return seq, store
}

func TestSubmitCommitsFullSale(t *testing.T) {
	backend := newFakeBackend(variant(1, "Ron Viejo", 10.0, 3))
	seq, _ := newSequencer(backend)
	defer seq.Close()

	c := cart.New()
	_, err := c.SetQuantity(variant(1, "Ron Viejo", 10.0, 5), 2)
	require.NoError(t, err)

	result, err := seq.Submit(context.Background(), c, cashier())
	require.NoError(t, err)

	assert.Equal(t, int64(1), result.PurchaseID)
	assert.Equal(t, "20.00", result.TotalText)
	assert.Equal(t, 1, result.Items)

	require.Len(t, backend.purchases, 1)
	p := backend.purchases[0]
	assert.Equal(t, "2026-08-29", p.Fecha)
	assert.Equal(t, 20.0, p.Total)
	assert.Equal(t, int64(7), p.IDUsuario)

	require.Len(t, backend.lineItems, 1)
	li := backend.lineItems[0]
	assert.Equal(t, 2, li.Cantidad)
	assert.Equal(t, 20.0, li.Subtotal)
	assert.Equal(t, int64(1), li.IDCompra)
	assert.Equal(t, int64(1), li.IDVariante)

	// Stock patched from the pre-sale level held in the cart line.
	assert.Equal(t, 3, backend.stockPatches[1])

	// Catalog re-fetched and cart cleared.
	assert.Equal(t, 1, backend.listCalls)
	assert.True(t, c.Empty())
}

func TestSubmitRejectsEmptyCart(t *testing.T) {
	backend := newFakeBackend()
	seq, _ := newSequencer(backend)
	defer seq.Close()

	_, err := seq.Submit(context.Background(), cart.New(), cashier())
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, backend.purchases)
}

func TestSubmitRejectsUnresolvedIdentity(t *testing.T) {
	backend := newFakeBackend()
	seq, _ := newSequencer(backend)
	defer seq.Close()

	c := cart.New()
	c.SetQuantity(variant(1, "Ron Viejo", 10.0, 5), 1)

	_, err := seq.Submit(context.Background(), c, identity.Resolution{})
	assert.ErrorIs(t, err, ErrNoIdentity)
	assert.Empty(t, backend.purchases)

	// The cart is untouched and usable afterwards.
	assert.Equal(t, 1, c.Quantity(1))
	_, err = c.Increment(variant(1, "Ron Viejo", 10.0, 5))
	require.NoError(t, err)
}

func TestPartialLineItemFailureCompensates(t *testing.T) {
	backend := newFakeBackend(variant(1, "Ron Viejo", 10.0, 5), variant(2, "Pilsener", 1.5, 24))
	backend.failLineItemForVariant = 2
	seq, _ := newSequencer(backend)
	defer seq.Close()

	c := cart.New()
	c.SetQuantity(variant(1, "Ron Viejo", 10.0, 5), 2)
	c.SetQuantity(variant(2, "Pilsener", 1.5, 24), 6)

	_, err := seq.Submit(context.Background(), c, cashier())
	require.Error(t, err)

	// Everything written was undone: surviving line items then the header.
	backend.mu.Lock()
	written := len(backend.lineItems)
	deletedItems := len(backend.deletedLineItems)
	backend.mu.Unlock()
	assert.Equal(t, written, deletedItems)
	assert.Equal(t, []int64{1}, backend.deletedPurchases)

	// No stock was patched for a voided sale.
	assert.Empty(t, backend.stockPatches)

	// Catalog still re-fetched; cart handed back intact and editable.
	assert.Equal(t, 1, backend.listCalls)
	assert.Equal(t, 2, c.Quantity(1))
	assert.Equal(t, 6, c.Quantity(2))
	_, err = c.Increment(variant(1, "Ron Viejo", 10.0, 5))
	require.NoError(t, err)
}

func TestSubmitWhileLockedFails(t *testing.T) {
	backend := newFakeBackend()
	seq, _ := newSequencer(backend)
	defer seq.Close()

	c := cart.New()
	c.SetQuantity(variant(1, "Ron Viejo", 10.0, 5), 1)
	_, err := c.Freeze()
	require.NoError(t, err)

	_, err = seq.Submit(context.Background(), c, cashier())
	assert.ErrorIs(t, err, cart.ErrLocked)
}

func TestParallelLineItemsAllWritten(t *testing.T) {
	variants := []api.Variant{
		variant(1, "Ron Viejo", 10.0, 9),
		variant(2, "Pilsener", 1.5, 24),
		variant(3, "Whisky", 35.0, 4),
		variant(4, "Vodka", 18.0, 7),
	}
	backend := newFakeBackend(variants...)
	seq, _ := newSequencer(backend)
	defer seq.Close()

	c := cart.New()
	for _, v := range variants {
		c.SetQuantity(v, 2)
	}

	result, err := seq.Submit(context.Background(), c, cashier())
	require.NoError(t, err)
	assert.Equal(t, 4, result.Items)

	require.Len(t, backend.lineItems, 4)
	for _, v := range variants {
		assert.Equal(t, v.Stock-2, backend.stockPatches[v.ID], "variant %d", v.ID)
	}
}

package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/licorgest/licorgest/internal/api"
	"github.com/licorgest/licorgest/internal/catalog"
)

func variant(id int64, name string, price float64, stock int) api.Variant {
	return api.Variant{
		ID: id, Precio: price, Stock: stock,
		Producto: &api.Producto{Nombre: name},
	}
}

func TestIncrementAccumulatesAndDerivesDisplayStock(t *testing.T) {
	c := New()
	v := variant(1, "Ron Viejo", 10.0, 5)

	for i := 0; i < 3; i++ {
		_, err := c.Increment(v)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, c.Quantity(1))
	assert.Equal(t, 2, c.DisplayStock(v))
	assert.Equal(t, "30.00", c.Total().String())
}

func TestIncrementClampsAtStock(t *testing.T) {
	c := New()
	v := variant(1, "Ron Viejo", 10.0, 2)

	for i := 0; i < 5; i++ {
		c.Increment(v)
	}

	assert.Equal(t, 2, c.Quantity(1))
	assert.Equal(t, 0, c.DisplayStock(v))
}

func TestSetQuantityClampsToStock(t *testing.T) {
	c := New()
	v := variant(1, "Ron Viejo", 10.0, 5)

	qty, err := c.SetQuantity(v, 999)
	require.NoError(t, err)
	assert.Equal(t, 5, qty)

	qty, err = c.SetQuantity(v, -3)
	require.NoError(t, err)
	assert.Equal(t, 0, qty)
	assert.True(t, c.Empty())
}

func TestDecrementRemovesLineAtZero(t *testing.T) {
	c := New()
	v := variant(1, "Ron Viejo", 10.0, 5)
	c.Increment(v)

	qty, err := c.Decrement(1)
	require.NoError(t, err)
	assert.Equal(t, 0, qty)
	assert.True(t, c.Empty())

	// Decrementing an absent line stays at zero.
	qty, err = c.Decrement(1)
	require.NoError(t, err)
	assert.Equal(t, 0, qty)
}

func TestRemoveIsIdempotent(t *testing.T) {
	c := New()
	c.Increment(variant(1, "Ron Viejo", 10.0, 5))

	require.NoError(t, c.Remove(1))
	require.NoError(t, c.Remove(1))
	assert.True(t, c.Empty())
}

func TestTotalSumsMultipleLines(t *testing.T) {
	c := New()
	c.SetQuantity(variant(1, "Ron Viejo", 10.0, 5), 2)
	c.SetQuantity(variant(2, "Pilsener", 1.5, 24), 6)

	assert.Equal(t, "29.00", c.Total().String())

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, int64(1), lines[0].VariantID)
	assert.Equal(t, "20.00", lines[0].Subtotal().String())
	assert.Equal(t, "9.00", lines[1].Subtotal().String())
}

func TestReconcileReclampsAndDropsVanished(t *testing.T) {
	c := New()
	c.SetQuantity(variant(1, "Ron Viejo", 10.0, 5), 5)
	c.SetQuantity(variant(2, "Pilsener", 1.5, 24), 2)

	snap := refreshedSnapshot(t, []api.Variant{
		variant(1, "Ron Viejo", 12.0, 3), // stock dropped, price changed
		// variant 2 vanished
	})

	require.NoError(t, c.Reconcile(snap))

	assert.Equal(t, 3, c.Quantity(1))
	assert.Equal(t, 0, c.Quantity(2))
	assert.Equal(t, "36.00", c.Total().String())
}

func TestFreezeBlocksEditsUntilUnfreeze(t *testing.T) {
	c := New()
	v := variant(1, "Ron Viejo", 10.0, 5)
	c.SetQuantity(v, 2)

	frozen, err := c.Freeze()
	require.NoError(t, err)
	require.Len(t, frozen, 1)
	assert.Equal(t, 2, frozen[0].Qty)

	_, err = c.Increment(v)
	assert.ErrorIs(t, err, ErrLocked)
	assert.ErrorIs(t, c.Remove(1), ErrLocked)
	assert.ErrorIs(t, c.Clear(), ErrLocked)

	// The frozen copy is isolated from later state.
	c.Unfreeze()
	_, err = c.Increment(v)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Quantity(1))
	assert.Equal(t, 2, frozen[0].Qty)
}

func TestCommitClearEmptiesAndUnlocks(t *testing.T) {
	c := New()
	c.SetQuantity(variant(1, "Ron Viejo", 10.0, 5), 2)

	_, err := c.Freeze()
	require.NoError(t, err)

	c.CommitClear()
	assert.True(t, c.Empty())

	_, err = c.Increment(variant(1, "Ron Viejo", 10.0, 5))
	require.NoError(t, err)
}

func TestFreezeEmptyCartReturnsNoLines(t *testing.T) {
	c := New()
	frozen, err := c.Freeze()
	require.NoError(t, err)
	assert.Nil(t, frozen)

	// An empty freeze does not lock the cart.
	_, err = c.Increment(variant(1, "Ron Viejo", 10.0, 5))
	require.NoError(t, err)
}

type staticFetcher struct{ variants []api.Variant }

func (f staticFetcher) ListVariants(context.Context) ([]api.Variant, error) {
	return f.variants, nil
}

func refreshedSnapshot(t *testing.T, variants []api.Variant) *catalog.Snapshot {
	t.Helper()
	st := catalog.NewStore(staticFetcher{variants: variants})
	snap, err := st.Refresh(context.Background())
	require.NoError(t, err)
	return snap
}

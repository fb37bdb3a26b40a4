package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/licorgest/licorgest/internal/api"
	"github.com/licorgest/licorgest/internal/cart"
	"github.com/licorgest/licorgest/internal/catalog"
	"github.com/licorgest/licorgest/internal/checkout"
	"github.com/licorgest/licorgest/pkg/router"
	"github.com/licorgest/licorgest/pkg/session"
)

// fakeBackend implements both the catalog fetcher and the checkout backend.
type fakeBackend struct {
	variants  []api.Variant
	purchases []api.Purchase
	lineItems []api.LineItem
	patches   map[int64]int
}

func (f *fakeBackend) ListVariants(context.Context) ([]api.Variant, error) {
	return f.variants, nil
}

func (f *fakeBackend) CreatePurchase(_ context.Context, p api.Purchase) (api.Purchase, error) {
	p.ID = int64(len(f.purchases) + 1)
	f.purchases = append(f.purchases, p)
	return p, nil
}

func (f *fakeBackend) DeletePurchase(context.Context, int64) error { return nil }

func (f *fakeBackend) CreateLineItem(_ context.Context, li api.LineItem) (api.LineItem, error) {
	li.ID = int64(len(f.lineItems) + 100)
	f.lineItems = append(f.lineItems, li)
	return li, nil
}

func (f *fakeBackend) DeleteLineItem(context.Context, int64) error { return nil }

func (f *fakeBackend) PatchStock(_ context.Context, id int64, stock int) error {
	if f.patches == nil {
		f.patches = map[int64]int{}
	}
	f.patches[id] = stock
	return nil
}

func newShopRouter(t *testing.T, backend *fakeBackend) (http.Handler, *checkout.Sequencer) {
	t.Helper()

	store := catalog.NewStore(backend)
	_, err := store.Refresh(context.Background())
	require.NoError(t, err)

	seq := checkout.New(backend, store, 2)
	shop := NewShopController(store, cart.NewRegistry(), seq)

	r := router.New()
	r.Use(session.Middleware(session.DefaultOptions()))
	r.Get("/api/catalogo", "catalog.list", shop.Catalog)
	r.Post("/api/carrito/{id}/incrementar", "cart.increment", shop.Increment)
	r.Put("/api/carrito/{id}", "cart.set", shop.SetQuantity)
	r.Delete("/api/carrito/{id}", "cart.remove", shop.RemoveItem)
	r.Get("/api/carrito", "cart.show", shop.Cart)
	r.Post("/api/checkout", "checkout.submit", shop.Checkout)

	return r.Handler(), seq
}

func doJSON(t *testing.T, h http.Handler, method, target, body string) (int, map[string]interface{}) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	req.AddCookie(&http.Cookie{Name: "licorgest_session", Value: "caja-1"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var payload map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	}
	return rec.Code, payload
}

func shopFixture() *fakeBackend {
	return &fakeBackend{variants: []api.Variant{
		{ID: 1, Precio: 10.0, Stock: 5, Cantidad: "750ml",
			Producto: &api.Producto{Nombre: "Ron Viejo", Categoria: &api.Categoria{Nombre: "Ron"}}},
	}}
}

func TestCatalogReflectsCartReservations(t *testing.T) {
	h, seq := newShopRouter(t, shopFixture())
	defer seq.Close()

	for i := 0; i < 3; i++ {
		code, _ := doJSON(t, h, http.MethodPost, "/api/carrito/1/incrementar", "")
		require.Equal(t, http.StatusOK, code)
	}

	code, payload := doJSON(t, h, http.MethodGet, "/api/catalogo", "")
	require.Equal(t, http.StatusOK, code)

	items := payload["data"].(map[string]interface{})["items"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, float64(2), item["display_stock"])
	assert.Equal(t, float64(3), item["in_cart"])

	code, payload = doJSON(t, h, http.MethodGet, "/api/carrito", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "30.00", payload["data"].(map[string]interface{})["total"])
}

func TestSetQuantityClampsViaHTTP(t *testing.T) {
	h, seq := newShopRouter(t, shopFixture())
	defer seq.Close()

	code, payload := doJSON(t, h, http.MethodPut, "/api/carrito/1", `{"cantidad": 999}`)
	require.Equal(t, http.StatusOK, code)

	lines := payload["data"].(map[string]interface{})["lines"].([]interface{})
	require.Len(t, lines, 1)
	assert.Equal(t, float64(5), lines[0].(map[string]interface{})["qty"])
}

func TestUnknownVariantIs404(t *testing.T) {
	h, seq := newShopRouter(t, shopFixture())
	defer seq.Close()

	code, _ := doJSON(t, h, http.MethodPost, "/api/carrito/99/incrementar", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCheckoutWithoutIdentityIs401(t *testing.T) {
	h, seq := newShopRouter(t, shopFixture())
	defer seq.Close()

	code, _ := doJSON(t, h, http.MethodPost, "/api/carrito/1/incrementar", "")
	require.Equal(t, http.StatusOK, code)

	code, _ = doJSON(t, h, http.MethodPost, "/api/checkout", "")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestCheckoutEmptyCartIs400(t *testing.T) {
	h, seq := newShopRouter(t, shopFixture())
	defer seq.Close()

	code, _ := doJSON(t, h, http.MethodPost, "/api/checkout", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRemoveItemTwiceStaysOK(t *testing.T) {
	h, seq := newShopRouter(t, shopFixture())
	defer seq.Close()

	doJSON(t, h, http.MethodPost, "/api/carrito/1/incrementar", "")

	code, _ := doJSON(t, h, http.MethodDelete, "/api/carrito/1", "")
	require.Equal(t, http.StatusOK, code)
	code, payload := doJSON(t, h, http.MethodDelete, "/api/carrito/1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, payload["data"].(map[string]interface{})["lines"])
}

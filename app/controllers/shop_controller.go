package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/licorgest/licorgest/internal/api"
	"github.com/licorgest/licorgest/internal/cart"
	"github.com/licorgest/licorgest/internal/catalog"
	"github.com/licorgest/licorgest/internal/checkout"
	"github.com/licorgest/licorgest/internal/identity"
	"github.com/licorgest/licorgest/pkg/bind"
	"github.com/licorgest/licorgest/pkg/response"
	"github.com/licorgest/licorgest/pkg/session"
)

// ShopController serves the POS floor: catalog browsing, the session cart,
// and checkout.
type ShopController struct {
	store     *catalog.Store
	carts     *cart.Registry
	sequencer *checkout.Sequencer
}

func NewShopController(store *catalog.Store, carts *cart.Registry, seq *checkout.Sequencer) *ShopController {
	return &ShopController{store: store, carts: carts, sequencer: seq}
}

// catalogItem is a variant as the shelf shows it: stock already net of the
// session's cart.
type catalogItem struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	Category     string  `json:"category,omitempty"`
	Presentation string  `json:"presentation,omitempty"`
	Image        string  `json:"image,omitempty"`
	Price        float64 `json:"price"`
	DisplayStock int     `json:"display_stock"`
	InCart       int     `json:"in_cart"`
}

type cartLine struct {
	VariantID int64  `json:"variant_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Qty       int    `json:"qty"`
	Subtotal  string `json:"subtotal"`
}

type cartView struct {
	Lines []cartLine `json:"lines"`
	Total string     `json:"total"`
	Items int        `json:"items"`
}

// Catalog lists variants, filtered by ?q= and ?categoria=, with stock
// figures net of the caller's cart.
func (c *ShopController) Catalog(w http.ResponseWriter, r *http.Request) {
	snap := c.store.Snapshot()
	if len(snap.Variants) == 0 {
		// First hit after boot; try once, serve whatever we have.
		snap, _ = c.store.Refresh(r.Context())
	}

	sessCart := c.carts.Get(session.FromCtx(r).ID())
	matches := snap.Filter(r.URL.Query().Get("q"), r.URL.Query().Get("categoria"))

	items := make([]catalogItem, 0, len(matches))
	for _, v := range matches {
		item := catalogItem{
			ID:           v.ID,
			Name:         v.Name(),
			Category:     v.CategoryName(),
			Presentation: v.Cantidad,
			Image:        v.Imagen,
			Price:        v.Precio,
			DisplayStock: sessCart.DisplayStock(v),
			InCart:       sessCart.Quantity(v.ID),
		}
		if v.Producto != nil {
			item.Description = v.Producto.Descripcion
		}
		items = append(items, item)
	}

	response.Success(w, map[string]interface{}{
		"items":      items,
		"categories": snap.Categories(),
		"fetched_at": snap.FetchedAt,
	})
}

// RefreshCatalog forces a re-fetch and reconciles the caller's cart against
// the new stock levels.
func (c *ShopController) RefreshCatalog(w http.ResponseWriter, r *http.Request) {
	snap, err := c.store.Refresh(r.Context())
	if err != nil {
		// Stale but available: report the failure, keep serving old data.
		response.Error(w, http.StatusBadGateway, "catalog refresh failed, serving previous data")
		return
	}

	sessCart := c.carts.Get(session.FromCtx(r).ID())
	if err := sessCart.Reconcile(snap); err != nil {
		response.Error(w, http.StatusConflict, "cart is locked by a checkout in progress")
		return
	}

	response.Success(w, map[string]interface{}{
		"variants":   len(snap.Variants),
		"fetched_at": snap.FetchedAt,
	})
}

// Cart returns the caller's cart.
func (c *ShopController) Cart(w http.ResponseWriter, r *http.Request) {
	response.Success(w, c.viewCart(r))
}

// Increment adds one unit of a variant to the cart.
func (c *ShopController) Increment(w http.ResponseWriter, r *http.Request) {
	c.adjust(w, r, func(sessCart *cart.Cart, v api.Variant) (int, error) {
		return sessCart.Increment(v)
	})
}

// Decrement removes one unit of a variant from the cart.
func (c *ShopController) Decrement(w http.ResponseWriter, r *http.Request) {
	id, ok := variantID(w, r)
	if !ok {
		return
	}
	sessCart := c.carts.Get(session.FromCtx(r).ID())
	if _, err := sessCart.Decrement(id); err != nil {
		lockedError(w, err)
		return
	}
	response.Success(w, c.viewCart(r))
}

// SetQuantity sets the absolute quantity of a variant, clamped to stock.
func (c *ShopController) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Cantidad int `json:"cantidad" validate:"gte=0"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	c.adjust(w, r, func(sessCart *cart.Cart, v api.Variant) (int, error) {
		return sessCart.SetQuantity(v, body.Cantidad)
	})
}

// RemoveItem deletes a variant's line from the cart.
func (c *ShopController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := variantID(w, r)
	if !ok {
		return
	}
	sessCart := c.carts.Get(session.FromCtx(r).ID())
	if err := sessCart.Remove(id); err != nil {
		lockedError(w, err)
		return
	}
	response.Success(w, c.viewCart(r))
}

// ClearCart empties the cart.
func (c *ShopController) ClearCart(w http.ResponseWriter, r *http.Request) {
	sessCart := c.carts.Get(session.FromCtx(r).ID())
	if err := sessCart.Clear(); err != nil {
		lockedError(w, err)
		return
	}
	response.Success(w, c.viewCart(r))
}

// Checkout submits the cart as a sale.
func (c *ShopController) Checkout(w http.ResponseWriter, r *http.Request) {
	sess := session.FromCtx(r)
	sessCart := c.carts.Get(sess.ID())

	who := identity.FromSession(sess)
	result, err := c.sequencer.Submit(r.Context(), sessCart, who)
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		response.Error(w, http.StatusBadRequest, "cart is empty")
	case errors.Is(err, checkout.ErrNoIdentity):
		response.Error(w, http.StatusUnauthorized, "no user identity; log in first")
	case errors.Is(err, cart.ErrLocked):
		response.Error(w, http.StatusConflict, "a checkout is already in progress")
	case err != nil:
		response.Error(w, http.StatusBadGateway, "checkout failed; the cart was preserved")
	default:
		response.Created(w, result)
	}
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (c *ShopController) adjust(w http.ResponseWriter, r *http.Request, op func(*cart.Cart, api.Variant) (int, error)) {
	id, ok := variantID(w, r)
	if !ok {
		return
	}
	v, found := c.store.Snapshot().Get(id)
	if !found {
		response.NotFound(w)
		return
	}
	sessCart := c.carts.Get(session.FromCtx(r).ID())
	if _, err := op(sessCart, v); err != nil {
		lockedError(w, err)
		return
	}
	response.Success(w, c.viewCart(r))
}

func (c *ShopController) viewCart(r *http.Request) cartView {
	sessCart := c.carts.Get(session.FromCtx(r).ID())

	lines := sessCart.Lines()
	view := cartView{Lines: make([]cartLine, 0, len(lines)), Total: sessCart.Total().String()}
	for _, l := range lines {
		view.Lines = append(view.Lines, cartLine{
			VariantID: l.VariantID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice.String(),
			Qty:       l.Qty,
			Subtotal:  l.Subtotal().String(),
		})
		view.Items += l.Qty
	}
	return view
}

func variantID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(w, http.StatusBadRequest, "invalid variant id")
		return 0, false
	}
	return id, true
}

func lockedError(w http.ResponseWriter, err error) {
	if errors.Is(err, cart.ErrLocked) {
		response.Error(w, http.StatusConflict, "cart is locked by a checkout in progress")
		return
	}
	response.Error(w, http.StatusInternalServerError, err.Error())
}

package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/licorgest/licorgest/internal/api"
	"github.com/licorgest/licorgest/internal/catalog"
	"github.com/licorgest/licorgest/pkg/bind"
	"github.com/licorgest/licorgest/pkg/middleware"
	"github.com/licorgest/licorgest/pkg/money"
	"github.com/licorgest/licorgest/pkg/response"
)

// AdminController proxies catalog maintenance (products, categories,
// variants, users) to the inventory API, adding validation in front.
// Mutations invalidate the local catalog snapshot by forcing a refresh.
type AdminController struct {
	client *api.Client
	store  *catalog.Store
}

func NewAdminController(client *api.Client, store *catalog.Store) *AdminController {
	return &AdminController{client: client, store: store}
}

// ── Products ─────────────────────────────────────────────────────────────────

type productInput struct {
	Nombre      string `json:"nombre" validate:"required,min=2,max=150"`
	Descripcion string `json:"descripcion" validate:"max=500"`
	IDCategoria int64  `json:"id_categoria" validate:"required,gte=1"`
}

func (c *AdminController) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := c.client.ListProducts(r.Context())
	if err != nil {
		upstreamError(w, err)
		return
	}
	response.Success(w, products)
}

func (c *AdminController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var body productInput
	if !decode(w, r, &body) {
		return
	}
	created, err := c.client.CreateProduct(r.Context(), middleware.TokenFromCtx(r.Context()), api.Producto{
		Nombre: body.Nombre, Descripcion: body.Descripcion, IDCategoria: body.IDCategoria,
	})
	if err != nil {
		upstreamError(w, err)
		return
	}
	response.Created(w, created)
}

func (c *AdminController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body productInput
	if !decode(w, r, &body) {
		return
	}
	err := c.client.UpdateProduct(r.Context(), middleware.TokenFromCtx(r.Context()), id, api.Producto{
		Nombre: body.Nombre, Descripcion: body.Descripcion, IDCategoria: body.IDCategoria,
	})
	if err != nil {
		upstreamError(w, err)
		return
	}
	c.refresh(r)
	response.Message(w, "product updated")
}

func (c *AdminController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := c.client.DeleteProduct(r.Context(), middleware.TokenFromCtx(r.Context()), id); err != nil {
		upstreamError(w, err)
		return
	}
	c.refresh(r)
	response.Message(w, "product deleted")
}

// ProductStats summarizes the catalog for the products screen header:
// variant count, total stock value, and how many variants are low on stock.
func (c *AdminController) ProductStats(w http.ResponseWriter, r *http.Request) {
	snap := c.store.Snapshot()

	var stockValue money.Cents
	lowStock := 0
	for _, v := range snap.Variants {
		stockValue += money.FromFloat(v.Precio).Mul(v.Stock)
		if v.Stock < 10 {
			lowStock++
		}
	}

	response.Success(w, map[string]interface{}{
		"variants":    len(snap.Variants),
		"stock_value": stockValue.String(),
		"low_stock":   lowStock,
	})
}

// ── Categories ───────────────────────────────────────────────────────────────

func (c *AdminController) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := c.client.ListCategories(r.Context())
	if err != nil {
		upstreamError(w, err)
		return
	}
	response.Success(w, categories)
}

func (c *AdminController) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Nombre string `json:"nombre" validate:"required,min=2,max=100"`
	}
	if !decode(w, r, &body) {
		return
	}
	created, err := c.client.CreateCategory(r.Context(), middleware.TokenFromCtx(r.Context()), api.Categoria{Nombre: body.Nombre})
	if err != nil {
		upstreamError(w, err)
		return
	}
	response.Created(w, created)
}

func (c *AdminController) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := c.client.DeleteCategory(r.Context(), middleware.TokenFromCtx(r.Context()), id); err != nil {
		upstreamError(w, err)
		return
	}
	c.refresh(r)
	response.Message(w, "category deleted")
}

// ── Variants ─────────────────────────────────────────────────────────────────

type variantInput struct {
	Precio     float64 `json:"precio" validate:"required,gte=0"`
	Stock      int     `json:"stock" validate:"gte=0"`
	Cantidad   string  `json:"cantidad" validate:"required,max=50"`
	Imagen     string  `json:"imagen" validate:"max=500"`
	IDProducto int64   `json:"id_producto" validate:"required,gte=1"`
}

func (c *AdminController) CreateVariant(w http.ResponseWriter, r *http.Request) {
	var body variantInput
	if !decode(w, r, &body) {
		return
	}
	created, err := c.client.CreateVariant(r.Context(), middleware.TokenFromCtx(r.Context()), api.Variant{
		Precio: body.Precio, Stock: body.Stock, Cantidad: body.Cantidad,
		Imagen: body.Imagen, IDProducto: body.IDProducto,
	})
	if err != nil {
		upstreamError(w, err)
		return
	}
	c.refresh(r)
	response.Created(w, created)
}

func (c *AdminController) UpdateVariant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body variantInput
	if !decode(w, r, &body) {
		return
	}
	err := c.client.UpdateVariant(r.Context(), middleware.TokenFromCtx(r.Context()), id, api.Variant{
		Precio: body.Precio, Stock: body.Stock, Cantidad: body.Cantidad,
		Imagen: body.Imagen, IDProducto: body.IDProducto,
	})
	if err != nil {
		upstreamError(w, err)
		return
	}
	c.refresh(r)
	response.Message(w, "variant updated")
}

func (c *AdminController) DeleteVariant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := c.client.DeleteVariant(r.Context(), middleware.TokenFromCtx(r.Context()), id); err != nil {
		upstreamError(w, err)
		return
	}
	c.refresh(r)
	response.Message(w, "variant deleted")
}

// ── Users ────────────────────────────────────────────────────────────────────

func (c *AdminController) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := c.client.ListUsers(r.Context(), middleware.TokenFromCtx(r.Context()))
	if err != nil {
		upstreamError(w, err)
		return
	}
	for i := range users {
		users[i].Password = ""
	}
	response.Success(w, users)
}

func (c *AdminController) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Nombre   string `json:"nombre" validate:"required,min=2,max=100"`
		Username string `json:"username" validate:"required,min=3,max=50"`
		Email    string `json:"email" validate:"required,email"`
		Rol      string `json:"rol" validate:"max=32"`
	}
	if !decode(w, r, &body) {
		return
	}
	err := c.client.UpdateUser(r.Context(), middleware.TokenFromCtx(r.Context()), id, api.User{
		Nombre: body.Nombre, Username: body.Username, Email: body.Email, Rol: body.Rol,
	})
	if err != nil {
		upstreamError(w, err)
		return
	}
	response.Message(w, "user updated")
}

func (c *AdminController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := c.client.DeleteUser(r.Context(), middleware.TokenFromCtx(r.Context()), id); err != nil {
		upstreamError(w, err)
		return
	}
	response.Message(w, "user deleted")
}

// ── helpers ──────────────────────────────────────────────────────────────────

// refresh pulls the catalog after a mutation so the floor sees it. Failures
// are tolerated; the next refresh converges.
func (c *AdminController) refresh(r *http.Request) {
	_, _ = c.store.Refresh(r.Context())
}

func decode(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	errs, err := bind.JSON(r, dest)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return false
	}
	if len(errs) > 0 {
		response.ValidationError(w, errs)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func upstreamError(w http.ResponseWriter, err error) {
	switch {
	case api.IsNotFound(err):
		response.NotFound(w)
	case api.IsUnauthorized(err):
		response.Unauthorized(w)
	default:
		response.Error(w, http.StatusBadGateway, "inventory API error")
	}
}

// Package api is the typed client for the remote inventory API.
//
// The POS keeps no product state of its own: variants, purchases, line items
// and users all live behind this client. Every method measures its latency
// and converts non-2xx answers into *Error values.
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/licorgest/licorgest/config"
	"github.com/licorgest/licorgest/pkg/http"
	"github.com/licorgest/licorgest/pkg/metrics"
)

// Client talks to the inventory API at a fixed base URL.
type Client struct {
	baseURL string
	timeout time.Duration
	retries int
}

// New builds a client against the configured API base URL.
func New() *Client {
	return &Client{
		baseURL: config.APIBaseURL(),
		timeout: config.HTTPTimeout(),
		retries: config.HTTPRetries(),
	}
}

// NewWithBase builds a client against an explicit base URL. Used by tests.
func NewWithBase(baseURL string) *Client {
	c := New()
	c.baseURL = baseURL
	return c
}

// ── Variants ─────────────────────────────────────────────────────────────────

// ListVariants fetches every sellable variant with its product and category
// embedded.
func (c *Client) ListVariants(ctx context.Context) ([]Variant, error) {
	var variants []Variant
	err := c.getJSON(ctx, "list_variants", "/variantes/", &variants)
	return variants, err
}

// GetVariant fetches a single variant by id.
func (c *Client) GetVariant(ctx context.Context, id int64) (Variant, error) {
	var v Variant
	err := c.getJSON(ctx, "get_variant", fmt.Sprintf("/variantes/%d", id), &v)
	return v, err
}

// CreateVariant registers a new variant.
func (c *Client) CreateVariant(ctx context.Context, token string, v Variant) (Variant, error) {
	var created Variant
	err := c.sendJSON(ctx, "create_variant", http.Post(c.baseURL+"/variantes/").Bearer(token).Body(v), &created)
	return created, err
}

// UpdateVariant replaces a variant.
func (c *Client) UpdateVariant(ctx context.Context, token string, id int64, v Variant) error {
	return c.sendJSON(ctx, "update_variant",
		http.Put(fmt.Sprintf("%s/variantes/%d", c.baseURL, id)).Bearer(token).Body(v), nil)
}

// DeleteVariant removes a variant.
func (c *Client) DeleteVariant(ctx context.Context, token string, id int64) error {
	return c.sendJSON(ctx, "delete_variant",
		http.Delete(fmt.Sprintf("%s/variantes/%d", c.baseURL, id)).Bearer(token), nil)
}

// PatchStock sets the absolute stock level of a variant.
func (c *Client) PatchStock(ctx context.Context, id int64, stock int) error {
	return c.sendJSON(ctx, "patch_stock",
		http.Patch(fmt.Sprintf("%s/variantes/stock/%d", c.baseURL, id)).Body(StockPatch{Stock: stock}), nil)
}

// ── Purchases ────────────────────────────────────────────────────────────────

// CreatePurchase posts the sale header and returns it with its id assigned.
func (c *Client) CreatePurchase(ctx context.Context, p Purchase) (Purchase, error) {
	var created Purchase
	err := c.sendJSON(ctx, "create_purchase", http.Post(c.baseURL+"/compras/").Body(p), &created)
	return created, err
}

// DeletePurchase removes a sale header. Used to roll back a sale whose line
// items could not all be written.
func (c *Client) DeletePurchase(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, "delete_purchase",
		http.Delete(fmt.Sprintf("%s/compras/%d", c.baseURL, id)), nil)
}

// ListPurchases fetches all sale headers.
func (c *Client) ListPurchases(ctx context.Context) ([]Purchase, error) {
	var purchases []Purchase
	err := c.getJSON(ctx, "list_purchases", "/compras/", &purchases)
	return purchases, err
}

// ── Line items ───────────────────────────────────────────────────────────────

// CreateLineItem posts one sale line and returns it with its id assigned.
func (c *Client) CreateLineItem(ctx context.Context, li LineItem) (LineItem, error) {
	var created LineItem
	err := c.sendJSON(ctx, "create_line_item", http.Post(c.baseURL+"/detalle_compras/").Body(li), &created)
	return created, err
}

// DeleteLineItem removes a sale line. Used to roll back partial sales.
func (c *Client) DeleteLineItem(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, "delete_line_item",
		http.Delete(fmt.Sprintf("%s/detalle_compras/%d", c.baseURL, id)), nil)
}

// ListLineItems fetches all sale lines.
func (c *Client) ListLineItems(ctx context.Context) ([]LineItem, error) {
	var items []LineItem
	err := c.getJSON(ctx, "list_line_items", "/detalle_compras/", &items)
	return items, err
}

// ── Products and categories ──────────────────────────────────────────────────

func (c *Client) ListProducts(ctx context.Context) ([]Producto, error) {
	var products []Producto
	err := c.getJSON(ctx, "list_products", "/productos/", &products)
	return products, err
}

func (c *Client) CreateProduct(ctx context.Context, token string, p Producto) (Producto, error) {
	var created Producto
	err := c.sendJSON(ctx, "create_product", http.Post(c.baseURL+"/productos/").Bearer(token).Body(p), &created)
	return created, err
}

func (c *Client) UpdateProduct(ctx context.Context, token string, id int64, p Producto) error {
	return c.sendJSON(ctx, "update_product",
		http.Put(fmt.Sprintf("%s/productos/%d", c.baseURL, id)).Bearer(token).Body(p), nil)
}

func (c *Client) DeleteProduct(ctx context.Context, token string, id int64) error {
	return c.sendJSON(ctx, "delete_product",
		http.Delete(fmt.Sprintf("%s/productos/%d", c.baseURL, id)).Bearer(token), nil)
}

func (c *Client) ListCategories(ctx context.Context) ([]Categoria, error) {
	var categories []Categoria
	err := c.getJSON(ctx, "list_categories", "/categorias/", &categories)
	return categories, err
}

func (c *Client) CreateCategory(ctx context.Context, token string, cat Categoria) (Categoria, error) {
	var created Categoria
	err := c.sendJSON(ctx, "create_category", http.Post(c.baseURL+"/categorias/").Bearer(token).Body(cat), &created)
	return created, err
}

func (c *Client) DeleteCategory(ctx context.Context, token string, id int64) error {
	return c.sendJSON(ctx, "delete_category",
		http.Delete(fmt.Sprintf("%s/categorias/%d", c.baseURL, id)).Bearer(token), nil)
}

// ── Users and auth ───────────────────────────────────────────────────────────

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, creds Credentials) (TokenResponse, error) {
	var tok TokenResponse
	err := c.sendJSON(ctx, "login", http.Post(c.baseURL+"/auth/login").Body(creds), &tok)
	return tok, err
}

// Register creates a new account and returns it.
func (c *Client) Register(ctx context.Context, u User) (User, error) {
	var created User
	err := c.sendJSON(ctx, "register", http.Post(c.baseURL+"/usuarios/").Body(u), &created)
	return created, err
}

// VerifyToken asks the API whether a token is still valid.
func (c *Client) VerifyToken(ctx context.Context, token string) error {
	return c.sendJSON(ctx, "verify_token",
		http.Get(c.baseURL+"/auth/verify-token").Bearer(token), nil)
}

// Me fetches the account behind a token.
func (c *Client) Me(ctx context.Context, token string) (User, error) {
	var u User
	err := c.sendJSON(ctx, "me", http.Get(c.baseURL+"/auth/me").Bearer(token), &u)
	return u, err
}

// ListUsers fetches all accounts. Admin only on the API side.
func (c *Client) ListUsers(ctx context.Context, token string) ([]User, error) {
	var users []User
	err := c.sendJSON(ctx, "list_users", http.Get(c.baseURL+"/usuarios/").Bearer(token), &users)
	return users, err
}

// UpdateUser replaces an account.
func (c *Client) UpdateUser(ctx context.Context, token string, id int64, u User) error {
	return c.sendJSON(ctx, "update_user",
		http.Put(fmt.Sprintf("%s/usuarios/%d", c.baseURL, id)).Bearer(token).Body(u), nil)
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, token string, id int64) error {
	return c.sendJSON(ctx, "delete_user",
		http.Delete(fmt.Sprintf("%s/usuarios/%d", c.baseURL, id)).Bearer(token), nil)
}

// ── Plumbing ─────────────────────────────────────────────────────────────────

func (c *Client) getJSON(ctx context.Context, operation, path string, dest interface{}) error {
	return c.sendJSON(ctx, operation, http.Get(c.baseURL+path), dest)
}

// sendJSON executes req, records latency, maps non-2xx to *Error, and
// optionally decodes the body into dest.
func (c *Client) sendJSON(ctx context.Context, operation string, req *http.Request, dest interface{}) error {
	start := time.Now()
	resp, err := req.
		WithContext(ctx).
		Timeout(c.timeout).
		Retry(c.retries, 500*time.Millisecond).
		Send()
	metrics.APICallDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	if err != nil {
		return fmt.Errorf("api: %s: %w", operation, err)
	}
	if !resp.OK() {
		return newError(operation, resp.StatusCode, resp.Raw)
	}
	if dest != nil && len(resp.Raw) > 0 {
		if err := resp.JSON(dest); err != nil {
			return fmt.Errorf("api: %s: %w", operation, err)
		}
	}

	return nil
}

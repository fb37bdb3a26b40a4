package api

// Wire types for the remote inventory API. Field names follow the API's
// Spanish JSON contract; money travels as float values in the store currency.

// Categoria is a product category.
type Categoria struct {
	ID     int64  `json:"id,omitempty"`
	Nombre string `json:"nombre"`
}

// Producto is a catalog product; variants reference it by id and embed it
// on reads.
type Producto struct {
	ID          int64      `json:"id,omitempty"`
	Nombre      string     `json:"nombre"`
	Descripcion string     `json:"descripcion"`
	IDCategoria int64      `json:"id_categoria,omitempty"`
	Categoria   *Categoria `json:"categoria,omitempty"`
}

// Variant is a sellable unit: a product in a given presentation, with its
// own price, stock, and image.
type Variant struct {
	ID         int64     `json:"id,omitempty"`
	Precio     float64   `json:"precio"`
	Stock      int       `json:"stock"`
	Cantidad   string    `json:"cantidad"` // presentation size, e.g. "750ml"
	Imagen     string    `json:"imagen"`
	IDProducto int64     `json:"id_producto,omitempty"`
	Producto   *Producto `json:"producto,omitempty"`
}

// Name returns the display name of the variant's product, or empty when the
// product was not embedded.
func (v Variant) Name() string {
	if v.Producto == nil {
		return ""
	}
	return v.Producto.Nombre
}

// CategoryName returns the embedded category name, or empty.
func (v Variant) CategoryName() string {
	if v.Producto == nil || v.Producto.Categoria == nil {
		return ""
	}
	return v.Producto.Categoria.Nombre
}

// Purchase is the header row of a sale.
type Purchase struct {
	ID        int64   `json:"id,omitempty"`
	Fecha     string  `json:"fecha"` // YYYY-MM-DD
	Total     float64 `json:"total"`
	IDUsuario int64   `json:"id_usuario"`
}

// LineItem links a purchase to a variant with quantity and line subtotal.
type LineItem struct {
	ID         int64   `json:"id,omitempty"`
	Cantidad   int     `json:"cantidad"`
	Subtotal   float64 `json:"subtotal"`
	IDCompra   int64   `json:"id_compra"`
	IDVariante int64   `json:"id_variante"`
}

// StockPatch is the body of PATCH /variantes/stock/{id}.
type StockPatch struct {
	Stock int `json:"stock"`
}

// User is an account on the inventory API.
type User struct {
	ID       int64  `json:"id,omitempty"`
	Nombre   string `json:"nombre,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email"`
	Rol      string `json:"rol,omitempty"`
	Password string `json:"password,omitempty"`
}

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=4"`
}

// TokenResponse is what the auth endpoints return on success.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        *User  `json:"user,omitempty"`
}

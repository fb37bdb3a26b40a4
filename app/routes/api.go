package routes

import (
	"net/http"
	"time"

	"github.com/licorgest/licorgest/app/controllers"
	"github.com/licorgest/licorgest/app/services"
	"github.com/licorgest/licorgest/internal/api"
	"github.com/licorgest/licorgest/internal/cart"
	"github.com/licorgest/licorgest/internal/catalog"
	"github.com/licorgest/licorgest/internal/checkout"
	"github.com/licorgest/licorgest/internal/dashboard"
	"github.com/licorgest/licorgest/internal/reports"
	"github.com/licorgest/licorgest/pkg/metrics"
	"github.com/licorgest/licorgest/pkg/middleware"
	"github.com/licorgest/licorgest/pkg/reqid"
	"github.com/licorgest/licorgest/pkg/response"
	"github.com/licorgest/licorgest/pkg/router"
	"github.com/licorgest/licorgest/pkg/session"
	"github.com/licorgest/licorgest/pkg/ws"
)

// Deps carries the shared components the route tree is built on.
type Deps struct {
	Client    *api.Client
	Store     *catalog.Store
	Carts     *cart.Registry
	Sequencer *checkout.Sequencer
	Reports   *reports.Service
	Dashboard *dashboard.Service
	Hub       *ws.Hub
}

// RegisterAPI mounts the full route tree.
func RegisterAPI(r *router.Router, deps Deps) error {
	r.Use(
		metrics.Middleware(),
		middleware.Recovery,
		reqid.Middleware(),
		middleware.Logger,
		session.Middleware(session.DefaultOptions()),
		middleware.CORS(middleware.DefaultCORSOptions()),
		middleware.RateLimit(120, time.Minute),
	)

	authService := services.NewAuthService(deps.Client, deps.Hub)

	shop := controllers.NewShopController(deps.Store, deps.Carts, deps.Sequencer)
	auth := controllers.NewAuthController(authService)
	admin := controllers.NewAdminController(deps.Client, deps.Store)
	report := controllers.NewReportController(deps.Reports)
	dash := controllers.NewDashboardController(deps.Dashboard)

	gql, err := controllers.NewGraphQLController(deps.Store)
	if err != nil {
		return err
	}

	r.HandleFunc("/metrics", metrics.Handler())
	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.Upgrade(w, r, deps.Hub)
	})

	apiGroup := r.Group("/api")

	apiGroup.Get("/health", "health", func(w http.ResponseWriter, _ *http.Request) {
		response.Message(w, "ok")
	})

	// POS floor.
	apiGroup.Get("/catalogo", "catalog.list", shop.Catalog)
	apiGroup.Post("/catalogo/refresh", "catalog.refresh", shop.RefreshCatalog)
	apiGroup.Post("/graphql", "catalog.graphql", gql.Query)

	apiGroup.Get("/carrito", "cart.show", shop.Cart)
	apiGroup.Post("/carrito/{id}/incrementar", "cart.increment", shop.Increment)
	apiGroup.Post("/carrito/{id}/decrementar", "cart.decrement", shop.Decrement)
	apiGroup.Put("/carrito/{id}", "cart.set", shop.SetQuantity)
	apiGroup.Delete("/carrito/{id}", "cart.remove", shop.RemoveItem)
	apiGroup.Delete("/carrito", "cart.clear", shop.ClearCart)
	apiGroup.Post("/checkout", "checkout.submit", shop.Checkout)

	// Auth.
	apiGroup.Post("/auth/login", "auth.login", auth.Login)
	apiGroup.Post("/auth/register", "auth.register", auth.Register)
	apiGroup.Post("/auth/logout", "auth.logout", auth.Logout)
	apiGroup.Get("/auth/me", "auth.me", auth.Me)
	apiGroup.Get("/auth/verify", "auth.verify", auth.Verify)

	// Admin maintenance, proxied to the inventory API.
	adminGroup := apiGroup.Group("/admin", middleware.RequireToken)

	adminGroup.Get("/productos", "admin.products.list", admin.ListProducts)
	adminGroup.Get("/productos/stats", "admin.products.stats", admin.ProductStats)
	adminGroup.Post("/productos", "admin.products.create", admin.CreateProduct)
	adminGroup.Put("/productos/{id}", "admin.products.update", admin.UpdateProduct)
	adminGroup.Delete("/productos/{id}", "admin.products.delete", admin.DeleteProduct)

	adminGroup.Get("/categorias", "admin.categories.list", admin.ListCategories)
	adminGroup.Post("/categorias", "admin.categories.create", admin.CreateCategory)
	adminGroup.Delete("/categorias/{id}", "admin.categories.delete", admin.DeleteCategory)

	adminGroup.Post("/variantes", "admin.variants.create", admin.CreateVariant)
	adminGroup.Put("/variantes/{id}", "admin.variants.update", admin.UpdateVariant)
	adminGroup.Delete("/variantes/{id}", "admin.variants.delete", admin.DeleteVariant)

	adminGroup.Get("/usuarios", "admin.users.list", admin.ListUsers)
	adminGroup.Put("/usuarios/{id}", "admin.users.update", admin.UpdateUser)
	adminGroup.Delete("/usuarios/{id}", "admin.users.delete", admin.DeleteUser)

	adminGroup.Get("/dashboard", "admin.dashboard", dash.Summary)

	adminGroup.Get("/reportes", "admin.reports.list", report.List)
	adminGroup.Post("/reportes/ventas", "admin.reports.sales", report.GenerateSales)
	adminGroup.Post("/reportes/stock", "admin.reports.stock", report.GenerateStock)
	adminGroup.Get("/reportes/{id}/descargar", "admin.reports.download", report.Download)
	adminGroup.Delete("/reportes/{id}", "admin.reports.delete", report.Delete)

	return nil
}

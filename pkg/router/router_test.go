package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }

func TestNamedRouteLookup(t *testing.T) {
	r := New()
	r.Get("/api/carrito/{id}", "cart.show", ok)

	path, found := r.Path("cart.show")
	require.True(t, found)
	assert.Equal(t, "/api/carrito/{id}", path)

	url, err := r.URL("cart.show", map[string]string{"id": "5"})
	require.NoError(t, err)
	assert.Equal(t, "/api/carrito/5", url)

	_, err = r.URL("cart.show", nil)
	assert.Error(t, err)

	_, err = r.URL("nope", nil)
	assert.Error(t, err)
}

func TestGroupPrefixAndNesting(t *testing.T) {
	r := New()
	apiGroup := r.Group("/api")
	adminGroup := apiGroup.Group("/admin")
	adminGroup.Get("/reportes", "admin.reports.list", ok)

	path, found := r.Path("admin.reports.list")
	require.True(t, found)
	assert.Equal(t, "/api/admin/reportes", path)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/reportes", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGroupMiddlewareApplies(t *testing.T) {
	var order []string
	mw := func(tag string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, tag)
				next.ServeHTTP(w, r)
			})
		}
	}

	r := New()
	g := r.Group("/api", mw("group"))
	g.Get("/x", "x", ok, mw("route"))

	req := httptest.NewRequest(http.MethodGet, "/api/x", nil)
	r.Handler().ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, []string{"group", "route"}, order)
}

func TestRoutesSorted(t *testing.T) {
	r := New()
	r.Post("/b", "b.create", ok)
	r.Get("/a", "a.list", ok)

	infos := r.Routes()
	require.Len(t, infos, 2)
	assert.Equal(t, "/a", infos[0].Path)
	assert.Equal(t, "/b", infos[1].Path)
}

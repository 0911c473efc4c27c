package router

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func quietRouter() *Router {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func text(body string) HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, body) }
}

func do(r *Router, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRouting(t *testing.T) {
	r := quietRouter()
	r.GET("/api/v1/dashboards", text("list"))
	r.POST("/api/v1/dashboards", text("create"))
	r.GET("/api/v1/dashboards/*", text("detail"))
	r.GET("/api/v1/dashboards/*/logs", text("logs"))
	r.POST("/api/v1/dashboards/*/rerun", text("rerun"))
	r.GET("/api/v1/download/*/*", text("download"))

	cases := []struct {
		method, path, body string
		code               int
	}{
		{http.MethodGet, "/api/v1/dashboards", "list", http.StatusOK},
		{http.MethodPost, "/api/v1/dashboards", "create", http.StatusOK},
		{http.MethodGet, "/api/v1/dashboards/abc", "detail", http.StatusOK},
		{http.MethodGet, "/api/v1/dashboards/abc/logs", "logs", http.StatusOK},
		{http.MethodPost, "/api/v1/dashboards/abc/rerun", "rerun", http.StatusOK},
		{http.MethodGet, "/api/v1/download/abc/records.csv", "download", http.StatusOK},
		{http.MethodDelete, "/api/v1/dashboards", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nowhere", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		rec := do(r, tc.method, tc.path)
		assert.Equal(t, tc.code, rec.Code, "%s %s", tc.method, tc.path)
		if tc.body != "" {
			assert.Equal(t, tc.body, rec.Body.String(), "%s %s", tc.method, tc.path)
		}
	}
}

func TestMatchWildcardRoute(t *testing.T) {
	assert.True(t, matchWildcardRoute("/a/b/c", "/a/*/c"))
	assert.False(t, matchWildcardRoute("/a/b/d", "/a/*/c"))
	assert.True(t, matchWildcardRoute("/swagger/index.html", "/swagger/*"))
	assert.False(t, matchWildcardRoute("/swagger", "/swagger/*"))
	assert.False(t, matchWildcardRoute("/a/b", "/a/*/c"))
}

func TestHandleAndObserve(t *testing.T) {
	r := quietRouter()
	var routes []string
	var codes []int
	r.Observe(func(route string, code int) {
		routes = append(routes, route)
		codes = append(codes, code)
	})
	r.Handle("/metrics", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	r.GET("/api/v1/dashboards/*", text("detail"))

	assert.Equal(t, http.StatusTeapot, do(r, http.MethodGet, "/metrics").Code)
	do(r, http.MethodGet, "/api/v1/dashboards/xyz")
	do(r, http.MethodGet, "/missing")

	assert.Equal(t, []string{"/metrics", "/api/v1/dashboards/*", "unmatched"}, routes)
	assert.Equal(t, []int{http.StatusTeapot, http.StatusOK, http.StatusNotFound}, codes)
}

func TestRegisteredPaths(t *testing.T) {
	r := quietRouter()
	r.GET("/a", text("a"))
	r.PUT("/a", text("a"))
	r.PATCH("/b/*", text("b"))
	r.DELETE("/b/*", text("b"))

	assert.Len(t, r.Routes(), 4)
	assert.Len(t, r.Paths(), 2)
	assert.Equal(t, []string{"/b/*"}, r.wildcards)
}

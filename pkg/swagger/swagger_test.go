package swagger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodlink/pkg/logger"
)

func init() {
	logger.InitWithConfig(logger.Config{Level: "error", Output: "discard"})
}

func TestHandler_UI(t *testing.T) {
	h := NewHandler(nil, []byte(`{"openapi":"3.0.3"}`))

	for _, path := range []string{"/docs/", "/docs/index.html"} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), `url: "/docs/openapi.json"`)
			assert.Contains(t, rec.Body.String(), "<title>BloodLink Matching API</title>")
		})
	}
}

func TestHandler_SpecAndETag(t *testing.T) {
	spec := []byte(`{"openapi":"3.0.3"}`)
	h := NewHandler(nil, spec)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs/openapi.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(spec), rec.Body.String())

	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	assert.Equal(t, etag, NewHandler(nil, spec).specETag)

	req := httptest.NewRequest(http.MethodGet, "/docs/openapi.json", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
}

func TestHandler_NotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler(nil, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs/swagger.yaml", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegisterRoutes(t *testing.T) {
	mux := http.NewServeMux()
	RegisterRoutes(mux, &Config{Title: "T", BasePath: "/api-docs"}, []byte(`{}`))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api-docs", nil))
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/api-docs/", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api-docs/openapi.json", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anya-Gubskay/Shop-bot/internal/catalog"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := catalog.NewFileStore(filepath.Join(t.TempDir(), "data.json"))
	require.NoError(t, err)

	router := gin.New()
	NewHandler(store).SetupRoutes(router)
	return router
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestListCategories(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/categories", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Categories []struct {
			Key      string `json:"key"`
			Name     string `json:"name"`
			Products []struct {
				Name  string `json:"name"`
				Price int64  `json:"price"`
			} `json:"products"`
		} `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	require.Len(t, body.Categories, 3)
	assert.Equal(t, "t-shirts", body.Categories[0].Key)
	require.Len(t, body.Categories[0].Products, 2)
	assert.Equal(t, "Футболка белая", body.Categories[0].Products[0].Name)
	assert.Equal(t, int64(1000), body.Categories[0].Products[0].Price)
}

func TestListProducts(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/categories/jeans/products", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Key      string `json:"key"`
		Products []struct {
			Name string `json:"name"`
		} `json:"products"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "jeans", body.Key)
	require.Len(t, body.Products, 2)
	assert.Equal(t, "Джинсы синие", body.Products[0].Name)
}

func TestListProductsUnknownCategory(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/categories/nope/products", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

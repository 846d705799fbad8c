package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Anya-Gubskay/Shop-bot/internal/catalog"
	"github.com/Anya-Gubskay/Shop-bot/internal/util"
)

// Handler exposes operational endpoints and a read-only view of the
// catalog. All catalog mutation goes through the admin chat flow.
type Handler struct {
	catalog catalog.Store
}

// NewHandler creates a new HTTP handler
func NewHandler(catalogStore catalog.Store) *Handler {
	return &Handler{catalog: catalogStore}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())

	router.GET("/health", h.healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/categories", h.listCategories)
		v1.GET("/categories/:key/products", h.listProducts)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// listCategories returns all categories with their products
func (h *Handler) listCategories(c *gin.Context) {
	cats, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load catalog",
			"details": err.Error(),
		})
		return
	}

	out := make([]gin.H, 0, len(cats))
	for _, cat := range cats {
		out = append(out, gin.H{
			"key":      cat.Key,
			"name":     cat.Name,
			"products": cat.Products,
		})
	}
	c.JSON(http.StatusOK, gin.H{"categories": out})
}

// listProducts returns the products of one category
func (h *Handler) listProducts(c *gin.Context) {
	cat, err := h.catalog.Category(c.Request.Context(), c.Param("key"))
	if err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load category",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"key":      cat.Key,
		"name":     cat.Name,
		"products": cat.Products,
	})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}

package handler

import (
	"context"
	"net/http"
	"strings"

	"vlxd/internal/model"
	"vlxd/internal/repository"

	"github.com/gin-gonic/gin"
)

// ProductReader loads a single catalog product
type ProductReader interface {
	GetProductByID(ctx context.Context, id string) (*model.Product, error)
}

var _ ProductReader = (*repository.PostgresRepository)(nil)

// ProductHandler serves catalog product details, e.g. for the productId
// attached to an enriched material line
type ProductHandler struct {
	products ProductReader
}

// NewProductHandler creates a new product handler
func NewProductHandler(products ProductReader) *ProductHandler {
	return &ProductHandler{products: products}
}

// GetProduct handles GET /api/v1/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	product, err := h.products.GetProductByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get product: " + err.Error()})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, product)
}

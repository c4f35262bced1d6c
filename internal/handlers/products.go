package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/temcen/quickrec/internal/services"
)

// ProductHandler exposes the catalog the model was built from.
type ProductHandler struct {
	recommender services.RecommenderInterface
	logger      *logrus.Logger
}

func NewProductHandler(recommender services.RecommenderInterface, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		recommender: recommender,
		logger:      logger,
	}
}

func (h *ProductHandler) List(c *gin.Context) {
	model := h.recommender.Model()
	if !model.Ready() {
		respondNotInitialized(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": model.Catalog.Products(),
		"total":    model.Catalog.Len(),
	})
}

func (h *ProductHandler) Get(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_PRODUCT_ID", "Product ID must be an integer")
		return
	}

	model := h.recommender.Model()
	if !model.Ready() {
		respondNotInitialized(c)
		return
	}

	product, ok := model.Catalog.Lookup(productID)
	if !ok {
		respondError(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found")
		return
	}

	c.JSON(http.StatusOK, product)
}

func respondNotInitialized(c *gin.Context) {
	respondError(c, http.StatusServiceUnavailable, "NOT_INITIALIZED",
		"Recommender system not initialized. Check server logs.")
}

// Package quote prices a posted cart against the live catalog.
package quote

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/go-gin-supply-api/internal/cart"
	catalogdomain "github.com/Apurer/go-gin-supply-api/internal/domains/catalog/domain"
	apperrors "github.com/Apurer/go-gin-supply-api/internal/shared/errors"
)

// ProductReader looks products up by identifier.
type ProductReader interface {
	FindByID(ctx context.Context, id int64) (catalogdomain.Product, bool, error)
}

// Handler prices a client cart against the live catalog.
type Handler struct {
	products ProductReader
}

func NewHandler(products ProductReader) *Handler {
	return &Handler{products: products}
}

type quoteItem struct {
	ProductID int64 `json:"productId" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

type quoteRequest struct {
	Items []quoteItem `json:"items" binding:"dive"`
}

// Register mounts POST /cart/quote.
func (h *Handler) Register(router gin.IRouter) {
	router.POST("/cart/quote", h.quote)
}

func (h *Handler) quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewValidation("items", err.Error()))
		return
	}
	items := make([]cart.Item, 0, len(req.Items))
	catalog := make([]cart.Product, 0, len(req.Items))
	seen := make(map[int64]bool, len(req.Items))
	for _, it := range req.Items {
		items = append(items, cart.Item{ProductID: it.ProductID, Quantity: it.Quantity})
		if seen[it.ProductID] {
			continue
		}
		seen[it.ProductID] = true
		product, ok, err := h.products.FindByID(c.Request.Context(), it.ProductID)
		if err != nil {
			_ = c.Error(err)
			return
		}
		if ok {
			catalog = append(catalog, product.CartProduct())
		}
	}
	c.JSON(http.StatusOK, cart.Quote(items, catalog))
}

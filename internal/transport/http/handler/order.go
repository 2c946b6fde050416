package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ErlanBelekov/campus-marketplace/internal/domain"
)

type orderUsecaser interface {
	PlaceOrder(ctx context.Context, buyerID int64, productIDs []int64) ([]*domain.Order, error)
	ListByBuyer(ctx context.Context, buyerID int64) ([]*domain.Order, error)
}

type OrderHandler struct {
	orders orderUsecaser
	logger *slog.Logger
}

func NewOrderHandler(orders orderUsecaser, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger.With("component", "order_handler")}
}

type placeOrderRequest struct {
	ProductIDs []int64 `json:"productIds" binding:"required,min=1,max=100,dive,gt=0"`
}

type orderResponse struct {
	ID          int64     `json:"id"`
	ProductID   *int64    `json:"productId"`
	ProductName string    `json:"productName"`
	Price       string    `json:"price"`
	OrderedAt   time.Time `json:"orderedAt"`
}

func toOrderList(orders []*domain.Order) []orderResponse {
	out := make([]orderResponse, len(orders))
	for i, o := range orders {
		out[i] = orderResponse{
			ID:          o.ID,
			ProductID:   o.ProductID,
			ProductName: o.ProductName,
			Price:       o.Price,
			OrderedAt:   o.OrderedAt,
		}
	}
	return out
}

// POST /api/orders
// The buyer is the authenticated user. Products already sold are skipped.
func (h *OrderHandler) Place(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orders, err := h.orders.PlaceOrder(c.Request.Context(), currentUser(c), req.ProductIDs)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errUserNotFound})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "place order", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order placed successfully", "orders": toOrderList(orders)})
}

// GET /api/orders
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.orders.ListByBuyer(c.Request.Context(), currentUser(c))
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "list orders", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	c.JSON(http.StatusOK, toOrderList(orders))
}

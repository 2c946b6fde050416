package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ErlanBelekov/campus-marketplace/internal/domain"
	"github.com/ErlanBelekov/campus-marketplace/internal/usecase"
)

type productUsecaser interface {
	List(ctx context.Context) ([]*domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	ListBySeller(ctx context.Context, sellerID int64) ([]*domain.Product, error)
	Create(ctx context.Context, input usecase.CreateProductInput) (*domain.Product, error)
	Update(ctx context.Context, input usecase.UpdateProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id, actorID int64) error
	Image(ctx context.Context, id int64) ([]byte, error)
}

type ProductHandler struct {
	products productUsecaser
	logger   *slog.Logger
}

func NewProductHandler(products productUsecaser, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{products: products, logger: logger.With("component", "product_handler")}
}

type productResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	SellerID    int64     `json:"sellerId"`
	SellerName  string    `json:"sellerName"`
	HasImage    bool      `json:"hasImage"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		SellerID:    p.SellerID,
		SellerName:  p.SellerName,
		HasImage:    p.HasImage(),
		CreatedAt:   p.CreatedAt,
	}
}

func toProductList(ps []*domain.Product) []productResponse {
	out := make([]productResponse, len(ps))
	for i, p := range ps {
		out[i] = toProductResponse(p)
	}
	return out
}

// productForm is sent as multipart/form-data with an optional "image" file part.
type productForm struct {
	Name        string `form:"name"        binding:"required,max=255"`
	Description string `form:"description" binding:"max=5000"`
	Price       string `form:"price"       binding:"required"`
}

func (h *ProductHandler) bindForm(c *gin.Context) (productForm, *usecase.Upload, bool) {
	var form productForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return form, nil, false
	}
	if !priceRe.MatchString(form.Price) {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidPrice})
		return form, nil, false
	}
	image, err := formImage(c, "image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidImage})
		return form, nil, false
	}
	return form, image, true
}

// GET /api/products
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		h.fail(c, "list products", err)
		return
	}
	c.JSON(http.StatusOK, toProductList(products))
}

// GET /api/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "get product", err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(p))
}

// GET /api/products/:id/image
func (h *ProductHandler) Image(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	data, err := h.products.Image(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "get product image", err)
		return
	}
	writeImage(c, data)
}

// GET /api/products/seller/:sellerId
func (h *ProductHandler) ListBySeller(c *gin.Context) {
	sellerID, ok := pathID(c, "sellerId")
	if !ok {
		return
	}
	products, err := h.products.ListBySeller(c.Request.Context(), sellerID)
	if err != nil {
		h.fail(c, "list products of seller", err)
		return
	}
	c.JSON(http.StatusOK, toProductList(products))
}

// POST /api/products
// The seller is the authenticated user.
func (h *ProductHandler) Create(c *gin.Context) {
	form, image, ok := h.bindForm(c)
	if !ok {
		return
	}

	p, err := h.products.Create(c.Request.Context(), usecase.CreateProductInput{
		SellerID:    currentUser(c),
		Name:        form.Name,
		Description: form.Description,
		Price:       form.Price,
		Image:       image,
	})
	if err != nil {
		h.fail(c, "create product", err)
		return
	}
	c.JSON(http.StatusCreated, toProductResponse(p))
}

// PUT /api/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	form, image, ok := h.bindForm(c)
	if !ok {
		return
	}

	p, err := h.products.Update(c.Request.Context(), usecase.UpdateProductInput{
		ID:          id,
		ActorID:     currentUser(c),
		Name:        form.Name,
		Description: form.Description,
		Price:       form.Price,
		Image:       image,
	})
	if err != nil {
		h.fail(c, "update product", err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(p))
}

// DELETE /api/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.products.Delete(c.Request.Context(), id, currentUser(c)); err != nil {
		h.fail(c, "delete product", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProductHandler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errProductNotFound})
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
	case errors.Is(err, domain.ErrBlobNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errImageNotFound})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": errForbidden})
	default:
		h.logger.ErrorContext(c.Request.Context(), op, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	}
}

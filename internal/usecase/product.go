package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ErlanBelekov/campus-marketplace/internal/domain"
	"github.com/ErlanBelekov/campus-marketplace/internal/repository"
)

type ProductUsecase struct {
	products repository.ProductRepository
	users    repository.UserRepository
	blobs    blobStore
	logger   *slog.Logger
}

func NewProductUsecase(products repository.ProductRepository, users repository.UserRepository, blobs blobStore, logger *slog.Logger) *ProductUsecase {
	return &ProductUsecase{
		products: products,
		users:    users,
		blobs:    blobs,
		logger:   logger.With("component", "product"),
	}
}

type CreateProductInput struct {
	SellerID    int64
	Name        string
	Description string
	Price       string
	Image       *Upload
}

type UpdateProductInput struct {
	ID          int64
	ActorID     int64 // must be the seller
	Name        string
	Description string
	Price       string
	Image       *Upload
}

func (u *ProductUsecase) List(ctx context.Context) ([]*domain.Product, error) {
	products, err := u.products.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (u *ProductUsecase) Get(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := u.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (u *ProductUsecase) ListBySeller(ctx context.Context, sellerID int64) ([]*domain.Product, error) {
	if _, err := u.users.FindByID(ctx, sellerID); err != nil {
		return nil, fmt.Errorf("get seller: %w", err)
	}
	products, err := u.products.FindBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list products of seller: %w", err)
	}
	return products, nil
}

// Create saves the product first so the image can be named after its id. If
// the image cannot be stored the product record is removed again.
func (u *ProductUsecase) Create(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if _, err := u.users.FindByID(ctx, input.SellerID); err != nil {
		return nil, fmt.Errorf("get seller: %w", err)
	}

	p, err := u.products.Create(ctx, &domain.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		SellerID:    input.SellerID,
	})
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	if input.Image.empty() {
		return p, nil
	}

	blobID, err := u.blobs.Store(ctx, domain.BlobKindProduct, p.ID, input.Image.Data, input.Image.Filename)
	if err == nil {
		err = u.products.SetImagePath(ctx, p.ID, &blobID)
		if err != nil {
			_ = u.blobs.Delete(ctx, domain.BlobKindProduct, blobID)
		}
	}
	if err != nil {
		if delErr := u.products.Delete(ctx, p.ID); delErr != nil {
			u.logger.ErrorContext(ctx, "rollback of product without image failed", "product_id", p.ID, "error", delErr)
		}
		return nil, fmt.Errorf("store product image: %w", err)
	}

	p.ImagePath = &blobID
	return p, nil
}

// Update overwrites the product fields. A non-empty image replaces the
// current one; the old blob is removed after the record points at the new one.
func (u *ProductUsecase) Update(ctx context.Context, input UpdateProductInput) (*domain.Product, error) {
	current, err := u.owned(ctx, input.ID, input.ActorID)
	if err != nil {
		return nil, err
	}

	next := *current
	next.Name = input.Name
	next.Description = input.Description
	next.Price = input.Price

	var newBlob string
	if !input.Image.empty() {
		newBlob, err = u.blobs.Store(ctx, domain.BlobKindProduct, current.ID, input.Image.Data, input.Image.Filename)
		if err != nil {
			return nil, fmt.Errorf("store product image: %w", err)
		}
		next.ImagePath = &newBlob
	}

	updated, err := u.products.Update(ctx, &next)
	if err != nil {
		if newBlob != "" {
			_ = u.blobs.Delete(ctx, domain.BlobKindProduct, newBlob)
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	if newBlob != "" && current.HasImage() {
		if err := u.blobs.Delete(ctx, domain.BlobKindProduct, *current.ImagePath); err != nil {
			u.logger.WarnContext(ctx, "old product image not removed", "product_id", current.ID, "error", err)
		}
	}
	return updated, nil
}

// Delete removes the product image and then the record.
func (u *ProductUsecase) Delete(ctx context.Context, id, actorID int64) error {
	p, err := u.owned(ctx, id, actorID)
	if err != nil {
		return err
	}
	return removeProduct(ctx, u.products, u.blobs, u.logger, p)
}

func (u *ProductUsecase) Image(ctx context.Context, id int64) ([]byte, error) {
	p, err := u.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if !p.HasImage() {
		return nil, fmt.Errorf("%w: %w", domain.ErrNotFound, domain.ErrBlobNotFound)
	}
	return u.blobs.Load(ctx, domain.BlobKindProduct, *p.ImagePath)
}

func (u *ProductUsecase) owned(ctx context.Context, id, actorID int64) (*domain.Product, error) {
	p, err := u.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if p.SellerID != actorID {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

// removeProduct deletes the image blob first and the record second. A blob
// that cannot be removed is logged and the record still goes.
func removeProduct(ctx context.Context, products repository.ProductRepository, blobs blobStore, logger *slog.Logger, p *domain.Product) error {
	if p.HasImage() {
		if err := blobs.Delete(ctx, domain.BlobKindProduct, *p.ImagePath); err != nil {
			logger.WarnContext(ctx, "product image not removed", "product_id", p.ID, "error", err)
		}
	}
	if err := products.Delete(ctx, p.ID); err != nil {
		return fmt.Errorf("delete product %d: %w", p.ID, err)
	}
	return nil
}

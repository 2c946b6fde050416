package repository

import (
	"context"

	"github.com/ErlanBelekov/campus-marketplace/internal/domain"
)

type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	FindBySeller(ctx context.Context, sellerID int64) ([]*domain.Product, error)
	FindAll(ctx context.Context) ([]*domain.Product, error)
	// Update overwrites name, description, price and image path.
	Update(ctx context.Context, p *domain.Product) (*domain.Product, error)
	SetImagePath(ctx context.Context, id int64, path *string) error
	Delete(ctx context.Context, id int64) error
}

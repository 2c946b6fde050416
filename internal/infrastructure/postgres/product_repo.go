package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ErlanBelekov/campus-marketplace/internal/domain"
	"github.com/jackc/pgx/v5"
)

const productSelect = `
		SELECT p.id, p.name, p.description, p.price::text, p.seller_id, u.name,
		       p.image_path, p.created_at, p.updated_at
		FROM products p
		JOIN users u ON u.id = p.seller_id`

type ProductRepository struct {
	db DBTX
}

func NewProductRepository(db DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO products (name, description, price, seller_id, image_path)
		VALUES ($1, $2, $3::numeric, $4, $5)
		RETURNING id`,
		p.Name, p.Description, p.Price, p.SellerID, p.ImagePath,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return r.FindByID(ctx, id)
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	row := r.db.QueryRow(ctx, productSelect+` WHERE p.id = $1`, id)
	return scanProduct(row)
}

func (r *ProductRepository) FindBySeller(ctx context.Context, sellerID int64) ([]*domain.Product, error) {
	return r.list(ctx, productSelect+` WHERE p.seller_id = $1 ORDER BY p.id`, sellerID)
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	return r.list(ctx, productSelect+` ORDER BY p.id DESC`)
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET    name        = $2,
		       description = $3,
		       price       = $4::numeric,
		       image_path  = $5,
		       updated_at  = NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.Description, p.Price, p.ImagePath,
	)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrProductNotFound
	}
	return r.FindByID(ctx, p.ID)
}

func (r *ProductRepository) SetImagePath(ctx context.Context, id int64, path *string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE products SET image_path = $2, updated_at = NOW() WHERE id = $1`, id, path)
	if err != nil {
		return fmt.Errorf("set product image path: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.SellerID, &p.SellerName,
		&p.ImagePath, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return &p, nil
}

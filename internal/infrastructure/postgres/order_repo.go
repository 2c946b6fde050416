package postgres

import (
	"context"
	"fmt"

	"github.com/ErlanBelekov/campus-marketplace/internal/domain"
)

type OrderRepository struct {
	db DBTX
}

func NewOrderRepository(db DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) (*domain.Order, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO orders (buyer_id, product_id, product_name, price)
		VALUES ($1, $2, $3, $4::numeric)
		RETURNING id, buyer_id, product_id, product_name, price::text, ordered_at`,
		o.BuyerID, o.ProductID, o.ProductName, o.Price,
	)
	created, err := scanOrder(row)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	return created, nil
}

func (r *OrderRepository) ListByBuyer(ctx context.Context, buyerID int64) ([]*domain.Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, buyer_id, product_id, product_name, price::text, ordered_at
		FROM orders
		WHERE buyer_id = $1
		ORDER BY ordered_at DESC, id DESC`, buyerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	if err := row.Scan(&o.ID, &o.BuyerID, &o.ProductID, &o.ProductName, &o.Price, &o.OrderedAt); err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}
	return &o, nil
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ErlanBelekov/campus-marketplace/internal/domain"
	"github.com/ErlanBelekov/campus-marketplace/internal/metrics"
	"github.com/ErlanBelekov/campus-marketplace/internal/repository"
)

type OrderUsecase struct {
	tx     repository.Transactor
	users  repository.UserRepository
	orders repository.OrderRepository
	blobs  blobStore
	logger *slog.Logger
}

func NewOrderUsecase(tx repository.Transactor, users repository.UserRepository, orders repository.OrderRepository, blobs blobStore, logger *slog.Logger) *OrderUsecase {
	return &OrderUsecase{
		tx:     tx,
		users:  users,
		orders: orders,
		blobs:  blobs,
		logger: logger.With("component", "order"),
	}
}

// PlaceOrder buys each listed product: an order snapshot is recorded and the
// product is taken off the market. Ids that no longer exist are skipped, so
// a product can only be bought once.
func (u *OrderUsecase) PlaceOrder(ctx context.Context, buyerID int64, productIDs []int64) ([]*domain.Order, error) {
	if _, err := u.users.FindByID(ctx, buyerID); err != nil {
		return nil, fmt.Errorf("get buyer: %w", err)
	}

	placed := make([]*domain.Order, 0, len(productIDs))
	for _, pid := range productIDs {
		var order *domain.Order
		err := u.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
			p, err := repos.Products.FindByID(ctx, pid)
			if err != nil {
				return err
			}

			order, err = repos.Orders.Create(ctx, &domain.Order{
				BuyerID:     buyerID,
				ProductID:   &p.ID,
				ProductName: p.Name,
				Price:       p.Price,
			})
			if err != nil {
				return fmt.Errorf("create order: %w", err)
			}

			return removeProduct(ctx, repos.Products, u.blobs, u.logger, p)
		})
		if errors.Is(err, domain.ErrProductNotFound) {
			u.logger.InfoContext(ctx, "product no longer available", "product_id", pid)
			continue
		}
		if err != nil {
			return placed, fmt.Errorf("order product %d: %w", pid, err)
		}

		metrics.OrdersPlacedTotal.Inc()
		placed = append(placed, order)
	}
	return placed, nil
}

func (u *OrderUsecase) ListByBuyer(ctx context.Context, buyerID int64) ([]*domain.Order, error) {
	orders, err := u.orders.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

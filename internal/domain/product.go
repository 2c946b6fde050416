package domain

import "time"

type Product struct {
	ID          int64
	Name        string
	Description string
	Price       string // NUMERIC(12,2) rendered as text, never a float
	SellerID    int64
	SellerName  string // populated on reads, ignored on writes
	ImagePath   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p *Product) HasImage() bool {
	return p.ImagePath != nil && *p.ImagePath != ""
}

// Order is a purchase snapshot. ProductID becomes nil once the product row is
// gone, which happens right after the order is placed.
type Order struct {
	ID          int64
	BuyerID     int64
	ProductID   *int64
	ProductName string
	Price       string
	OrderedAt   time.Time
}

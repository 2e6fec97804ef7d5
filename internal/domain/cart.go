package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Cart struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"userId"`
	Items       []CartItem `json:"items"`
	TotalAmount float64    `json:"totalAmount"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type CartItem struct {
	ID              uuid.UUID    `json:"id"`
	CartID          uuid.UUID    `json:"cartId"`
	ProductID       uuid.UUID    `json:"productId"`
	Quantity        int          `json:"quantity"`
	PriceAtAddition float64      `json:"priceAtAddition"`
	Product         *CartProduct `json:"product,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

type CartProduct struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	ImageURL string    `json:"imageUrl"`
	Stock    int       `json:"stock"`
}

// ComputeTotal sets TotalAmount from the frozen item prices.
func (c *Cart) ComputeTotal() {
	lines := make([]int64, 0, len(c.Items))
	for _, item := range c.Items {
		lines = append(lines, LineTotal(item.PriceAtAddition, item.Quantity))
	}
	c.TotalAmount = FromCents(SumCents(lines...))
}

type CartRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Cart, error)
	GetCartID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
	// UpsertItem inserts a line or increments the quantity of the existing
	// (cart, product) line. The price of an existing line is kept.
	UpsertItem(ctx context.Context, cartID, productID uuid.UUID, quantity int, price float64) (*CartItem, error)
	// GetItemForUser returns the item only when it belongs to the user's cart.
	GetItemForUser(ctx context.Context, userID, itemID uuid.UUID) (*CartItem, error)
	UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error
	Clear(ctx context.Context, cartID uuid.UUID) error
}

package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

func IsValidStatus(status OrderStatus) bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

type Order struct {
	ID          uuid.UUID   `json:"id"`
	UserID      uuid.UUID   `json:"userId"`
	TotalAmount float64     `json:"totalAmount"`
	Status      OrderStatus `json:"status"`
	Items       []OrderItem `json:"items"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type OrderItem struct {
	ID           uuid.UUID  `json:"id"`
	OrderID      uuid.UUID  `json:"orderId"`
	ProductID    *uuid.UUID `json:"productId"` // nil once the product is deleted
	Quantity     int        `json:"quantity"`
	PriceAtOrder float64    `json:"priceAtOrder"`
	ProductName  string     `json:"productName"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// CheckoutLine is a locked cart item joined with its locked product row.
type CheckoutLine struct {
	CartItemID      uuid.UUID
	ProductID       uuid.UUID
	ProductName     string
	Quantity        int
	PriceAtAddition float64
	Stock           int
}

// LockedCart is the caller's cart as seen inside the checkout transaction.
// Lines are ordered by product id. A user without a cart row gets a
// LockedCart with no lines.
type LockedCart struct {
	CartID uuid.UUID
	Lines  []CheckoutLine
}

// CheckoutTx is the set of writes available inside one checkout transaction.
type CheckoutTx interface {
	LockCartForCheckout(ctx context.Context, userID uuid.UUID) (*LockedCart, error)
	// InsertOrder writes the order header and its items.
	InsertOrder(ctx context.Context, order *Order) (*Order, error)
	// DecrementStock reports false when the product has less than quantity left.
	DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) (bool, error)
	ClearCart(ctx context.Context, cartID uuid.UUID) error
}

type OrderRepository interface {
	// WithinTransaction runs fn in one transaction. It commits when fn returns
	// nil and rolls back otherwise.
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx CheckoutTx) error) error
	ListByUserID(ctx context.Context, userID uuid.UUID, page PageRequest) ([]Order, int, error)
	GetByIDForUser(ctx context.Context, userID, orderID uuid.UUID) (*Order, error)
}

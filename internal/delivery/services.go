package delivery

import (
	"context"

	"shop_service/internal/domain"
	"shop_service/internal/usecase"

	"github.com/google/uuid"
)

type AuthService interface {
	Register(ctx context.Context, in domain.RegisterInput) (*domain.AuthResult, error)
	Login(ctx context.Context, email, password string) (*domain.AuthResult, error)
}

type CategoryService interface {
	Create(ctx context.Context, in usecase.CategoryInput) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	Update(ctx context.Context, id uuid.UUID, in usecase.CategoryInput) (*domain.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProductService interface {
	Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, domain.Pagination, error)
	Update(ctx context.Context, id uuid.UUID, in domain.ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.Cart, error)
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

type OrderService interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID, page domain.PageRequest) ([]domain.Order, domain.Pagination, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error)
}

package usecase

import (
	"context"

	"shop_service/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const insufficientStockMessage = "Insufficient stock available"

type CartUseCase struct {
	cartRepo    domain.CartRepository
	productRepo domain.ProductRepository
	log         *logrus.Logger
}

func NewCartUseCase(cartRepo domain.CartRepository, productRepo domain.ProductRepository, logger *logrus.Logger) *CartUseCase {
	return &CartUseCase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		log:         logger,
	}
}

func (uc *CartUseCase) GetCart(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	return uc.cartRepo.GetByUserID(ctx, userID)
}

// AddItem adds quantity units of a product to the caller's cart. The first
// add freezes the product's current price on the cart line.
func (uc *CartUseCase) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, domain.NewValidationError("Validation failed", domain.FieldError{Path: "quantity", Msg: "Quantity must be at least 1"})
	}

	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if quantity > product.Stock {
		uc.log.Warnf("Use Case: User %s asked for %d of product %s, only %d in stock", userID, quantity, productID, product.Stock)
		return nil, domain.NewConflictError(insufficientStockMessage)
	}

	cartID, err := uc.cartRepo.GetCartID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := uc.cartRepo.UpsertItem(ctx, cartID, productID, quantity, product.Price); err != nil {
		return nil, err
	}

	uc.log.Infof("Use Case: Added %d of product %s to cart of user %s", quantity, productID, userID)
	return uc.cartRepo.GetByUserID(ctx, userID)
}

// UpdateItem overwrites the quantity of one of the caller's cart lines.
func (uc *CartUseCase) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, domain.NewValidationError("Validation failed", domain.FieldError{Path: "quantity", Msg: "Quantity must be at least 1"})
	}

	item, err := uc.cartRepo.GetItemForUser(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if item.Product != nil && quantity > item.Product.Stock {
		return nil, domain.NewConflictError(insufficientStockMessage)
	}

	if err := uc.cartRepo.UpdateItemQuantity(ctx, userID, itemID, quantity); err != nil {
		return nil, err
	}

	uc.log.Infof("Use Case: Cart item %s of user %s set to quantity %d", itemID, userID, quantity)
	return uc.cartRepo.GetByUserID(ctx, userID)
}

func (uc *CartUseCase) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	if err := uc.cartRepo.DeleteItem(ctx, userID, itemID); err != nil {
		return err
	}
	uc.log.Infof("Use Case: Cart item %s removed for user %s", itemID, userID)
	return nil
}

func (uc *CartUseCase) ClearCart(ctx context.Context, userID uuid.UUID) error {
	cartID, err := uc.cartRepo.GetCartID(ctx, userID)
	if err != nil {
		return err
	}
	return uc.cartRepo.Clear(ctx, cartID)
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shop_service/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CartRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewCartRepository(db *sql.DB, logger *logrus.Logger) *CartRepository {
	return &CartRepository{
		db:  db,
		log: logger,
	}
}

const cartItemColumns = `
	ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.price_at_addition, ci.created_at, ci.updated_at,
	p.id, p.name, p.image_url, p.stock
`

func (r *CartRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	cart := &domain.Cart{}
	err := r.db.QueryRowContext(ctx, `SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`, userID).
		Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Cart for user %s not found", userID)
			return nil, domain.NewNotFoundError("Cart not found")
		}
		r.log.Errorf("Repository: Failed to get cart for user %s: %v", userID, err)
		return nil, fmt.Errorf("could not get cart: %w", err)
	}

	query := `SELECT ` + cartItemColumns + `
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at ASC, ci.id
	`
	rows, err := r.db.QueryContext(ctx, query, cart.ID)
	if err != nil {
		r.log.Errorf("Repository: Failed to query items of cart %s: %v", cart.ID, err)
		return nil, fmt.Errorf("could not retrieve cart items: %w", err)
	}
	defer rows.Close()

	cart.Items = []domain.CartItem{}
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			r.log.Errorf("Repository: Failed to scan cart item of cart %s: %v", cart.ID, err)
			return nil, fmt.Errorf("error scanning cart item: %w", err)
		}
		cart.Items = append(cart.Items, *item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	cart.ComputeTotal()
	r.log.Debugf("Repository: Retrieved cart %s with %d items", cart.ID, len(cart.Items))
	return cart, nil
}

func (r *CartRepository) GetCartID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, `SELECT id FROM carts WHERE user_id = $1`, userID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, domain.NewNotFoundError("Cart not found")
		}
		r.log.Errorf("Repository: Failed to get cart id for user %s: %v", userID, err)
		return uuid.Nil, fmt.Errorf("could not get cart: %w", err)
	}
	return id, nil
}

func (r *CartRepository) UpsertItem(ctx context.Context, cartID, productID uuid.UUID, quantity int, price float64) (*domain.CartItem, error) {
	query := `
		INSERT INTO cart_items (cart_id, product_id, quantity, price_at_addition)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
		RETURNING id, cart_id, product_id, quantity, price_at_addition, created_at, updated_at
	`
	item := &domain.CartItem{}
	err := r.db.QueryRowContext(ctx, query, cartID, productID, quantity, price).Scan(
		&item.ID,
		&item.CartID,
		&item.ProductID,
		&item.Quantity,
		&item.PriceAtAddition,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			r.log.Warnf("Repository: Product %s vanished while adding to cart %s", productID, cartID)
			return nil, domain.NewNotFoundError("Product not found")
		}
		r.log.Errorf("Repository: Failed to upsert product %s into cart %s: %v", productID, cartID, err)
		return nil, fmt.Errorf("could not add cart item: %w", err)
	}

	r.log.Infof("Repository: Cart %s now holds %d of product %s", cartID, item.Quantity, productID)
	return item, nil
}

func (r *CartRepository) GetItemForUser(ctx context.Context, userID, itemID uuid.UUID) (*domain.CartItem, error) {
	query := `SELECT ` + cartItemColumns + `
		FROM cart_items ci
		JOIN carts c ON c.id = ci.cart_id
		JOIN products p ON p.id = ci.product_id
		WHERE ci.id = $1 AND c.user_id = $2
	`
	item, err := scanCartItem(r.db.QueryRowContext(ctx, query, itemID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Cart item %s not found for user %s", itemID, userID)
			return nil, domain.NewNotFoundError("Cart item not found")
		}
		r.log.Errorf("Repository: Failed to get cart item %s: %v", itemID, err)
		return nil, fmt.Errorf("could not get cart item: %w", err)
	}
	return item, nil
}

func (r *CartRepository) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	query := `
		UPDATE cart_items ci
		SET quantity = $1, updated_at = NOW()
		FROM carts c
		WHERE ci.id = $2 AND ci.cart_id = c.id AND c.user_id = $3
	`
	result, err := r.db.ExecContext(ctx, query, quantity, itemID, userID)
	if err != nil {
		r.log.Errorf("Repository: Failed to update cart item %s: %v", itemID, err)
		return fmt.Errorf("could not update cart item: %w", err)
	}
	return r.requireRow(result, "Cart item not found")
}

func (r *CartRepository) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error {
	query := `
		DELETE FROM cart_items ci
		USING carts c
		WHERE ci.id = $1 AND ci.cart_id = c.id AND c.user_id = $2
	`
	result, err := r.db.ExecContext(ctx, query, itemID, userID)
	if err != nil {
		r.log.Errorf("Repository: Failed to delete cart item %s: %v", itemID, err)
		return fmt.Errorf("could not delete cart item: %w", err)
	}
	return r.requireRow(result, "Cart item not found")
}

func (r *CartRepository) Clear(ctx context.Context, cartID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		r.log.Errorf("Repository: Failed to clear cart %s: %v", cartID, err)
		return fmt.Errorf("could not clear cart: %w", err)
	}
	removed, _ := result.RowsAffected()
	r.log.Infof("Repository: Cleared %d items from cart %s", removed, cartID)
	return nil
}

func (r *CartRepository) requireRow(result sql.Result, notFound string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not confirm cart change: %w", err)
	}
	if rowsAffected == 0 {
		return domain.NewNotFoundError(notFound)
	}
	return nil
}

func scanCartItem(row rowScanner) (*domain.CartItem, error) {
	item := &domain.CartItem{Product: &domain.CartProduct{}}
	var imageURL sql.NullString
	err := row.Scan(
		&item.ID,
		&item.CartID,
		&item.ProductID,
		&item.Quantity,
		&item.PriceAtAddition,
		&item.CreatedAt,
		&item.UpdatedAt,
		&item.Product.ID,
		&item.Product.Name,
		&imageURL,
		&item.Product.Stock,
	)
	if err != nil {
		return nil, err
	}
	item.Product.ImageURL = imageURL.String
	return item, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shop_service/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type OrderRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewOrderRepository(db *sql.DB, logger *logrus.Logger) *OrderRepository {
	return &OrderRepository{
		db:  db,
		log: logger,
	}
}

func (r *OrderRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx domain.CheckoutTx) error) error {
	return withTx(ctx, r.db, r.log, func(tx *sql.Tx) error {
		return fn(ctx, &checkoutTx{tx: tx, log: r.log})
	})
}

func (r *OrderRepository) ListByUserID(ctx context.Context, userID uuid.UUID, page domain.PageRequest) ([]domain.Order, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&total); err != nil {
		r.log.Errorf("Repository: Failed to count orders for user %s: %v", userID, err)
		return nil, 0, fmt.Errorf("could not count orders: %w", err)
	}

	ordersQuery := `
		SELECT id, user_id, total_amount, status, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, ordersQuery, userID, page.Limit, page.Offset())
	if err != nil {
		r.log.Errorf("Repository: Failed to list orders for user %s: %v", userID, err)
		return nil, 0, fmt.Errorf("could not retrieve orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	orderIDs := []uuid.UUID{}
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.TotalAmount,
			&order.Status,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			r.log.Errorf("Repository: Failed to scan order row for user %s: %v", userID, err)
			return nil, 0, fmt.Errorf("error scanning order data: %w", err)
		}
		orders = append(orders, order)
		orderIDs = append(orderIDs, order.ID)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Repository: Error during orders iteration for user %s: %v", userID, err)
		return nil, 0, fmt.Errorf("error iterating orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, total, nil
	}

	itemsMap, err := r.itemsByOrder(ctx, orderIDs)
	if err != nil {
		return nil, 0, err
	}
	for i := range orders {
		orders[i].Items = itemsMap[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []domain.OrderItem{}
		}
	}

	r.log.Infof("Repository: Retrieved %d orders for user %s (page %d, limit %d)", len(orders), userID, page.Page, page.Limit)
	return orders, total, nil
}

// GetByIDForUser returns the order only when userID owns it.
func (r *OrderRepository) GetByIDForUser(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	query := `
		SELECT id, user_id, total_amount, status, created_at, updated_at
		FROM orders
		WHERE id = $1 AND user_id = $2
	`
	order := &domain.Order{}
	err := r.db.QueryRowContext(ctx, query, orderID, userID).Scan(
		&order.ID,
		&order.UserID,
		&order.TotalAmount,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Order %s not found for user %s", orderID, userID)
			return nil, domain.NewNotFoundError("Order not found")
		}
		r.log.Errorf("Repository: Failed to get order %s: %v", orderID, err)
		return nil, fmt.Errorf("could not retrieve order: %w", err)
	}

	itemsMap, err := r.itemsByOrder(ctx, []uuid.UUID{orderID})
	if err != nil {
		return nil, err
	}
	order.Items = itemsMap[orderID]
	if order.Items == nil {
		order.Items = []domain.OrderItem{}
	}
	return order, nil
}

func (r *OrderRepository) itemsByOrder(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, price_at_order, product_name, created_at
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(uuidStrings(orderIDs)))
	if err != nil {
		r.log.Errorf("Repository: Failed to query items for orders %v: %v", orderIDs, err)
		return nil, fmt.Errorf("could not retrieve order items: %w", err)
	}
	defer rows.Close()

	itemsMap := make(map[uuid.UUID][]domain.OrderItem)
	for rows.Next() {
		var item domain.OrderItem
		var productID uuid.NullUUID
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&productID,
			&item.Quantity,
			&item.PriceAtOrder,
			&item.ProductName,
			&item.CreatedAt,
		); err != nil {
			r.log.Errorf("Repository: Failed to scan order item row: %v", err)
			return nil, fmt.Errorf("error scanning order item: %w", err)
		}
		if productID.Valid {
			id := productID.UUID
			item.ProductID = &id
		}
		itemsMap[item.OrderID] = append(itemsMap[item.OrderID], item)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Repository: Error during order items iteration: %v", err)
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}
	return itemsMap, nil
}

// checkoutTx implements domain.CheckoutTx on top of one *sql.Tx.
type checkoutTx struct {
	tx  *sql.Tx
	log *logrus.Logger
}

// LockCartForCheckout locks the cart row, then its items and their products
// in product id order.
func (t *checkoutTx) LockCartForCheckout(ctx context.Context, userID uuid.UUID) (*domain.LockedCart, error) {
	locked := &domain.LockedCart{}
	err := t.tx.QueryRowContext(ctx, `SELECT id FROM carts WHERE user_id = $1 FOR UPDATE`, userID).Scan(&locked.CartID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			t.log.Warnf("Repository: No cart row for user %s at checkout", userID)
			return locked, nil
		}
		t.log.Errorf("Repository: Failed to lock cart of user %s: %v", userID, err)
		return nil, fmt.Errorf("could not lock cart: %w", err)
	}

	query := `
		SELECT ci.id, ci.product_id, p.name, ci.quantity, ci.price_at_addition, p.stock
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY p.id
		FOR UPDATE OF ci, p
	`
	rows, err := t.tx.QueryContext(ctx, query, locked.CartID)
	if err != nil {
		t.log.Errorf("Repository: Failed to lock items of cart %s: %v", locked.CartID, err)
		return nil, fmt.Errorf("could not lock cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.CheckoutLine
		if err := rows.Scan(
			&line.CartItemID,
			&line.ProductID,
			&line.ProductName,
			&line.Quantity,
			&line.PriceAtAddition,
			&line.Stock,
		); err != nil {
			t.log.Errorf("Repository: Failed to scan locked cart line: %v", err)
			return nil, fmt.Errorf("error scanning cart line: %w", err)
		}
		locked.Lines = append(locked.Lines, line)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart lines: %w", err)
	}

	t.log.Debugf("Repository: Locked cart %s with %d lines", locked.CartID, len(locked.Lines))
	return locked, nil
}

func (t *checkoutTx) InsertOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	orderQuery := `
		INSERT INTO orders (user_id, total_amount, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := t.tx.QueryRowContext(ctx, orderQuery, order.UserID, order.TotalAmount, order.Status).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		t.log.Errorf("Repository: Failed to insert order for user %s: %v", order.UserID, err)
		return nil, fmt.Errorf("could not create order entry: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, quantity, price_at_order, product_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	stmt, err := t.tx.PrepareContext(ctx, itemQuery)
	if err != nil {
		t.log.Errorf("Repository: Failed to prepare order item statement: %v", err)
		return nil, fmt.Errorf("could not prepare item statement: %w", err)
	}
	defer stmt.Close()

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		err = stmt.QueryRowContext(ctx, order.ID, item.ProductID, item.Quantity, item.PriceAtOrder, item.ProductName).
			Scan(&item.ID, &item.CreatedAt)
		if err != nil {
			t.log.Errorf("Repository: Failed to insert order item (product %v, quantity %d) for order %s: %v",
				item.ProductID, item.Quantity, order.ID, err)
			return nil, fmt.Errorf("could not create order item: %w", err)
		}
	}

	t.log.Infof("Repository: Order %s inserted with %d items", order.ID, len(order.Items))
	return order, nil
}

func (t *checkoutTx) DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) (bool, error) {
	query := `
		UPDATE products
		SET stock = stock - $1, updated_at = NOW()
		WHERE id = $2 AND stock >= $1
	`
	result, err := t.tx.ExecContext(ctx, query, quantity, productID)
	if err != nil {
		t.log.Errorf("Repository: Failed to decrement stock of product %s: %v", productID, err)
		return false, fmt.Errorf("could not decrement stock: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not confirm stock decrement: %w", err)
	}
	return rowsAffected == 1, nil
}

func (t *checkoutTx) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		t.log.Errorf("Repository: Failed to clear cart %s after checkout: %v", cartID, err)
		return fmt.Errorf("could not clear cart: %w", err)
	}
	return nil
}

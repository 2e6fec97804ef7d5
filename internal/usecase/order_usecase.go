package usecase

import (
	"context"
	"errors"

	"shop_service/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "shop_service/usecase"

// CheckoutMetrics receives the outcome of every checkout.
type CheckoutMetrics interface {
	OrderPlaced()
	CheckoutFailed(reason string)
}

type noopCheckoutMetrics struct{}

func (noopCheckoutMetrics) OrderPlaced()          {}
func (noopCheckoutMetrics) CheckoutFailed(string) {}

type OrderUseCase struct {
	orderRepo domain.OrderRepository
	metrics   CheckoutMetrics
	tracer    trace.Tracer
	log       *logrus.Logger
}

func NewOrderUseCase(repo domain.OrderRepository, metrics CheckoutMetrics, logger *logrus.Logger) *OrderUseCase {
	if metrics == nil {
		metrics = noopCheckoutMetrics{}
	}
	return &OrderUseCase{
		orderRepo: repo,
		metrics:   metrics,
		tracer:    otel.Tracer(tracerName),
		log:       logger,
	}
}

// PlaceOrder turns the caller's cart into a pending order in one transaction:
// the stock of every product is decremented and the cart is emptied. Nothing
// is written unless every step succeeds.
func (uc *OrderUseCase) PlaceOrder(ctx context.Context, userID uuid.UUID) (*domain.Order, error) {
	ctx, span := uc.tracer.Start(ctx, "order.place", trace.WithAttributes(attribute.String("user.id", userID.String())))
	defer span.End()

	uc.log.Infof("Use Case: Placing order for user %s", userID)

	var placed *domain.Order
	err := uc.orderRepo.WithinTransaction(ctx, func(ctx context.Context, tx domain.CheckoutTx) error {
		cart, err := tx.LockCartForCheckout(ctx, userID)
		if err != nil {
			return err
		}
		if len(cart.Lines) == 0 {
			return domain.ErrEmptyCart
		}

		for _, line := range cart.Lines {
			if line.Quantity > line.Stock {
				return insufficientStock(line)
			}
		}

		order := &domain.Order{
			UserID: userID,
			Status: domain.StatusPending,
			Items:  make([]domain.OrderItem, 0, len(cart.Lines)),
		}
		totals := make([]int64, 0, len(cart.Lines))
		for _, line := range cart.Lines {
			productID := line.ProductID
			order.Items = append(order.Items, domain.OrderItem{
				ProductID:    &productID,
				Quantity:     line.Quantity,
				PriceAtOrder: line.PriceAtAddition,
				ProductName:  line.ProductName,
			})
			totals = append(totals, domain.LineTotal(line.PriceAtAddition, line.Quantity))
		}
		order.TotalAmount = domain.FromCents(domain.SumCents(totals...))

		placed, err = tx.InsertOrder(ctx, order)
		if err != nil {
			return err
		}

		for _, line := range cart.Lines {
			ok, err := tx.DecrementStock(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return insufficientStock(line)
			}
		}

		return tx.ClearCart(ctx, cart.CartID)
	})
	if err != nil {
		reason := checkoutFailureReason(err)
		uc.metrics.CheckoutFailed(reason)
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)

		if domain.KindOf(err) == domain.KindUnknown {
			uc.log.Errorf("Use Case: Checkout transaction for user %s rolled back: %v", userID, err)
			return nil, domain.NewTransactionError("Server error while creating order", err)
		}
		uc.log.Warnf("Use Case: Checkout rejected for user %s: %v", userID, err)
		return nil, err
	}

	uc.metrics.OrderPlaced()
	span.SetAttributes(
		attribute.String("order.id", placed.ID.String()),
		attribute.Int("order.items", len(placed.Items)),
		attribute.Float64("order.total", placed.TotalAmount),
	)
	uc.log.Infof("Use Case: Order %s placed for user %s, total %.2f", placed.ID, userID, placed.TotalAmount)
	return placed, nil
}

func (uc *OrderUseCase) ListOrders(ctx context.Context, userID uuid.UUID, page domain.PageRequest) ([]domain.Order, domain.Pagination, error) {
	page = domain.NewPageRequest(page.Page, page.Limit)
	orders, total, err := uc.orderRepo.ListByUserID(ctx, userID, page)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to list orders for user %s: %v", userID, err)
		return nil, domain.Pagination{}, err
	}
	return orders, domain.NewPagination(page, total), nil
}

// GetOrder returns the order only to its owner; anyone else gets NotFound.
func (uc *OrderUseCase) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	return uc.orderRepo.GetByIDForUser(ctx, userID, orderID)
}

func insufficientStock(line domain.CheckoutLine) *domain.InsufficientStockError {
	return &domain.InsufficientStockError{
		ProductID:   line.ProductID,
		ProductName: line.ProductName,
		Requested:   line.Quantity,
		Available:   line.Stock,
	}
}

func checkoutFailureReason(err error) string {
	var stockErr *domain.InsufficientStockError
	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		return "empty_cart"
	case errors.As(err, &stockErr):
		return "insufficient_stock"
	default:
		return "storage"
	}
}

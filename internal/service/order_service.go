package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"threadmart/internal/apperr"
	"threadmart/internal/domain"
	"threadmart/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PlaceOrderInput carries checkout data supplied by the caller. Monetary
// totals come from the checkout flow; the cart contents come from the stored
// cart, never from the request.
type PlaceOrderInput struct {
	ShippingInfo domain.ShippingInfo `json:"shipping_info" validate:"required"`
	PaymentInfo  domain.PaymentInfo  `json:"payment_info" validate:"required"`
	Subtotal     float64             `json:"subtotal"`
	Shipping     float64             `json:"shipping"`
	Tax          float64             `json:"tax"`
	Total        float64             `json:"total"`
}

// OrderService defines the interface for order business logic
type OrderService interface {
	PlaceOrder(ctx context.Context, userID string, input PlaceOrderInput) (*OrderView, error)
	GetOrder(ctx context.Context, userID string, orderID uuid.UUID) (*OrderView, error)
	GetOrdersByUser(ctx context.Context, userID string) ([]*OrderView, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	logger    *zap.Logger
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(orderRepo repository.OrderRepository, cartRepo repository.CartRepository, logger *zap.Logger) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		logger:    logger,
	}
}

// PlaceOrder snapshots the user's cart into a pending order. The cart is
// cleared only after the order row is durably saved; a failed save leaves
// the cart untouched.
func (s *orderService) PlaceOrder(ctx context.Context, userID string, input PlaceOrderInput) (*OrderView, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperr.Validation("user id is required")
	}

	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return nil, apperr.Validation("cart is empty")
		}
		return nil, apperr.Database("failed to load cart", err)
	}
	if len(cart.Items) == 0 {
		return nil, apperr.Validation("cart is empty")
	}

	items := make([]domain.OrderItem, len(cart.Items))
	for i, line := range cart.Items {
		items[i] = domain.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.Price,
			Variant:   line.Variant,
			Size:      line.Size,
			Color:     line.Color,
		}
	}

	now := time.Now()
	order := &domain.Order{
		ID:           uuid.New(),
		UserID:       userID,
		Items:        items,
		ShippingInfo: input.ShippingInfo,
		PaymentInfo:  input.PaymentInfo,
		Subtotal:     input.Subtotal,
		Shipping:     input.Shipping,
		Tax:          input.Tax,
		Total:        input.Total,
		Status:       domain.OrderStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.logger.Error("failed to save order",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, apperr.Save("failed to save order", err)
	}

	// The order exists now; a failed cart clear must not unwind it. The
	// stale cart will be overwritten by the next cart write or expire.
	cart.Items = []domain.CartItem{}
	cart.TotalPrice = 0
	cart.Version++
	cart.UpdatedAt = now
	if err := s.cartRepo.Save(ctx, cart); err != nil {
		s.logger.Error("order saved but cart clear failed",
			zap.String("user_id", userID),
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("order placed",
		zap.String("user_id", userID),
		zap.String("order_id", order.ID.String()),
		zap.Float64("total", order.Total),
	)

	return newOrderView(order), nil
}

// GetOrder returns one order, scoped to its owner.
func (s *orderService) GetOrder(ctx context.Context, userID string, orderID uuid.UUID) (*OrderView, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperr.NotFound("order")
		}
		return nil, apperr.Database("failed to load order", err)
	}
	if order.UserID != userID {
		return nil, apperr.NotFound("order")
	}

	return newOrderView(order), nil
}

// GetOrdersByUser returns the user's order history, newest first.
func (s *orderService) GetOrdersByUser(ctx context.Context, userID string) ([]*OrderView, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperr.Validation("user id is required")
	}

	orders, err := s.orderRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperr.Database("failed to load orders", err)
	}

	views := make([]*OrderView, len(orders))
	for i, order := range orders {
		views[i] = newOrderView(order)
	}
	return views, nil
}

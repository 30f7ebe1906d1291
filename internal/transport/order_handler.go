package transport

import (
	"net/http"

	"threadmart/internal/middleware"
	"threadmart/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests for order operations
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.PlaceOrder)
		r.Get("/", h.ListOrders)
		r.Get("/{orderID}", h.GetOrder)
	})
}

// PlaceOrder handles checkout: the stored cart becomes a pending order
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req service.PlaceOrderInput
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Place order validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orderService.PlaceOrder(r.Context(), userID, req)
	if err != nil {
		h.logger.Debug("Failed to place order", zap.String("user_id", userID), zap.Error(err))
		middleware.RespondWithAppError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

// ListOrders handles reading the user's order history
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orders, err := h.orderService.GetOrdersByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list orders", zap.String("user_id", userID), zap.Error(err))
		middleware.RespondWithAppError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// GetOrder handles reading one order, scoped to its owner
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), userID, orderID)
	if err != nil {
		h.logger.Debug("Failed to get order",
			zap.String("user_id", userID),
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
		middleware.RespondWithAppError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

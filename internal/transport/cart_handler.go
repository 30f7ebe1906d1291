package transport

import (
	"net/http"
	"strconv"

	"threadmart/internal/middleware"
	"threadmart/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CartHandler handles HTTP requests for cart operations. Every route is
// scoped to the authenticated user; there is no way to address another
// user's cart.
type CartHandler struct {
	cartService service.CartService
	logger      *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// RegisterRoutes registers all cart routes
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.GetCart)
		r.Post("/items", h.AddItem)
		r.Put("/items/{itemIndex}", h.UpdateItem)
		r.Delete("/items/{itemIndex}", h.RemoveItem)
	})
}

// GetCart handles reading the user's cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	cart, err := h.cartService.GetCart(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to get cart", zap.String("user_id", userID), zap.Error(err))
		middleware.RespondWithAppError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

// AddItem handles adding a line to the cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req service.AddItemInput
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Add item validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cart, err := h.cartService.AddItem(r.Context(), userID, req)
	if err != nil {
		h.logger.Debug("Failed to add cart item",
			zap.String("user_id", userID),
			zap.String("product_id", req.ProductID),
			zap.Error(err),
		)
		middleware.RespondWithAppError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

// UpdateItem handles a partial update of one cart line
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	itemIndex, err := strconv.Atoi(chi.URLParam(r, "itemIndex"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid item index")
		return
	}

	var req service.UpdateItemInput
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Update item decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cart, err := h.cartService.UpdateItem(r.Context(), userID, itemIndex, req)
	if err != nil {
		h.logger.Debug("Failed to update cart item",
			zap.String("user_id", userID),
			zap.Int("item_index", itemIndex),
			zap.Error(err),
		)
		middleware.RespondWithAppError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

// RemoveItem handles deleting one cart line
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	itemIndex, err := strconv.Atoi(chi.URLParam(r, "itemIndex"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid item index")
		return
	}

	cart, err := h.cartService.RemoveItem(r.Context(), userID, itemIndex)
	if err != nil {
		h.logger.Debug("Failed to remove cart item",
			zap.String("user_id", userID),
			zap.Int("item_index", itemIndex),
			zap.Error(err),
		)
		middleware.RespondWithAppError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

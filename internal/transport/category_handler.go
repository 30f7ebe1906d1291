package transport

import (
	"net/http"

	"threadmart/internal/middleware"
	"threadmart/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateCategoryRequest represents the category creation payload
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// CategoryHandler handles HTTP requests for category operations
type CategoryHandler struct {
	categoryService service.CategoryService
	logger          *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// RegisterRoutes registers all category routes
func (h *CategoryHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Post("/", h.CreateCategory)
		})
	})
}

// ListCategories handles listing all categories
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithAppError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// CreateCategory handles adding a new category
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Create category validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.categoryService.CreateCategory(r.Context(), req.Name, req.Description)
	if err != nil {
		h.logger.Error("Failed to create category", zap.Error(err))
		middleware.RespondWithAppError(w, err)
		return
	}

	h.logger.Info("Category created", zap.String("name", category.Name))
	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

package transport

import (
	"net/http"
	"strconv"

	"threadmart/internal/apperr"
	"threadmart/internal/domain"
	"threadmart/internal/middleware"
	"threadmart/internal/repository"
	"threadmart/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SaveVariantsRequest carries the full variant list for a product. The list
// is authoritative: stored variants not present here are dropped.
type SaveVariantsRequest struct {
	Variants []domain.VariantInput `json:"variants"`
}

// ProductHandler handles HTTP requests for catalog and variant operations
type ProductHandler struct {
	productService service.ProductService
	variantService service.VariantService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, variantService service.VariantService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		variantService: variantService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		// Public routes
		r.Get("/", h.ListProducts)
		r.Get("/search", h.SearchProducts)
		r.Get("/{productID}", h.GetProduct)
		r.Get("/{productID}/variants", h.GetVariants)

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Post("/", h.CreateProduct)
			r.Put("/{productID}/variants", h.SaveVariants)
		})
	})
}

// ListProducts handles catalog listing with pagination and sorting
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("page_size"))
	sortOrder := repository.SortOrderDesc
	if query.Get("sort_order") == "asc" {
		sortOrder = repository.SortOrderAsc
	}

	result, err := h.productService.ListProducts(r.Context(), query.Get("category"), page, pageSize, query.Get("sort_by"), sortOrder)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithAppError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}

// SearchProducts handles full-text catalog search
func (h *ProductHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("page_size"))

	result, err := h.productService.SearchProducts(r.Context(), query.Get("q"), page, pageSize)
	if err != nil {
		h.logger.Error("Failed to search products", zap.Error(err))
		middleware.RespondWithAppError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}

// GetProduct handles fetching one product by its public identifier
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	product, err := h.productService.GetProduct(r.Context(), productID)
	if err != nil {
		h.logger.Debug("Failed to get product", zap.String("product_id", productID), zap.Error(err))
		middleware.RespondWithAppError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// CreateProduct handles adding a product to the catalog
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req service.CreateProductInput

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Create product validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.productService.CreateProduct(r.Context(), req)
	if err != nil {
		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithAppError(w, err)
		return
	}

	h.logger.Info("Product created", zap.String("unique_id", product.UniqueID))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// GetVariants handles reading a product's variant matrix
func (h *ProductHandler) GetVariants(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	result, err := h.variantService.GetVariants(r.Context(), productID)
	if err != nil {
		h.logger.Debug("Failed to get variants", zap.String("product_id", productID), zap.Error(err))
		middleware.RespondWithAppError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}

// SaveVariants handles replacing a product's variant matrix
func (h *ProductHandler) SaveVariants(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	var req SaveVariantsRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Save variants decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.variantService.SaveVariants(r.Context(), productID, req.Variants)
	if err != nil {
		h.logger.Debug("Failed to save variants",
			zap.String("product_id", productID),
			zap.String("error_type", apperr.TypeOf(err)),
			zap.Error(err),
		)
		middleware.RespondWithAppError(w, err)
		return
	}

	h.logger.Info("Variants saved",
		zap.String("product_id", productID),
		zap.Int("variant_count", len(result.Variants)),
		zap.Int("total_stock", result.TotalStock),
	)
	middleware.RespondWithJSON(w, http.StatusOK, result)
}

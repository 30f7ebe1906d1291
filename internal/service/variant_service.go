package service

import (
	"context"
	"errors"
	"strings"

	"threadmart/internal/apperr"
	"threadmart/internal/domain"
	"threadmart/internal/repository"

	"go.uber.org/zap"
)

// VariantService defines the interface for variant matrix business logic
type VariantService interface {
	SaveVariants(ctx context.Context, productID string, input []domain.VariantInput) (*VariantSaveResult, error)
	GetVariants(ctx context.Context, productID string) (*VariantReadResult, error)
}

// VariantSaveResult is returned after a successful merge-validate-persist
// cycle: the refreshed product plus the state that was written.
type VariantSaveResult struct {
	Product    *ProductView     `json:"product"`
	Variants   []domain.Variant `json:"variants"`
	TotalStock int              `json:"total_stock"`
}

// VariantReadResult is the read-only projection of a product's variant state.
type VariantReadResult struct {
	Variants   []domain.Variant `json:"variants"`
	TotalStock int              `json:"total_stock"`
}

type variantService struct {
	productRepo repository.ProductRepository
	logger      *zap.Logger
}

// NewVariantService creates a new instance of VariantService
func NewVariantService(productRepo repository.ProductRepository, logger *zap.Logger) VariantService {
	return &variantService{
		productRepo: productRepo,
		logger:      logger,
	}
}

// SaveVariants merges an incoming variant list into the stored matrix,
// validates the merged result as a whole, recomputes total stock, and
// persists both in one update. Nothing is written unless every step passes.
func (s *variantService) SaveVariants(ctx context.Context, productID string, input []domain.VariantInput) (*VariantSaveResult, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, apperr.Validation("product id is required")
	}
	if input == nil {
		return nil, apperr.Validation("variants must be provided as a list")
	}

	product, err := s.productRepo.FindByUniqueID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, apperr.NotFound("product")
		}
		return nil, apperr.Database("failed to load product", err)
	}

	merged := domain.MergeVariants(input, product.Variants)

	if result := domain.ValidateVariants(merged); !result.IsValid {
		return nil, apperr.ValidationList("variants validation failed", result.Errors)
	}

	totalStock := domain.TotalStock(merged)
	if totalStock < 0 {
		// Validation guarantees non-negative stock per size, so a negative
		// sum means the computation itself went wrong. Keep this apart from
		// ordinary validation failures in the logs.
		s.logger.Error("variant stock aggregation produced a negative total",
			zap.String("product_id", productID),
			zap.Int("total_stock", totalStock),
		)
		return nil, apperr.Calculation("invalid total stock calculated")
	}

	if err := s.productRepo.UpdateVariants(ctx, productID, merged, totalStock); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, apperr.NotFound("product")
		}
		s.logger.Error("failed to persist variants",
			zap.String("product_id", productID),
			zap.Error(err),
		)
		return nil, apperr.Save("failed to save product variants", err)
	}

	updated, err := s.productRepo.FindByUniqueID(ctx, productID)
	if err != nil {
		return nil, apperr.Database("failed to reload product after save", err)
	}

	return &VariantSaveResult{
		Product:    newProductView(updated),
		Variants:   merged,
		TotalStock: totalStock,
	}, nil
}

// GetVariants returns the stored variant matrix and total stock for a product
func (s *variantService) GetVariants(ctx context.Context, productID string) (*VariantReadResult, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, apperr.Validation("product id is required")
	}

	product, err := s.productRepo.FindByUniqueID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, apperr.NotFound("product")
		}
		return nil, apperr.Database("failed to load product", err)
	}

	variants := product.Variants
	if variants == nil {
		variants = []domain.Variant{}
	}

	return &VariantReadResult{
		Variants:   variants,
		TotalStock: product.TotalStock,
	}, nil
}

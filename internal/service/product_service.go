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
)

// CreateProductInput carries the fields needed to create a catalog entry.
// Variants are optional at creation time; the variant matrix is usually
// built up afterwards through the variant save path.
type CreateProductInput struct {
	UniqueID    string           `json:"unique_id" validate:"required"`
	Title       string           `json:"title" validate:"required"`
	Description string           `json:"description"`
	Images      []string         `json:"images"`
	Category    string           `json:"category"`
	Price       float64          `json:"price" validate:"gt=0"`
	BasePrice   float64          `json:"base_price"`
	OfferPrice  float64          `json:"offer_price"`
	Variants    []domain.Variant `json:"variants"`
}

// ProductListResult is a page of products plus pagination metadata.
type ProductListResult struct {
	Products   []*ProductView `json:"products"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// ProductService defines the interface for catalog business logic
type ProductService interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductView, error)
	GetProduct(ctx context.Context, uniqueID string) (*ProductView, error)
	ListProducts(ctx context.Context, category string, page, pageSize int, sortBy string, sortOrder repository.SortOrder) (*ProductListResult, error)
	SearchProducts(ctx context.Context, query string, page, pageSize int) (*ProductListResult, error)
}

type productService struct {
	productRepo repository.ProductRepository
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

// CreateProduct adds a new product to the catalog. Any supplied variant
// matrix must already be coherent; total stock is derived, never taken from
// the caller.
func (s *productService) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductView, error) {
	if strings.TrimSpace(input.UniqueID) == "" {
		return nil, apperr.Validation("unique id is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperr.Validation("title is required")
	}
	if input.Price <= 0 {
		return nil, apperr.Validation("price must be greater than zero")
	}

	variants := input.Variants
	if variants == nil {
		variants = []domain.Variant{}
	}
	if result := domain.ValidateVariants(variants); !result.IsValid {
		return nil, apperr.ValidationList("variants validation failed", result.Errors)
	}

	now := time.Now()
	product := &domain.Product{
		ID:          uuid.New(),
		UniqueID:    strings.TrimSpace(input.UniqueID),
		Title:       input.Title,
		Description: input.Description,
		Images:      input.Images,
		Category:    input.Category,
		Price:       input.Price,
		BasePrice:   input.BasePrice,
		OfferPrice:  input.OfferPrice,
		TotalStock:  domain.TotalStock(variants),
		Variants:    variants,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductAlreadyExists) {
			return nil, apperr.Conflict("a product with this unique id already exists")
		}
		return nil, apperr.Save("failed to create product", err)
	}

	return newProductView(product), nil
}

// GetProduct returns one product by its public identifier
func (s *productService) GetProduct(ctx context.Context, uniqueID string) (*ProductView, error) {
	uniqueID = strings.TrimSpace(uniqueID)
	if uniqueID == "" {
		return nil, apperr.Validation("product id is required")
	}

	product, err := s.productRepo.FindByUniqueID(ctx, uniqueID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, apperr.NotFound("product")
		}
		return nil, apperr.Database("failed to load product", err)
	}

	return newProductView(product), nil
}

// ListProducts returns a page of the catalog, optionally filtered by category
func (s *productService) ListProducts(ctx context.Context, category string, page, pageSize int, sortBy string, sortOrder repository.SortOrder) (*ProductListResult, error) {
	page, pageSize = normalizePage(page, pageSize)

	products, total, err := s.productRepo.List(ctx, category, page, pageSize, sortBy, sortOrder)
	if err != nil {
		return nil, apperr.Database("failed to list products", err)
	}

	return newProductListResult(products, total, page, pageSize), nil
}

// SearchProducts returns a page of products matching the query text
func (s *productService) SearchProducts(ctx context.Context, query string, page, pageSize int) (*ProductListResult, error) {
	page, pageSize = normalizePage(page, pageSize)

	products, total, err := s.productRepo.Search(ctx, query, page, pageSize)
	if err != nil {
		return nil, apperr.Database("failed to search products", err)
	}

	return newProductListResult(products, total, page, pageSize), nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

func newProductListResult(products []*domain.Product, total, page, pageSize int) *ProductListResult {
	views := make([]*ProductView, len(products))
	for i, product := range products {
		views[i] = newProductView(product)
	}

	totalPages := total / pageSize
	if total%pageSize > 0 {
		totalPages++
	}

	return &ProductListResult{
		Products:   views,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

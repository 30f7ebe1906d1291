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

// CategoryService defines the interface for category business logic
type CategoryService interface {
	CreateCategory(ctx context.Context, name, description string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

// CreateCategory adds a new category
func (s *categoryService) CreateCategory(ctx context.Context, name, description string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("category name is required")
	}

	category := &domain.Category{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrCategoryAlreadyExists) {
			return nil, apperr.Conflict("a category with this name already exists")
		}
		return nil, apperr.Save("failed to create category", err)
	}

	return category, nil
}

// ListCategories returns all categories ordered by name
func (s *categoryService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, apperr.Database("failed to list categories", err)
	}
	return categories, nil
}

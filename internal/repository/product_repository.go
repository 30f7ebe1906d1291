package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"threadmart/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductAlreadyExists = errors.New("product with this unique id already exists")
)

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

// ProductRepository defines the interface for product data access. Products
// are single rows whose variant matrix and image list live in JSONB columns;
// the public identifier (unique_id) is distinct from the row key.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindByUniqueID(ctx context.Context, uniqueID string) (*domain.Product, error)
	List(ctx context.Context, category string, page, pageSize int, sortBy string, sortOrder SortOrder) ([]*domain.Product, int, error)
	Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error)
	UpdateVariants(ctx context.Context, uniqueID string, variants []domain.Variant, totalStock int) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, unique_id, title, description, images, category, price, base_price, offer_price, total_stock, variants, created_at, updated_at`

// Create inserts a new product using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	images, err := json.Marshal(product.Images)
	if err != nil {
		return fmt.Errorf("failed to encode product images: %w", err)
	}
	variants, err := json.Marshal(product.Variants)
	if err != nil {
		return fmt.Errorf("failed to encode product variants: %w", err)
	}

	query := `
		INSERT INTO products (id, unique_id, title, description, images, category, price, base_price, offer_price, total_stock, variants, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.UniqueID,
		product.Title,
		product.Description,
		images,
		product.Category,
		product.Price,
		product.BasePrice,
		nullableOfferPrice(product.OfferPrice),
		product.TotalStock,
		variants,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrProductAlreadyExists
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// FindByID retrieves a product by its row key
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)
	return r.scanProduct(r.db.QueryRowContext(ctx, query, id))
}

// FindByUniqueID retrieves a product by its public identifier
func (r *productRepository) FindByUniqueID(ctx context.Context, uniqueID string) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE unique_id = $1`, productColumns)
	return r.scanProduct(r.db.QueryRowContext(ctx, query, uniqueID))
}

// UpdateVariants atomically replaces the variant matrix and derived total
// stock of the product identified by its public identifier. The caller is
// responsible for having run the merge-and-validate path first.
func (r *productRepository) UpdateVariants(ctx context.Context, uniqueID string, variants []domain.Variant, totalStock int) error {
	encoded, err := json.Marshal(variants)
	if err != nil {
		return fmt.Errorf("failed to encode variants: %w", err)
	}

	query := `
		UPDATE products
		SET variants = $2, total_stock = $3, updated_at = NOW()
		WHERE unique_id = $1
	`

	result, err := r.db.ExecContext(ctx, query, uniqueID, encoded, totalStock)
	if err != nil {
		return fmt.Errorf("failed to update product variants: %w", describeStoreError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// List retrieves products with optional category filtering, pagination, and sorting
func (r *productRepository) List(ctx context.Context, category string, page, pageSize int, sortBy string, sortOrder SortOrder) ([]*domain.Product, int, error) {
	// Validate sort field to prevent SQL injection
	validSortFields := map[string]bool{
		"title":       true,
		"price":       true,
		"created_at":  true,
		"total_stock": true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at" // Default sort field
	}

	if sortOrder != SortOrderAsc && sortOrder != SortOrderDesc {
		sortOrder = SortOrderDesc // Default sort order
	}

	whereClause := ""
	args := []interface{}{}
	argIndex := 1

	if category != "" {
		whereClause = fmt.Sprintf("WHERE category = $%d", argIndex)
		args = append(args, category)
		argIndex++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		%s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, productColumns, whereClause, sortBy, sortOrder, argIndex, argIndex+1)

	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products, err := r.collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// Search searches for products by title or description with pagination
func (r *productRepository) Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	if strings.TrimSpace(query) == "" {
		return r.List(ctx, "", page, pageSize, "created_at", SortOrderDesc)
	}

	// Use ILIKE for case-insensitive search
	searchPattern := "%" + query + "%"

	countQuery := `
		SELECT COUNT(*)
		FROM products
		WHERE title ILIKE $1 OR description ILIKE $1
	`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, searchPattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count search results: %w", err)
	}

	offset := (page - 1) * pageSize

	searchQuery := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE title ILIKE $1 OR description ILIKE $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, productColumns)

	rows, err := r.db.QueryContext(ctx, searchQuery, searchPattern, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	products, err := r.collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *productRepository) scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	var images, variants []byte
	var offerPrice sql.NullFloat64

	err := row.Scan(
		&product.ID,
		&product.UniqueID,
		&product.Title,
		&product.Description,
		&images,
		&product.Category,
		&product.Price,
		&product.BasePrice,
		&offerPrice,
		&product.TotalStock,
		&variants,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	if offerPrice.Valid {
		product.OfferPrice = offerPrice.Float64
	}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &product.Images); err != nil {
			return nil, fmt.Errorf("failed to decode product images: %w", err)
		}
	}
	if len(variants) > 0 {
		if err := json.Unmarshal(variants, &product.Variants); err != nil {
			return nil, fmt.Errorf("failed to decode product variants: %w", err)
		}
	}
	if product.Variants == nil {
		product.Variants = []domain.Variant{}
	}

	return product, nil
}

func (r *productRepository) collectProducts(rows *sql.Rows) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for rows.Next() {
		product, err := r.scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func nullableOfferPrice(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: v > 0}
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// describeStoreError surfaces Postgres field-level detail when the store
// rejects a write with a structured error, so callers can report it.
func describeStoreError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Errorf("%s: %s", pgErr.Message, pgErr.Detail)
	}
	return err
}

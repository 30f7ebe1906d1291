package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"threadmart/internal/apperr"
	"threadmart/internal/domain"
	"threadmart/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxCartSaveAttempts bounds the read-modify-write retry loop when another
// writer changes the cart between our read and our conditional save.
const maxCartSaveAttempts = 3

// AddItemInput carries one line to add to a cart.
type AddItemInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	Size      string `json:"size" validate:"required"`
	Color     string `json:"color" validate:"required"`
	Variant   string `json:"variant"`
}

// UpdateItemInput carries a partial update for one cart line. Nil fields are
// left untouched.
type UpdateItemInput struct {
	Quantity *int    `json:"quantity"`
	Size     *string `json:"size"`
	Color    *string `json:"color"`
	Variant  *string `json:"variant"`
}

// CartService defines the interface for cart business logic
type CartService interface {
	AddItem(ctx context.Context, userID string, input AddItemInput) (*CartView, error)
	GetCart(ctx context.Context, userID string) (*CartView, error)
	UpdateItem(ctx context.Context, userID string, itemIndex int, input UpdateItemInput) (*CartView, error)
	RemoveItem(ctx context.Context, userID string, itemIndex int) (*CartView, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      *zap.Logger
}

// NewCartService creates a new instance of CartService
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, logger *zap.Logger) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// AddItem adds a product line to the user's cart, merging quantity into an
// existing line when product, color and size all match.
func (s *cartService) AddItem(ctx context.Context, userID string, input AddItemInput) (*CartView, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperr.Validation("user id is required")
	}
	if strings.TrimSpace(input.ProductID) == "" {
		return nil, apperr.Validation("product id is required")
	}
	if input.Quantity < 1 {
		return nil, apperr.Validation("quantity must be at least 1")
	}
	if strings.TrimSpace(input.Size) == "" {
		return nil, apperr.Validation("size is required")
	}
	if strings.TrimSpace(input.Color) == "" {
		return nil, apperr.Validation("color is required")
	}

	product, unitPrice, err := s.resolvePricedProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	cart, err := s.mutateCart(ctx, userID, true, func(cart *domain.Cart) error {
		idx := cart.FindLineIndex(input.ProductID, input.Color, input.Size)
		if idx >= 0 {
			line := &cart.Items[idx]
			line.Quantity += input.Quantity
			line.Price = domain.RoundCents(unitPrice * float64(line.Quantity))
		} else {
			cart.Items = append(cart.Items, domain.CartItem{
				ProductID: input.ProductID,
				Quantity:  input.Quantity,
				Price:     domain.RoundCents(unitPrice * float64(input.Quantity)),
				Variant:   input.Variant,
				Size:      input.Size,
				Color:     input.Color,
			})
		}
		s.recomputeTotal(ctx, cart)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("cart line added",
		zap.String("user_id", userID),
		zap.String("product_id", product.UniqueID),
		zap.Int("quantity", input.Quantity),
	)

	return s.buildCartView(ctx, cart), nil
}

// GetCart returns the user's cart with product display data joined onto each
// line. A user with no stored cart gets an empty cart, not an error.
func (s *cartService) GetCart(ctx context.Context, userID string) (*CartView, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperr.Validation("user id is required")
	}

	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return &CartView{
				UserID:     userID,
				Items:      []CartItemView{},
				TotalPrice: 0,
			}, nil
		}
		return nil, apperr.Database("failed to load cart", err)
	}

	return s.buildCartView(ctx, cart), nil
}

// UpdateItem applies a partial update to one cart line, addressed by index.
// A quantity change reprices the line from the product's current unit price.
func (s *cartService) UpdateItem(ctx context.Context, userID string, itemIndex int, input UpdateItemInput) (*CartView, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperr.Validation("user id is required")
	}
	if input.Quantity != nil && *input.Quantity < 1 {
		return nil, apperr.Validation("quantity must be at least 1")
	}

	cart, err := s.mutateCart(ctx, userID, false, func(cart *domain.Cart) error {
		if itemIndex < 0 || itemIndex >= len(cart.Items) {
			return apperr.Validation("item index is out of range")
		}
		line := &cart.Items[itemIndex]

		if input.Quantity != nil {
			oldQuantity := line.Quantity
			oldPrice := line.Price
			line.Quantity = *input.Quantity

			unitPrice, ok := s.lookupUnitPrice(ctx, line.ProductID)
			if !ok && oldQuantity > 0 {
				// Product gone; keep the line's implied unit price.
				unitPrice = oldPrice / float64(oldQuantity)
			}
			line.Price = domain.RoundCents(unitPrice * float64(line.Quantity))
		}
		if input.Size != nil {
			line.Size = *input.Size
		}
		if input.Color != nil {
			line.Color = *input.Color
		}
		if input.Variant != nil {
			line.Variant = *input.Variant
		}

		s.recomputeTotal(ctx, cart)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.buildCartView(ctx, cart), nil
}

// RemoveItem deletes one cart line by index and reprices the cart.
func (s *cartService) RemoveItem(ctx context.Context, userID string, itemIndex int) (*CartView, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperr.Validation("user id is required")
	}

	cart, err := s.mutateCart(ctx, userID, false, func(cart *domain.Cart) error {
		if itemIndex < 0 || itemIndex >= len(cart.Items) {
			return apperr.Validation("item index is out of range")
		}
		cart.Items = append(cart.Items[:itemIndex], cart.Items[itemIndex+1:]...)
		s.recomputeTotal(ctx, cart)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.buildCartView(ctx, cart), nil
}

// mutateCart runs a read-modify-write cycle against the cart document with a
// version check on the write. On a version conflict the whole cycle reruns
// against the fresh document, up to maxCartSaveAttempts times.
func (s *cartService) mutateCart(ctx context.Context, userID string, createIfMissing bool, mutate func(*domain.Cart) error) (*domain.Cart, error) {
	for attempt := 0; attempt < maxCartSaveAttempts; attempt++ {
		cart, err := s.cartRepo.Get(ctx, userID)
		if err != nil {
			if !errors.Is(err, repository.ErrCartNotFound) {
				return nil, apperr.Database("failed to load cart", err)
			}
			if !createIfMissing {
				return nil, apperr.NotFound("cart")
			}
			now := time.Now()
			cart = &domain.Cart{
				ID:        uuid.New().String(),
				UserID:    userID,
				Items:     []domain.CartItem{},
				CreatedAt: now,
				UpdatedAt: now,
			}
		}

		expected := cart.Version
		if err := mutate(cart); err != nil {
			return nil, err
		}
		cart.UpdatedAt = time.Now()

		saved, err := s.cartRepo.SaveIfVersion(ctx, cart, expected)
		if err != nil {
			return nil, apperr.Database("failed to save cart", err)
		}
		if saved {
			return cart, nil
		}

		s.logger.Debug("cart version conflict, retrying",
			zap.String("user_id", userID),
			zap.Int("attempt", attempt+1),
		)
	}

	return nil, apperr.Conflict("cart was modified concurrently, please retry")
}

// recomputeTotal reprices any line whose stored price is unusable, then
// recomputes the cart total from scratch. Lines whose product has vanished
// get a zero price rather than poisoning the total.
func (s *cartService) recomputeTotal(ctx context.Context, cart *domain.Cart) {
	for i := range cart.Items {
		line := &cart.Items[i]
		if line.Price > 0 && !math.IsNaN(line.Price) {
			continue
		}
		if unitPrice, ok := s.lookupUnitPrice(ctx, line.ProductID); ok {
			line.Price = domain.RoundCents(unitPrice * float64(line.Quantity))
		} else {
			line.Price = 0
		}
	}
	cart.TotalPrice = cart.SumLinePrices()
}

// resolvePricedProduct loads a product and its effective unit price,
// rejecting products that cannot currently be sold.
func (s *cartService) resolvePricedProduct(ctx context.Context, productID string) (*domain.Product, float64, error) {
	product, err := s.findProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, 0, apperr.NotFound("product")
		}
		return nil, 0, apperr.Database("failed to load product", err)
	}

	unitPrice := product.UnitPrice()
	if unitPrice <= 0 || math.IsNaN(unitPrice) {
		s.logger.Warn("rejected cart add for unpriced product",
			zap.String("product_id", productID),
			zap.Float64("price", product.Price),
			zap.Float64("offer_price", product.OfferPrice),
		)
		return nil, 0, apperr.Validation("product price is invalid")
	}

	return product, unitPrice, nil
}

// lookupUnitPrice fetches the current effective unit price for a product,
// reporting ok=false when the product is missing or unpriced.
func (s *cartService) lookupUnitPrice(ctx context.Context, productID string) (float64, bool) {
	product, err := s.findProduct(ctx, productID)
	if err != nil {
		return 0, false
	}
	unitPrice := product.UnitPrice()
	if unitPrice <= 0 || math.IsNaN(unitPrice) {
		return 0, false
	}
	return unitPrice, true
}

// findProduct resolves a cart-line product reference, accepting either the
// row key or the public identifier.
func (s *cartService) findProduct(ctx context.Context, productID string) (*domain.Product, error) {
	if id, err := uuid.Parse(productID); err == nil {
		return s.productRepo.FindByID(ctx, id)
	}
	return s.productRepo.FindByUniqueID(ctx, productID)
}

// buildCartView joins product display data onto each line. A vanished
// product leaves the line intact with a nil product projection.
func (s *cartService) buildCartView(ctx context.Context, cart *domain.Cart) *CartView {
	items := make([]CartItemView, 0, len(cart.Items))
	for _, line := range cart.Items {
		view := CartItemView{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.Price,
			Variant:   line.Variant,
			Size:      line.Size,
			Color:     line.Color,
		}
		if product, err := s.findProduct(ctx, line.ProductID); err == nil {
			view.Product = newProductSummary(product)
		}
		items = append(items, view)
	}

	return &CartView{
		ID:         cart.ID,
		UserID:     cart.UserID,
		Items:      items,
		TotalPrice: cart.TotalPrice,
		CreatedAt:  isoTime(cart.CreatedAt),
		UpdatedAt:  isoTime(cart.UpdatedAt),
	}
}

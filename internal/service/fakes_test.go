package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"threadmart/internal/domain"
	"threadmart/internal/repository"

	"github.com/google/uuid"
)

// In-memory repository fakes. Reads and writes go through a JSON round trip
// so tests never share slices with the code under test.

var errStoreRejected = errors.New("write rejected by store")

type fakeProductRepo struct {
	products  map[string]*domain.Product // keyed by unique_id
	findErr   error
	updateErr error
	updates   int
}

func newFakeProductRepo(products ...*domain.Product) *fakeProductRepo {
	repo := &fakeProductRepo{products: map[string]*domain.Product{}}
	for _, p := range products {
		repo.products[p.UniqueID] = cloneValue(p)
	}
	return repo
}

func cloneValue[T any](v *T) *T {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	out := new(T)
	if err := json.Unmarshal(data, out); err != nil {
		panic(err)
	}
	return out
}

func (r *fakeProductRepo) Create(ctx context.Context, product *domain.Product) error {
	if _, ok := r.products[product.UniqueID]; ok {
		return repository.ErrProductAlreadyExists
	}
	r.products[product.UniqueID] = cloneValue(product)
	return nil
}

func (r *fakeProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, p := range r.products {
		if p.ID == id {
			return cloneValue(p), nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (r *fakeProductRepo) FindByUniqueID(ctx context.Context, uniqueID string) (*domain.Product, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	p, ok := r.products[uniqueID]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return cloneValue(p), nil
}

func (r *fakeProductRepo) List(ctx context.Context, category string, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
	out := []*domain.Product{}
	for _, p := range r.products {
		if category == "" || p.Category == category {
			out = append(out, cloneValue(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UniqueID < out[j].UniqueID })
	return out, len(out), nil
}

func (r *fakeProductRepo) Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	return r.List(ctx, "", page, pageSize, "created_at", repository.SortOrderDesc)
}

func (r *fakeProductRepo) UpdateVariants(ctx context.Context, uniqueID string, variants []domain.Variant, totalStock int) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	p, ok := r.products[uniqueID]
	if !ok {
		return repository.ErrProductNotFound
	}
	p.Variants = variants
	p.TotalStock = totalStock
	r.updates++
	return nil
}

type fakeCartRepo struct {
	carts         map[string]*domain.Cart // keyed by user id
	saveErr       error
	conflictsLeft int // forces this many SaveIfVersion rejections
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: map[string]*domain.Cart{}}
}

func (r *fakeCartRepo) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, ok := r.carts[userID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	return cloneValue(cart), nil
}

func (r *fakeCartRepo) Save(ctx context.Context, cart *domain.Cart) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.carts[cart.UserID] = cloneValue(cart)
	return nil
}

func (r *fakeCartRepo) SaveIfVersion(ctx context.Context, cart *domain.Cart, expectedVersion int) (bool, error) {
	if r.saveErr != nil {
		return false, r.saveErr
	}
	if r.conflictsLeft > 0 {
		r.conflictsLeft--
		return false, nil
	}
	stored, ok := r.carts[cart.UserID]
	storedVersion := 0
	if ok {
		storedVersion = stored.Version
	}
	if storedVersion != expectedVersion {
		return false, nil
	}
	cart.Version = expectedVersion + 1
	r.carts[cart.UserID] = cloneValue(cart)
	return true, nil
}

func (r *fakeCartRepo) Delete(ctx context.Context, userID string) error {
	delete(r.carts, userID)
	return nil
}

type fakeOrderRepo struct {
	orders    []*domain.Order
	createErr error
}

func (r *fakeOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.orders = append(r.orders, cloneValue(order))
	return nil
}

func (r *fakeOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	for _, o := range r.orders {
		if o.ID == id {
			return cloneValue(o), nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (r *fakeOrderRepo) FindByUserID(ctx context.Context, userID string) ([]*domain.Order, error) {
	out := []*domain.Order{}
	for i := len(r.orders) - 1; i >= 0; i-- {
		if r.orders[i].UserID == userID {
			out = append(out, cloneValue(r.orders[i]))
		}
	}
	return out, nil
}

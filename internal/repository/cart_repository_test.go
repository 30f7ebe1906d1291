package repository

import (
	"context"
	"testing"
	"time"

	"threadmart/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCartRepo(t *testing.T) (CartRepository, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCartRepository(client, time.Hour), mr
}

func sampleCart(userID string, version int) *domain.Cart {
	return &domain.Cart{
		ID:     "cart-" + userID,
		UserID: userID,
		Items: []domain.CartItem{
			{ProductID: "classic-tee", Quantity: 2, Price: 49.98, Size: "M", Color: "Red"},
		},
		TotalPrice: 49.98,
		Version:    version,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

func TestCartRepository_SaveAndGet(t *testing.T) {
	repo, _ := newTestCartRepo(t)
	ctx := context.Background()

	cart := sampleCart("user-1", 1)
	if err := repo.Save(ctx, cart); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	got, err := repo.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	if got.UserID != "user-1" || got.TotalPrice != 49.98 || len(got.Items) != 1 {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Items[0].ProductID != "classic-tee" || got.Items[0].Quantity != 2 {
		t.Errorf("line mismatch: %+v", got.Items[0])
	}
}

func TestCartRepository_GetMissing(t *testing.T) {
	repo, _ := newTestCartRepo(t)

	if _, err := repo.Get(context.Background(), "nobody"); err != ErrCartNotFound {
		t.Errorf("expected ErrCartNotFound, got %v", err)
	}
}

func TestCartRepository_SaveSetsTTL(t *testing.T) {
	repo, mr := newTestCartRepo(t)
	ctx := context.Background()

	if err := repo.Save(ctx, sampleCart("user-1", 1)); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	ttl := mr.TTL("cart:user-1")
	if ttl <= 0 || ttl > time.Hour {
		t.Errorf("expected a TTL within the configured window, got %v", ttl)
	}
}

func TestCartRepository_SaveIfVersion(t *testing.T) {
	repo, _ := newTestCartRepo(t)
	ctx := context.Background()

	// First write against a missing document expects version zero.
	cart := sampleCart("user-1", 0)
	saved, err := repo.SaveIfVersion(ctx, cart, 0)
	if err != nil {
		t.Fatalf("SaveIfVersion returned error: %v", err)
	}
	if !saved {
		t.Fatal("expected first conditional save to succeed")
	}
	if cart.Version != 1 {
		t.Errorf("expected version bumped to 1, got %d", cart.Version)
	}

	// A second write carrying the stored version succeeds.
	cart.Items = append(cart.Items, domain.CartItem{ProductID: "hoodie", Quantity: 1, Price: 35, Size: "L", Color: "Black"})
	saved, err = repo.SaveIfVersion(ctx, cart, 1)
	if err != nil {
		t.Fatalf("SaveIfVersion returned error: %v", err)
	}
	if !saved {
		t.Fatal("expected second conditional save to succeed")
	}

	// A write carrying a stale version is rejected without error.
	stale := sampleCart("user-1", 1)
	saved, err = repo.SaveIfVersion(ctx, stale, 1)
	if err != nil {
		t.Fatalf("SaveIfVersion returned error: %v", err)
	}
	if saved {
		t.Fatal("expected stale conditional save to be rejected")
	}

	// The stored document is the version-2 one.
	got, err := repo.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Version != 2 || len(got.Items) != 2 {
		t.Errorf("expected version 2 with 2 lines, got version %d with %d lines", got.Version, len(got.Items))
	}
}

func TestCartRepository_SaveIfVersionMissingDocument(t *testing.T) {
	repo, _ := newTestCartRepo(t)
	ctx := context.Background()

	// Expecting a non-zero version on a missing document is a conflict.
	cart := sampleCart("user-1", 3)
	saved, err := repo.SaveIfVersion(ctx, cart, 3)
	if err != nil {
		t.Fatalf("SaveIfVersion returned error: %v", err)
	}
	if saved {
		t.Fatal("expected conditional save against missing document to be rejected")
	}
}

func TestCartRepository_Delete(t *testing.T) {
	repo, _ := newTestCartRepo(t)
	ctx := context.Background()

	if err := repo.Save(ctx, sampleCart("user-1", 1)); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if err := repo.Delete(ctx, "user-1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := repo.Get(ctx, "user-1"); err != ErrCartNotFound {
		t.Errorf("expected ErrCartNotFound after delete, got %v", err)
	}
}

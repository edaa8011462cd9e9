package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"storefront-bot/internal/models"
)

func TestPurchaseProduct(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	seedUser(t, s, 1, 500)
	product := seedProduct(t, s, 200, 3)

	order, err := s.PurchaseProduct(ctx, 1, product.ID, 0)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if order.Amount != 200 || order.ProductName != product.Name {
		t.Errorf("order = %+v", order)
	}
	if order.Status != models.OrderStatusCompleted {
		t.Errorf("status = %q, want %q", order.Status, models.OrderStatusCompleted)
	}

	user := mustGetUser(t, s, 1)
	if user.Balance != 300 {
		t.Errorf("balance = %d, want 300", user.Balance)
	}
	if user.TotalSpent != 200 {
		t.Errorf("total spent = %d, want 200", user.TotalSpent)
	}

	got, err := s.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if got.Stock != 2 {
		t.Errorf("stock = %d, want 2", got.Stock)
	}
}

func TestPurchaseInsufficientFunds(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	seedUser(t, s, 1, 50)
	product := seedProduct(t, s, 200, 3)

	if _, err := s.PurchaseProduct(ctx, 1, product.ID, 0); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("err = %v, want ErrInsufficientFunds", err)
	}

	// Nothing changed.
	if got, _ := s.GetProduct(ctx, product.ID); got.Stock != 3 {
		t.Errorf("stock = %d, want 3", got.Stock)
	}
	if mustGetUser(t, s, 1).Balance != 50 {
		t.Error("balance changed on failed purchase")
	}
}

func TestPurchaseOutOfStock(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	seedUser(t, s, 1, 500)
	product := seedProduct(t, s, 100, 0)

	if _, err := s.PurchaseProduct(ctx, 1, product.ID, 0); !errors.Is(err, ErrOutOfStock) {
		t.Errorf("err = %v, want ErrOutOfStock", err)
	}
}

func TestPurchaseUnlimitedStock(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	seedUser(t, s, 1, 500)
	product := seedProduct(t, s, 100, -1)

	for i := 0; i < 3; i++ {
		if _, err := s.PurchaseProduct(ctx, 1, product.ID, 0); err != nil {
			t.Fatalf("purchase %d: %v", i, err)
		}
	}
	if got, _ := s.GetProduct(ctx, product.ID); got.Stock != -1 {
		t.Errorf("stock = %d, want -1", got.Stock)
	}
}

func TestPurchaseBannedUser(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	seedUser(t, s, 1, 500)
	product := seedProduct(t, s, 100, 1)
	if err := s.BanUser(ctx, 1, 999, "спам"); err != nil {
		t.Fatalf("ban: %v", err)
	}

	if _, err := s.PurchaseProduct(ctx, 1, product.ID, 0); !errors.Is(err, ErrUserBanned) {
		t.Errorf("err = %v, want ErrUserBanned", err)
	}
}

func TestPurchaseReferralKickback(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	inviter := seedUser(t, s, 1, 0)
	buyer := seedUser(t, s, 2, 1000)
	buyer.ReferredBy = &inviter.TelegramID
	if err := s.db.Save(buyer).Error; err != nil {
		t.Fatalf("link referral: %v", err)
	}
	product := seedProduct(t, s, 200, 5)

	if _, err := s.PurchaseProduct(ctx, 2, product.ID, 10); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	got := mustGetUser(t, s, 1)
	if got.Balance != 20 {
		t.Errorf("inviter balance = %d, want 20 (10%% of 200)", got.Balance)
	}
	if got.ReferralEarnings != 20 {
		t.Errorf("referral earnings = %d, want 20", got.ReferralEarnings)
	}
}

func TestPurchaseConcurrentLastUnit(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	product := seedProduct(t, s, 100, 1)

	const workers = 8
	for i := int64(1); i <= workers; i++ {
		seedUser(t, s, i, 1000)
	}

	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := int64(1); i <= workers; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_, err := s.PurchaseProduct(ctx, userID, product.ID, 0)
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var ok, outOfStock int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrOutOfStock):
			outOfStock++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Errorf("successful purchases = %d, want exactly 1", ok)
	}
	if got, _ := s.GetProduct(ctx, product.ID); got.Stock != 0 {
		t.Errorf("stock = %d, want 0", got.Stock)
	}
}

func TestListOrders(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	seedUser(t, s, 1, 1000)
	product := seedProduct(t, s, 100, -1)
	for i := 0; i < 3; i++ {
		if _, err := s.PurchaseProduct(ctx, 1, product.ID, 0); err != nil {
			t.Fatalf("purchase: %v", err)
		}
	}

	orders, err := s.ListOrders(ctx, 1, 2)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 2 {
		t.Errorf("len = %d, want 2", len(orders))
	}
}

func TestAverageOrderAmount(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	avg, err := s.AverageOrderAmount(ctx)
	if err != nil {
		t.Fatalf("average on empty: %v", err)
	}
	if avg != 0 {
		t.Errorf("avg = %d, want 0 with no orders", avg)
	}

	seedUser(t, s, 1, 1000)
	cheap := seedProduct(t, s, 100, -1)
	costly := seedProduct(t, s, 300, -1)
	if _, err := s.PurchaseProduct(ctx, 1, cheap.ID, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := s.PurchaseProduct(ctx, 1, costly.ID, 0); err != nil {
		t.Fatal(err)
	}

	avg, err = s.AverageOrderAmount(ctx)
	if err != nil {
		t.Fatalf("average: %v", err)
	}
	if avg != 200 {
		t.Errorf("avg = %d, want 200", avg)
	}
}

package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"storefront-bot/internal/models"
)

func TestRedeemPromocode(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	seedUser(t, s, 1, 0)
	seedPromo(t, s, "WELCOME1", 100, 5, nil)

	promo, err := s.RedeemPromocode(ctx, "welcome1", 1)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if promo.Amount != 100 {
		t.Errorf("amount = %d, want 100", promo.Amount)
	}
	if promo.UsedCount != 1 {
		t.Errorf("used count = %d, want 1", promo.UsedCount)
	}

	user := mustGetUser(t, s, 1)
	if user.Balance != 100 {
		t.Errorf("balance = %d, want 100", user.Balance)
	}
}

func TestRedeemPromocodeNotFound(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	seedUser(t, s, 1, 0)

	if _, err := s.RedeemPromocode(ctx, "MISSING1", 1); !errors.Is(err, ErrPromoNotFound) {
		t.Errorf("err = %v, want ErrPromoNotFound", err)
	}

	// A deactivated code behaves the same as a missing one.
	seedPromo(t, s, "OLDCODE1", 50, 0, nil)
	if err := s.DeactivatePromocode(ctx, "OLDCODE1"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := s.RedeemPromocode(ctx, "OLDCODE1", 1); !errors.Is(err, ErrPromoNotFound) {
		t.Errorf("err = %v, want ErrPromoNotFound", err)
	}
}

func TestRedeemPromocodeExpired(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	seedUser(t, s, 1, 0)
	past := time.Now().Add(-time.Hour)
	seedPromo(t, s, "EXPIRED1", 100, 0, &past)

	if _, err := s.RedeemPromocode(ctx, "EXPIRED1", 1); !errors.Is(err, ErrPromoExpired) {
		t.Errorf("err = %v, want ErrPromoExpired", err)
	}
	user := mustGetUser(t, s, 1)
	if user.Balance != 0 {
		t.Errorf("balance = %d, want 0", user.Balance)
	}
}

func TestRedeemPromocodeExhausted(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	seedUser(t, s, 1, 0)
	seedUser(t, s, 2, 0)
	seedPromo(t, s, "ONCE1234", 100, 1, nil)

	if _, err := s.RedeemPromocode(ctx, "ONCE1234", 1); err != nil {
		t.Fatalf("first redeem: %v", err)
	}
	if _, err := s.RedeemPromocode(ctx, "ONCE1234", 2); !errors.Is(err, ErrPromoExhausted) {
		t.Errorf("err = %v, want ErrPromoExhausted", err)
	}
}

func TestRedeemPromocodeUnlimited(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	seedPromo(t, s, "FOREVER1", 10, 0, nil)

	for i := int64(1); i <= 5; i++ {
		seedUser(t, s, i, 0)
		if _, err := s.RedeemPromocode(ctx, "FOREVER1", i); err != nil {
			t.Fatalf("redeem %d: %v", i, err)
		}
	}
	promo, err := s.GetPromocode(ctx, "FOREVER1")
	if err != nil {
		t.Fatalf("get promo: %v", err)
	}
	if promo.UsedCount != 5 {
		t.Errorf("used count = %d, want 5", promo.UsedCount)
	}
}

func TestRedeemPromocodeConcurrent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	seedPromo(t, s, "RACE1234", 100, 1, nil)

	const workers = 10
	for i := int64(1); i <= workers; i++ {
		seedUser(t, s, i, 0)
	}

	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := int64(1); i <= workers; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_, err := s.RedeemPromocode(ctx, "RACE1234", userID)
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var ok, exhausted int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrPromoExhausted):
			exhausted++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Errorf("successful redemptions = %d, want exactly 1", ok)
	}
	if exhausted != workers-1 {
		t.Errorf("exhausted errors = %d, want %d", exhausted, workers-1)
	}

	var total int64
	for i := int64(1); i <= workers; i++ {
		total += mustGetUser(t, s, i).Balance
	}
	if total != 100 {
		t.Errorf("total credited = %d, want 100", total)
	}
}

func TestExpirePromocodes(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	seedPromo(t, s, "OLD11111", 10, 0, &past)
	seedPromo(t, s, "FRESH111", 10, 0, &future)
	seedPromo(t, s, "NOEXP111", 10, 0, nil)

	expired, err := s.ExpirePromocodes(ctx, now)
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if len(expired) != 1 || expired[0].Code != "OLD11111" {
		t.Fatalf("expired = %+v, want only OLD11111", expired)
	}

	// Second sweep finds nothing new.
	again, err := s.ExpirePromocodes(ctx, now)
	if err != nil {
		t.Fatalf("expire again: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("second sweep returned %d codes, want 0", len(again))
	}
}

func TestCreatePromocodeUppercases(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	seedPromo(t, s, "MIXED123", 10, 0, nil)

	exists, err := s.PromoCodeExists(ctx, "mixed123")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Error("lookup should be case-insensitive")
	}
	if exists, _ := s.PromoCodeExists(ctx, fmt.Sprintf("other%d", 1)); exists {
		t.Error("unknown code reported as existing")
	}
}

// An explicit zero (unlimited) limit must survive the insert unchanged.
func TestCreatePromocodeUnlimitedRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	promo := &models.Promocode{Code: "FOREVER1", Amount: 10, MaxUses: 0, IsActive: true}
	if err := s.CreatePromocode(ctx, promo); err != nil {
		t.Fatalf("create promocode: %v", err)
	}

	got, err := s.GetPromocode(ctx, "FOREVER1")
	if err != nil {
		t.Fatalf("get promocode: %v", err)
	}
	if got.MaxUses != 0 {
		t.Fatalf("max uses = %d, want 0", got.MaxUses)
	}
}

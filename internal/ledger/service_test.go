package ledger

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storefront-bot/internal/config"
	"storefront-bot/internal/models"
	"storefront-bot/internal/store"
)

func testService(t *testing.T) (*Service, *store.Store) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("raw db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.Promocode{},
		&models.Setting{},
		&models.DepositRequest{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	st := store.NewStore(db)
	cfg := &config.Config{
		ReferralBonusNew:     2,
		ReferralBonusInviter: 3,
		MinDeposit:           100,
		MaxDeposit:           10000,
		RefPercent:           10,
	}
	return NewService(st, cfg), st
}

func TestRegisterUserGeneratesUniqueCodes(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := int64(1); i <= 20; i++ {
		user, created, err := svc.RegisterUser(ctx, i, "u", "", "")
		if err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
		if !created {
			t.Fatalf("user %d not created", i)
		}
		if len(user.ReferralCode) != referralCodeLength {
			t.Errorf("code %q has wrong length", user.ReferralCode)
		}
		if seen[user.ReferralCode] {
			t.Errorf("duplicate referral code %q", user.ReferralCode)
		}
		seen[user.ReferralCode] = true
	}
}

func TestRegisterUserReferralBonusesOnce(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()

	inviter, _, err := svc.RegisterUser(ctx, 1, "inviter", "", "")
	if err != nil {
		t.Fatalf("register inviter: %v", err)
	}

	friend, created, err := svc.RegisterUser(ctx, 2, "friend", "", inviter.ReferralCode)
	if err != nil {
		t.Fatalf("register friend: %v", err)
	}
	if !created || friend.Balance != 2 {
		t.Errorf("created = %v, balance = %d, want new user with bonus 2", created, friend.Balance)
	}

	// Every subsequent /start is a no-op for money.
	for i := 0; i < 3; i++ {
		if _, _, err := svc.RegisterUser(ctx, 2, "friend", "", inviter.ReferralCode); err != nil {
			t.Fatalf("repeat register: %v", err)
		}
	}

	gotInviter, err := st.GetUser(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if gotInviter.Balance != 3 || gotInviter.TotalReferrals != 1 {
		t.Errorf("inviter balance = %d, referrals = %d; want 3 and 1", gotInviter.Balance, gotInviter.TotalReferrals)
	}
	gotFriend, err := st.GetUser(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if gotFriend.Balance != 2 {
		t.Errorf("friend balance = %d, want 2", gotFriend.Balance)
	}
}

func TestRegisterUserBonusFromSettings(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()

	// Runtime settings take precedence over the startup config.
	if err := st.SetSetting(ctx, models.SettingReferralBonusNew, "7"); err != nil {
		t.Fatal(err)
	}
	if err := st.SetSetting(ctx, models.SettingReferralBonusInviter, "9"); err != nil {
		t.Fatal(err)
	}

	inviter, _, err := svc.RegisterUser(ctx, 1, "inviter", "", "")
	if err != nil {
		t.Fatal(err)
	}
	friend, _, err := svc.RegisterUser(ctx, 2, "friend", "", inviter.ReferralCode)
	if err != nil {
		t.Fatal(err)
	}
	if friend.Balance != 7 {
		t.Errorf("friend balance = %d, want 7", friend.Balance)
	}
	gotInviter, _ := st.GetUser(ctx, 1)
	if gotInviter.Balance != 9 {
		t.Errorf("inviter balance = %d, want 9", gotInviter.Balance)
	}
}

func TestPurchaseAppliesRefPercent(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()

	inviter, _, err := svc.RegisterUser(ctx, 1, "inviter", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.RegisterUser(ctx, 2, "buyer", "", inviter.ReferralCode); err != nil {
		t.Fatal(err)
	}
	if err := svc.Grant(ctx, 2, 1000); err != nil {
		t.Fatal(err)
	}

	product := &models.Product{Name: "Товар", Price: 300, CategoryID: 1, Stock: -1, IsActive: true}
	if err := st.CreateProduct(ctx, product); err != nil {
		t.Fatal(err)
	}

	order, err := svc.Purchase(ctx, 2, product.ID)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if order.Amount != 300 {
		t.Errorf("order amount = %d", order.Amount)
	}

	gotInviter, _ := st.GetUser(ctx, 1)
	// 3 signup bonus + 10% of 300.
	if gotInviter.Balance != 33 {
		t.Errorf("inviter balance = %d, want 33", gotInviter.Balance)
	}
}

func TestDepositBoundsFallBackToConfig(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()

	min, max := svc.DepositBounds(ctx)
	if min != 100 || max != 10000 {
		t.Errorf("bounds = %d..%d, want config fallback 100..10000", min, max)
	}

	if err := st.SetSetting(ctx, models.SettingMinDeposit, "250"); err != nil {
		t.Fatal(err)
	}
	min, _ = svc.DepositBounds(ctx)
	if min != 250 {
		t.Errorf("min = %d, want 250 from settings", min)
	}
}

func TestGrantUnknownUser(t *testing.T) {
	svc, _ := testService(t)
	if err := svc.Grant(context.Background(), 42, 100); err == nil {
		t.Error("grant to unknown user succeeded")
	}
}

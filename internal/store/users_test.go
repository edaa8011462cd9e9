package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRegisterUserNew(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	user, created, err := s.RegisterUser(ctx, RegisterParams{
		TelegramID:   100,
		Username:     "ivan",
		FirstName:    "Иван",
		ReferralCode: "ABC123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !created {
		t.Error("created = false for new user")
	}
	if user.ReferralCode != "ABC123" || user.Balance != 0 {
		t.Errorf("user = %+v", user)
	}
}

func TestRegisterUserRepeatIsIdempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	inviter, _, err := s.RegisterUser(ctx, RegisterParams{
		TelegramID: 1, Username: "inviter", ReferralCode: "INV111",
	})
	if err != nil {
		t.Fatalf("register inviter: %v", err)
	}

	params := RegisterParams{
		TelegramID:   2,
		Username:     "friend",
		ReferralCode: "FRD222",
		InviterCode:  "INV111",
		BonusNew:     2,
		BonusInviter: 3,
	}
	user, created, err := s.RegisterUser(ctx, params)
	if err != nil {
		t.Fatalf("register friend: %v", err)
	}
	if !created || user.Balance != 2 {
		t.Errorf("created = %v, balance = %d", created, user.Balance)
	}

	// /start again must not re-award anything.
	params.Username = "friend_renamed"
	user, created, err = s.RegisterUser(ctx, params)
	if err != nil {
		t.Fatalf("repeat register: %v", err)
	}
	if created {
		t.Error("created = true on repeat registration")
	}
	if user.Balance != 2 {
		t.Errorf("balance = %d, bonus awarded twice", user.Balance)
	}
	if user.Username != "friend_renamed" {
		t.Errorf("username = %q, want refreshed", user.Username)
	}

	got := mustGetUser(t, s, inviter.TelegramID)
	if got.Balance != 3 || got.TotalReferrals != 1 {
		t.Errorf("inviter balance = %d, referrals = %d; want 3 and 1", got.Balance, got.TotalReferrals)
	}
}

func TestRegisterUserSelfReferral(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	user, _, err := s.RegisterUser(ctx, RegisterParams{
		TelegramID:   5,
		ReferralCode: "SELF55",
		InviterCode:  "SELF55",
		BonusNew:     2,
		BonusInviter: 3,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ReferredBy != nil {
		t.Error("user referred by own code")
	}
	if user.Balance != 0 {
		t.Errorf("balance = %d, self-referral must not pay", user.Balance)
	}
}

func TestRegisterUserUnknownInviter(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	user, _, err := s.RegisterUser(ctx, RegisterParams{
		TelegramID:   6,
		ReferralCode: "NEW666",
		InviterCode:  "GHOST1",
		BonusNew:     2,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ReferredBy != nil || user.Balance != 0 {
		t.Errorf("user = %+v, unknown inviter must be ignored", user)
	}
}

func TestBanUnban(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	seedUser(t, s, 1, 0)

	if err := s.BanUser(ctx, 1, 999, "спам"); err != nil {
		t.Fatalf("ban: %v", err)
	}
	user := mustGetUser(t, s, 1)
	if !user.IsBanned || user.BanReason != "спам" || user.BannedAt == nil {
		t.Errorf("user = %+v", user)
	}

	if err := s.UnbanUser(ctx, 1); err != nil {
		t.Fatalf("unban: %v", err)
	}
	user = mustGetUser(t, s, 1)
	if user.IsBanned || user.BanReason != "" || user.BannedAt != nil {
		t.Errorf("user after unban = %+v", user)
	}

	if err := s.BanUser(ctx, 42, 999, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("ban unknown err = %v, want ErrNotFound", err)
	}
}

func TestCreditBalance(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	seedUser(t, s, 1, 10)

	if err := s.CreditBalance(ctx, 1, 90, true); err != nil {
		t.Fatalf("credit: %v", err)
	}
	user := mustGetUser(t, s, 1)
	if user.Balance != 100 || user.TotalDeposited != 90 {
		t.Errorf("balance = %d, deposited = %d", user.Balance, user.TotalDeposited)
	}

	if err := s.CreditBalance(ctx, 1, 50, false); err != nil {
		t.Fatalf("credit: %v", err)
	}
	user = mustGetUser(t, s, 1)
	if user.Balance != 150 || user.TotalDeposited != 90 {
		t.Errorf("non-deposit credit must not touch total_deposited: %+v", user)
	}

	if err := s.CreditBalance(ctx, 42, 1, false); !errors.Is(err, ErrNotFound) {
		t.Errorf("credit unknown err = %v, want ErrNotFound", err)
	}
}

func TestCountActiveUsersSince(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	seedUser(t, s, 1, 0)
	if err := s.TouchLastActive(ctx, 1); err != nil {
		t.Fatalf("touch: %v", err)
	}

	count, err := s.CountActiveUsersSince(ctx, time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestCountReferrals(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	inviter := seedUser(t, s, 1, 0)

	for id := int64(2); id <= 4; id++ {
		invitee := seedUser(t, s, id, 0)
		invitee.ReferredBy = &inviter.TelegramID
		if err := s.db.Save(invitee).Error; err != nil {
			t.Fatalf("link referral: %v", err)
		}
	}
	seedUser(t, s, 5, 0)

	count, err := s.CountReferrals(ctx, inviter.TelegramID)
	if err != nil {
		t.Fatalf("count referrals: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}

	none, err := s.CountReferrals(ctx, 5)
	if err != nil {
		t.Fatalf("count referrals: %v", err)
	}
	if none != 0 {
		t.Errorf("count = %d, want 0", none)
	}
}

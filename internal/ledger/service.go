package ledger

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"storefront-bot/internal/config"
	"storefront-bot/internal/models"
	"storefront-bot/internal/store"
)

const referralCodeLength = 6
const referralCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Service owns every balance mutation: referral signup, purchase, manual
// grant and deposit resolution. Debits are guarded inside store
// transactions, so a balance can never go negative through these
// operations.
type Service struct {
	store *store.Store
	cfg   *config.Config
	rnd   *rand.Rand
}

func NewService(s *store.Store, cfg *config.Config) *Service {
	return &Service{
		store: s,
		cfg:   cfg,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// RegisterUser handles first contact. A fresh unique referral code is
// generated for the new row; a valid inviter code credits both sides
// exactly once. Repeat calls only refresh profile fields.
func (s *Service) RegisterUser(ctx context.Context, telegramID int64, username, firstName, inviterCode string) (*models.User, bool, error) {
	refCode, err := s.newReferralCode(ctx)
	if err != nil {
		return nil, false, err
	}

	bonusNew := s.store.GetSettingInt(ctx, models.SettingReferralBonusNew, s.cfg.ReferralBonusNew)
	bonusInviter := s.store.GetSettingInt(ctx, models.SettingReferralBonusInviter, s.cfg.ReferralBonusInviter)

	user, created, err := s.store.RegisterUser(ctx, store.RegisterParams{
		TelegramID:   telegramID,
		Username:     username,
		FirstName:    firstName,
		ReferralCode: refCode,
		InviterCode:  inviterCode,
		BonusNew:     bonusNew,
		BonusInviter: bonusInviter,
	})
	if err != nil {
		return nil, false, err
	}
	if created && user.ReferredBy != nil {
		zap.L().Info("Referral signup",
			zap.Int64("user_id", telegramID),
			zap.Int64("inviter_id", *user.ReferredBy),
			zap.Int64("bonus_new", bonusNew),
			zap.Int64("bonus_inviter", bonusInviter))
	}
	return user, created, nil
}

// Purchase runs the full purchase unit: stock decrement, balance debit,
// order insert and the inviter kickback, all in one store transaction.
func (s *Service) Purchase(ctx context.Context, userID int64, productID uint) (*models.Order, error) {
	refPercent := s.store.GetSettingInt(ctx, models.SettingRefPercent, s.cfg.RefPercent)
	order, err := s.store.PurchaseProduct(ctx, userID, productID, refPercent)
	if err != nil {
		return nil, err
	}
	zap.L().Info("Purchase completed",
		zap.Int64("user_id", userID),
		zap.Uint("product_id", productID),
		zap.Int64("amount", order.Amount))
	return order, nil
}

// Grant is the unconditional admin credit; the caller records it in the
// audit trail.
func (s *Service) Grant(ctx context.Context, userID, amount int64) error {
	if err := s.store.CreditBalance(ctx, userID, amount, true); err != nil {
		return err
	}
	zap.L().Info("Balance granted", zap.Int64("user_id", userID), zap.Int64("amount", amount))
	return nil
}

// RequestDeposit opens a manually confirmed top-up within the configured
// bounds.
func (s *Service) RequestDeposit(ctx context.Context, userID, amount int64) (*models.DepositRequest, error) {
	return s.store.CreateDepositRequest(ctx, userID, amount)
}

func (s *Service) ConfirmDeposit(ctx context.Context, requestID string, adminID int64) (*models.DepositRequest, error) {
	return s.store.ConfirmDeposit(ctx, requestID, adminID)
}

func (s *Service) RejectDeposit(ctx context.Context, requestID string, adminID int64) (*models.DepositRequest, error) {
	return s.store.RejectDeposit(ctx, requestID, adminID)
}

// DepositBounds reads the runtime deposit limits, falling back to the
// startup configuration.
func (s *Service) DepositBounds(ctx context.Context) (int64, int64) {
	min := s.store.GetSettingInt(ctx, models.SettingMinDeposit, s.cfg.MinDeposit)
	max := s.store.GetSettingInt(ctx, models.SettingMaxDeposit, s.cfg.MaxDeposit)
	return min, max
}

func (s *Service) newReferralCode(ctx context.Context) (string, error) {
	for {
		buf := make([]byte, referralCodeLength)
		for i := range buf {
			buf[i] = referralCodeAlphabet[s.rnd.Intn(len(referralCodeAlphabet))]
		}
		code := string(buf)
		exists, err := s.store.ReferralCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
}

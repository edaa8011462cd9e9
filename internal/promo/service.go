package promo

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront-bot/internal/models"
	"storefront-bot/internal/store"
)

var ErrCodeTaken = errors.New("Такой промокод уже существует")
var ErrBadCode = errors.New("Код должен состоять из 4-20 букв и цифр")

// Service is the promo engine: code generation, smart parameter inference,
// creation and redemption. Creation writes one row; redemption delegates to
// the store's transactional compare-and-swap.
type Service struct {
	store     *store.Store
	generator *Generator
}

func NewService(s *store.Store) *Service {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Service{store: s, generator: NewGenerator(s, rnd)}
}

func (s *Service) Generator() *Generator {
	return s.generator
}

// CreateParams describes an explicit promocode. Zero MaxUses means
// unlimited; zero ExpiresDays means the code never expires.
type CreateParams struct {
	Code            string
	Amount          int64
	DiscountPercent int
	MinOrder        int64
	MaxUses         int
	ExpiresDays     int
	CreatedBy       int64
}

func (s *Service) Create(ctx context.Context, p CreateParams) (*models.Promocode, error) {
	code := strings.ToUpper(strings.TrimSpace(p.Code))
	if !ValidateCodeFormat(code) {
		return nil, ErrBadCode
	}
	exists, err := s.store.PromoCodeExists(ctx, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrCodeTaken
	}

	promo := &models.Promocode{
		Code:            code,
		Amount:          p.Amount,
		DiscountPercent: p.DiscountPercent,
		MinOrder:        p.MinOrder,
		MaxUses:         p.MaxUses,
		IsActive:        true,
		CreatedBy:       p.CreatedBy,
	}
	if p.ExpiresDays > 0 {
		expires := time.Now().AddDate(0, 0, p.ExpiresDays)
		promo.ExpiresAt = &expires
	}

	if err := s.store.CreatePromocode(ctx, promo); err != nil {
		return nil, err
	}
	zap.L().Info("Promocode created",
		zap.String("code", promo.Code),
		zap.Int64("amount", promo.Amount),
		zap.Int("max_uses", promo.MaxUses),
		zap.Int64("created_by", promo.CreatedBy))
	return promo, nil
}

// SmartOverrides carries explicitly supplied smart-promo parameters;
// negative values mean "infer".
type SmartOverrides struct {
	Amount      int64
	MaxUses     int
	ExpiresDays int
}

// CreateSmart generates a patterned code and fills unsupplied parameters
// from shop statistics: the amount ladder against the average order, the
// use limit against the 30-day active-user count, and a 30-day expiry.
func (s *Service) CreateSmart(ctx context.Context, adminID int64, o SmartOverrides) (*models.Promocode, error) {
	amount := o.Amount
	if amount < 0 {
		avg, err := s.store.AverageOrderAmount(ctx)
		if err != nil {
			return nil, err
		}
		amount = SmartAmount(avg)
	}

	maxUses := o.MaxUses
	if maxUses < 0 {
		active, err := s.store.CountActiveUsersSince(ctx, time.Now().AddDate(0, 0, -30))
		if err != nil {
			return nil, err
		}
		maxUses = SmartMaxUses(active)
	}

	expiresDays := o.ExpiresDays
	if expiresDays < 0 {
		expiresDays = DefaultExpiresDays
	}

	code, err := s.generator.Smart(ctx)
	if err != nil {
		return nil, err
	}

	return s.Create(ctx, CreateParams{
		Code:        code,
		Amount:      amount,
		MaxUses:     maxUses,
		ExpiresDays: expiresDays,
		CreatedBy:   adminID,
	})
}

// Redeem normalizes the raw user input and redeems it atomically. Typed
// failures: store.ErrPromoNotFound, store.ErrPromoExpired,
// store.ErrPromoExhausted.
func (s *Service) Redeem(ctx context.Context, rawCode string, userID int64) (*models.Promocode, error) {
	promo, err := s.store.RedeemPromocode(ctx, rawCode, userID)
	if err != nil {
		return nil, err
	}
	zap.L().Info("Promocode redeemed",
		zap.String("code", promo.Code),
		zap.Int64("user_id", userID),
		zap.Int("used_count", promo.UsedCount))
	return promo, nil
}

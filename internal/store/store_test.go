package store

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storefront-bot/internal/models"
)

func testStore(t *testing.T) *Store {
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
	return NewStore(db)
}

func seedUser(t *testing.T, s *Store, id int64, balance int64) *models.User {
	t.Helper()
	user := &models.User{
		TelegramID:   id,
		Username:     "user",
		Balance:      balance,
		ReferralCode: "REF" + string(rune('A'+id%26)) + "00",
	}
	if err := s.db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedProduct(t *testing.T, s *Store, price int64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:       "Товар",
		Price:      price,
		CategoryID: 1,
		Stock:      stock,
		IsActive:   true,
	}
	if err := s.db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func seedPromo(t *testing.T, s *Store, code string, amount int64, maxUses int, expiresAt *time.Time) *models.Promocode {
	t.Helper()
	promo := &models.Promocode{
		Code:      code,
		Amount:    amount,
		MaxUses:   maxUses,
		IsActive:  true,
		ExpiresAt: expiresAt,
		CreatedBy: 1,
	}
	if err := s.db.Create(promo).Error; err != nil {
		t.Fatalf("seed promo: %v", err)
	}
	return promo
}

func mustGetUser(t *testing.T, s *Store, id int64) *models.User {
	t.Helper()
	user, err := s.GetUser(context.Background(), id)
	if err != nil {
		t.Fatalf("get user %d: %v", id, err)
	}
	return user
}

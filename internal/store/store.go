package store

import (
	"errors"

	"gorm.io/gorm"
)

// Sentinel errors surfaced to handlers. Messages are user-facing.
var (
	ErrNotFound          = errors.New("Запись не найдена")
	ErrPromoNotFound     = errors.New("Промокод не найден")
	ErrPromoExpired      = errors.New("Срок действия промокода истёк")
	ErrPromoExhausted    = errors.New("Лимит использований промокода исчерпан")
	ErrInsufficientFunds = errors.New("Недостаточно средств на балансе")
	ErrOutOfStock        = errors.New("Товар закончился")
	ErrUserBanned        = errors.New("Пользователь заблокирован")
	ErrDepositResolved   = errors.New("Заявка уже обработана")
)

// Store wraps the database handle. Every read-then-write sequence runs in a
// single transaction with affected-row checks, so concurrent redemptions or
// purchases cannot both pass the same guard.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the raw handle for migrations and test fixtures.
func (s *Store) DB() *gorm.DB {
	return s.db
}

package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"storefront-bot/internal/models"
)

func (s *Store) ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	q := s.db.WithContext(ctx).Model(&models.Category{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var categories []models.Category
	err := q.Order("position").Find(&categories).Error
	return categories, err
}

func (s *Store) CreateCategory(ctx context.Context, category *models.Category) error {
	return s.db.WithContext(ctx).Create(category).Error
}

func (s *Store) SetCategoryActive(ctx context.Context, id uint, active bool) error {
	res := s.db.WithContext(ctx).Model(&models.Category{}).
		Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *Store) ListProducts(ctx context.Context, categoryID uint, activeOnly bool) ([]models.Product, error) {
	q := s.db.WithContext(ctx).Model(&models.Product{}).Where("category_id = ?", categoryID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var products []models.Product
	err := q.Order("position").Find(&products).Error
	return products, err
}

func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	return s.db.WithContext(ctx).Create(product).Error
}

func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) error {
	return s.db.WithContext(ctx).Save(product).Error
}

func (s *Store) SetProductActive(ctx context.Context, id uint, active bool) error {
	res := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SoldOutProducts lists active products with zero remaining stock, for the
// low-stock admin alert.
func (s *Store) SoldOutProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("is_active = ? AND stock = 0", true).
		Find(&products).Error
	return products, err
}

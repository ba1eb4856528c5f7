package repository

import (
	"context"

	"github.com/erplora/analytics/internal/sources/domain"
	"gorm.io/gorm"
)

type inventoryRepo struct {
	db *gorm.DB
}

func NewInventorySource(db *gorm.DB) domain.InventorySource {
	return &inventoryRepo{db: db}
}

func (r *inventoryRepo) ActiveProducts(ctx context.Context, hubID int64) ([]domain.Product, error) {
	var products []domain.Product
	err := r.db.WithContext(ctx).
		Where("hub_id = ? AND is_deleted = ? AND is_active = ?", hubID, false, true).
		Find(&products).Error
	return products, err
}

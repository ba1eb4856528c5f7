package repository

import (
	"context"

	"github.com/erplora/analytics/internal/sources/domain"
	"gorm.io/gorm"
)

type customersRepo struct {
	db *gorm.DB
}

func NewCustomersSource(db *gorm.DB) domain.CustomersSource {
	return &customersRepo{db: db}
}

func (r *customersRepo) Customers(ctx context.Context, hubID int64) ([]domain.Customer, error) {
	var customers []domain.Customer
	err := r.db.WithContext(ctx).
		Where("hub_id = ? AND is_deleted = ?", hubID, false).
		Find(&customers).Error
	return customers, err
}

package repository

import (
	"context"
	"time"

	"github.com/erplora/analytics/internal/sources/domain"
	"gorm.io/gorm"
)

type salesRepo struct {
	db *gorm.DB
}

func NewSalesSource(db *gorm.DB) domain.SalesSource {
	return &salesRepo{db: db}
}

func (r *salesRepo) CompletedSales(ctx context.Context, hubID int64, start, endExcl time.Time) ([]domain.Sale, error) {
	var sales []domain.Sale
	err := r.db.WithContext(ctx).
		Where("hub_id = ? AND is_deleted = ? AND status = ?", hubID, false, domain.SaleStatusCompleted).
		Where("created_at >= ? AND created_at < ?", start, endExcl).
		Order("created_at asc, id asc").
		Find(&sales).Error
	return sales, err
}

func (r *salesRepo) AllSales(ctx context.Context, hubID int64, start, endExcl time.Time) ([]domain.Sale, error) {
	var sales []domain.Sale
	err := r.db.WithContext(ctx).
		Where("hub_id = ? AND is_deleted = ?", hubID, false).
		Where("created_at >= ? AND created_at < ?", start, endExcl).
		Order("created_at desc, id desc").
		Find(&sales).Error
	return sales, err
}

func (r *salesRepo) CompletedItems(ctx context.Context, hubID int64, start, endExcl time.Time) ([]domain.SaleItem, error) {
	var items []domain.SaleItem
	err := r.db.WithContext(ctx).
		Joins("JOIN sales_sale ON sales_sale.id = sales_sale_item.sale_id").
		Where("sales_sale_item.hub_id = ? AND sales_sale_item.is_deleted = ?", hubID, false).
		Where("sales_sale.status = ? AND sales_sale.is_deleted = ?", domain.SaleStatusCompleted, false).
		Where("sales_sale.created_at >= ? AND sales_sale.created_at < ?", start, endExcl).
		Find(&items).Error
	return items, err
}

func (r *salesRepo) ActivePaymentMethods(ctx context.Context, hubID int64) ([]domain.PaymentMethod, error) {
	var methods []domain.PaymentMethod
	err := r.db.WithContext(ctx).
		Where("hub_id = ? AND is_deleted = ? AND is_active = ?", hubID, false, true).
		Order("name asc").
		Find(&methods).Error
	return methods, err
}

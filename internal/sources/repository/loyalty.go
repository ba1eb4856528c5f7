package repository

import (
	"context"
	"time"

	"github.com/erplora/analytics/internal/sources/domain"
	"gorm.io/gorm"
)

type loyaltyRepo struct {
	db *gorm.DB
}

func NewLoyaltySource(db *gorm.DB) domain.LoyaltySource {
	return &loyaltyRepo{db: db}
}

func (r *loyaltyRepo) Members(ctx context.Context, hubID int64) ([]domain.LoyaltyMember, error) {
	var members []domain.LoyaltyMember
	err := r.db.WithContext(ctx).
		Where("hub_id = ? AND is_deleted = ?", hubID, false).
		Find(&members).Error
	return members, err
}

func (r *loyaltyRepo) Tiers(ctx context.Context, hubID int64) ([]domain.LoyaltyTier, error) {
	var tiers []domain.LoyaltyTier
	err := r.db.WithContext(ctx).
		Where("hub_id = ? AND is_deleted = ?", hubID, false).
		Order("sort_order asc, id asc").
		Find(&tiers).Error
	return tiers, err
}

func (r *loyaltyRepo) TransactionsInWindow(ctx context.Context, hubID int64, start, endExcl time.Time) ([]domain.PointTransaction, error) {
	var txs []domain.PointTransaction
	err := r.db.WithContext(ctx).
		Where("hub_id = ? AND is_deleted = ?", hubID, false).
		Where("created_at >= ? AND created_at < ?", start, endExcl).
		Find(&txs).Error
	return txs, err
}

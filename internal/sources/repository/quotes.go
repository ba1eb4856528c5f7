package repository

import (
	"context"
	"time"

	"github.com/erplora/analytics/internal/sources/domain"
	"gorm.io/gorm"
)

type quotesRepo struct {
	db *gorm.DB
}

func NewQuotesSource(db *gorm.DB) domain.QuotesSource {
	return &quotesRepo{db: db}
}

func (r *quotesRepo) QuotesInWindow(ctx context.Context, hubID int64, start, endExcl time.Time) ([]domain.Quote, error) {
	var quotes []domain.Quote
	err := r.db.WithContext(ctx).
		Where("hub_id = ? AND is_deleted = ?", hubID, false).
		Where("created_at >= ? AND created_at < ?", start, endExcl).
		Find(&quotes).Error
	return quotes, err
}

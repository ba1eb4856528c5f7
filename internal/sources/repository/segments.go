package repository

import (
	"context"

	"github.com/erplora/analytics/internal/sources/domain"
	"gorm.io/gorm"
)

type segmentsRepo struct {
	db *gorm.DB
}

func NewSegmentsSource(db *gorm.DB) domain.SegmentsSource {
	return &segmentsRepo{db: db}
}

func (r *segmentsRepo) ActiveSegments(ctx context.Context, hubID int64) ([]domain.Segment, error) {
	var segments []domain.Segment
	err := r.db.WithContext(ctx).
		Where("hub_id = ? AND is_deleted = ? AND is_active = ?", hubID, false, true).
		Find(&segments).Error
	return segments, err
}

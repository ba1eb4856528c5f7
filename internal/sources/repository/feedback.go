package repository

import (
	"context"
	"time"

	"github.com/erplora/analytics/internal/sources/domain"
	"gorm.io/gorm"
)

type feedbackRepo struct {
	db *gorm.DB
}

func NewFeedbackSource(db *gorm.DB) domain.FeedbackSource {
	return &feedbackRepo{db: db}
}

func (r *feedbackRepo) ResponsesInWindow(ctx context.Context, hubID int64, start, endExcl time.Time) ([]domain.FeedbackResponse, error) {
	var responses []domain.FeedbackResponse
	err := r.db.WithContext(ctx).
		Where("hub_id = ? AND is_deleted = ?", hubID, false).
		Where("created_at >= ? AND created_at < ?", start, endExcl).
		Find(&responses).Error
	return responses, err
}

func (r *feedbackRepo) OpenTicketCount(ctx context.Context, hubID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.SupportTicket{}).
		Where("hub_id = ? AND is_deleted = ? AND status = ?", hubID, false, domain.TicketStatusOpen).
		Count(&count).Error
	return count, err
}

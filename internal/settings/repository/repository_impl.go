package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/erplora/analytics/internal/settings/domain"
	"github.com/erplora/analytics/pkg/db"
	"github.com/erplora/analytics/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// GetOrCreate returns the hub's settings row, inserting the provided
// defaults on first access. Concurrent first access can race; the unique
// constraint on hub_id decides the winner and the loser re-reads.
func (r *repo) GetOrCreate(ctx context.Context, conn *gorm.DB, settings *domain.AnalyticsSettings) (*domain.AnalyticsSettings, error) {
	existing, err := r.findByHub(ctx, conn, settings.HubID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if err := conn.WithContext(ctx).Create(settings).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			return r.findByHub(ctx, conn, settings.HubID)
		}
		return nil, err
	}
	return settings, nil
}

func (r *repo) findByHub(ctx context.Context, conn *gorm.DB, hubID int64) (*domain.AnalyticsSettings, error) {
	var settings domain.AnalyticsSettings
	err := conn.WithContext(ctx).
		Where("hub_id = ?", hubID).
		First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *repo) Save(ctx context.Context, conn *gorm.DB, settings *domain.AnalyticsSettings) error {
	settings.UpdatedAt = time.Now().UTC()
	return conn.WithContext(ctx).Save(settings).Error
}

func (r *repo) ListSavedReports(ctx context.Context, conn *gorm.DB, hubID int64, page pagination.Pagination) ([]domain.SavedReport, error) {
	var reports []domain.SavedReport
	err := conn.WithContext(ctx).
		Where("hub_id = ? AND is_deleted = ?", hubID, false).
		Order("updated_at desc, id desc").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&reports).Error
	return reports, err
}

func (r *repo) InsertSavedReport(ctx context.Context, conn *gorm.DB, report *domain.SavedReport) error {
	return conn.WithContext(ctx).Create(report).Error
}

func (r *repo) SoftDeleteSavedReport(ctx context.Context, conn *gorm.DB, hubID int64, id snowflake.ID) error {
	result := conn.WithContext(ctx).
		Model(&domain.SavedReport{}).
		Where("hub_id = ? AND id = ? AND is_deleted = ?", hubID, id, false).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) TouchSavedReport(ctx context.Context, conn *gorm.DB, hubID int64, id snowflake.ID, at time.Time) error {
	result := conn.WithContext(ctx).
		Model(&domain.SavedReport{}).
		Where("hub_id = ? AND id = ? AND is_deleted = ?", hubID, id, false).
		Update("last_run_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

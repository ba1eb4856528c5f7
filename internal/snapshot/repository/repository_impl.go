package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/erplora/analytics/internal/snapshot/domain"
	"github.com/erplora/analytics/pkg/db"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repo struct {
	genID *snowflake.Node
}

func Provide(genID *snowflake.Node) domain.Repository {
	return &repo{genID: genID}
}

func (r *repo) Find(ctx context.Context, conn *gorm.DB, key domain.Key) (*domain.ReportSnapshot, error) {
	var snapshot domain.ReportSnapshot
	err := conn.WithContext(ctx).
		Where("hub_id = ? AND report_type = ? AND period_start = ? AND period_end = ?",
			key.HubID, key.ReportType, key.PeriodStart, key.PeriodEnd).
		First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (r *repo) Store(ctx context.Context, conn *gorm.DB, key domain.Key, data datatypes.JSONMap, generatedAt time.Time) (*domain.ReportSnapshot, error) {
	existing, err := r.Find(ctx, conn, key)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		existing.Data = data
		existing.GeneratedAt = generatedAt
		existing.IsStale = false
		existing.UpdatedAt = time.Now().UTC()
		if err := conn.WithContext(ctx).Save(existing).Error; err != nil {
			return nil, err
		}
		return existing, nil
	}

	now := time.Now().UTC()
	snapshot := &domain.ReportSnapshot{
		ID:          r.genID.Generate(),
		HubID:       key.HubID,
		ReportType:  key.ReportType,
		PeriodStart: key.PeriodStart,
		PeriodEnd:   key.PeriodEnd,
		Data:        data,
		GeneratedAt: generatedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := conn.WithContext(ctx).Create(snapshot).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			// Lost the insert race; the winner's row is the one to update.
			return r.Store(ctx, conn, key, data, generatedAt)
		}
		return nil, err
	}
	return snapshot, nil
}

func (r *repo) Invalidate(ctx context.Context, conn *gorm.DB, hubID int64, reportType string) (int64, error) {
	query := conn.WithContext(ctx).
		Model(&domain.ReportSnapshot{}).
		Where("hub_id = ? AND is_stale = ?", hubID, false)
	if reportType != "" {
		query = query.Where("report_type = ?", reportType)
	}
	result := query.Updates(map[string]interface{}{
		"is_stale":   true,
		"updated_at": time.Now().UTC(),
	})
	return result.RowsAffected, result.Error
}

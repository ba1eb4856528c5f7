package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/erplora/analytics/internal/sources/domain"
	"gorm.io/gorm"
)

type leadsRepo struct {
	db *gorm.DB
}

func NewLeadsSource(db *gorm.DB) domain.LeadsSource {
	return &leadsRepo{db: db}
}

func (r *leadsRepo) Leads(ctx context.Context, hubID int64) ([]domain.Lead, error) {
	var leads []domain.Lead
	err := r.db.WithContext(ctx).
		Where("hub_id = ? AND is_deleted = ?", hubID, false).
		Find(&leads).Error
	return leads, err
}

func (r *leadsRepo) Pipelines(ctx context.Context, hubID int64) ([]domain.Pipeline, error) {
	var pipelines []domain.Pipeline
	err := r.db.WithContext(ctx).
		Where("hub_id = ? AND is_deleted = ?", hubID, false).
		Order("id asc").
		Find(&pipelines).Error
	return pipelines, err
}

func (r *leadsRepo) Stages(ctx context.Context, hubID int64, pipelineID snowflake.ID) ([]domain.PipelineStage, error) {
	var stages []domain.PipelineStage
	err := r.db.WithContext(ctx).
		Where("hub_id = ? AND is_deleted = ? AND pipeline_id = ?", hubID, false, pipelineID).
		Order("sort_order asc, id asc").
		Find(&stages).Error
	return stages, err
}

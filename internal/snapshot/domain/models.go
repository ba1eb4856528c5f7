package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReportSnapshot is a cached report payload for one hub, report type and
// period window. One row per key; regeneration overwrites in place. Rows
// are marked stale rather than deleted so the last known payload stays
// servable while a refresh runs.
type ReportSnapshot struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	HubID       int64             `gorm:"not null;uniqueIndex:ux_snapshot_key,priority:1" json:"hub_id"`
	ReportType  string            `gorm:"not null;uniqueIndex:ux_snapshot_key,priority:2" json:"report_type"`
	PeriodStart time.Time         `gorm:"not null;uniqueIndex:ux_snapshot_key,priority:3" json:"period_start"`
	PeriodEnd   time.Time         `gorm:"not null;uniqueIndex:ux_snapshot_key,priority:4" json:"period_end"`
	Data        datatypes.JSONMap `gorm:"not null;default:'{}'" json:"data"`
	GeneratedAt time.Time         `gorm:"not null" json:"generated_at"`
	IsStale     bool              `gorm:"not null;default:false" json:"is_stale"`
	CreatedAt   time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null" json:"updated_at"`
}

func (ReportSnapshot) TableName() string { return "analytics_snapshot" }

// Key identifies one snapshot slot.
type Key struct {
	HubID       int64
	ReportType  string
	PeriodStart time.Time
	PeriodEnd   time.Time
}

type Repository interface {
	// Find returns the snapshot for the key, or (nil, nil) when none exists.
	Find(ctx context.Context, db *gorm.DB, key Key) (*ReportSnapshot, error)
	// Store upserts the payload for the key and clears the stale flag.
	Store(ctx context.Context, db *gorm.DB, key Key, data datatypes.JSONMap, generatedAt time.Time) (*ReportSnapshot, error)
	// Invalidate marks every snapshot of the hub (optionally narrowed to one
	// report type) stale. Missing rows are not an error.
	Invalidate(ctx context.Context, db *gorm.DB, hubID int64, reportType string) (int64, error)
}

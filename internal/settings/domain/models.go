package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/erplora/analytics/pkg/db/pagination"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	PeriodToday   = "today"
	PeriodWeek    = "week"
	PeriodMonth   = "month"
	PeriodQuarter = "quarter"
	PeriodYear    = "year"
)

// AnalyticsSettings is the per-hub report configuration. Exactly one row
// exists per hub; it is created lazily on first access and never deleted.
type AnalyticsSettings struct {
	ID                    snowflake.ID `gorm:"primaryKey" json:"id"`
	HubID                 int64        `gorm:"not null;uniqueIndex" json:"hub_id"`
	DefaultPeriod         string       `gorm:"not null;default:month" json:"default_period"`
	DefaultCurrency       string       `gorm:"not null;default:EUR" json:"default_currency"`
	ShowProfit            bool         `gorm:"not null;default:true" json:"show_profit"`
	ShowTaxBreakdown      bool         `gorm:"not null;default:false" json:"show_tax_breakdown"`
	ComparePreviousPeriod bool         `gorm:"not null;default:true" json:"compare_previous_period"`
	FiscalYearStartMonth  int          `gorm:"not null;default:1" json:"fiscal_year_start_month"`
	CreatedAt             time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt             time.Time    `gorm:"not null" json:"updated_at"`
}

func (AnalyticsSettings) TableName() string { return "analytics_settings" }

// SavedReport is a named, reusable report configuration. Soft-deleted, never
// physically removed.
type SavedReport struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	HubID       int64             `gorm:"not null;index" json:"hub_id"`
	Name        string            `gorm:"not null" json:"name"`
	Description string            `json:"description"`
	ReportType  string            `gorm:"not null;default:sales" json:"report_type"`
	Config      datatypes.JSONMap `gorm:"not null;default:'{}'" json:"config"`
	CreatedBy   *snowflake.ID     `json:"created_by,omitempty"`
	IsShared    bool              `gorm:"not null;default:false" json:"is_shared"`
	LastRunAt   *time.Time        `json:"last_run_at,omitempty"`
	IsDeleted   bool              `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt   time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null" json:"updated_at"`
}

func (SavedReport) TableName() string { return "analytics_saved_report" }

// UpdateSettingsRequest is the narrow settings-update surface. Nil fields are
// left untouched; default_currency is deliberately absent and only updatable
// through the full form.
type UpdateSettingsRequest struct {
	DefaultPeriod         *string `json:"default_period" validate:"omitempty,oneof=today week month quarter year"`
	FiscalYearStartMonth  *int    `json:"fiscal_year_start_month" validate:"omitempty,gte=1,lte=12"`
	ShowProfit            *bool   `json:"show_profit"`
	ShowTaxBreakdown      *bool   `json:"show_tax_breakdown"`
	ComparePreviousPeriod *bool   `json:"compare_previous_period"`
}

// UpdateSettingsResponse names the fields the update actually changed.
type UpdateSettingsResponse struct {
	Settings AnalyticsSettings `json:"settings"`
	Changed  []string          `json:"changed"`
}

// SettingsForm is the full settings form, the only surface that may change
// the display currency.
type SettingsForm struct {
	DefaultPeriod         string `json:"default_period" validate:"required,oneof=today week month quarter year"`
	DefaultCurrency       string `json:"default_currency" validate:"required,len=3"`
	ShowProfit            bool   `json:"show_profit"`
	ShowTaxBreakdown      bool   `json:"show_tax_breakdown"`
	ComparePreviousPeriod bool   `json:"compare_previous_period"`
	FiscalYearStartMonth  int    `json:"fiscal_year_start_month" validate:"gte=1,lte=12"`
}

type CreateSavedReportRequest struct {
	Name        string                 `json:"name" validate:"required,max=200"`
	Description string                 `json:"description"`
	ReportType  string                 `json:"report_type" validate:"omitempty,oneof=sales products customers custom"`
	Config      map[string]interface{} `json:"config"`
	IsShared    bool                   `json:"is_shared"`
	CreatedBy   *snowflake.ID          `json:"created_by"`
}

type Service interface {
	Get(ctx context.Context) (AnalyticsSettings, error)
	Update(ctx context.Context, req UpdateSettingsRequest) (UpdateSettingsResponse, error)
	Save(ctx context.Context, form SettingsForm) (AnalyticsSettings, error)
	ListSavedReports(ctx context.Context, page pagination.Pagination) ([]SavedReport, error)
	CreateSavedReport(ctx context.Context, req CreateSavedReportRequest) (SavedReport, error)
	DeleteSavedReport(ctx context.Context, id snowflake.ID) error
	TouchSavedReport(ctx context.Context, id snowflake.ID) error
}

type Repository interface {
	GetOrCreate(ctx context.Context, db *gorm.DB, settings *AnalyticsSettings) (*AnalyticsSettings, error)
	Save(ctx context.Context, db *gorm.DB, settings *AnalyticsSettings) error
	ListSavedReports(ctx context.Context, db *gorm.DB, hubID int64, page pagination.Pagination) ([]SavedReport, error)
	InsertSavedReport(ctx context.Context, db *gorm.DB, report *SavedReport) error
	SoftDeleteSavedReport(ctx context.Context, db *gorm.DB, hubID int64, id snowflake.ID) error
	TouchSavedReport(ctx context.Context, db *gorm.DB, hubID int64, id snowflake.ID, at time.Time) error
}

var (
	ErrInvalidHub = errors.New("invalid_hub")
	ErrNotFound   = errors.New("not_found")
	ErrSaveFailed = errors.New("settings_save_failed")
)

// FieldError is one field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError carries field-level failures across the service boundary;
// nothing is persisted when it is returned.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		return fmt.Sprintf("validation failed: %s", e.Fields[0].Field)
	}
	return fmt.Sprintf("validation failed: %d fields", len(e.Fields))
}

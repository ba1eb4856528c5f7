package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/erplora/analytics/internal/settings/domain"
	"github.com/erplora/analytics/pkg/db/pagination"
	"github.com/erplora/analytics/pkg/hubctx"
	"github.com/go-playground/validator/v10"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	validate *validator.Validate
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("settings.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		validate: validator.New(),
	}
}

func (s *Service) Get(ctx context.Context) (domain.AnalyticsSettings, error) {
	hubID, ok := hubctx.HubID(ctx)
	if !ok || hubID == 0 {
		return domain.AnalyticsSettings{}, domain.ErrInvalidHub
	}

	settings, err := s.getOrCreate(ctx, hubID)
	if err != nil {
		return domain.AnalyticsSettings{}, err
	}
	return *settings, nil
}

func (s *Service) getOrCreate(ctx context.Context, hubID int64) (*domain.AnalyticsSettings, error) {
	now := time.Now().UTC()
	defaults := domain.AnalyticsSettings{
		ID:                    s.genID.Generate(),
		HubID:                 hubID,
		DefaultPeriod:         domain.PeriodMonth,
		DefaultCurrency:       "EUR",
		ShowProfit:            true,
		ShowTaxBreakdown:      false,
		ComparePreviousPeriod: true,
		FiscalYearStartMonth:  1,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	return s.repo.GetOrCreate(ctx, s.db, &defaults)
}

func (s *Service) Update(ctx context.Context, req domain.UpdateSettingsRequest) (domain.UpdateSettingsResponse, error) {
	hubID, ok := hubctx.HubID(ctx)
	if !ok || hubID == 0 {
		return domain.UpdateSettingsResponse{}, domain.ErrInvalidHub
	}

	if err := s.validateStruct(req); err != nil {
		return domain.UpdateSettingsResponse{}, err
	}

	settings, err := s.getOrCreate(ctx, hubID)
	if err != nil {
		return domain.UpdateSettingsResponse{}, err
	}

	changed := make([]string, 0, 5)
	if req.DefaultPeriod != nil && *req.DefaultPeriod != settings.DefaultPeriod {
		settings.DefaultPeriod = *req.DefaultPeriod
		changed = append(changed, "default_period")
	}
	if req.FiscalYearStartMonth != nil && *req.FiscalYearStartMonth != settings.FiscalYearStartMonth {
		settings.FiscalYearStartMonth = *req.FiscalYearStartMonth
		changed = append(changed, "fiscal_year_start_month")
	}
	if req.ShowProfit != nil && *req.ShowProfit != settings.ShowProfit {
		settings.ShowProfit = *req.ShowProfit
		changed = append(changed, "show_profit")
	}
	if req.ShowTaxBreakdown != nil && *req.ShowTaxBreakdown != settings.ShowTaxBreakdown {
		settings.ShowTaxBreakdown = *req.ShowTaxBreakdown
		changed = append(changed, "show_tax_breakdown")
	}
	if req.ComparePreviousPeriod != nil && *req.ComparePreviousPeriod != settings.ComparePreviousPeriod {
		settings.ComparePreviousPeriod = *req.ComparePreviousPeriod
		changed = append(changed, "compare_previous_period")
	}

	if len(changed) > 0 {
		if err := s.repo.Save(ctx, s.db, settings); err != nil {
			s.log.Error("settings save failed", zap.Int64("hub_id", hubID), zap.Error(err))
			return domain.UpdateSettingsResponse{}, domain.ErrSaveFailed
		}
	}

	return domain.UpdateSettingsResponse{Settings: *settings, Changed: changed}, nil
}

func (s *Service) Save(ctx context.Context, form domain.SettingsForm) (domain.AnalyticsSettings, error) {
	hubID, ok := hubctx.HubID(ctx)
	if !ok || hubID == 0 {
		return domain.AnalyticsSettings{}, domain.ErrInvalidHub
	}

	if err := s.validateStruct(form); err != nil {
		return domain.AnalyticsSettings{}, err
	}

	settings, err := s.getOrCreate(ctx, hubID)
	if err != nil {
		return domain.AnalyticsSettings{}, err
	}

	settings.DefaultPeriod = form.DefaultPeriod
	settings.DefaultCurrency = strings.ToUpper(form.DefaultCurrency)
	settings.ShowProfit = form.ShowProfit
	settings.ShowTaxBreakdown = form.ShowTaxBreakdown
	settings.ComparePreviousPeriod = form.ComparePreviousPeriod
	settings.FiscalYearStartMonth = form.FiscalYearStartMonth

	if err := s.repo.Save(ctx, s.db, settings); err != nil {
		s.log.Error("settings save failed", zap.Int64("hub_id", hubID), zap.Error(err))
		return domain.AnalyticsSettings{}, domain.ErrSaveFailed
	}
	return *settings, nil
}

func (s *Service) ListSavedReports(ctx context.Context, page pagination.Pagination) ([]domain.SavedReport, error) {
	hubID, ok := hubctx.HubID(ctx)
	if !ok || hubID == 0 {
		return nil, domain.ErrInvalidHub
	}
	return s.repo.ListSavedReports(ctx, s.db, hubID, page)
}

func (s *Service) CreateSavedReport(ctx context.Context, req domain.CreateSavedReportRequest) (domain.SavedReport, error) {
	hubID, ok := hubctx.HubID(ctx)
	if !ok || hubID == 0 {
		return domain.SavedReport{}, domain.ErrInvalidHub
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := s.validateStruct(req); err != nil {
		return domain.SavedReport{}, err
	}

	reportType := req.ReportType
	if reportType == "" {
		reportType = "sales"
	}
	config := datatypes.JSONMap{}
	for k, v := range req.Config {
		config[k] = v
	}

	now := time.Now().UTC()
	report := domain.SavedReport{
		ID:          s.genID.Generate(),
		HubID:       hubID,
		Name:        req.Name,
		Description: req.Description,
		ReportType:  reportType,
		Config:      config,
		CreatedBy:   req.CreatedBy,
		IsShared:    req.IsShared,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.InsertSavedReport(ctx, s.db, &report); err != nil {
		return domain.SavedReport{}, err
	}
	return report, nil
}

func (s *Service) DeleteSavedReport(ctx context.Context, id snowflake.ID) error {
	hubID, ok := hubctx.HubID(ctx)
	if !ok || hubID == 0 {
		return domain.ErrInvalidHub
	}
	return s.repo.SoftDeleteSavedReport(ctx, s.db, hubID, id)
}

func (s *Service) TouchSavedReport(ctx context.Context, id snowflake.ID) error {
	hubID, ok := hubctx.HubID(ctx)
	if !ok || hubID == 0 {
		return domain.ErrInvalidHub
	}
	return s.repo.TouchSavedReport(ctx, s.db, hubID, id, time.Now().UTC())
}

// validateStruct maps validator failures onto the domain's field-level
// validation error so nothing leaks validator internals past the service.
func (s *Service) validateStruct(value interface{}) error {
	err := s.validate.Struct(value)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return err
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &domain.ValidationError{}
	for _, fe := range fieldErrs {
		out.Fields = append(out.Fields, domain.FieldError{
			Field:   snakeCase(fe.Field()),
			Code:    "invalid_" + snakeCase(fe.Field()),
			Message: "invalid value",
		})
	}
	return out
}

func snakeCase(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

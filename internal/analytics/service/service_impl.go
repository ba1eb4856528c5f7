package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/erplora/analytics/internal/analytics/domain"
	"github.com/erplora/analytics/internal/clock"
	"github.com/erplora/analytics/internal/config"
	"github.com/erplora/analytics/internal/observability/metrics"
	"github.com/erplora/analytics/internal/period"
	settingsdomain "github.com/erplora/analytics/internal/settings/domain"
	snapshotdomain "github.com/erplora/analytics/internal/snapshot/domain"
	sourcesdomain "github.com/erplora/analytics/internal/sources/domain"
	"github.com/erplora/analytics/pkg/hubctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrInvalidHub = errors.New("invalid_hub")

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Registry  sourcesdomain.Registry
	Settings  settingsdomain.Service
	Snapshots snapshotdomain.Repository
	Reports   *config.ReportConfigHolder
	Clock     clock.Clock
	Metrics   *metrics.ReportMetrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	registry  sourcesdomain.Registry
	settings  settingsdomain.Service
	snapshots snapshotdomain.Repository
	reports   *config.ReportConfigHolder
	clock     clock.Clock
	metrics   *metrics.ReportMetrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("analytics.service"),
		registry:  p.Registry,
		settings:  p.Settings,
		snapshots: p.Snapshots,
		reports:   p.Reports,
		clock:     p.Clock,
		metrics:   p.Metrics,
	}
}

// resolve gates on the hub, loads the hub's settings and turns the period
// keyword into a concrete window. An empty keyword means the hub's default
// period.
func (s *Service) resolve(ctx context.Context, keyword string) (int64, settingsdomain.AnalyticsSettings, string, period.Range, error) {
	hubID, ok := hubctx.HubID(ctx)
	if !ok || hubID == 0 {
		return 0, settingsdomain.AnalyticsSettings{}, "", period.Range{}, ErrInvalidHub
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return 0, settingsdomain.AnalyticsSettings{}, "", period.Range{}, err
	}
	if keyword == "" {
		keyword = settings.DefaultPeriod
	}

	return hubID, settings, keyword, period.Resolve(keyword, s.clock.Now()), nil
}

// resolveFixed is resolve without the settings lookup: chart and export
// requests fall back to the month window rather than the hub default.
func (s *Service) resolveFixed(ctx context.Context, keyword string) (int64, string, period.Range, error) {
	hubID, ok := hubctx.HubID(ctx)
	if !ok || hubID == 0 {
		return 0, "", period.Range{}, ErrInvalidHub
	}
	if keyword == "" {
		keyword = period.Month
	}
	return hubID, keyword, period.Resolve(keyword, s.clock.Now()), nil
}

func meta(keyword string, win period.Range) domain.ReportMeta {
	return domain.ReportMeta{
		Period:    keyword,
		StartDate: win.Start.Format("2006-01-02"),
		EndDate:   win.End.Format("2006-01-02"),
		Window:    win,
	}
}

// storeSnapshot write-throughs the computed payload. Snapshot failures never
// fail the report; the next request recomputes anyway.
func (s *Service) storeSnapshot(ctx context.Context, hubID int64, reportType string, win period.Range, report interface{}) {
	data, err := toJSONMap(report)
	if err != nil {
		s.log.Warn("snapshot encode failed", zap.String("report_type", reportType), zap.Error(err))
		return
	}
	key := snapshotdomain.Key{
		HubID:       hubID,
		ReportType:  reportType,
		PeriodStart: win.Start,
		PeriodEnd:   win.End,
	}
	if _, err := s.snapshots.Store(ctx, s.db, key, data, s.clock.Now()); err != nil {
		s.log.Warn("snapshot store failed",
			zap.Int64("hub_id", hubID),
			zap.String("report_type", reportType),
			zap.Error(err))
	}
}

func toJSONMap(v interface{}) (datatypes.JSONMap, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out datatypes.JSONMap
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

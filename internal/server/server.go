package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/erplora/analytics/internal/analytics"
	analyticsdomain "github.com/erplora/analytics/internal/analytics/domain"
	"github.com/erplora/analytics/internal/clock"
	"github.com/erplora/analytics/internal/config"
	"github.com/erplora/analytics/internal/migration"
	"github.com/erplora/analytics/internal/observability"
	obslogger "github.com/erplora/analytics/internal/observability/logger"
	obsmetrics "github.com/erplora/analytics/internal/observability/metrics"
	obstracing "github.com/erplora/analytics/internal/observability/tracing"
	"github.com/erplora/analytics/internal/settings"
	settingsdomain "github.com/erplora/analytics/internal/settings/domain"
	"github.com/erplora/analytics/internal/snapshot"
	snapshotdomain "github.com/erplora/analytics/internal/snapshot/domain"
	"github.com/erplora/analytics/internal/sources"
	"github.com/erplora/analytics/pkg/db"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	config.Module,
	observability.Module,
	db.Module,
	clock.Module,
	migration.Module,
	sources.Module,
	settings.Module,
	snapshot.Module,
	analytics.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{Debug: obsCfg.Debug()}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	db           *gorm.DB
	genID        *snowflake.Node
	analyticsSvc analyticsdomain.Service
	settingsSvc  settingsdomain.Service
	snapshots    snapshotdomain.Repository
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	DB           *gorm.DB
	GenID        *snowflake.Node
	AnalyticsSvc analyticsdomain.Service
	SettingsSvc  settingsdomain.Service
	Snapshots    snapshotdomain.Repository
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		genID:        p.GenID,
		analyticsSvc: p.AnalyticsSvc,
		settingsSvc:  p.SettingsSvc,
		snapshots:    p.Snapshots,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")
	api.Use(HubContext())

	reports := api.Group("/reports")
	reports.GET("/dashboard", s.GetDashboardReport)
	reports.GET("/sales", s.GetSalesReport)
	reports.GET("/products", s.GetProductsReport)
	reports.GET("/customers", s.GetCustomersReport)
	reports.GET("/pipeline", s.GetPipelineReport)
	reports.GET("/loyalty", s.GetLoyaltyReport)

	api.GET("/charts", s.GetChartData)
	api.GET("/exports", s.ExportCSV)

	api.GET("/settings", s.GetSettings)
	api.PATCH("/settings", s.UpdateSettings)
	api.PUT("/settings", s.SaveSettings)

	api.GET("/saved-reports", s.ListSavedReports)
	api.POST("/saved-reports", s.CreateSavedReport)
	api.POST("/saved-reports/:id/run", s.RunSavedReport)
	api.DELETE("/saved-reports/:id", s.DeleteSavedReport)

	api.POST("/snapshots/invalidate", s.InvalidateSnapshots)
}

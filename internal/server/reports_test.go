package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	analyticsdomain "github.com/erplora/analytics/internal/analytics/domain"
	analyticssvc "github.com/erplora/analytics/internal/analytics/service"
	"github.com/erplora/analytics/pkg/hubctx"
	"github.com/gin-gonic/gin"
)

type fakeAnalyticsService struct {
	export    *analyticsdomain.Export
	exportErr error

	lastReportType string
	lastPeriod     string
}

func (f *fakeAnalyticsService) Dashboard(ctx context.Context, periodKeyword string) (analyticsdomain.DashboardReport, error) {
	_ = ctx
	f.lastPeriod = periodKeyword
	return analyticsdomain.DashboardReport{}, nil
}

func (f *fakeAnalyticsService) SalesReport(ctx context.Context, periodKeyword string) (analyticsdomain.SalesReport, error) {
	_ = ctx
	f.lastPeriod = periodKeyword
	return analyticsdomain.SalesReport{}, nil
}

func (f *fakeAnalyticsService) ProductsReport(ctx context.Context, periodKeyword string) (analyticsdomain.ProductsReport, error) {
	_ = ctx
	f.lastPeriod = periodKeyword
	return analyticsdomain.ProductsReport{}, nil
}

func (f *fakeAnalyticsService) CustomersReport(ctx context.Context, periodKeyword string) (analyticsdomain.CustomersReport, error) {
	_ = ctx
	f.lastPeriod = periodKeyword
	return analyticsdomain.CustomersReport{}, nil
}

func (f *fakeAnalyticsService) PipelineReport(ctx context.Context, periodKeyword string) (analyticsdomain.PipelineReport, error) {
	_ = ctx
	f.lastPeriod = periodKeyword
	return analyticsdomain.PipelineReport{}, nil
}

func (f *fakeAnalyticsService) LoyaltyReport(ctx context.Context, periodKeyword string) (analyticsdomain.LoyaltyReport, error) {
	_ = ctx
	f.lastPeriod = periodKeyword
	return analyticsdomain.LoyaltyReport{}, nil
}

func (f *fakeAnalyticsService) ChartData(ctx context.Context, chartType, periodKeyword string) (analyticsdomain.ChartData, error) {
	_ = ctx
	f.lastReportType = chartType
	f.lastPeriod = periodKeyword
	return analyticsdomain.ChartData{Labels: []string{}, Values: []float64{}}, nil
}

func (f *fakeAnalyticsService) ExportCSV(ctx context.Context, reportType, periodKeyword string) (*analyticsdomain.Export, error) {
	_ = ctx
	f.lastReportType = reportType
	f.lastPeriod = periodKeyword
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	return f.export, nil
}

func newExportRouter(svc *fakeAnalyticsService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	srv := &Server{analyticsSvc: svc}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.GET("/api/v1/exports", srv.ExportCSV)
	return router
}

func TestExportCSVSetsAttachmentHeaders(t *testing.T) {
	svc := &fakeAnalyticsService{
		export: &analyticsdomain.Export{
			Filename:    "analytics_sales_2026-03-01_2026-03-18.csv",
			ContentType: "text/csv",
			Content:     []byte("Sale Number,Date\nS-1001,2026-03-05 10:00\n"),
		},
	}
	router := newExportRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/exports?type=sales&period=month", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Disposition"); got != `attachment; filename="analytics_sales_2026-03-01_2026-03-18.csv"` {
		t.Fatalf("unexpected Content-Disposition: %s", got)
	}
	if got := resp.Header().Get("Content-Type"); got != "text/csv" {
		t.Fatalf("unexpected Content-Type: %s", got)
	}
	if !strings.HasPrefix(resp.Body.String(), "Sale Number,Date") {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
	if svc.lastReportType != "sales" || svc.lastPeriod != "month" {
		t.Fatalf("query params not forwarded: type=%s period=%s", svc.lastReportType, svc.lastPeriod)
	}
}

func TestExportCSVUnknownTypeReturns400(t *testing.T) {
	svc := &fakeAnalyticsService{exportErr: analyticssvc.ErrUnknownReportType}
	router := newExportRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/exports?type=payroll", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}

	var body errorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Error.Type != "invalid_request" {
		t.Fatalf("unexpected error type: %s", body.Error.Type)
	}
}

func TestHubContextRejectsMissingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handlerCalled := false
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.Use(HubContext())
	router.GET("/probe", func(c *gin.Context) {
		handlerCalled = true
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if handlerCalled {
		t.Fatal("expected handler not to run without a hub header")
	}

	var body errorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Error.Type != "invalid_hub" {
		t.Fatalf("unexpected error type: %s", body.Error.Type)
	}
}

func TestHubContextRejectsNonPositiveHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.Use(HubContext())
	router.GET("/probe", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for _, raw := range []string{"0", "-4", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set(hubHeader, raw)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		if resp.Code != http.StatusBadRequest {
			t.Fatalf("header %q: expected status 400, got %d", raw, resp.Code)
		}
	}
}

func TestHubContextThreadsHubIntoRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seenHub int64
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.Use(HubContext())
	router.GET("/probe", func(c *gin.Context) {
		hubID, ok := hubctx.HubID(c.Request.Context())
		if !ok {
			t.Fatal("expected hub id in request context")
		}
		seenHub = hubID
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(hubHeader, "42")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if seenHub != 42 {
		t.Fatalf("expected hub 42, got %d", seenHub)
	}
}

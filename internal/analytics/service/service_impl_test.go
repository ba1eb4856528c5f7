package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/erplora/analytics/internal/analytics/domain"
	"github.com/erplora/analytics/internal/clock"
	"github.com/erplora/analytics/internal/config"
	settingsdomain "github.com/erplora/analytics/internal/settings/domain"
	settingsrepo "github.com/erplora/analytics/internal/settings/repository"
	settingssvc "github.com/erplora/analytics/internal/settings/service"
	snapshotdomain "github.com/erplora/analytics/internal/snapshot/domain"
	snapshotrepo "github.com/erplora/analytics/internal/snapshot/repository"
	sourcesdomain "github.com/erplora/analytics/internal/sources/domain"
	sourcesrepo "github.com/erplora/analytics/internal/sources/repository"
	"github.com/erplora/analytics/pkg/hubctx"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// testNow is a Wednesday. The month window is March 1-18; its comparison
// window is February 11-28.
var testNow = time.Date(2026, 3, 18, 14, 30, 0, 0, time.UTC)

type fixture struct {
	svc   domain.Service
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
}

// setupAnalytics builds the service over an in-memory store. Only the given
// collaborator models get their tables, so leaving one out simulates that
// module not being installed.
func setupAnalytics(t *testing.T, sourceModels ...interface{}) fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	models := append([]interface{}{
		&settingsdomain.AnalyticsSettings{},
		&settingsdomain.SavedReport{},
		&snapshotdomain.ReportSnapshot{},
	}, sourceModels...)
	if err := db.AutoMigrate(models...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	fake := clock.NewFakeClock(testNow)

	settings := settingssvc.New(settingssvc.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  settingsrepo.Provide(),
	})

	svc := New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		Registry:  sourcesrepo.NewRegistry(db),
		Settings:  settings,
		Snapshots: snapshotrepo.Provide(node),
		Reports:   config.NewStaticReportConfigHolder(config.DefaultReportConfig()),
		Clock:     fake,
		Metrics:   nil,
	})
	return fixture{svc: svc, db: db, node: node, clock: fake}
}

func salesModels() []interface{} {
	return []interface{}{
		&sourcesdomain.Sale{},
		&sourcesdomain.SaleItem{},
		&sourcesdomain.PaymentMethod{},
	}
}

func (f fixture) createSale(t *testing.T, hubID int64, total float64, at time.Time, mutate ...func(*sourcesdomain.Sale)) sourcesdomain.Sale {
	t.Helper()
	sale := sourcesdomain.Sale{
		ID:         f.node.Generate(),
		HubID:      hubID,
		SaleNumber: fmt.Sprintf("S-%d", f.node.Generate()),
		Subtotal:   decimal.NewFromFloat(total),
		TaxAmount:  decimal.Zero,
		Total:      decimal.NewFromFloat(total),
		Status:     sourcesdomain.SaleStatusCompleted,
		CreatedAt:  at,
	}
	for _, m := range mutate {
		m(&sale)
	}
	require.NoError(t, f.db.Create(&sale).Error)
	return sale
}

func hubCtx(hubID int64) context.Context {
	return hubctx.WithHubID(context.Background(), hubID)
}

func TestDashboardRevenueChangeOverPreviousMonthWindow(t *testing.T) {
	f := setupAnalytics(t, salesModels()...)
	hub := int64(1)

	f.createSale(t, hub, 100, time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC))
	f.createSale(t, hub, 50, time.Date(2026, 2, 20, 11, 0, 0, 0, time.UTC))

	report, err := f.svc.Dashboard(hubCtx(hub), "month")
	require.NoError(t, err)

	require.True(t, report.HasSales)
	require.True(t, report.TotalRevenue.Equal(decimal.NewFromInt(100)))
	require.EqualValues(t, 1, report.TotalSales)
	require.True(t, report.PrevRevenue.Equal(decimal.NewFromInt(50)))

	require.NotNil(t, report.RevenueChange)
	require.InDelta(t, 100.0, *report.RevenueChange, 1e-9)
	require.NotNil(t, report.SalesChange)
	require.InDelta(t, 0.0, *report.SalesChange, 1e-9)
}

func TestDashboardZeroSalesAvgTicketIsZero(t *testing.T) {
	f := setupAnalytics(t, salesModels()...)

	report, err := f.svc.Dashboard(hubCtx(1), "month")
	require.NoError(t, err)

	require.True(t, report.HasSales)
	require.True(t, report.AvgTicket.IsZero())
	require.True(t, report.TotalRevenue.IsZero())
	require.Nil(t, report.RevenueChange)
}

func TestDashboardDegradesWhenModulesAbsent(t *testing.T) {
	f := setupAnalytics(t)

	report, err := f.svc.Dashboard(hubCtx(1), "week")
	require.NoError(t, err)

	require.False(t, report.HasSales)
	require.False(t, report.HasCustomers)
	require.False(t, report.HasInventory)
	require.False(t, report.HasLeads)
	require.Nil(t, report.Pipeline)
	require.Nil(t, report.OpenTickets)
	require.Nil(t, report.NPS)
	require.True(t, report.TotalRevenue.IsZero())
	require.Empty(t, report.TopProducts)
}

func TestDashboardWritesSnapshot(t *testing.T) {
	f := setupAnalytics(t, salesModels()...)

	_, err := f.svc.Dashboard(hubCtx(1), "month")
	require.NoError(t, err)

	var snapshot snapshotdomain.ReportSnapshot
	require.NoError(t, f.db.Where("hub_id = ? AND report_type = ?", 1, "dashboard").First(&snapshot).Error)
	require.False(t, snapshot.IsStale)
	require.True(t, snapshot.GeneratedAt.UTC().Equal(testNow))
}

func TestDashboardRejectsMissingHub(t *testing.T) {
	f := setupAnalytics(t)

	_, err := f.svc.Dashboard(context.Background(), "month")
	require.ErrorIs(t, err, ErrInvalidHub)
}

func TestSalesReportHourlyDistributionAlways24Slots(t *testing.T) {
	f := setupAnalytics(t, salesModels()...)
	hub := int64(1)

	f.createSale(t, hub, 30, time.Date(2026, 3, 10, 9, 15, 0, 0, time.UTC))
	f.createSale(t, hub, 20, time.Date(2026, 3, 11, 9, 45, 0, 0, time.UTC))
	f.createSale(t, hub, 10, time.Date(2026, 3, 12, 17, 5, 0, 0, time.UTC))

	report, err := f.svc.SalesReport(hubCtx(hub), "month")
	require.NoError(t, err)

	require.Len(t, report.HourlyDistribution, 24)
	require.Equal(t, "09:00", report.HourlyDistribution[9].Hour)
	require.EqualValues(t, 2, report.HourlyDistribution[9].Count)
	require.InDelta(t, 50, report.HourlyDistribution[9].Revenue, 1e-9)
	require.EqualValues(t, 1, report.HourlyDistribution[17].Count)
	require.EqualValues(t, 0, report.HourlyDistribution[3].Count)

	require.Len(t, report.RevenueByDay, 3)
	require.Equal(t, "2026-03-10", report.RevenueByDay[0].Date)
}

func TestSalesReportPaymentAndEmployeeBreakdown(t *testing.T) {
	f := setupAnalytics(t, salesModels()...)
	hub := int64(1)

	card := sourcesdomain.PaymentMethod{ID: f.node.Generate(), HubID: hub, Name: "Card", IsActive: true}
	cash := sourcesdomain.PaymentMethod{ID: f.node.Generate(), HubID: hub, Name: "Cash", IsActive: true}
	idle := sourcesdomain.PaymentMethod{ID: f.node.Generate(), HubID: hub, Name: "Voucher", IsActive: true}
	require.NoError(t, f.db.Create(&card).Error)
	require.NoError(t, f.db.Create(&cash).Error)
	require.NoError(t, f.db.Create(&idle).Error)

	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	f.createSale(t, hub, 60, at, func(s *sourcesdomain.Sale) {
		s.PaymentMethodID = card.ID
		s.EmployeeName = "Ana"
	})
	f.createSale(t, hub, 30, at, func(s *sourcesdomain.Sale) {
		s.PaymentMethodID = card.ID
		s.EmployeeName = "Ana"
	})
	f.createSale(t, hub, 10, at, func(s *sourcesdomain.Sale) {
		s.PaymentMethodID = cash.ID
	})

	report, err := f.svc.SalesReport(hubCtx(hub), "month")
	require.NoError(t, err)

	// The method with zero sales is omitted.
	require.Len(t, report.PaymentBreakdown, 2)
	byName := map[string]domain.PaymentMethodStats{}
	for _, pm := range report.PaymentBreakdown {
		byName[pm.Name] = pm
	}
	require.EqualValues(t, 2, byName["Card"].Count)
	require.Equal(t, 67, byName["Card"].Percentage)
	require.Equal(t, 33, byName["Cash"].Percentage)

	require.Len(t, report.SalesByEmployee, 2)
	require.Equal(t, "Ana", report.SalesByEmployee[0].Name)
	require.InDelta(t, 90, report.SalesByEmployee[0].Revenue, 1e-9)
	require.Equal(t, "Unknown", report.SalesByEmployee[1].Name)
}

func TestProductsReportSlowMoversExcludeNeverSold(t *testing.T) {
	f := setupAnalytics(t, append(salesModels(), &sourcesdomain.Product{})...)
	hub := int64(1)

	sale := f.createSale(t, hub, 100, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	for _, item := range []struct {
		name string
		qty  int64
		rev  float64
	}{
		{"Espresso", 40, 80},
		{"Croissant", 2, 20},
	} {
		require.NoError(t, f.db.Create(&sourcesdomain.SaleItem{
			ID:          f.node.Generate(),
			HubID:       hub,
			SaleID:      sale.ID,
			ProductName: item.name,
			ProductSKU:  item.name[:3],
			Quantity:    decimal.NewFromInt(item.qty),
			LineTotal:   decimal.NewFromFloat(item.rev),
		}).Error)
	}

	// Dusty never sold; it must not appear as a slow mover.
	require.NoError(t, f.db.Create(&sourcesdomain.Product{
		ID: f.node.Generate(), HubID: hub, Name: "Dusty", SKU: "DUS",
		Price: decimal.NewFromInt(5), Cost: decimal.Zero, Stock: 3, LowStockThreshold: 5, IsActive: true,
	}).Error)
	require.NoError(t, f.db.Create(&sourcesdomain.Product{
		ID: f.node.Generate(), HubID: hub, Name: "Espresso", SKU: "ESP",
		Price: decimal.NewFromInt(2), Cost: decimal.NewFromInt(1), Stock: 100, LowStockThreshold: 10, IsActive: true,
	}).Error)

	report, err := f.svc.ProductsReport(hubCtx(hub), "month")
	require.NoError(t, err)

	require.Equal(t, "Espresso", report.TopSellers[0].Name)
	require.Len(t, report.SlowMovers, 2)
	require.Equal(t, "Croissant", report.SlowMovers[0].Name)
	for _, p := range report.SlowMovers {
		require.NotEqual(t, "Dusty", p.Name)
	}

	// Stock value = 5*3 + 2*100; margin table excludes the zero-cost product.
	require.True(t, report.StockValue.Equal(decimal.NewFromInt(215)))
	require.EqualValues(t, 2, report.TotalProducts)
	require.EqualValues(t, 1, report.LowStockCount)
	require.Len(t, report.MarginData, 1)
	require.Equal(t, "Espresso", report.MarginData[0].Name)
	require.InDelta(t, 50, report.MarginData[0].Margin, 1e-9)
}

func TestCustomersReportReturningBoundary(t *testing.T) {
	f := setupAnalytics(t, &sourcesdomain.Customer{})
	hub := int64(1)

	inWindow := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	beforeWindow := time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC)

	// Established customer purchasing again in-window: returning.
	require.NoError(t, f.db.Create(&sourcesdomain.Customer{
		ID: f.node.Generate(), HubID: hub, Name: "Vera",
		TotalSpent: decimal.NewFromInt(300), TotalPurchases: 7,
		LastPurchaseAt: &inWindow, CreatedAt: beforeWindow,
	}).Error)
	// Brand-new customer whose first purchase lands in-window: not returning.
	require.NoError(t, f.db.Create(&sourcesdomain.Customer{
		ID: f.node.Generate(), HubID: hub, Name: "Noor",
		TotalSpent: decimal.NewFromInt(40), TotalPurchases: 1,
		LastPurchaseAt: &inWindow, CreatedAt: inWindow,
	}).Error)
	// Dormant customer, no in-window purchase.
	require.NoError(t, f.db.Create(&sourcesdomain.Customer{
		ID: f.node.Generate(), HubID: hub, Name: "Olle",
		TotalSpent: decimal.NewFromInt(60), TotalPurchases: 3,
		LastPurchaseAt: &beforeWindow, CreatedAt: beforeWindow,
	}).Error)

	report, err := f.svc.CustomersReport(hubCtx(hub), "month")
	require.NoError(t, err)

	require.EqualValues(t, 3, report.TotalCustomers)
	require.EqualValues(t, 1, report.NewCustomers)
	require.EqualValues(t, 1, report.ReturningCustomers)

	require.Equal(t, "Vera", report.TopSpenders[0].Name)
	require.InDelta(t, 400.0/3, report.AvgLifetimeValue.InexactFloat64(), 1e-9)

	// Buckets: 1 -> Noor, 2-5 -> Olle, 6-10 -> Vera.
	require.Len(t, report.VisitFrequency, 3)
	require.Equal(t, "1", report.VisitFrequency[0].Label)
	require.EqualValues(t, 1, report.VisitFrequency[0].Count)
}

func TestPipelineReportConversionStagesAndQuotes(t *testing.T) {
	f := setupAnalytics(t,
		&sourcesdomain.Lead{}, &sourcesdomain.Pipeline{}, &sourcesdomain.PipelineStage{},
		&sourcesdomain.Quote{},
	)
	hub := int64(1)

	pipe := sourcesdomain.Pipeline{ID: f.node.Generate(), HubID: hub, Name: "Default", IsDefault: true}
	require.NoError(t, f.db.Create(&pipe).Error)
	stageNew := sourcesdomain.PipelineStage{ID: f.node.Generate(), HubID: hub, PipelineID: pipe.ID, Name: "New", SortOrder: 1, WinProbability: 10}
	stageNegotiation := sourcesdomain.PipelineStage{ID: f.node.Generate(), HubID: hub, PipelineID: pipe.ID, Name: "Negotiation", SortOrder: 2, WinProbability: 60}
	require.NoError(t, f.db.Create(&stageNew).Error)
	require.NoError(t, f.db.Create(&stageNegotiation).Error)

	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	wonAt := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	lostAt := time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)

	leads := []sourcesdomain.Lead{
		{ID: f.node.Generate(), HubID: hub, Value: decimal.NewFromInt(1000), Status: sourcesdomain.LeadStatusOpen, PipelineID: pipe.ID, StageID: stageNew.ID, Source: "web", CreatedAt: created},
		{ID: f.node.Generate(), HubID: hub, Value: decimal.NewFromInt(500), Status: sourcesdomain.LeadStatusOpen, PipelineID: pipe.ID, StageID: stageNegotiation.ID, Source: "referral", CreatedAt: created},
		{ID: f.node.Generate(), HubID: hub, Value: decimal.NewFromInt(800), Status: sourcesdomain.LeadStatusWon, PipelineID: pipe.ID, StageID: stageNegotiation.ID, WonAt: &wonAt, CreatedAt: created},
		{ID: f.node.Generate(), HubID: hub, Value: decimal.NewFromInt(200), Status: sourcesdomain.LeadStatusLost, PipelineID: pipe.ID, StageID: stageNew.ID, LossReason: "price", LostAt: &lostAt, CreatedAt: created},
	}
	for i := range leads {
		require.NoError(t, f.db.Create(&leads[i]).Error)
	}

	for _, q := range []struct {
		total  int64
		status string
	}{
		{100, sourcesdomain.QuoteStatusAccepted},
		{150, sourcesdomain.QuoteStatusAccepted},
		{90, sourcesdomain.QuoteStatusRejected},
		{70, sourcesdomain.QuoteStatusPending},
	} {
		require.NoError(t, f.db.Create(&sourcesdomain.Quote{
			ID: f.node.Generate(), HubID: hub,
			Total: decimal.NewFromInt(q.total), Status: q.status,
			CreatedAt: time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC),
		}).Error)
	}

	report, err := f.svc.PipelineReport(hubCtx(hub), "month")
	require.NoError(t, err)

	require.True(t, report.HasLeads)
	require.EqualValues(t, 2, report.OpenCount)
	require.True(t, report.OpenValue.Equal(decimal.NewFromInt(1500)))
	require.InDelta(t, 50, report.ConversionRate, 1e-9)
	require.InDelta(t, 10, report.AvgCloseDays, 1e-9)

	require.Len(t, report.StageBreakdown, 2)
	require.Equal(t, "New", report.StageBreakdown[0].Name)
	require.EqualValues(t, 1, report.StageBreakdown[0].Count)
	require.InDelta(t, 1000, report.StageBreakdown[0].Value, 1e-9)
	require.Equal(t, 60, report.StageBreakdown[1].WinProbability)

	require.Len(t, report.LossReasons, 1)
	require.Equal(t, "price", report.LossReasons[0].Label)

	require.Len(t, report.WonLostTrend, 1)
	require.Equal(t, "2026-03", report.WonLostTrend[0].Month)
	require.EqualValues(t, 1, report.WonLostTrend[0].Won)
	require.EqualValues(t, 1, report.WonLostTrend[0].Lost)

	require.True(t, report.HasQuotes)
	require.NotNil(t, report.Quotes)
	require.EqualValues(t, 4, report.Quotes.Total)
	require.True(t, report.Quotes.Value.Equal(decimal.NewFromInt(410)))
	require.InDelta(t, 200.0/3, report.Quotes.AcceptanceRate, 1e-9)
}

func TestPipelineReportNoClosedDealsConversionZero(t *testing.T) {
	f := setupAnalytics(t, &sourcesdomain.Lead{}, &sourcesdomain.Pipeline{}, &sourcesdomain.PipelineStage{})

	report, err := f.svc.PipelineReport(hubCtx(1), "month")
	require.NoError(t, err)
	require.Zero(t, report.ConversionRate)
	require.Zero(t, report.AvgCloseDays)
	require.False(t, report.HasQuotes)
	require.Nil(t, report.Quotes)
}

func TestLoyaltyReportTiersPointsAndNPS(t *testing.T) {
	f := setupAnalytics(t,
		&sourcesdomain.LoyaltyMember{}, &sourcesdomain.LoyaltyTier{}, &sourcesdomain.PointTransaction{},
		&sourcesdomain.FeedbackResponse{}, &sourcesdomain.SupportTicket{},
	)
	hub := int64(1)

	gold := sourcesdomain.LoyaltyTier{ID: f.node.Generate(), HubID: hub, Name: "Gold", SortOrder: 2}
	bronze := sourcesdomain.LoyaltyTier{ID: f.node.Generate(), HubID: hub, Name: "Bronze", SortOrder: 1}
	require.NoError(t, f.db.Create(&gold).Error)
	require.NoError(t, f.db.Create(&bronze).Error)

	for i := 0; i < 3; i++ {
		require.NoError(t, f.db.Create(&sourcesdomain.LoyaltyMember{
			ID: f.node.Generate(), HubID: hub, TierID: bronze.ID, IsActive: i < 2,
			CreatedAt: testNow.AddDate(0, -1, 0),
		}).Error)
	}

	at := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	for _, tx := range []struct {
		kind   string
		points int64
	}{
		{sourcesdomain.PointKindEarn, 120},
		{sourcesdomain.PointKindEarn, 80},
		{sourcesdomain.PointKindRedeem, -50},
	} {
		require.NoError(t, f.db.Create(&sourcesdomain.PointTransaction{
			ID: f.node.Generate(), HubID: hub, Kind: tx.kind, Points: tx.points, CreatedAt: at,
		}).Error)
	}

	// 10 responses: 6 promoters, 2 passives, 2 detractors -> NPS 40.
	scores := []int{10, 10, 9, 9, 9, 9, 8, 7, 5, 2}
	for _, score := range scores {
		require.NoError(t, f.db.Create(&sourcesdomain.FeedbackResponse{
			ID: f.node.Generate(), HubID: hub, Score: score, CreatedAt: at,
		}).Error)
	}

	report, err := f.svc.LoyaltyReport(hubCtx(hub), "month")
	require.NoError(t, err)

	require.EqualValues(t, 3, report.TotalMembers)
	require.EqualValues(t, 2, report.ActiveMembers)

	// Tier order follows sort order, zero-member tiers included.
	require.Len(t, report.TierDistribution, 2)
	require.Equal(t, "Bronze", report.TierDistribution[0].Label)
	require.EqualValues(t, 3, report.TierDistribution[0].Count)
	require.Equal(t, "Gold", report.TierDistribution[1].Label)
	require.EqualValues(t, 0, report.TierDistribution[1].Count)

	require.EqualValues(t, 200, report.PointsIssued)
	require.EqualValues(t, 50, report.PointsRedeemed)

	require.NotNil(t, report.NPS)
	require.Equal(t, 40, *report.NPS)
	require.Len(t, report.NPSTrend, 1)
	require.Equal(t, "2026-03", report.NPSTrend[0].Label)
	require.InDelta(t, 40, report.NPSTrend[0].Value, 1e-9)
}

func TestLoyaltyReportNoResponsesNPSNil(t *testing.T) {
	f := setupAnalytics(t, &sourcesdomain.FeedbackResponse{}, &sourcesdomain.SupportTicket{})

	report, err := f.svc.LoyaltyReport(hubCtx(1), "month")
	require.NoError(t, err)
	require.True(t, report.HasFeedback)
	require.Nil(t, report.NPS)
	require.Empty(t, report.NPSTrend)
	require.False(t, report.HasLoyalty)
}

func TestChartDataUnknownTypeEmptySeries(t *testing.T) {
	f := setupAnalytics(t, salesModels()...)

	chart, err := f.svc.ChartData(hubCtx(1), "heatmap", "week")
	require.NoError(t, err)
	require.Equal(t, "heatmap", chart.Type)
	require.Equal(t, "week", chart.Period)
	require.NotNil(t, chart.Labels)
	require.NotNil(t, chart.Values)
	require.Empty(t, chart.Labels)
	require.Empty(t, chart.Values)
}

func TestChartDataRevenueDayLabels(t *testing.T) {
	f := setupAnalytics(t, salesModels()...)
	hub := int64(1)

	f.createSale(t, hub, 25, time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC))
	f.createSale(t, hub, 75, time.Date(2026, 3, 9, 19, 0, 0, 0, time.UTC))
	f.createSale(t, hub, 40, time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC))

	chart, err := f.svc.ChartData(hubCtx(hub), "revenue", "month")
	require.NoError(t, err)

	require.Equal(t, []string{"09/03", "15/03"}, chart.Labels)
	require.Equal(t, []float64{100, 40}, chart.Values)
	require.Equal(t, "revenue", chart.Type)
	require.Equal(t, "month", chart.Period)
}

func TestExportCSVHeaderOnlyWhenModuleAbsent(t *testing.T) {
	f := setupAnalytics(t)

	export, err := f.svc.ExportCSV(hubCtx(1), "sales", "month")
	require.NoError(t, err)

	require.Equal(t, "text/csv", export.ContentType)
	require.Equal(t, "analytics_sales_2026-03-01_2026-03-18.csv", export.Filename)
	require.Equal(t,
		"Sale Number,Date,Employee,Customer,Payment Method,Subtotal,Tax,Total,Status\n",
		string(export.Content))
}

func TestExportCSVSalesNewestFirstAllStatuses(t *testing.T) {
	f := setupAnalytics(t, salesModels()...)
	hub := int64(1)

	f.createSale(t, hub, 10, time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC), func(s *sourcesdomain.Sale) {
		s.SaleNumber = "S-OLD"
	})
	f.createSale(t, hub, 20, time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC), func(s *sourcesdomain.Sale) {
		s.SaleNumber = "S-REFUND"
		s.Status = sourcesdomain.SaleStatusRefunded
	})

	export, err := f.svc.ExportCSV(hubCtx(hub), "sales", "month")
	require.NoError(t, err)

	lines := splitCSVLines(t, string(export.Content))
	require.Len(t, lines, 3)
	require.Contains(t, lines[1], "S-REFUND")
	require.Contains(t, lines[1], "Refunded")
	require.Contains(t, lines[2], "S-OLD")
}

func TestExportCSVUnknownTypeRejected(t *testing.T) {
	f := setupAnalytics(t)

	_, err := f.svc.ExportCSV(hubCtx(1), "invoices", "month")
	require.ErrorIs(t, err, ErrUnknownReportType)
}

func TestExportCSVCustomersOrderedBySpend(t *testing.T) {
	f := setupAnalytics(t, &sourcesdomain.Customer{})
	hub := int64(1)

	last := time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC)
	require.NoError(t, f.db.Create(&sourcesdomain.Customer{
		ID: f.node.Generate(), HubID: hub, Name: "Low", Email: "low@example.com",
		TotalSpent: decimal.NewFromInt(10), TotalPurchases: 1, CreatedAt: last,
	}).Error)
	require.NoError(t, f.db.Create(&sourcesdomain.Customer{
		ID: f.node.Generate(), HubID: hub, Name: "High", Email: "high@example.com",
		TotalSpent: decimal.NewFromInt(900), TotalPurchases: 12,
		LastPurchaseAt: &last, CreatedAt: last,
	}).Error)

	export, err := f.svc.ExportCSV(hubCtx(hub), "customers", "year")
	require.NoError(t, err)

	lines := splitCSVLines(t, string(export.Content))
	require.Len(t, lines, 3)
	require.Contains(t, lines[1], "High")
	require.Contains(t, lines[1], "2026-02-14")
	require.Contains(t, lines[2], "Low")
}

func splitCSVLines(t *testing.T, content string) []string {
	t.Helper()
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

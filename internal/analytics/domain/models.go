// Package domain declares the shaped report contracts the aggregation
// engine produces. Every report is a flat struct of named metrics plus
// availability flags; optional collaborator sections are nil when the
// backing module is absent, never when it is merely empty.
package domain

import (
	"context"

	"github.com/erplora/analytics/internal/period"
	"github.com/shopspring/decimal"
)

const (
	ReportDashboard = "dashboard"
	ReportSales     = "sales"
	ReportProducts  = "products"
	ReportCustomers = "customers"
	ReportPipeline  = "pipeline"
	ReportLoyalty   = "loyalty"

	ChartRevenue         = "revenue"
	ChartSalesCount      = "sales_count"
	ChartCustomers       = "customers"
	ChartProducts        = "products"
	ChartPipelineByStage = "pipeline_by_stage"
	ChartLifecycle       = "lifecycle"
	ChartNPSTrend        = "nps_trend"
)

// MetricBucket is the uniform shape for grouped and ranked output: one
// labeled group with a count and an amount.
type MetricBucket struct {
	Label string  `json:"label"`
	Count int64   `json:"count"`
	Value float64 `json:"value"`
}

// TimeSeriesPoint is one chronological sample of a series.
type TimeSeriesPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ReportMeta is the envelope every report carries: which hub, which
// keyword was requested and what window it resolved to.
type ReportMeta struct {
	Period    string       `json:"period"`
	StartDate string       `json:"start_date"`
	EndDate   string       `json:"end_date"`
	Window    period.Range `json:"-"`
}

// ProductSales is one product's aggregated sales inside the window.
type ProductSales struct {
	Name     string  `json:"name"`
	SKU      string  `json:"sku,omitempty"`
	Quantity float64 `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// DashboardPipeline is the CRM section of the dashboard, present only when
// the leads module is installed.
type DashboardPipeline struct {
	OpenValue decimal.Decimal `json:"open_value"`
	OpenCount int64           `json:"open_count"`
}

type DashboardReport struct {
	ReportMeta

	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalSales   int64           `json:"total_sales"`
	AvgTicket    decimal.Decimal `json:"avg_ticket"`
	TopProducts  []ProductSales  `json:"top_products"`

	NewCustomers  int64 `json:"new_customers"`
	LowStockCount int64 `json:"low_stock_count"`

	PrevRevenue   decimal.Decimal `json:"prev_revenue"`
	PrevSales     int64           `json:"prev_sales"`
	RevenueChange *float64        `json:"revenue_change"`
	SalesChange   *float64        `json:"sales_change"`

	Pipeline    *DashboardPipeline `json:"pipeline,omitempty"`
	OpenTickets *int64             `json:"open_tickets,omitempty"`
	NPS         *int               `json:"nps,omitempty"`

	HasSales     bool `json:"has_sales"`
	HasCustomers bool `json:"has_customers"`
	HasInventory bool `json:"has_inventory"`
	HasLeads     bool `json:"has_leads"`
	HasFeedback  bool `json:"has_feedback"`
	HasLoyalty   bool `json:"has_loyalty"`
	HasSegments  bool `json:"has_segments"`
}

// DailySales is one calendar day's revenue and sale count.
type DailySales struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Count   int64   `json:"count"`
}

// PaymentMethodStats is one active payment method's share of the window.
// Percentage is of sale count, rounded to the nearest integer.
type PaymentMethodStats struct {
	Name       string  `json:"name"`
	Count      int64   `json:"count"`
	Total      float64 `json:"total"`
	Percentage int     `json:"percentage"`
}

type EmployeeSales struct {
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	Revenue float64 `json:"revenue"`
}

// HourlySlot is one hour-of-day bucket. All 24 slots are always present.
type HourlySlot struct {
	Hour    string  `json:"hour"`
	Count   int64   `json:"count"`
	Revenue float64 `json:"revenue"`
}

type SalesReport struct {
	ReportMeta

	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalSales   int64           `json:"total_sales"`
	TotalTax     decimal.Decimal `json:"total_tax"`

	RevenueByDay       []DailySales         `json:"revenue_by_day"`
	PaymentBreakdown   []PaymentMethodStats `json:"payment_breakdown"`
	SalesByEmployee    []EmployeeSales      `json:"sales_by_employee"`
	HourlyDistribution []HourlySlot         `json:"hourly_distribution"`

	HasSales bool `json:"has_sales"`
}

// ProductMargin is one inventory product's margin line.
type ProductMargin struct {
	Name   string  `json:"name"`
	SKU    string  `json:"sku"`
	Price  float64 `json:"price"`
	Cost   float64 `json:"cost"`
	Margin float64 `json:"margin"`
	Stock  int     `json:"stock"`
}

type ProductsReport struct {
	ReportMeta

	TopSellers []ProductSales `json:"top_sellers"`
	SlowMovers []ProductSales `json:"slow_movers"`

	StockValue    decimal.Decimal `json:"stock_value"`
	TotalProducts int64           `json:"total_products"`
	LowStockCount int64           `json:"low_stock_count"`
	MarginData    []ProductMargin `json:"margin_data"`

	HasSales     bool `json:"has_sales"`
	HasInventory bool `json:"has_inventory"`
}

// CustomerSpend is one top-spender row.
type CustomerSpend struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	TotalSpent     float64 `json:"total_spent"`
	TotalPurchases int     `json:"total_purchases"`
	AvgPurchase    float64 `json:"avg_purchase"`
}

type CustomersReport struct {
	ReportMeta

	TotalCustomers     int64 `json:"total_customers"`
	NewCustomers       int64 `json:"new_customers"`
	ReturningCustomers int64 `json:"returning_customers"`

	TopSpenders      []CustomerSpend `json:"top_spenders"`
	AvgLifetimeValue decimal.Decimal `json:"avg_lifetime_value"`
	VisitFrequency   []MetricBucket  `json:"visit_frequency"`

	LifecycleDistribution []MetricBucket `json:"lifecycle_distribution"`
	SourceDistribution    []MetricBucket `json:"source_distribution"`

	HasCustomers bool `json:"has_customers"`
}

// StageStats is one pipeline stage's open-lead totals.
type StageStats struct {
	Name           string  `json:"name"`
	Count          int64   `json:"count"`
	Value          float64 `json:"value"`
	WinProbability int     `json:"win_probability"`
}

// WonLostMonth is one calendar month of the won-vs-lost trailing series.
type WonLostMonth struct {
	Month string `json:"month"`
	Won   int64  `json:"won"`
	Lost  int64  `json:"lost"`
}

// QuoteStats is present only when the quotes module is installed.
type QuoteStats struct {
	Total          int64           `json:"total"`
	Value          decimal.Decimal `json:"value"`
	AcceptanceRate float64         `json:"acceptance_rate"`
}

type PipelineReport struct {
	ReportMeta

	OpenValue decimal.Decimal `json:"open_value"`
	OpenCount int64           `json:"open_count"`

	ConversionRate float64 `json:"conversion_rate"`
	AvgCloseDays   float64 `json:"avg_close_days"`

	StageBreakdown     []StageStats   `json:"stage_breakdown"`
	SourceDistribution []MetricBucket `json:"source_distribution"`
	LossReasons        []MetricBucket `json:"loss_reasons"`
	WonLostTrend       []WonLostMonth `json:"won_lost_trend"`

	Quotes *QuoteStats `json:"quotes,omitempty"`

	HasLeads  bool `json:"has_leads"`
	HasQuotes bool `json:"has_quotes"`
}

type LoyaltyReport struct {
	ReportMeta

	TotalMembers  int64 `json:"total_members"`
	ActiveMembers int64 `json:"active_members"`

	TierDistribution []MetricBucket `json:"tier_distribution"`
	PointsIssued     int64          `json:"points_issued"`
	PointsRedeemed   int64          `json:"points_redeemed"`

	NPS      *int              `json:"nps"`
	NPSTrend []TimeSeriesPoint `json:"nps_trend"`

	LifecycleDistribution []MetricBucket `json:"lifecycle_distribution"`
	SourceDistribution    []MetricBucket `json:"source_distribution"`
	TopSegments           []MetricBucket `json:"top_segments"`

	HasLoyalty   bool `json:"has_loyalty"`
	HasFeedback  bool `json:"has_feedback"`
	HasCustomers bool `json:"has_customers"`
	HasSegments  bool `json:"has_segments"`
}

// ChartData is the parallel labels/values series for one chart type. The
// requested type and resolved period are echoed back for client correlation.
type ChartData struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Type   string    `json:"type"`
	Period string    `json:"period"`
}

// Export is a rendered CSV document.
type Export struct {
	Filename    string
	ContentType string
	Content     []byte
}

type Service interface {
	Dashboard(ctx context.Context, periodKeyword string) (DashboardReport, error)
	SalesReport(ctx context.Context, periodKeyword string) (SalesReport, error)
	ProductsReport(ctx context.Context, periodKeyword string) (ProductsReport, error)
	CustomersReport(ctx context.Context, periodKeyword string) (CustomersReport, error)
	PipelineReport(ctx context.Context, periodKeyword string) (PipelineReport, error)
	LoyaltyReport(ctx context.Context, periodKeyword string) (LoyaltyReport, error)
	ChartData(ctx context.Context, chartType, periodKeyword string) (ChartData, error)
	ExportCSV(ctx context.Context, reportType, periodKeyword string) (*Export, error)
}

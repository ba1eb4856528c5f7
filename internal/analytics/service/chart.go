package service

import (
	"context"
	"sort"
	"time"

	"github.com/erplora/analytics/internal/analytics/domain"
	"github.com/erplora/analytics/internal/period"
	sourcesdomain "github.com/erplora/analytics/internal/sources/domain"
	"github.com/shopspring/decimal"
)

const chartDayFormat = "02/01"

// ChartData reshapes one metric into a parallel labels/values series. An
// unknown chart type degrades to an empty series, never an error.
func (s *Service) ChartData(ctx context.Context, chartType, periodKeyword string) (domain.ChartData, error) {
	hubID, keyword, win, err := s.resolveFixed(ctx, periodKeyword)
	if err != nil {
		return domain.ChartData{}, err
	}
	if chartType == "" {
		chartType = domain.ChartRevenue
	}

	chart := domain.ChartData{
		Labels: []string{},
		Values: []float64{},
		Type:   chartType,
		Period: keyword,
	}

	switch chartType {
	case domain.ChartRevenue:
		err = s.chartSalesDaily(ctx, hubID, win, &chart, func(revenue decimal.Decimal, count int64) float64 {
			value, _ := revenue.Float64()
			return value
		})
	case domain.ChartSalesCount:
		err = s.chartSalesDaily(ctx, hubID, win, &chart, func(revenue decimal.Decimal, count int64) float64 {
			return float64(count)
		})
	case domain.ChartCustomers:
		err = s.chartNewCustomers(ctx, hubID, win, &chart)
	case domain.ChartProducts:
		err = s.chartTopProducts(ctx, hubID, win, &chart)
	case domain.ChartPipelineByStage:
		err = s.chartPipelineByStage(ctx, hubID, &chart)
	case domain.ChartLifecycle:
		err = s.chartLifecycle(ctx, hubID, &chart)
	case domain.ChartNPSTrend:
		err = s.chartNPSTrend(ctx, hubID, &chart)
	}
	if err != nil {
		return domain.ChartData{}, err
	}
	return chart, nil
}

func (s *Service) chartSalesDaily(ctx context.Context, hubID int64, win period.Range, chart *domain.ChartData, value func(decimal.Decimal, int64) float64) error {
	sales, ok := s.registry.Sales(ctx)
	if !ok {
		return nil
	}
	completed, err := sales.CompletedSales(ctx, hubID, win.Start, win.ExclusiveEnd())
	if err != nil {
		return err
	}

	type acc struct {
		revenue decimal.Decimal
		count   int64
	}
	grouped := make(map[time.Time]*acc)
	for _, sale := range completed {
		day := period.Date(sale.CreatedAt)
		entry, ok := grouped[day]
		if !ok {
			entry = &acc{}
			grouped[day] = entry
		}
		entry.revenue = entry.revenue.Add(sale.Total)
		entry.count++
	}

	days := make([]time.Time, 0, len(grouped))
	for day := range grouped {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	for _, day := range days {
		chart.Labels = append(chart.Labels, day.Format(chartDayFormat))
		chart.Values = append(chart.Values, value(grouped[day].revenue, grouped[day].count))
	}
	return nil
}

func (s *Service) chartNewCustomers(ctx context.Context, hubID int64, win period.Range, chart *domain.ChartData) error {
	customers, ok := s.registry.Customers(ctx)
	if !ok {
		return nil
	}
	all, err := customers.Customers(ctx, hubID)
	if err != nil {
		return err
	}

	grouped := make(map[time.Time]int64)
	for _, c := range all {
		if !win.Contains(c.CreatedAt) {
			continue
		}
		grouped[period.Date(c.CreatedAt)]++
	}

	days := make([]time.Time, 0, len(grouped))
	for day := range grouped {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	for _, day := range days {
		chart.Labels = append(chart.Labels, day.Format(chartDayFormat))
		chart.Values = append(chart.Values, float64(grouped[day]))
	}
	return nil
}

func (s *Service) chartTopProducts(ctx context.Context, hubID int64, win period.Range, chart *domain.ChartData) error {
	sales, ok := s.registry.Sales(ctx)
	if !ok {
		return nil
	}
	items, err := sales.CompletedItems(ctx, hubID, win.Start, win.ExclusiveEnd())
	if err != nil {
		return err
	}

	top := topN(groupItemsByProduct(items, false), s.reports.Get().TopProductsLimit)
	for _, product := range top {
		label := product.Name
		if label == "" {
			label = unknownLabel
		}
		chart.Labels = append(chart.Labels, label)
		chart.Values = append(chart.Values, product.Revenue)
	}
	return nil
}

func (s *Service) chartPipelineByStage(ctx context.Context, hubID int64, chart *domain.ChartData) error {
	leadsSrc, ok := s.registry.Leads(ctx)
	if !ok {
		return nil
	}

	leads, err := leadsSrc.Leads(ctx, hubID)
	if err != nil {
		return err
	}
	open := leads[:0:0]
	for _, lead := range leads {
		if lead.Status == sourcesdomain.LeadStatusOpen {
			open = append(open, lead)
		}
	}

	stages, err := defaultPipelineStages(ctx, leadsSrc, hubID)
	if err != nil {
		return err
	}
	for _, stage := range stageBreakdown(stages, open) {
		chart.Labels = append(chart.Labels, stage.Name)
		chart.Values = append(chart.Values, stage.Value)
	}
	return nil
}

func (s *Service) chartLifecycle(ctx context.Context, hubID int64, chart *domain.ChartData) error {
	customers, ok := s.registry.Customers(ctx)
	if !ok {
		return nil
	}
	all, err := customers.Customers(ctx, hubID)
	if err != nil {
		return err
	}
	for _, bucket := range lifecycleDistribution(all) {
		chart.Labels = append(chart.Labels, bucket.Label)
		chart.Values = append(chart.Values, float64(bucket.Count))
	}
	return nil
}

func (s *Service) chartNPSTrend(ctx context.Context, hubID int64, chart *domain.ChartData) error {
	feedback, ok := s.registry.Feedback(ctx)
	if !ok {
		return nil
	}
	trend, err := s.npsTrend(ctx, feedback, hubID, s.reports.Get().TrailingMonths)
	if err != nil {
		return err
	}
	for _, point := range trend {
		chart.Labels = append(chart.Labels, point.Label)
		chart.Values = append(chart.Values, point.Value)
	}
	return nil
}

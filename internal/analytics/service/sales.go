package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/erplora/analytics/internal/analytics/domain"
	"github.com/erplora/analytics/internal/period"
	sourcesdomain "github.com/erplora/analytics/internal/sources/domain"
	"github.com/shopspring/decimal"
)

func (s *Service) SalesReport(ctx context.Context, periodKeyword string) (domain.SalesReport, error) {
	hubID, _, keyword, win, err := s.resolve(ctx, periodKeyword)
	if err != nil {
		return domain.SalesReport{}, err
	}

	report := domain.SalesReport{
		ReportMeta:         meta(keyword, win),
		TotalRevenue:       decimal.Zero,
		TotalTax:           decimal.Zero,
		RevenueByDay:       []domain.DailySales{},
		PaymentBreakdown:   []domain.PaymentMethodStats{},
		SalesByEmployee:    []domain.EmployeeSales{},
		HourlyDistribution: emptyHourlyDistribution(),
	}

	sales, ok := s.registry.Sales(ctx)
	if !ok {
		s.metrics.RecordReport(domain.ReportSales)
		return report, nil
	}
	report.HasSales = true

	completed, err := sales.CompletedSales(ctx, hubID, win.Start, win.ExclusiveEnd())
	if err != nil {
		return domain.SalesReport{}, err
	}

	report.TotalSales = int64(len(completed))
	for _, sale := range completed {
		report.TotalRevenue = report.TotalRevenue.Add(sale.Total)
		report.TotalTax = report.TotalTax.Add(sale.TaxAmount)
	}

	report.RevenueByDay = revenueByDay(completed)
	report.SalesByEmployee = salesByEmployee(completed)
	report.HourlyDistribution = hourlyDistribution(completed)

	methods, err := sales.ActivePaymentMethods(ctx, hubID)
	if err != nil {
		return domain.SalesReport{}, err
	}
	report.PaymentBreakdown = paymentBreakdown(completed, methods, report.TotalSales)

	s.metrics.RecordReport(domain.ReportSales)
	s.storeSnapshot(ctx, hubID, domain.ReportSales, win, report)
	return report, nil
}

func revenueByDay(sales []sourcesdomain.Sale) []domain.DailySales {
	type acc struct {
		revenue decimal.Decimal
		count   int64
	}
	grouped := make(map[string]*acc)
	for _, sale := range sales {
		day := period.Date(sale.CreatedAt).Format("2006-01-02")
		entry, ok := grouped[day]
		if !ok {
			entry = &acc{}
			grouped[day] = entry
		}
		entry.revenue = entry.revenue.Add(sale.Total)
		entry.count++
	}

	days := make([]string, 0, len(grouped))
	for day := range grouped {
		days = append(days, day)
	}
	sort.Strings(days)

	out := make([]domain.DailySales, 0, len(days))
	for _, day := range days {
		revenue, _ := grouped[day].revenue.Float64()
		out = append(out, domain.DailySales{Date: day, Revenue: revenue, Count: grouped[day].count})
	}
	return out
}

// paymentBreakdown reports each active payment method that saw at least one
// sale. Percentage is of sale count, rounded, with the denominator floored
// at one.
func paymentBreakdown(sales []sourcesdomain.Sale, methods []sourcesdomain.PaymentMethod, totalSales int64) []domain.PaymentMethodStats {
	denominator := totalSales
	if denominator < 1 {
		denominator = 1
	}

	out := make([]domain.PaymentMethodStats, 0, len(methods))
	for _, method := range methods {
		var count int64
		total := decimal.Zero
		for _, sale := range sales {
			if sale.PaymentMethodID == method.ID {
				count++
				total = total.Add(sale.Total)
			}
		}
		if count == 0 {
			continue
		}
		totalF, _ := total.Float64()
		out = append(out, domain.PaymentMethodStats{
			Name:       method.Name,
			Count:      count,
			Total:      totalF,
			Percentage: int(math.Round(float64(count) * 100 / float64(denominator))),
		})
	}
	return out
}

func salesByEmployee(sales []sourcesdomain.Sale) []domain.EmployeeSales {
	type acc struct {
		count   int64
		revenue decimal.Decimal
	}
	grouped := make(map[string]*acc)
	for _, sale := range sales {
		name := sale.EmployeeName
		if name == "" {
			name = unknownLabel
		}
		entry, ok := grouped[name]
		if !ok {
			entry = &acc{}
			grouped[name] = entry
		}
		entry.count++
		entry.revenue = entry.revenue.Add(sale.Total)
	}

	out := make([]domain.EmployeeSales, 0, len(grouped))
	for name, entry := range grouped {
		revenue, _ := entry.revenue.Float64()
		out = append(out, domain.EmployeeSales{Name: name, Count: entry.count, Revenue: revenue})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// hourlyDistribution merges every day of the window into 24 hour-of-day
// slots. All 24 slots are always emitted.
func hourlyDistribution(sales []sourcesdomain.Sale) []domain.HourlySlot {
	counts := make([]int64, 24)
	revenues := make([]decimal.Decimal, 24)
	for _, sale := range sales {
		h := sale.CreatedAt.UTC().Hour()
		counts[h]++
		revenues[h] = revenues[h].Add(sale.Total)
	}

	out := make([]domain.HourlySlot, 24)
	for h := 0; h < 24; h++ {
		revenue, _ := revenues[h].Float64()
		out[h] = domain.HourlySlot{
			Hour:    fmt.Sprintf("%02d:00", h),
			Count:   counts[h],
			Revenue: revenue,
		}
	}
	return out
}

func emptyHourlyDistribution() []domain.HourlySlot {
	return hourlyDistribution(nil)
}

package service

import (
	"context"

	"github.com/erplora/analytics/internal/analytics/domain"
	sourcesdomain "github.com/erplora/analytics/internal/sources/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const dashboardTopProducts = 5

func (s *Service) Dashboard(ctx context.Context, periodKeyword string) (domain.DashboardReport, error) {
	hubID, settings, keyword, win, err := s.resolve(ctx, periodKeyword)
	if err != nil {
		return domain.DashboardReport{}, err
	}

	report := domain.DashboardReport{
		ReportMeta:   meta(keyword, win),
		TotalRevenue: decimal.Zero,
		AvgTicket:    decimal.Zero,
		PrevRevenue:  decimal.Zero,
		TopProducts:  []domain.ProductSales{},
	}

	if sales, ok := s.registry.Sales(ctx); ok {
		report.HasSales = true

		current, err := sales.CompletedSales(ctx, hubID, win.Start, win.ExclusiveEnd())
		if err != nil {
			return domain.DashboardReport{}, err
		}
		report.TotalSales = int64(len(current))
		for _, sale := range current {
			report.TotalRevenue = report.TotalRevenue.Add(sale.Total)
		}
		denominator := report.TotalSales
		if denominator < 1 {
			denominator = 1
		}
		report.AvgTicket = report.TotalRevenue.Div(decimal.NewFromInt(denominator))

		items, err := sales.CompletedItems(ctx, hubID, win.Start, win.ExclusiveEnd())
		if err != nil {
			return domain.DashboardReport{}, err
		}
		report.TopProducts = topN(groupItemsByProduct(items, false), dashboardTopProducts)

		if settings.ComparePreviousPeriod {
			prev := win.Previous()
			previous, err := sales.CompletedSales(ctx, hubID, prev.Start, prev.ExclusiveEnd())
			if err != nil {
				return domain.DashboardReport{}, err
			}
			report.PrevSales = int64(len(previous))
			for _, sale := range previous {
				report.PrevRevenue = report.PrevRevenue.Add(sale.Total)
			}
			report.RevenueChange = domain.PercentChange(report.TotalRevenue, report.PrevRevenue)
			report.SalesChange = domain.PercentChangeCount(report.TotalSales, report.PrevSales)
		}
	}

	if customers, ok := s.registry.Customers(ctx); ok {
		report.HasCustomers = true
		all, err := customers.Customers(ctx, hubID)
		if err != nil {
			return domain.DashboardReport{}, err
		}
		for _, c := range all {
			if win.Contains(c.CreatedAt) {
				report.NewCustomers++
			}
		}
	}

	if inventory, ok := s.registry.Inventory(ctx); ok {
		report.HasInventory = true
		products, err := inventory.ActiveProducts(ctx, hubID)
		if err != nil {
			return domain.DashboardReport{}, err
		}
		for _, p := range products {
			if p.LowStock() {
				report.LowStockCount++
			}
		}
	}

	if leads, ok := s.registry.Leads(ctx); ok {
		report.HasLeads = true
		all, err := leads.Leads(ctx, hubID)
		if err != nil {
			return domain.DashboardReport{}, err
		}
		section := &domain.DashboardPipeline{OpenValue: decimal.Zero}
		for _, lead := range all {
			if lead.Status == sourcesdomain.LeadStatusOpen {
				section.OpenCount++
				section.OpenValue = section.OpenValue.Add(lead.Value)
			}
		}
		report.Pipeline = section
	}

	if feedback, ok := s.registry.Feedback(ctx); ok {
		report.HasFeedback = true
		open, err := feedback.OpenTicketCount(ctx, hubID)
		if err != nil {
			return domain.DashboardReport{}, err
		}
		report.OpenTickets = &open

		responses, err := feedback.ResponsesInWindow(ctx, hubID, win.Start, win.ExclusiveEnd())
		if err != nil {
			return domain.DashboardReport{}, err
		}
		report.NPS = npsScore(responses)
	}

	_, report.HasLoyalty = s.registry.Loyalty(ctx)
	_, report.HasSegments = s.registry.Segments(ctx)

	s.metrics.RecordReport(domain.ReportDashboard)
	s.storeSnapshot(ctx, hubID, domain.ReportDashboard, win, report)
	s.log.Debug("dashboard computed",
		zap.Int64("hub_id", hubID),
		zap.String("period", keyword),
		zap.Int64("total_sales", report.TotalSales))
	return report, nil
}

package service

import (
	"context"
	"sort"

	"github.com/erplora/analytics/internal/analytics/domain"
	"github.com/erplora/analytics/internal/config"
	"github.com/erplora/analytics/internal/period"
	sourcesdomain "github.com/erplora/analytics/internal/sources/domain"
	"github.com/shopspring/decimal"
)

func (s *Service) CustomersReport(ctx context.Context, periodKeyword string) (domain.CustomersReport, error) {
	hubID, _, keyword, win, err := s.resolve(ctx, periodKeyword)
	if err != nil {
		return domain.CustomersReport{}, err
	}
	cfg := s.reports.Get()

	report := domain.CustomersReport{
		ReportMeta:            meta(keyword, win),
		TopSpenders:           []domain.CustomerSpend{},
		AvgLifetimeValue:      decimal.Zero,
		VisitFrequency:        []domain.MetricBucket{},
		LifecycleDistribution: []domain.MetricBucket{},
		SourceDistribution:    []domain.MetricBucket{},
	}

	customers, ok := s.registry.Customers(ctx)
	if !ok {
		s.metrics.RecordReport(domain.ReportCustomers)
		return report, nil
	}
	report.HasCustomers = true

	all, err := customers.Customers(ctx, hubID)
	if err != nil {
		return domain.CustomersReport{}, err
	}

	report.TotalCustomers = int64(len(all))
	for _, c := range all {
		if win.Contains(c.CreatedAt) {
			report.NewCustomers++
		}
		// A returning customer both purchased in-window and existed before
		// the window started; otherwise a first purchase in-window would
		// count a brand-new customer as returning.
		if c.LastPurchaseAt != nil && win.Contains(*c.LastPurchaseAt) && period.Date(c.CreatedAt).Before(win.Start) {
			report.ReturningCustomers++
		}
	}

	report.TopSpenders = topSpenders(all, cfg.TopSpendersLimit)
	report.AvgLifetimeValue = avgLifetimeValue(all)
	report.VisitFrequency = visitFrequency(all, cfg.FrequencyBuckets)
	report.LifecycleDistribution = lifecycleDistribution(all)
	report.SourceDistribution = sourceDistribution(all)

	s.metrics.RecordReport(domain.ReportCustomers)
	s.storeSnapshot(ctx, hubID, domain.ReportCustomers, win, report)
	return report, nil
}

func topSpenders(customers []sourcesdomain.Customer, limit int) []domain.CustomerSpend {
	spenders := make([]sourcesdomain.Customer, 0, len(customers))
	for _, c := range customers {
		if c.TotalSpent.GreaterThan(decimal.Zero) {
			spenders = append(spenders, c)
		}
	}
	sort.SliceStable(spenders, func(i, j int) bool {
		return spenders[i].TotalSpent.GreaterThan(spenders[j].TotalSpent)
	})
	spenders = topN(spenders, limit)

	out := make([]domain.CustomerSpend, 0, len(spenders))
	for _, c := range spenders {
		spent, _ := c.TotalSpent.Float64()
		avg, _ := c.AveragePurchase().Float64()
		out = append(out, domain.CustomerSpend{
			Name:           c.Name,
			Email:          c.Email,
			TotalSpent:     spent,
			TotalPurchases: c.TotalPurchases,
			AvgPurchase:    avg,
		})
	}
	return out
}

// avgLifetimeValue averages lifetime spend over customers who spent anything.
func avgLifetimeValue(customers []sourcesdomain.Customer) decimal.Decimal {
	total := decimal.Zero
	var count int64
	for _, c := range customers {
		if c.TotalSpent.GreaterThan(decimal.Zero) {
			total = total.Add(c.TotalSpent)
			count++
		}
	}
	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(count))
}

// visitFrequency buckets customers by lifetime purchase count. Empty buckets
// are omitted.
func visitFrequency(customers []sourcesdomain.Customer, buckets []config.FrequencyBucket) []domain.MetricBucket {
	out := make([]domain.MetricBucket, 0, len(buckets))
	for _, bucket := range buckets {
		var count int64
		for _, c := range customers {
			if c.TotalPurchases < bucket.Min {
				continue
			}
			if bucket.Max != nil && c.TotalPurchases > *bucket.Max {
				continue
			}
			count++
		}
		if count > 0 {
			out = append(out, domain.MetricBucket{Label: bucket.Label, Count: count})
		}
	}
	return out
}

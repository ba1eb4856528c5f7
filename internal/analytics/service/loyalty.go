package service

import (
	"context"
	"sort"
	"time"

	"github.com/erplora/analytics/internal/analytics/domain"
	sourcesdomain "github.com/erplora/analytics/internal/sources/domain"
)

func (s *Service) LoyaltyReport(ctx context.Context, periodKeyword string) (domain.LoyaltyReport, error) {
	hubID, _, keyword, win, err := s.resolve(ctx, periodKeyword)
	if err != nil {
		return domain.LoyaltyReport{}, err
	}
	cfg := s.reports.Get()

	report := domain.LoyaltyReport{
		ReportMeta:            meta(keyword, win),
		TierDistribution:      []domain.MetricBucket{},
		NPSTrend:              []domain.TimeSeriesPoint{},
		LifecycleDistribution: []domain.MetricBucket{},
		SourceDistribution:    []domain.MetricBucket{},
		TopSegments:           []domain.MetricBucket{},
	}

	if loyalty, ok := s.registry.Loyalty(ctx); ok {
		report.HasLoyalty = true

		members, err := loyalty.Members(ctx, hubID)
		if err != nil {
			return domain.LoyaltyReport{}, err
		}
		report.TotalMembers = int64(len(members))
		for _, m := range members {
			if m.IsActive {
				report.ActiveMembers++
			}
		}

		tiers, err := loyalty.Tiers(ctx, hubID)
		if err != nil {
			return domain.LoyaltyReport{}, err
		}
		report.TierDistribution = tierDistribution(tiers, members)

		transactions, err := loyalty.TransactionsInWindow(ctx, hubID, win.Start, win.ExclusiveEnd())
		if err != nil {
			return domain.LoyaltyReport{}, err
		}
		report.PointsIssued, report.PointsRedeemed = pointTotals(transactions)
	}

	if feedback, ok := s.registry.Feedback(ctx); ok {
		report.HasFeedback = true

		responses, err := feedback.ResponsesInWindow(ctx, hubID, win.Start, win.ExclusiveEnd())
		if err != nil {
			return domain.LoyaltyReport{}, err
		}
		report.NPS = npsScore(responses)

		trend, err := s.npsTrend(ctx, feedback, hubID, cfg.TrailingMonths)
		if err != nil {
			return domain.LoyaltyReport{}, err
		}
		report.NPSTrend = trend
	}

	if customers, ok := s.registry.Customers(ctx); ok {
		report.HasCustomers = true
		all, err := customers.Customers(ctx, hubID)
		if err != nil {
			return domain.LoyaltyReport{}, err
		}
		report.LifecycleDistribution = lifecycleDistribution(all)
		report.SourceDistribution = sourceDistribution(all)
	}

	if segments, ok := s.registry.Segments(ctx); ok {
		report.HasSegments = true
		active, err := segments.ActiveSegments(ctx, hubID)
		if err != nil {
			return domain.LoyaltyReport{}, err
		}
		report.TopSegments = topSegments(active, 10)
	}

	s.metrics.RecordReport(domain.ReportLoyalty)
	s.storeSnapshot(ctx, hubID, domain.ReportLoyalty, win, report)
	return report, nil
}

// tierDistribution counts members per tier, in tier sort order. Tiers with
// no members still appear.
func tierDistribution(tiers []sourcesdomain.LoyaltyTier, members []sourcesdomain.LoyaltyMember) []domain.MetricBucket {
	out := make([]domain.MetricBucket, 0, len(tiers))
	for _, tier := range tiers {
		var count int64
		for _, m := range members {
			if m.TierID == tier.ID {
				count++
			}
		}
		out = append(out, domain.MetricBucket{Label: tier.Name, Count: count})
	}
	return out
}

// pointTotals sums earns and redemptions separately. Redemptions are stored
// as negative points; the redeemed figure is reported as a positive total.
func pointTotals(transactions []sourcesdomain.PointTransaction) (issued, redeemed int64) {
	for _, tx := range transactions {
		switch tx.Kind {
		case sourcesdomain.PointKindEarn:
			issued += tx.Points
		case sourcesdomain.PointKindRedeem:
			redeemed -= tx.Points
		}
	}
	if redeemed < 0 {
		redeemed = -redeemed
	}
	return issued, redeemed
}

// npsTrend computes the per-month NPS over the trailing months. Months with
// no responses carry no point.
func (s *Service) npsTrend(ctx context.Context, feedback sourcesdomain.FeedbackSource, hubID int64, months int) ([]domain.TimeSeriesPoint, error) {
	now := s.clock.Now()
	starts := trailingMonths(now, months)
	endExcl := monthStart(now).AddDate(0, 1, 0)

	responses, err := feedback.ResponsesInWindow(ctx, hubID, starts[0], endExcl)
	if err != nil {
		return nil, err
	}

	byMonth := make(map[string][]sourcesdomain.FeedbackResponse)
	for _, r := range responses {
		byMonth[monthKey(r.CreatedAt)] = append(byMonth[monthKey(r.CreatedAt)], r)
	}

	out := make([]domain.TimeSeriesPoint, 0, len(starts))
	for _, start := range starts {
		label := start.Format(monthLabelFormat)
		score := npsScore(byMonth[label])
		if score == nil {
			continue
		}
		out = append(out, domain.TimeSeriesPoint{Label: label, Value: float64(*score)})
	}
	return out, nil
}

func monthKey(t time.Time) string {
	return monthStart(t).Format(monthLabelFormat)
}

func topSegments(segments []sourcesdomain.Segment, limit int) []domain.MetricBucket {
	sorted := make([]sourcesdomain.Segment, len(segments))
	copy(sorted, segments)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MemberCount > sorted[j].MemberCount })
	sorted = topN(sorted, limit)

	out := make([]domain.MetricBucket, 0, len(sorted))
	for _, seg := range sorted {
		out = append(out, domain.MetricBucket{Label: seg.Name, Count: int64(seg.MemberCount)})
	}
	return out
}

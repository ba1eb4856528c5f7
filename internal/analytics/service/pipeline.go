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

func (s *Service) PipelineReport(ctx context.Context, periodKeyword string) (domain.PipelineReport, error) {
	hubID, _, keyword, win, err := s.resolve(ctx, periodKeyword)
	if err != nil {
		return domain.PipelineReport{}, err
	}
	cfg := s.reports.Get()

	report := domain.PipelineReport{
		ReportMeta:         meta(keyword, win),
		OpenValue:          decimal.Zero,
		StageBreakdown:     []domain.StageStats{},
		SourceDistribution: []domain.MetricBucket{},
		LossReasons:        []domain.MetricBucket{},
		WonLostTrend:       []domain.WonLostMonth{},
	}

	if leadsSrc, ok := s.registry.Leads(ctx); ok {
		report.HasLeads = true

		leads, err := leadsSrc.Leads(ctx, hubID)
		if err != nil {
			return domain.PipelineReport{}, err
		}

		open := make([]sourcesdomain.Lead, 0, len(leads))
		for _, lead := range leads {
			if lead.Status == sourcesdomain.LeadStatusOpen {
				open = append(open, lead)
				report.OpenCount++
				report.OpenValue = report.OpenValue.Add(lead.Value)
			}
		}

		report.ConversionRate = conversionRate(leads, win)
		report.AvgCloseDays = avgCloseDays(leads, cfg.WonDealScanCap)

		stages, err := defaultPipelineStages(ctx, leadsSrc, hubID)
		if err != nil {
			return domain.PipelineReport{}, err
		}
		report.StageBreakdown = stageBreakdown(stages, open)

		report.SourceDistribution = leadSourceDistribution(open)
		report.LossReasons = lossReasons(leads, win)
		report.WonLostTrend = wonLostTrend(leads, s.clock.Now(), cfg.TrailingMonths)
	}

	if quotesSrc, ok := s.registry.Quotes(ctx); ok {
		report.HasQuotes = true
		quotes, err := quotesSrc.QuotesInWindow(ctx, hubID, win.Start, win.ExclusiveEnd())
		if err != nil {
			return domain.PipelineReport{}, err
		}
		report.Quotes = quoteStats(quotes)
	}

	s.metrics.RecordReport(domain.ReportPipeline)
	s.storeSnapshot(ctx, hubID, domain.ReportPipeline, win, report)
	return report, nil
}

// conversionRate is won / (won + lost) over deals closed inside the window,
// as a percentage. No closed deals means 0, not null: the rate is defined,
// there just were no decisions.
func conversionRate(leads []sourcesdomain.Lead, win period.Range) float64 {
	var won, lost int
	for _, lead := range leads {
		if lead.WonAt != nil && win.Contains(*lead.WonAt) {
			won++
		}
		if lead.LostAt != nil && win.Contains(*lead.LostAt) {
			lost++
		}
	}
	if won+lost == 0 {
		return 0
	}
	return float64(won) / float64(won+lost) * 100
}

// avgCloseDays averages creation-to-won duration over at most scanCap of the
// most recently won deals. The cap bounds latency on hubs with deep deal
// history; the figure is approximate past the cap.
func avgCloseDays(leads []sourcesdomain.Lead, scanCap int) float64 {
	won := make([]sourcesdomain.Lead, 0, len(leads))
	for _, lead := range leads {
		if lead.WonAt != nil {
			won = append(won, lead)
		}
	}
	if len(won) == 0 {
		return 0
	}

	sort.SliceStable(won, func(i, j int) bool { return won[i].WonAt.After(*won[j].WonAt) })
	won = topN(won, scanCap)

	var totalDays float64
	for _, lead := range won {
		totalDays += lead.WonAt.Sub(lead.CreatedAt).Hours() / 24
	}
	return totalDays / float64(len(won))
}

// defaultPipelineStages returns the stages of the hub's default pipeline,
// falling back to the first pipeline when none is marked default.
func defaultPipelineStages(ctx context.Context, src sourcesdomain.LeadsSource, hubID int64) ([]sourcesdomain.PipelineStage, error) {
	pipelines, err := src.Pipelines(ctx, hubID)
	if err != nil {
		return nil, err
	}
	if len(pipelines) == 0 {
		return nil, nil
	}

	chosen := pipelines[0]
	for _, p := range pipelines {
		if p.IsDefault {
			chosen = p
			break
		}
	}
	return src.Stages(ctx, hubID, chosen.ID)
}

func stageBreakdown(stages []sourcesdomain.PipelineStage, open []sourcesdomain.Lead) []domain.StageStats {
	out := make([]domain.StageStats, 0, len(stages))
	for _, stage := range stages {
		stats := domain.StageStats{Name: stage.Name, WinProbability: stage.WinProbability}
		value := decimal.Zero
		for _, lead := range open {
			if lead.StageID == stage.ID {
				stats.Count++
				value = value.Add(lead.Value)
			}
		}
		stats.Value, _ = value.Float64()
		out = append(out, stats)
	}
	return out
}

func leadSourceDistribution(open []sourcesdomain.Lead) []domain.MetricBucket {
	counts := make(map[string]int64)
	for _, lead := range open {
		label := lead.Source
		if label == "" {
			label = unknownLabel
		}
		counts[label]++
	}
	return sortedBuckets(counts)
}

func lossReasons(leads []sourcesdomain.Lead, win period.Range) []domain.MetricBucket {
	counts := make(map[string]int64)
	for _, lead := range leads {
		if lead.LostAt == nil || !win.Contains(*lead.LostAt) {
			continue
		}
		label := lead.LossReason
		if label == "" {
			label = unknownLabel
		}
		counts[label]++
	}
	return sortedBuckets(counts)
}

func sortedBuckets(counts map[string]int64) []domain.MetricBucket {
	out := make([]domain.MetricBucket, 0, len(counts))
	for label, count := range counts {
		out = append(out, domain.MetricBucket{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// wonLostTrend builds the trailing monthly won-vs-lost series. Months with
// no activity on either side are dropped; a month stays if either side is
// nonzero.
func wonLostTrend(leads []sourcesdomain.Lead, now time.Time, months int) []domain.WonLostMonth {
	type tally struct {
		won  int64
		lost int64
	}
	byMonth := make(map[string]*tally)
	starts := trailingMonths(now, months)
	rangeStart := starts[0]
	for _, start := range starts {
		byMonth[start.Format(monthLabelFormat)] = &tally{}
	}

	for _, lead := range leads {
		if lead.WonAt != nil && !lead.WonAt.Before(rangeStart) && !lead.WonAt.After(now) {
			if t, ok := byMonth[monthStart(*lead.WonAt).Format(monthLabelFormat)]; ok {
				t.won++
			}
		}
		if lead.LostAt != nil && !lead.LostAt.Before(rangeStart) && !lead.LostAt.After(now) {
			if t, ok := byMonth[monthStart(*lead.LostAt).Format(monthLabelFormat)]; ok {
				t.lost++
			}
		}
	}

	out := make([]domain.WonLostMonth, 0, len(starts))
	for _, start := range starts {
		label := start.Format(monthLabelFormat)
		t := byMonth[label]
		if t.won == 0 && t.lost == 0 {
			continue
		}
		out = append(out, domain.WonLostMonth{Month: label, Won: t.won, Lost: t.lost})
	}
	return out
}

func quoteStats(quotes []sourcesdomain.Quote) *domain.QuoteStats {
	stats := &domain.QuoteStats{Total: int64(len(quotes)), Value: decimal.Zero}
	var accepted, rejected int64
	for _, q := range quotes {
		stats.Value = stats.Value.Add(q.Total)
		switch q.Status {
		case sourcesdomain.QuoteStatusAccepted:
			accepted++
		case sourcesdomain.QuoteStatusRejected:
			rejected++
		}
	}
	if accepted+rejected > 0 {
		stats.AcceptanceRate = float64(accepted) / float64(accepted+rejected) * 100
	}
	return stats
}

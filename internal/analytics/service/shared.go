package service

import (
	"math"
	"sort"
	"time"

	"github.com/erplora/analytics/internal/analytics/domain"
	sourcesdomain "github.com/erplora/analytics/internal/sources/domain"
	"github.com/shopspring/decimal"
)

const unknownLabel = "Unknown"

// groupItemsByProduct reduces line items into per-product sales totals,
// sorted by revenue descending.
func groupItemsByProduct(items []sourcesdomain.SaleItem, withSKU bool) []domain.ProductSales {
	type acc struct {
		name     string
		sku      string
		quantity decimal.Decimal
		revenue  decimal.Decimal
	}

	grouped := make(map[string]*acc)
	order := make([]string, 0)
	for _, item := range items {
		key := item.ProductName
		if withSKU {
			key = item.ProductName + "\x00" + item.ProductSKU
		}
		entry, ok := grouped[key]
		if !ok {
			entry = &acc{name: item.ProductName, sku: item.ProductSKU}
			grouped[key] = entry
			order = append(order, key)
		}
		entry.quantity = entry.quantity.Add(item.Quantity)
		entry.revenue = entry.revenue.Add(item.LineTotal)
	}

	out := make([]domain.ProductSales, 0, len(grouped))
	for _, key := range order {
		entry := grouped[key]
		quantity, _ := entry.quantity.Float64()
		revenue, _ := entry.revenue.Float64()
		sku := ""
		if withSKU {
			sku = entry.sku
		}
		out = append(out, domain.ProductSales{
			Name:     entry.name,
			SKU:      sku,
			Quantity: quantity,
			Revenue:  revenue,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Revenue > out[j].Revenue })
	return out
}

func topN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// npsScore is (promoters - detractors) / responses * 100 rounded to the
// nearest integer. Promoters score >= 9, detractors <= 6. Nil when there are
// no responses: a score over nothing is undefined, not zero.
func npsScore(responses []sourcesdomain.FeedbackResponse) *int {
	if len(responses) == 0 {
		return nil
	}
	var promoters, detractors int
	for _, r := range responses {
		switch {
		case r.Score >= 9:
			promoters++
		case r.Score <= 6:
			detractors++
		}
	}
	score := int(math.Round(float64(promoters-detractors) / float64(len(responses)) * 100))
	return &score
}

// distribution counts customers per value of pick, dropping zero-count and
// substituting "Unknown" for blank values. Ordered by count descending, then
// label, so output is deterministic.
func distribution(customers []sourcesdomain.Customer, pick func(sourcesdomain.Customer) string) []domain.MetricBucket {
	counts := make(map[string]int64)
	for _, c := range customers {
		label := pick(c)
		if label == "" {
			label = unknownLabel
		}
		counts[label]++
	}

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

func lifecycleDistribution(customers []sourcesdomain.Customer) []domain.MetricBucket {
	return distribution(customers, func(c sourcesdomain.Customer) string { return c.LifecycleStage })
}

func sourceDistribution(customers []sourcesdomain.Customer) []domain.MetricBucket {
	return distribution(customers, func(c sourcesdomain.Customer) string { return c.AcquisitionSource })
}

// monthStart truncates t to the first day of its UTC calendar month.
func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// trailingMonths returns the starts of the n calendar months ending with the
// month containing ref, chronological.
func trailingMonths(ref time.Time, n int) []time.Time {
	months := make([]time.Time, 0, n)
	first := monthStart(ref).AddDate(0, -(n - 1), 0)
	for i := 0; i < n; i++ {
		months = append(months, first.AddDate(0, i, 0))
	}
	return months
}

const monthLabelFormat = "2006-01"

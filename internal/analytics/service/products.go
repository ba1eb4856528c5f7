package service

import (
	"context"
	"sort"

	"github.com/erplora/analytics/internal/analytics/domain"
	sourcesdomain "github.com/erplora/analytics/internal/sources/domain"
	"github.com/shopspring/decimal"
)

func (s *Service) ProductsReport(ctx context.Context, periodKeyword string) (domain.ProductsReport, error) {
	hubID, _, keyword, win, err := s.resolve(ctx, periodKeyword)
	if err != nil {
		return domain.ProductsReport{}, err
	}
	cfg := s.reports.Get()

	report := domain.ProductsReport{
		ReportMeta: meta(keyword, win),
		TopSellers: []domain.ProductSales{},
		SlowMovers: []domain.ProductSales{},
		StockValue: decimal.Zero,
		MarginData: []domain.ProductMargin{},
	}

	if sales, ok := s.registry.Sales(ctx); ok {
		report.HasSales = true
		items, err := sales.CompletedItems(ctx, hubID, win.Start, win.ExclusiveEnd())
		if err != nil {
			return domain.ProductsReport{}, err
		}

		grouped := groupItemsByProduct(items, true)
		report.TopSellers = topN(grouped, cfg.TopProductsLimit)
		report.SlowMovers = slowMovers(grouped, cfg.TopProductsLimit)
	}

	if inventory, ok := s.registry.Inventory(ctx); ok {
		report.HasInventory = true
		products, err := inventory.ActiveProducts(ctx, hubID)
		if err != nil {
			return domain.ProductsReport{}, err
		}

		report.TotalProducts = int64(len(products))
		for _, p := range products {
			report.StockValue = report.StockValue.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Stock))))
			if p.LowStock() {
				report.LowStockCount++
			}
		}
		report.MarginData = marginData(products, cfg.TopProductsLimit)
	}

	s.metrics.RecordReport(domain.ReportProducts)
	s.storeSnapshot(ctx, hubID, domain.ReportProducts, win, report)
	return report, nil
}

// slowMovers ranks sold products by ascending quantity. Never-sold products
// are absent from the grouping and stay excluded: no sales rows means no
// claim about how slowly the product moves.
func slowMovers(grouped []domain.ProductSales, limit int) []domain.ProductSales {
	byQty := make([]domain.ProductSales, len(grouped))
	copy(byQty, grouped)
	sort.SliceStable(byQty, func(i, j int) bool { return byQty[i].Quantity < byQty[j].Quantity })
	return topN(byQty, limit)
}

// marginData lists the highest-priced products carrying a cost. Zero-cost
// products would show a meaningless 100% margin and are skipped.
func marginData(products []sourcesdomain.Product, limit int) []domain.ProductMargin {
	withCost := make([]sourcesdomain.Product, 0, len(products))
	for _, p := range products {
		if p.Cost.GreaterThan(decimal.Zero) {
			withCost = append(withCost, p)
		}
	}
	sort.SliceStable(withCost, func(i, j int) bool {
		return withCost[i].Price.GreaterThan(withCost[j].Price)
	})
	withCost = topN(withCost, limit)

	out := make([]domain.ProductMargin, 0, len(withCost))
	for _, p := range withCost {
		price, _ := p.Price.Float64()
		cost, _ := p.Cost.Float64()
		out = append(out, domain.ProductMargin{
			Name:   p.Name,
			SKU:    p.SKU,
			Price:  price,
			Cost:   cost,
			Margin: p.ProfitMargin(),
			Stock:  p.Stock,
		})
	}
	return out
}

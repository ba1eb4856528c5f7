package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/erplora/analytics/internal/analytics/domain"
	"github.com/erplora/analytics/internal/period"
)

var ErrUnknownReportType = errors.New("unknown_report_type")

const exportContentType = "text/csv"

// ExportCSV renders the raw rows behind a report as a delimited document. A
// missing collaborator yields the header row alone, never an error.
func (s *Service) ExportCSV(ctx context.Context, reportType, periodKeyword string) (*domain.Export, error) {
	hubID, _, win, err := s.resolveFixed(ctx, periodKeyword)
	if err != nil {
		return nil, err
	}
	if reportType == "" {
		reportType = domain.ReportSales
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	switch reportType {
	case domain.ReportSales:
		err = s.exportSales(ctx, writer, hubID, win)
	case domain.ReportProducts:
		err = s.exportProducts(ctx, writer, hubID, win)
	case domain.ReportCustomers:
		err = s.exportCustomers(ctx, writer, hubID)
	default:
		return nil, ErrUnknownReportType
	}
	if err != nil {
		return nil, err
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	s.metrics.RecordExport(reportType)
	return &domain.Export{
		Filename: fmt.Sprintf("analytics_%s_%s_%s.csv",
			reportType, win.Start.Format("2006-01-02"), win.End.Format("2006-01-02")),
		ContentType: exportContentType,
		Content:     buf.Bytes(),
	}, nil
}

// exportSales writes every sale in the window regardless of status, newest
// first, so refunds and pending sales are visible in the export.
func (s *Service) exportSales(ctx context.Context, writer *csv.Writer, hubID int64, win period.Range) error {
	if err := writer.Write([]string{
		"Sale Number", "Date", "Employee", "Customer",
		"Payment Method", "Subtotal", "Tax", "Total", "Status",
	}); err != nil {
		return err
	}

	sales, ok := s.registry.Sales(ctx)
	if !ok {
		return nil
	}
	all, err := sales.AllSales(ctx, hubID, win.Start, win.ExclusiveEnd())
	if err != nil {
		return err
	}

	for _, sale := range all {
		if err := writer.Write([]string{
			sale.SaleNumber,
			sale.CreatedAt.UTC().Format("2006-01-02 15:04"),
			sale.EmployeeName,
			sale.CustomerName,
			sale.PaymentMethodName,
			sale.Subtotal.StringFixed(2),
			sale.TaxAmount.StringFixed(2),
			sale.Total.StringFixed(2),
			statusDisplay(sale.Status),
		}); err != nil {
			return err
		}
	}
	return nil
}

// exportProducts writes the per-product completed-sales grouping, highest
// revenue first. Stock, price and cost columns stay empty: the grouping is
// over sale lines, which carry no inventory reference.
func (s *Service) exportProducts(ctx context.Context, writer *csv.Writer, hubID int64, win period.Range) error {
	if err := writer.Write([]string{
		"Product", "SKU", "Quantity Sold", "Revenue", "Stock", "Price", "Cost",
	}); err != nil {
		return err
	}

	sales, ok := s.registry.Sales(ctx)
	if !ok {
		return nil
	}
	items, err := sales.CompletedItems(ctx, hubID, win.Start, win.ExclusiveEnd())
	if err != nil {
		return err
	}

	for _, product := range groupItemsByProduct(items, true) {
		if err := writer.Write([]string{
			product.Name,
			product.SKU,
			strconv.FormatFloat(product.Quantity, 'f', -1, 64),
			strconv.FormatFloat(product.Revenue, 'f', 2, 64),
			"", "", "",
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) exportCustomers(ctx context.Context, writer *csv.Writer, hubID int64) error {
	if err := writer.Write([]string{
		"Name", "Email", "Phone", "Total Purchases", "Total Spent", "Last Purchase",
	}); err != nil {
		return err
	}

	customers, ok := s.registry.Customers(ctx)
	if !ok {
		return nil
	}
	all, err := customers.Customers(ctx, hubID)
	if err != nil {
		return err
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].TotalSpent.GreaterThan(all[j].TotalSpent)
	})

	for _, c := range all {
		lastPurchase := ""
		if c.LastPurchaseAt != nil {
			lastPurchase = c.LastPurchaseAt.UTC().Format("2006-01-02")
		}
		if err := writer.Write([]string{
			c.Name,
			c.Email,
			c.Phone,
			strconv.Itoa(c.TotalPurchases),
			c.TotalSpent.StringFixed(2),
			lastPurchase,
		}); err != nil {
			return err
		}
	}
	return nil
}

func statusDisplay(status string) string {
	if status == "" {
		return ""
	}
	return strings.ToUpper(status[:1]) + status[1:]
}

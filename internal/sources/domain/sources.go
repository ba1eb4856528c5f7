package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Each source exposes the narrow read surface one collaborator module offers
// to analytics. Windows are half-open timestamp ranges: [start, endExcl).

type SalesSource interface {
	// CompletedSales returns completed, non-deleted sales in the window.
	CompletedSales(ctx context.Context, hubID int64, start, endExcl time.Time) ([]Sale, error)
	// AllSales returns every non-deleted sale in the window regardless of
	// status, newest first.
	AllSales(ctx context.Context, hubID int64, start, endExcl time.Time) ([]Sale, error)
	// CompletedItems returns line items belonging to completed sales in the
	// window.
	CompletedItems(ctx context.Context, hubID int64, start, endExcl time.Time) ([]SaleItem, error)
	ActivePaymentMethods(ctx context.Context, hubID int64) ([]PaymentMethod, error)
}

type InventorySource interface {
	// ActiveProducts returns active, non-deleted products.
	ActiveProducts(ctx context.Context, hubID int64) ([]Product, error)
}

type CustomersSource interface {
	// Customers returns all non-deleted customers of the hub.
	Customers(ctx context.Context, hubID int64) ([]Customer, error)
}

type LeadsSource interface {
	Leads(ctx context.Context, hubID int64) ([]Lead, error)
	Pipelines(ctx context.Context, hubID int64) ([]Pipeline, error)
	// Stages returns the pipeline's stages in sort order.
	Stages(ctx context.Context, hubID int64, pipelineID snowflake.ID) ([]PipelineStage, error)
}

type QuotesSource interface {
	QuotesInWindow(ctx context.Context, hubID int64, start, endExcl time.Time) ([]Quote, error)
}

type LoyaltySource interface {
	Members(ctx context.Context, hubID int64) ([]LoyaltyMember, error)
	// Tiers returns tiers ordered by their sort order.
	Tiers(ctx context.Context, hubID int64) ([]LoyaltyTier, error)
	TransactionsInWindow(ctx context.Context, hubID int64, start, endExcl time.Time) ([]PointTransaction, error)
}

type FeedbackSource interface {
	ResponsesInWindow(ctx context.Context, hubID int64, start, endExcl time.Time) ([]FeedbackResponse, error)
	OpenTicketCount(ctx context.Context, hubID int64) (int64, error)
}

type SegmentsSource interface {
	ActiveSegments(ctx context.Context, hubID int64) ([]Segment, error)
}

// Registry answers, per optional collaborator domain, whether the module is
// installed for this deployment and hands out its read surface. A false
// second return means "module absent" and is never an error; aggregators
// substitute neutral defaults and flag the domain unavailable.
type Registry interface {
	Sales(ctx context.Context) (SalesSource, bool)
	Inventory(ctx context.Context) (InventorySource, bool)
	Customers(ctx context.Context) (CustomersSource, bool)
	Leads(ctx context.Context) (LeadsSource, bool)
	Quotes(ctx context.Context) (QuotesSource, bool)
	Loyalty(ctx context.Context) (LoyaltySource, bool)
	Feedback(ctx context.Context) (FeedbackSource, bool)
	Segments(ctx context.Context) (SegmentsSource, bool)
}

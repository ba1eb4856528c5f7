package repository

import (
	"context"
	"sync"
	"time"

	"github.com/erplora/analytics/internal/sources/domain"
	"gorm.io/gorm"
)

// registry probes collaborator schemas at call time. A domain whose tables
// are missing is an uninstalled module, which is a normal state, not an
// error. Probe results are cached briefly so a burst of aggregators inside
// one report does not hammer the information schema.
type registry struct {
	db *gorm.DB

	mu       sync.Mutex
	probed   map[string]probeResult
	probeTTL time.Duration
}

type probeResult struct {
	present   bool
	checkedAt time.Time
}

func NewRegistry(db *gorm.DB) domain.Registry {
	return &registry{
		db:       db,
		probed:   make(map[string]probeResult),
		probeTTL: 30 * time.Second,
	}
}

func (r *registry) hasTables(names ...string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, name := range names {
		cached, ok := r.probed[name]
		if ok && now.Sub(cached.checkedAt) < r.probeTTL {
			if !cached.present {
				return false
			}
			continue
		}
		present := r.db.Migrator().HasTable(name)
		r.probed[name] = probeResult{present: present, checkedAt: now}
		if !present {
			return false
		}
	}
	return true
}

func (r *registry) Sales(ctx context.Context) (domain.SalesSource, bool) {
	_ = ctx
	if !r.hasTables(domain.Sale{}.TableName(), domain.SaleItem{}.TableName(), domain.PaymentMethod{}.TableName()) {
		return nil, false
	}
	return NewSalesSource(r.db), true
}

func (r *registry) Inventory(ctx context.Context) (domain.InventorySource, bool) {
	_ = ctx
	if !r.hasTables(domain.Product{}.TableName()) {
		return nil, false
	}
	return NewInventorySource(r.db), true
}

func (r *registry) Customers(ctx context.Context) (domain.CustomersSource, bool) {
	_ = ctx
	if !r.hasTables(domain.Customer{}.TableName()) {
		return nil, false
	}
	return NewCustomersSource(r.db), true
}

func (r *registry) Leads(ctx context.Context) (domain.LeadsSource, bool) {
	_ = ctx
	if !r.hasTables(domain.Lead{}.TableName(), domain.Pipeline{}.TableName(), domain.PipelineStage{}.TableName()) {
		return nil, false
	}
	return NewLeadsSource(r.db), true
}

func (r *registry) Quotes(ctx context.Context) (domain.QuotesSource, bool) {
	_ = ctx
	if !r.hasTables(domain.Quote{}.TableName()) {
		return nil, false
	}
	return NewQuotesSource(r.db), true
}

func (r *registry) Loyalty(ctx context.Context) (domain.LoyaltySource, bool) {
	_ = ctx
	if !r.hasTables(domain.LoyaltyMember{}.TableName(), domain.LoyaltyTier{}.TableName(), domain.PointTransaction{}.TableName()) {
		return nil, false
	}
	return NewLoyaltySource(r.db), true
}

func (r *registry) Feedback(ctx context.Context) (domain.FeedbackSource, bool) {
	_ = ctx
	if !r.hasTables(domain.FeedbackResponse{}.TableName(), domain.SupportTicket{}.TableName()) {
		return nil, false
	}
	return NewFeedbackSource(r.db), true
}

func (r *registry) Segments(ctx context.Context) (domain.SegmentsSource, bool) {
	_ = ctx
	if !r.hasTables(domain.Segment{}.TableName()) {
		return nil, false
	}
	return NewSegmentsSource(r.db), true
}

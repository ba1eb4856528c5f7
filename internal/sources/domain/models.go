// Package domain declares the read projections this service consumes from
// the optional collaborator modules (sales, inventory, customers, leads,
// quotes, loyalty, feedback, segments). The owning modules manage these
// tables; analytics only ever reads them.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

const (
	SaleStatusCompleted = "completed"
	SaleStatusRefunded  = "refunded"
	SaleStatusPending   = "pending"

	LeadStatusOpen = "open"
	LeadStatusWon  = "won"
	LeadStatusLost = "lost"

	QuoteStatusAccepted = "accepted"
	QuoteStatusRejected = "rejected"
	QuoteStatusPending  = "pending"

	PointKindEarn   = "earn"
	PointKindRedeem = "redeem"

	TicketStatusOpen   = "open"
	TicketStatusClosed = "closed"
)

type Sale struct {
	ID                snowflake.ID    `gorm:"primaryKey" json:"id"`
	HubID             int64           `gorm:"not null;index" json:"hub_id"`
	SaleNumber        string          `gorm:"not null" json:"sale_number"`
	CustomerName      string          `json:"customer_name"`
	EmployeeName      string          `json:"employee_name"`
	PaymentMethodID   snowflake.ID    `gorm:"index" json:"payment_method_id"`
	PaymentMethodName string          `json:"payment_method_name"`
	Subtotal          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TaxAmount         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax_amount"`
	Total             decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Status            string          `gorm:"not null;index" json:"status"`
	IsDeleted         bool            `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt         time.Time       `gorm:"not null;index" json:"created_at"`
}

func (Sale) TableName() string { return "sales_sale" }

type SaleItem struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	HubID       int64           `gorm:"not null;index" json:"hub_id"`
	SaleID      snowflake.ID    `gorm:"not null;index" json:"sale_id"`
	ProductName string          `gorm:"not null" json:"product_name"`
	ProductSKU  string          `json:"product_sku"`
	Quantity    decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"quantity"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"line_total"`
	IsDeleted   bool            `gorm:"not null;default:false" json:"is_deleted"`
}

func (SaleItem) TableName() string { return "sales_sale_item" }

type PaymentMethod struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	HubID     int64        `gorm:"not null;index" json:"hub_id"`
	Name      string       `gorm:"not null" json:"name"`
	IsActive  bool         `gorm:"not null;default:true" json:"is_active"`
	IsDeleted bool         `gorm:"not null;default:false" json:"is_deleted"`
}

func (PaymentMethod) TableName() string { return "sales_payment_method" }

type Product struct {
	ID                snowflake.ID    `gorm:"primaryKey" json:"id"`
	HubID             int64           `gorm:"not null;index" json:"hub_id"`
	Name              string          `gorm:"not null" json:"name"`
	SKU               string          `json:"sku"`
	Price             decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Cost              decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"cost"`
	Stock             int             `gorm:"not null;default:0" json:"stock"`
	LowStockThreshold int             `gorm:"not null;default:0" json:"low_stock_threshold"`
	IsActive          bool            `gorm:"not null;default:true" json:"is_active"`
	IsDeleted         bool            `gorm:"not null;default:false" json:"is_deleted"`
}

func (Product) TableName() string { return "inventory_product" }

// ProfitMargin returns (price - cost) / price as a percentage. Callers must
// exclude zero-priced products.
func (p Product) ProfitMargin() float64 {
	if p.Price.IsZero() {
		return 0
	}
	margin, _ := p.Price.Sub(p.Cost).Div(p.Price).Mul(decimal.NewFromInt(100)).Float64()
	return margin
}

// LowStock reports whether the product sits at or below its restock
// threshold.
func (p Product) LowStock() bool {
	return p.Stock <= p.LowStockThreshold
}

type Customer struct {
	ID                snowflake.ID    `gorm:"primaryKey" json:"id"`
	HubID             int64           `gorm:"not null;index" json:"hub_id"`
	Name              string          `gorm:"not null" json:"name"`
	Email             string          `json:"email"`
	Phone             string          `json:"phone"`
	TotalSpent        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_spent"`
	TotalPurchases    int             `gorm:"not null;default:0" json:"total_purchases"`
	LastPurchaseAt    *time.Time      `json:"last_purchase_at"`
	LifecycleStage    string          `gorm:"index" json:"lifecycle_stage"`
	AcquisitionSource string          `json:"acquisition_source"`
	IsDeleted         bool            `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt         time.Time       `gorm:"not null;index" json:"created_at"`
}

func (Customer) TableName() string { return "customers_customer" }

// AveragePurchase is lifetime spend divided by purchase count, zero-safe.
func (c Customer) AveragePurchase() decimal.Decimal {
	if c.TotalPurchases <= 0 {
		return decimal.Zero
	}
	return c.TotalSpent.Div(decimal.NewFromInt(int64(c.TotalPurchases)))
}

type Lead struct {
	ID         snowflake.ID    `gorm:"primaryKey" json:"id"`
	HubID      int64           `gorm:"not null;index" json:"hub_id"`
	Name       string          `json:"name"`
	Value      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"value"`
	Status     string          `gorm:"not null;index" json:"status"`
	PipelineID snowflake.ID    `gorm:"index" json:"pipeline_id"`
	StageID    snowflake.ID    `gorm:"index" json:"stage_id"`
	Source     string          `json:"source"`
	LossReason string          `json:"loss_reason"`
	WonAt      *time.Time      `json:"won_at"`
	LostAt     *time.Time      `json:"lost_at"`
	IsDeleted  bool            `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt  time.Time       `gorm:"not null" json:"created_at"`
}

func (Lead) TableName() string { return "leads_lead" }

type Pipeline struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	HubID     int64        `gorm:"not null;index" json:"hub_id"`
	Name      string       `gorm:"not null" json:"name"`
	IsDefault bool         `gorm:"not null;default:false" json:"is_default"`
	IsDeleted bool         `gorm:"not null;default:false" json:"is_deleted"`
}

func (Pipeline) TableName() string { return "leads_pipeline" }

type PipelineStage struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	HubID          int64        `gorm:"not null;index" json:"hub_id"`
	PipelineID     snowflake.ID `gorm:"not null;index" json:"pipeline_id"`
	Name           string       `gorm:"not null" json:"name"`
	SortOrder      int          `gorm:"not null;default:0" json:"sort_order"`
	WinProbability int          `gorm:"not null;default:0" json:"win_probability"`
	IsDeleted      bool         `gorm:"not null;default:false" json:"is_deleted"`
}

func (PipelineStage) TableName() string { return "leads_pipeline_stage" }

type Quote struct {
	ID        snowflake.ID    `gorm:"primaryKey" json:"id"`
	HubID     int64           `gorm:"not null;index" json:"hub_id"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Status    string          `gorm:"not null" json:"status"`
	IsDeleted bool            `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt time.Time       `gorm:"not null;index" json:"created_at"`
}

func (Quote) TableName() string { return "quotes_quote" }

type LoyaltyMember struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	HubID      int64        `gorm:"not null;index" json:"hub_id"`
	CustomerID snowflake.ID `gorm:"index" json:"customer_id"`
	TierID     snowflake.ID `gorm:"index" json:"tier_id"`
	IsActive   bool         `gorm:"not null;default:true" json:"is_active"`
	IsDeleted  bool         `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt  time.Time    `gorm:"not null" json:"created_at"`
}

func (LoyaltyMember) TableName() string { return "loyalty_member" }

type LoyaltyTier struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	HubID     int64        `gorm:"not null;index" json:"hub_id"`
	Name      string       `gorm:"not null" json:"name"`
	SortOrder int          `gorm:"not null;default:0" json:"sort_order"`
	IsDeleted bool         `gorm:"not null;default:false" json:"is_deleted"`
}

func (LoyaltyTier) TableName() string { return "loyalty_tier" }

// PointTransaction points are signed: earns are positive, redemptions are
// stored negative.
type PointTransaction struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	HubID     int64        `gorm:"not null;index" json:"hub_id"`
	MemberID  snowflake.ID `gorm:"index" json:"member_id"`
	Kind      string       `gorm:"not null" json:"kind"`
	Points    int64        `gorm:"not null" json:"points"`
	IsDeleted bool         `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt time.Time    `gorm:"not null;index" json:"created_at"`
}

func (PointTransaction) TableName() string { return "loyalty_point_transaction" }

type FeedbackResponse struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	HubID     int64        `gorm:"not null;index" json:"hub_id"`
	Score     int          `gorm:"not null" json:"score"`
	IsDeleted bool         `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt time.Time    `gorm:"not null;index" json:"created_at"`
}

func (FeedbackResponse) TableName() string { return "feedback_response" }

type SupportTicket struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	HubID     int64        `gorm:"not null;index" json:"hub_id"`
	Status    string       `gorm:"not null;index" json:"status"`
	IsDeleted bool         `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
}

func (SupportTicket) TableName() string { return "feedback_ticket" }

type Segment struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	HubID       int64        `gorm:"not null;index" json:"hub_id"`
	Name        string       `gorm:"not null" json:"name"`
	MemberCount int          `gorm:"not null;default:0" json:"member_count"`
	IsActive    bool         `gorm:"not null;default:true" json:"is_active"`
	IsDeleted   bool         `gorm:"not null;default:false" json:"is_deleted"`
}

func (Segment) TableName() string { return "segments_segment" }

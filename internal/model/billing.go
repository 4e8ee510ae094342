package model

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Processor subscription statuses.
const (
	SubscriptionStatusIncomplete        = "incomplete"
	SubscriptionStatusIncompleteExpired = "incomplete_expired"
	SubscriptionStatusTrialing          = "trialing"
	SubscriptionStatusActive            = "active"
	SubscriptionStatusPastDue           = "past_due"
	SubscriptionStatusCanceled          = "canceled"
	SubscriptionStatusUnpaid            = "unpaid"
)

// SubscriptionStatus holds the locally derived status flags.
type SubscriptionStatus struct {
	HasStarted      bool       `json:"has_started" gorm:"not null;default:false"`
	IsCanceled      bool       `json:"is_canceled" gorm:"not null;default:false"`
	DateCanceled    *time.Time `json:"date_canceled,omitempty"`
	IsExpired       bool       `json:"is_expired" gorm:"not null;default:false"`
	DateExpired     *time.Time `json:"date_expired,omitempty"`
	IsSuspended     bool       `json:"is_suspended" gorm:"not null;default:false"`
	DateSuspended   *time.Time `json:"date_suspended,omitempty"`
	NextPaymentDate *time.Time `json:"next_payment_date,omitempty"`
}

// Subscription is owned by the host subscription system. Reconciliation only
// writes the status flags, the plan, the processor status and the snapshot.
type Subscription struct {
	ID               int64      `json:"id" gorm:"primaryKey"`
	UserID           int64      `json:"user_id" gorm:"not null;index"`
	GatewayID        int64      `json:"gateway_id" gorm:"not null;index"`
	PlanID           *int64     `json:"plan_id,omitempty" gorm:"index"`
	Reference        string     `json:"reference" gorm:"size:255;uniqueIndex"`
	Status           string     `json:"status" gorm:"size:32"`
	Quantity         int64      `json:"quantity" gorm:"not null;default:1"`
	TrialEndsAt      *time.Time `json:"trial_ends_at,omitempty"`
	SubscriptionData Snapshot   `json:"subscription_data,omitempty"`
	SubscriptionStatus
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (Subscription) TableName() string {
	return "subscriptions"
}

// IsOnTrial reports whether the trial is still running at now.
func (s *Subscription) IsOnTrial(now time.Time) bool {
	if s.Status == SubscriptionStatusTrialing {
		return true
	}
	return s.TrialEndsAt != nil && now.Before(*s.TrialEndsAt)
}

// Plan is a processor price/plan mirrored locally.
type Plan struct {
	ID               int64          `json:"id" gorm:"primaryKey"`
	GatewayID        int64          `json:"gateway_id" gorm:"not null;index"`
	Reference        string         `json:"reference" gorm:"size:255;uniqueIndex"`
	ProductReference string         `json:"product_reference" gorm:"size:255;index"`
	Name             string         `json:"name"`
	Amount           int64          `json:"amount"`
	Currency         string         `json:"currency" gorm:"size:3"`
	Interval         string         `json:"interval" gorm:"size:16"`
	IntervalCount    int64          `json:"interval_count"`
	Active           bool           `json:"active"`
	Features         pq.StringArray `json:"features" gorm:"type:text[]"`
	PlanData         Snapshot       `json:"plan_data,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (Plan) TableName() string {
	return "plans"
}

// PlanFromSnapshot extracts the typed columns of a processor plan.
func PlanFromSnapshot(gatewayID int64, snap Snapshot) *Plan {
	p := &Plan{
		GatewayID:        gatewayID,
		Reference:        snap.String("id"),
		ProductReference: snap.String("product"),
		Name:             snap.String("nickname"),
		Currency:         snap.String("currency"),
		Interval:         snap.String("interval"),
		Active:           snap.Bool("active"),
		PlanData:         snap,
	}
	p.Amount, _ = snap.Int64("amount")
	p.IntervalCount, _ = snap.Int64("interval_count")
	if product := snap.Object("product"); product != nil {
		p.ApplyProduct(product)
	}
	return p
}

// ApplyProduct copies the product name and marketing features onto the plan.
func (p *Plan) ApplyProduct(product Snapshot) {
	if name := product.String("name"); name != "" && p.Name == "" {
		p.Name = name
	}
	features := make(pq.StringArray, 0)
	for _, f := range product.Objects("features") {
		if name := f.String("name"); name != "" {
			features = append(features, name)
		}
	}
	p.Features = features
}

// Invoice is the local copy of a processor invoice, upserted by reference.
type Invoice struct {
	ID             int64      `json:"id" gorm:"primaryKey"`
	SubscriptionID int64      `json:"subscription_id" gorm:"not null;index"`
	Reference      string     `json:"reference" gorm:"size:255;uniqueIndex"`
	InvoicedAt     *time.Time `json:"invoiced_at,omitempty" gorm:"index"`
	InvoiceData    Snapshot   `json:"invoice_data"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (Invoice) TableName() string {
	return "invoices"
}

// SubscriptionPayment is a payment reconstructed from a paid invoice.
// InvoicedAt is the invoice's own creation time and orders the history.
type SubscriptionPayment struct {
	ID               int64           `json:"id" gorm:"primaryKey"`
	SubscriptionID   int64           `json:"subscription_id" gorm:"not null;index"`
	InvoiceReference string          `json:"invoice_reference" gorm:"size:255;uniqueIndex"`
	Reference        string          `json:"reference" gorm:"size:255"`
	Amount           decimal.Decimal `json:"amount" gorm:"type:numeric(20,6);not null"`
	Currency         string          `json:"currency" gorm:"size:3"`
	InvoicedAt       time.Time       `json:"invoiced_at" gorm:"index"`
	Paid             bool            `json:"paid"`
	PaymentData      Snapshot        `json:"payment_data,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (SubscriptionPayment) TableName() string {
	return "subscription_payments"
}

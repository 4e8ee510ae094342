package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the kind of money movement a transaction asks for.
type TransactionType string

const (
	TransactionTypeAuthorize TransactionType = "authorize"
	TransactionTypePurchase  TransactionType = "purchase"
	TransactionTypeCapture   TransactionType = "capture"
	TransactionTypeRefund    TransactionType = "refund"
)

// Transaction is owned by the host order system. It is read, never mutated.
type Transaction struct {
	ID          int64           `json:"id" gorm:"primaryKey"`
	OrderID     int64           `json:"order_id" gorm:"not null;index"`
	OrderNumber string          `json:"order_number"`
	UserID      int64           `json:"user_id" gorm:"not null;index"`
	Email       string          `json:"email"`
	Hash        string          `json:"hash" gorm:"size:64;index"`
	Reference   string          `json:"reference,omitempty" gorm:"size:255;index"`
	Type        TransactionType `json:"type" gorm:"size:16;not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(20,6);not null"`
	Currency    string          `json:"currency" gorm:"size:3"`
	Description string          `json:"description"`
	ClientIP    string          `json:"client_ip,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TableName returns the table name for GORM.
func (Transaction) TableName() string {
	return "transactions"
}

// PaymentIntentRecord maps a local transaction to the processor's intent.
type PaymentIntentRecord struct {
	ID              int64     `json:"id" gorm:"primaryKey"`
	GatewayID       int64     `json:"gateway_id" gorm:"not null;uniqueIndex:idx_intent_gateway_customer_tx" validate:"required"`
	CustomerID      int64     `json:"customer_id" gorm:"not null;uniqueIndex:idx_intent_gateway_customer_tx" validate:"required"`
	Reference       string    `json:"reference" gorm:"size:255;uniqueIndex" validate:"required"`
	TransactionHash string    `json:"transaction_hash" gorm:"size:64;not null;uniqueIndex:idx_intent_gateway_customer_tx" validate:"required"`
	IntentData      Snapshot  `json:"intent_data" validate:"required"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (PaymentIntentRecord) TableName() string {
	return "payment_intents"
}

// CustomerRecord links a local user to a processor customer for one gateway.
type CustomerRecord struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	UserID       int64     `json:"user_id" gorm:"not null;uniqueIndex:idx_customer_user_gateway" validate:"required"`
	GatewayID    int64     `json:"gateway_id" gorm:"not null;uniqueIndex:idx_customer_user_gateway" validate:"required"`
	Reference    string    `json:"reference" gorm:"size:255;uniqueIndex" validate:"required"`
	ResponseData Snapshot  `json:"response_data"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (CustomerRecord) TableName() string {
	return "payment_customers"
}

// PaymentSource is a stored payment method of a processor customer.
type PaymentSource struct {
	ID                int64     `json:"id" gorm:"primaryKey"`
	GatewayID         int64     `json:"gateway_id" gorm:"not null;index" validate:"required"`
	CustomerReference string    `json:"customer_reference" gorm:"size:255;index"`
	Reference         string    `json:"reference" gorm:"size:255;uniqueIndex" validate:"required"`
	Type              string    `json:"type" gorm:"size:32"`
	Brand             string    `json:"brand,omitempty" gorm:"size:32"`
	Last4             string    `json:"last4,omitempty" gorm:"size:4"`
	ExpMonth          int64     `json:"exp_month,omitempty"`
	ExpYear           int64     `json:"exp_year,omitempty"`
	SourceData        Snapshot  `json:"source_data"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (PaymentSource) TableName() string {
	return "payment_sources"
}

// PaymentSourceFromSnapshot extracts the typed columns of a payment method.
func PaymentSourceFromSnapshot(gatewayID int64, snap Snapshot) *PaymentSource {
	src := &PaymentSource{
		GatewayID:         gatewayID,
		CustomerReference: snap.String("customer"),
		Reference:         snap.String("id"),
		Type:              snap.String("type"),
		SourceData:        snap,
	}
	if card := snap.Object("card"); card != nil {
		src.Brand = card.String("brand")
		src.Last4 = card.String("last4")
		src.ExpMonth, _ = card.Int64("exp_month")
		src.ExpYear, _ = card.Int64("exp_year")
	}
	return src
}

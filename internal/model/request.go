package model

// PaginationRequest defines pagination parameters.
type PaginationRequest struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
}

// DefaultPagination applies default pagination values.
func (p *PaginationRequest) DefaultPagination() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 || p.PageSize > 100 {
		p.PageSize = 20
	}
}

// Offset returns the offset for database queries.
func (p *PaginationRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// ChargeRequest is the body of an authorize or purchase call.
type ChargeRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
}

// CaptureRequest is the body of a capture call.
type CaptureRequest struct {
	Reference string `json:"reference" binding:"required"`
}

// SwitchPlanRequest describes a plan change on a processor subscription.
type SwitchPlanRequest struct {
	PlanID                int64  `json:"plan_id" binding:"required,gt=0"`
	Prorate               *bool  `json:"prorate,omitempty"`
	BillingCycleAnchorNow bool   `json:"billing_cycle_anchor_now"`
	Quantity              int64  `json:"quantity" binding:"omitempty,gte=1"`
	ProrationDate         *int64 `json:"proration_date,omitempty"`
	InvoiceNow            bool   `json:"invoice_now"`
}

// PreviewSwitchRequest is the query of a plan switch cost preview.
type PreviewSwitchRequest struct {
	PlanID int64 `form:"plan_id" binding:"required,gt=0"`
}

// PaymentHistoryRequest is the query of a payment history listing.
type PaymentHistoryRequest struct {
	PaginationRequest
}

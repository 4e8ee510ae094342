package model

import "github.com/shopspring/decimal"

// PaginatedResponse defines paginated response structure.
type PaginatedResponse[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginatedResponse creates a new paginated response.
func NewPaginatedResponse[T any](data []T, total int64, page, pageSize int) *PaginatedResponse[T] {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &PaginatedResponse[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// ErrorResponse defines error response structure.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// RequestResult is the classified outcome of a processor call.
type RequestResult struct {
	Successful       bool           `json:"successful"`
	Processing       bool           `json:"processing"`
	RequiresRedirect bool           `json:"requires_redirect"`
	RedirectURL      string         `json:"redirect_url,omitempty"`
	RedirectData     map[string]any `json:"redirect_data,omitempty"`
	Reference        string         `json:"reference,omitempty"`
	Code             string         `json:"code,omitempty"`
	Message          string         `json:"message,omitempty"`
}

// SwitchCostResponse is the previewed cost of a plan switch.
type SwitchCostResponse struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency,omitempty"`
}

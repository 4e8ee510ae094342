package payment

import (
	"github.com/uniedit/paysync/internal/model"
	"github.com/uniedit/paysync/internal/port/outbound"
)

// Processor intent and refund statuses.
const (
	statusSucceeded             = "succeeded"
	statusRequiresCapture       = "requires_capture"
	statusRequiresPaymentMethod = "requires_payment_method"
	statusRequiresAction        = "requires_action"
	statusRequiresConfirmation  = "requires_confirmation"
	statusProcessing            = "processing"
	statusCanceled              = "canceled"
	statusPending               = "pending"
	statusFailed                = "failed"
)

var defaultMessages = map[string]string{
	"card_declined":           "Your card was declined.",
	"insufficient_funds":      "Your card has insufficient funds.",
	"expired_card":            "Your card has expired.",
	"incorrect_cvc":           "Your card's security code is incorrect.",
	"processing_error":        "An error occurred while processing your card. Try again in a little bit.",
	"authentication_required": "Your card requires authentication.",

	statusRequiresPaymentMethod: "The payment was not completed. Please provide another payment method.",
	statusRequiresConfirmation:  "The payment is awaiting confirmation.",
	statusProcessing:            "The payment is being processed.",
	statusCanceled:              "The payment was canceled.",
	statusPending:               "The refund is being processed.",
	statusFailed:                "The refund failed.",
}

const genericFailureMessage = "The payment could not be completed."

// Classify turns a processor intent or refund snapshot into a RequestResult.
// returnURL is where a requires_payment_method intent sends the payer back to.
func Classify(snap model.Snapshot, returnURL string) *model.RequestResult {
	res := &model.RequestResult{Reference: snap.String("id")}
	status := snap.String("status")

	if snap.String("object") == "refund" {
		switch status {
		case statusSucceeded:
			res.Successful = true
		case statusPending:
			res.Processing = true
			res.Code = status
			res.Message = defaultMessages[status]
		default:
			res.Code = status
			res.Message = failureMessage(snap.String("failure_reason"), status)
		}
		return res
	}

	switch status {
	case statusSucceeded, statusRequiresCapture:
		res.Successful = true
		return res
	}

	if url := snap.String("next_action", "redirect_to_url", "url"); url != "" {
		res.RequiresRedirect = true
		res.RedirectURL = url
		res.Code = status
		res.Message = "Additional authentication is required."
		return res
	}

	res.Code = status
	switch status {
	case statusRequiresPaymentMethod, statusRequiresAction:
		res.RequiresRedirect = true
		res.RedirectURL = returnURL
		res.RedirectData = map[string]any{"client_secret": snap.String("client_secret")}
		if lastErr := snap.Object("last_payment_error"); lastErr != nil {
			res.Code = firstNonEmpty(lastErr.String("decline_code"), lastErr.String("code"), status)
			res.Message = failureMessage(lastErr.String("message"), res.Code)
			return res
		}
	case statusProcessing:
		res.Processing = true
	}
	res.Message = failureMessage("", status)
	return res
}

// Declined turns a structured processor failure into a failed RequestResult.
func Declined(decline *outbound.DeclineError) *model.RequestResult {
	res := &model.RequestResult{
		Code: firstNonEmpty(decline.DeclineCode, decline.Code, decline.Type),
	}
	if decline.Intent != nil {
		res.Reference = decline.Intent.String("id")
	}
	res.Message = failureMessage(decline.Message, res.Code)
	return res
}

func failureMessage(message, code string) string {
	if message != "" {
		return message
	}
	if m, ok := defaultMessages[code]; ok {
		return m
	}
	return genericFailureMessage
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

package subscription

import (
	"time"

	"github.com/uniedit/paysync/internal/model"
)

// StatusInput is the part of a processor subscription the status derivation reads.
type StatusInput struct {
	Status           string
	CanceledAt       *time.Time
	EndedAt          *time.Time
	CurrentPeriodEnd *time.Time
	// LatestInvoiceCreated estimates when a past_due subscription became suspended.
	LatestInvoiceCreated *time.Time
}

// StatusInputFrom reads the status fields of a processor subscription snapshot.
// An expanded latest_invoice supplies LatestInvoiceCreated.
func StatusInputFrom(snap model.Snapshot) StatusInput {
	return StatusInput{
		Status:               snap.String("status"),
		CanceledAt:           snap.Time("canceled_at"),
		EndedAt:              snap.Time("ended_at"),
		CurrentPeriodEnd:     snap.Time("current_period_end"),
		LatestInvoiceCreated: snap.Time("latest_invoice", "created"),
	}
}

// DeriveStatus applies a processor subscription state onto the local status flags.
func DeriveStatus(current model.SubscriptionStatus, in StatusInput) model.SubscriptionStatus {
	out := current

	switch in.Status {
	case model.SubscriptionStatusIncompleteExpired:
		out.IsExpired = true
		out.DateExpired = in.EndedAt
		out.IsCanceled = false
		out.DateCanceled = nil
		out.NextPaymentDate = nil
	case model.SubscriptionStatusActive:
		out.IsSuspended = false
		out.DateSuspended = nil
	case model.SubscriptionStatusPastDue:
		if !current.IsSuspended || current.DateSuspended == nil {
			out.DateSuspended = in.LatestInvoiceCreated
		}
		out.IsSuspended = true
	case model.SubscriptionStatusCanceled:
		out.IsExpired = true
		out.DateExpired = in.EndedAt
	}

	out.HasStarted = in.Status != model.SubscriptionStatusIncomplete &&
		in.Status != model.SubscriptionStatusIncompleteExpired

	// incomplete_expired already settled these.
	if in.Status != model.SubscriptionStatusIncompleteExpired {
		out.IsCanceled = in.CanceledAt != nil
		out.DateCanceled = in.CanceledAt
		out.NextPaymentDate = in.CurrentPeriodEnd
	}

	return out
}

// IsTerminal reports whether the processor will not move a subscription out of status.
func IsTerminal(status string) bool {
	return status == model.SubscriptionStatusIncompleteExpired || status == model.SubscriptionStatusCanceled
}

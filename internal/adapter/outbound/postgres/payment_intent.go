package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/uniedit/paysync/internal/model"
	"github.com/uniedit/paysync/internal/port/outbound"
	apperrors "github.com/uniedit/paysync/internal/utils/errors"
	"github.com/uniedit/paysync/internal/utils/validation"
	"gorm.io/gorm"
)

// paymentIntentAdapter implements outbound.PaymentIntentDatabasePort.
type paymentIntentAdapter struct {
	db *gorm.DB
}

// NewPaymentIntentAdapter creates a new payment intent database adapter.
func NewPaymentIntentAdapter(db *gorm.DB) outbound.PaymentIntentDatabasePort {
	return &paymentIntentAdapter{db: db}
}

func (a *paymentIntentAdapter) Find(ctx context.Context, gatewayID, customerID int64, transactionHash string) (*model.PaymentIntentRecord, error) {
	var record model.PaymentIntentRecord
	err := a.db.WithContext(ctx).
		Where("gateway_id = ? AND customer_id = ? AND transaction_hash = ?", gatewayID, customerID, transactionHash).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (a *paymentIntentAdapter) FindByReference(ctx context.Context, reference string) (*model.PaymentIntentRecord, error) {
	var record model.PaymentIntentRecord
	err := a.db.WithContext(ctx).First(&record, "reference = ?", reference).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Upsert inserts the record when it has no id and updates it in place otherwise.
func (a *paymentIntentAdapter) Upsert(ctx context.Context, record *model.PaymentIntentRecord) error {
	if err := validation.Struct(record); err != nil {
		return err
	}

	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner model.PaymentIntentRecord
		err := tx.Select("id").First(&owner, "reference = ?", record.Reference).Error
		switch {
		case err == nil:
			if err := checkReferenceOwner(record, owner.ID); err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("check intent reference: %w", err)
		}

		if record.ID == 0 {
			err = tx.Create(record).Error
		} else {
			err = tx.Save(record).Error
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ValidationError("payment intent already stored for this transaction").WithError(err)
		}
		if err != nil {
			return fmt.Errorf("save payment intent: %w", err)
		}
		return nil
	})
}

// checkReferenceOwner rejects a record whose reference already belongs to another row.
func checkReferenceOwner(record *model.PaymentIntentRecord, ownerID int64) error {
	if ownerID == 0 || ownerID == record.ID {
		return nil
	}
	return apperrors.ValidationError(
		fmt.Sprintf("intent reference %s belongs to another record", record.Reference),
	).WithDetails(map[string]any{"reference": record.Reference, "owner_id": ownerID})
}

func (a *paymentIntentAdapter) DeleteAll(ctx context.Context) (int64, error) {
	result := a.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.PaymentIntentRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete payment intents: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Compile-time check
var _ outbound.PaymentIntentDatabasePort = (*paymentIntentAdapter)(nil)

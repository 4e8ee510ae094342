package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/uniedit/paysync/internal/model"
	"github.com/uniedit/paysync/internal/port/outbound"
	"github.com/uniedit/paysync/internal/utils/validation"
	"gorm.io/gorm"
)

// customerAdapter implements outbound.CustomerDatabasePort.
type customerAdapter struct {
	db *gorm.DB
}

// NewCustomerAdapter creates a new customer database adapter.
func NewCustomerAdapter(db *gorm.DB) outbound.CustomerDatabasePort {
	return &customerAdapter{db: db}
}

func (a *customerAdapter) FindByUser(ctx context.Context, userID, gatewayID int64) (*model.CustomerRecord, error) {
	var customer model.CustomerRecord
	err := a.db.WithContext(ctx).First(&customer, "user_id = ? AND gateway_id = ?", userID, gatewayID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func (a *customerAdapter) FindByReference(ctx context.Context, reference string) (*model.CustomerRecord, error) {
	var customer model.CustomerRecord
	err := a.db.WithContext(ctx).First(&customer, "reference = ?", reference).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func (a *customerAdapter) Create(ctx context.Context, customer *model.CustomerRecord) error {
	if err := validation.Struct(customer); err != nil {
		return err
	}
	err := a.db.WithContext(ctx).Create(customer).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return outbound.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

func (a *customerAdapter) Delete(ctx context.Context, id int64) error {
	return a.db.WithContext(ctx).Delete(&model.CustomerRecord{}, "id = ?", id).Error
}

func (a *customerAdapter) DeleteAll(ctx context.Context) (int64, error) {
	result := a.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.CustomerRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete customers: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Compile-time check
var _ outbound.CustomerDatabasePort = (*customerAdapter)(nil)

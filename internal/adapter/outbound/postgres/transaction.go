package postgres

import (
	"context"
	"errors"

	"github.com/uniedit/paysync/internal/model"
	"github.com/uniedit/paysync/internal/port/outbound"
	"gorm.io/gorm"
)

// transactionAdapter implements outbound.TransactionDatabasePort.
type transactionAdapter struct {
	db *gorm.DB
}

// NewTransactionAdapter creates a new transaction database adapter.
func NewTransactionAdapter(db *gorm.DB) outbound.TransactionDatabasePort {
	return &transactionAdapter{db: db}
}

func (a *transactionAdapter) FindByID(ctx context.Context, id int64) (*model.Transaction, error) {
	var tx model.Transaction
	err := a.db.WithContext(ctx).First(&tx, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tx, nil
}

// Compile-time check
var _ outbound.TransactionDatabasePort = (*transactionAdapter)(nil)

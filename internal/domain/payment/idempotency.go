package payment

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/uniedit/paysync/internal/model"
)

// TransactionHash returns the stable token identifying a charge attempt.
// Transactions without a hash fall back to a digest of
// order, gateway, customer and transaction ids.
func TransactionHash(tx *model.Transaction, gatewayID, customerID int64) string {
	if tx.Hash != "" {
		return tx.Hash
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%d:%d:%d", tx.OrderID, gatewayID, customerID, tx.ID)))
	return hex.EncodeToString(sum[:])
}

// IdempotencyKey scopes a base token to one remote operation. Processor keys
// are account-wide, so follow-up calls on the same transaction (update,
// confirm) need their own scope while retries of one call keep the same key.
func IdempotencyKey(base string, scope ...string) string {
	if len(scope) == 0 {
		return base
	}
	return base + ":" + strings.Join(scope, ":")
}

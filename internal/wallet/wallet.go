package wallet

import (
	"context"

	"github.com/google/uuid"

	"github.com/streamarena/pk-battle/internal/logger"
)

// Wallet funds gift sends. A debit must succeed before any score is
// attributed; the returned transaction ID becomes the score record's
// idempotency key.
type Wallet interface {
	// Debit removes amount coins from the user's balance and returns the
	// ledger transaction ID
	Debit(ctx context.Context, userID string, amount int64, reference string) (string, error)
}

// LedgerStub issues transaction IDs without touching a real ledger. The
// production ledger lives in a separate service; this stand-in keeps local
// runs and tests working against the same interface.
type LedgerStub struct{}

// NewLedgerStub creates a wallet stub for local runs
func NewLedgerStub() *LedgerStub {
	return &LedgerStub{}
}

// Debit records the debit in the application log and returns a fresh
// transaction ID
func (w *LedgerStub) Debit(ctx context.Context, userID string, amount int64, reference string) (string, error) {
	txnID := uuid.NewString()
	logger.FromContext(ctx).Info(LogMsgDebitApplied,
		"user_id", userID,
		"amount", amount,
		"reference", reference,
		"transaction_id", txnID)
	return txnID, nil
}

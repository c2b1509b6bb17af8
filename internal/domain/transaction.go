package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxDeposit    TransactionType = "deposit"
	TxWithdrawal TransactionType = "withdrawal"
	TxPurchase   TransactionType = "purchase"
	TxPrize      TransactionType = "prize"
	TxBonus      TransactionType = "bonus"
	TxCommission TransactionType = "commission"
)

type TransactionStatus string

const (
	TxPending   TransactionStatus = "pending"
	TxCompleted TransactionStatus = "completed"
	TxFailed    TransactionStatus = "failed"
	TxCancelled TransactionStatus = "cancelled"
)

// Transaction is the append-only audit trail. Wallet balances must always be
// reconstructable by replaying completed transactions.
type Transaction struct {
	ID          string                 `db:"id" json:"id"`
	UserID      string                 `db:"user_id" json:"user_id"`
	Type        TransactionType        `db:"type" json:"type"`
	Status      TransactionStatus      `db:"status" json:"status"`
	Amount      decimal.Decimal        `db:"amount" json:"amount"`
	AffiliateID *string                `db:"affiliate_id" json:"affiliate_id,omitempty"`
	Meta        map[string]interface{} `db:"meta" json:"meta,omitempty"`
	CreatedAt   time.Time              `db:"created_at" json:"created_at"`
}

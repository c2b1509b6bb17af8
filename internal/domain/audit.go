package domain

import "time"

// AuditLog records sensitive user actions for later review. Best-effort:
// failures to write are logged, never propagated.
type AuditLog struct {
	ID        int64                  `db:"id" json:"id"`
	UserID    string                 `db:"user_id" json:"user_id"`
	Action    string                 `db:"action" json:"action"`
	Category  string                 `db:"category" json:"category"`
	Details   map[string]interface{} `db:"details" json:"details,omitempty"`
	IP        string                 `db:"ip" json:"ip,omitempty"`
	UserAgent string                 `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}

const (
	AuditCategoryPayment  = "payment"
	AuditCategoryPurchase = "purchase"

	AuditActionDeposit        = "deposit_settled"
	AuditActionWithdrawal     = "withdrawal_requested"
	AuditActionWithdrawalDone = "withdrawal_settled"
	AuditActionBigWin         = "big_win"
)

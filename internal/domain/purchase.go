package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase is one bought ticket. The prize is drawn and persisted at
// purchase time but only disclosed and paid at reveal. IsRevealed flips to
// true exactly once; the row is never mutated after that.
type Purchase struct {
	ID            string          `db:"id" json:"id"`
	UserID        string          `db:"user_id" json:"user_id"`
	RaspadinhaID  string          `db:"raspadinha_id" json:"raspadinha_id"`
	TransactionID string          `db:"transaction_id" json:"transaction_id"`
	PrizeID       string          `db:"prize_id" json:"prize_id"`
	PrizeWon      decimal.Decimal `db:"prize_won" json:"prize_won"`
	PrizeLabel    string          `db:"prize_label" json:"prize_label"`
	IsRevealed    bool            `db:"is_revealed" json:"is_revealed"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	RevealedAt    *time.Time      `db:"revealed_at" json:"revealed_at,omitempty"`
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Raspadinha is a scratch-card SKU. Read-only to the purchase flow except
// for the stock counter.
type Raspadinha struct {
	ID        string          `db:"id" json:"id"`
	Slug      string          `db:"slug" json:"slug"`
	Name      string          `db:"name" json:"name"`
	Price     decimal.Decimal `db:"price" json:"price"`
	MaxPrize  decimal.Decimal `db:"max_prize" json:"max_prize"`
	Category  string          `db:"category" json:"category"`
	Stock     *int            `db:"stock" json:"stock,omitempty"` // nil = unlimited
	IsActive  bool            `db:"is_active" json:"is_active"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// Prize is one tier of a raspadinha's prize table. Tiers with a zero amount
// represent "no win". Probabilities for one product should sum to 1.0.
type Prize struct {
	ID           string          `db:"id" json:"id"`
	RaspadinhaID string          `db:"raspadinha_id" json:"raspadinha_id"`
	Label        string          `db:"label" json:"label"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`
	Probability  float64         `db:"probability" json:"probability"`
	SortOrder    int             `db:"sort_order" json:"sort_order"`
}

// IsWin reports whether the tier pays anything.
func (p *Prize) IsWin() bool {
	return p.Amount.GreaterThan(decimal.Zero)
}

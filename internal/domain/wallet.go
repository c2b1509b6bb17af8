package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bucket names a wallet sub-balance. The sum of all buckets always equals
// the wallet total.
type Bucket string

const (
	BucketStandard Bucket = "standard"
	BucketPrizes   Bucket = "prizes"
	BucketBonus    Bucket = "bonus"
)

// Wallet holds a user's balance split across buckets. Balances are only
// mutated through the wallet service; handlers read snapshots.
type Wallet struct {
	UserID            string          `db:"user_id" json:"user_id"`
	BalanceTotal      decimal.Decimal `db:"balance_total" json:"balance_total"`
	BalanceStandard   decimal.Decimal `db:"balance_standard" json:"balance_standard"`
	BalancePrizes     decimal.Decimal `db:"balance_prizes" json:"balance_prizes"`
	BalanceBonus      decimal.Decimal `db:"balance_bonus" json:"balance_bonus"`
	PendingWithdrawal decimal.Decimal `db:"pending_withdrawal" json:"pending_withdrawal"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

// DebitSplit computes how a debit of amount is drawn from the buckets:
// standard first, then prizes. Bonus funds cannot be spent on purchases.
// Returns ErrInsufficientBalance without any mutation when the spendable
// balance does not cover amount.
func (w *Wallet) DebitSplit(amount decimal.Decimal) (fromStandard, fromPrizes decimal.Decimal, err error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, decimal.Zero, ErrInvalidAmount
	}

	if w.BalanceStandard.GreaterThanOrEqual(amount) {
		return amount, decimal.Zero, nil
	}

	fromStandard = w.BalanceStandard
	fromPrizes = amount.Sub(fromStandard)
	if w.BalancePrizes.LessThan(fromPrizes) {
		return decimal.Zero, decimal.Zero, ErrInsufficientBalance
	}

	return fromStandard, fromPrizes, nil
}

// CheckInvariant verifies total == standard + prizes + bonus and that no
// bucket is negative. Should be unreachable given prior validation.
func (w *Wallet) CheckInvariant() error {
	sum := w.BalanceStandard.Add(w.BalancePrizes).Add(w.BalanceBonus)
	if !w.BalanceTotal.Equal(sum) {
		return ErrWalletInvariant
	}
	for _, b := range []decimal.Decimal{w.BalanceStandard, w.BalancePrizes, w.BalanceBonus, w.BalanceTotal, w.PendingWithdrawal} {
		if b.IsNegative() {
			return ErrWalletInvariant
		}
	}
	return nil
}

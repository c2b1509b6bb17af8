package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Affiliate is one referring user with a unique code.
type Affiliate struct {
	ID                string          `db:"id" json:"id"`
	UserID            string          `db:"user_id" json:"user_id"`
	ReferralCode      string          `db:"referral_code" json:"referral_code"`
	TotalReferrals    int             `db:"total_referrals" json:"total_referrals"`
	ActiveReferrals   int             `db:"active_referrals" json:"active_referrals"`
	CommissionBalance decimal.Decimal `db:"commission_balance" json:"commission_balance"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
}

// Referral links a referred user to an affiliate. Created inactive at
// registration; flips active exactly once, on the referred user's first
// completed deposit.
type Referral struct {
	ID             string     `db:"id" json:"id"`
	AffiliateID    string     `db:"affiliate_id" json:"affiliate_id"`
	ReferredUserID string     `db:"referred_user_id" json:"referred_user_id"`
	IsActive       bool       `db:"is_active" json:"is_active"`
	ActivatedAt    *time.Time `db:"activated_at" json:"activated_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// Commission records one deposit-triggered payout. Append-only.
type Commission struct {
	ID            string          `db:"id" json:"id"`
	AffiliateID   string          `db:"affiliate_id" json:"affiliate_id"`
	ReferralID    string          `db:"referral_id" json:"referral_id"`
	TransactionID string          `db:"transaction_id" json:"transaction_id"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	Percentage    decimal.Decimal `db:"percentage" json:"percentage"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

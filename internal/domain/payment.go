package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ChargeStatus string

const (
	ChargePending   ChargeStatus = "PENDING"
	ChargeCompleted ChargeStatus = "COMPLETED"
	ChargeExpired   ChargeStatus = "EXPIRED"
	ChargeCancelled ChargeStatus = "CANCELLED"
)

// PixCharge tracks one deposit charge created with the payment provider.
// Settlement events may arrive zero, one or more times; applying a terminal
// event twice is a no-op.
type PixCharge struct {
	ID               string          `db:"id" json:"id"`
	UserID           string          `db:"user_id" json:"user_id"`
	TransactionID    string          `db:"transaction_id" json:"transaction_id"`
	Provider         string          `db:"provider" json:"provider"`
	ProviderChargeID string          `db:"provider_charge_id" json:"provider_charge_id"`
	Amount           decimal.Decimal `db:"amount" json:"amount"`
	Status           ChargeStatus    `db:"status" json:"status"`
	QRCode           string          `db:"qr_code" json:"qr_code"`
	QRCodeBase64     string          `db:"qr_code_base64" json:"qr_code_base64,omitempty"`
	ExpiresAt        time.Time       `db:"expires_at" json:"expires_at"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	SettledAt        *time.Time      `db:"settled_at" json:"settled_at,omitempty"`
}

type WithdrawalStatus string

const (
	WithdrawalPending   WithdrawalStatus = "PENDING"
	WithdrawalCompleted WithdrawalStatus = "COMPLETED"
	WithdrawalFailed    WithdrawalStatus = "FAILED"
)

// Withdrawal is a user-requested PIX payout. The wallet is debited up front
// and the amount tracked as a reservation until the provider confirms.
type Withdrawal struct {
	ID                   string           `db:"id" json:"id"`
	UserID               string           `db:"user_id" json:"user_id"`
	TransactionID        string           `db:"transaction_id" json:"transaction_id"`
	Amount               decimal.Decimal  `db:"amount" json:"amount"`
	PixKey               string           `db:"pix_key" json:"pix_key"`
	PixKeyType           string           `db:"pix_key_type" json:"pix_key_type"`
	RecipientName        string           `db:"recipient_name" json:"recipient_name"`
	RecipientDocument    string           `db:"recipient_document" json:"recipient_document"`
	Provider             string           `db:"provider" json:"provider"`
	ProviderWithdrawalID string           `db:"provider_withdrawal_id" json:"provider_withdrawal_id,omitempty"`
	Status               WithdrawalStatus `db:"status" json:"status"`
	FailureReason        string           `db:"failure_reason" json:"failure_reason,omitempty"`
	CreatedAt            time.Time        `db:"created_at" json:"created_at"`
	ProcessedAt          *time.Time       `db:"processed_at" json:"processed_at,omitempty"`
	CompletedAt          *time.Time       `db:"completed_at" json:"completed_at,omitempty"`
}

// Package pix abstracts the PIX payment providers the platform settles
// deposits and withdrawals through. The concrete provider is chosen once at
// startup; the rest of the system only sees this interface.
package pix

import (
	"context"
	"fmt"
	"time"

	"raspadinha_backend/internal/config"

	"github.com/shopspring/decimal"
)

// Charge statuses as reported by providers.
const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
	StatusExpired   = "EXPIRED"
	StatusCancelled = "CANCELLED"
	StatusFailed    = "FAILED"
)

// Charge is a provider-side PIX charge (deposit).
type Charge struct {
	ID           string          `json:"id"`
	QRCode       string          `json:"qr_code"`
	QRCodeBase64 string          `json:"qr_code_base64"`
	Amount       decimal.Decimal `json:"amount"`
	Status       string          `json:"status"`
	ExpiresAt    time.Time       `json:"expires_at"`
}

// WithdrawalResult is a provider-side payout.
type WithdrawalResult struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Amount decimal.Decimal `json:"amount"`
}

// PayerInfo is optional KYC data attached to a charge.
type PayerInfo struct {
	Name     string `json:"name,omitempty"`
	Document string `json:"document,omitempty"`
}

type CreateChargeRequest struct {
	Amount      decimal.Decimal
	Payer       *PayerInfo
	CallbackURL string
	ExpiresIn   time.Duration
}

type CreateWithdrawalRequest struct {
	Amount            decimal.Decimal
	PixKey            string
	PixKeyType        string
	RecipientName     string
	RecipientDocument string
}

// Provider is the contract every PIX integration must satisfy.
type Provider interface {
	Name() string
	CreateCharge(ctx context.Context, req CreateChargeRequest) (*Charge, error)
	GetChargeStatus(ctx context.Context, id string) (*Charge, error)
	CreateWithdrawal(ctx context.Context, req CreateWithdrawalRequest) (*WithdrawalResult, error)
	GetWithdrawalStatus(ctx context.Context, id string) (*WithdrawalResult, error)
	ValidateWebhook(payload []byte, signature string) bool
}

// NewProvider constructs the configured provider. Called once at startup.
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.PixProvider {
	case "betpaym":
		return NewBetPaym(cfg.PixBaseURL, cfg.PixAPIKey, cfg.PixWebhookSecret), nil
	case "sampabank":
		return NewSampaBank(cfg.PixBaseURL, cfg.PixAPIKey, cfg.PixAPISecret, cfg.PixWebhookSecret), nil
	default:
		return nil, fmt.Errorf("unknown pix provider: %s", cfg.PixProvider)
	}
}

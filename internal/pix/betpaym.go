package pix

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// BetPaym is a BetPaym API client
type BetPaym struct {
	baseURL       string
	apiKey        string
	webhookSecret string
	httpClient    *http.Client
}

// NewBetPaym creates a new BetPaym API client
func NewBetPaym(baseURL, apiKey, webhookSecret string) *BetPaym {
	return &BetPaym{
		baseURL:       baseURL,
		apiKey:        apiKey,
		webhookSecret: webhookSecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (b *BetPaym) Name() string { return "betpaym" }

type betPaymCharge struct {
	ID           string          `json:"id"`
	QRCode       string          `json:"pix_copy_paste"`
	QRCodeBase64 string          `json:"pix_qr_code"`
	Amount       decimal.Decimal `json:"amount"`
	Status       string          `json:"status"`
	ExpiresAt    time.Time       `json:"expires_at"`
}

func (c betPaymCharge) toCharge() *Charge {
	return &Charge{
		ID:           c.ID,
		QRCode:       c.QRCode,
		QRCodeBase64: c.QRCodeBase64,
		Amount:       c.Amount,
		Status:       mapBetPaymStatus(c.Status),
		ExpiresAt:    c.ExpiresAt,
	}
}

// BetPaym reports lowercase statuses.
func mapBetPaymStatus(s string) string {
	switch s {
	case "paid", "completed":
		return StatusCompleted
	case "expired":
		return StatusExpired
	case "cancelled", "refunded":
		return StatusCancelled
	case "failed", "rejected":
		return StatusFailed
	default:
		return StatusPending
	}
}

// CreateCharge creates a PIX charge (deposit QR code)
func (b *BetPaym) CreateCharge(ctx context.Context, req CreateChargeRequest) (*Charge, error) {
	payload := map[string]any{
		"amount":       req.Amount,
		"callback_url": req.CallbackURL,
		"expires_in":   int(req.ExpiresIn.Seconds()),
	}
	if req.Payer != nil {
		payload["payer"] = req.Payer
	}

	var out betPaymCharge
	if err := b.post(ctx, "/v1/charges", payload, &out); err != nil {
		return nil, err
	}
	return out.toCharge(), nil
}

// GetChargeStatus retrieves the current state of a charge
func (b *BetPaym) GetChargeStatus(ctx context.Context, id string) (*Charge, error) {
	var out betPaymCharge
	if err := b.get(ctx, "/v1/charges/"+id, &out); err != nil {
		return nil, err
	}
	return out.toCharge(), nil
}

type betPaymWithdrawal struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Amount decimal.Decimal `json:"amount"`
}

// CreateWithdrawal submits a PIX payout
func (b *BetPaym) CreateWithdrawal(ctx context.Context, req CreateWithdrawalRequest) (*WithdrawalResult, error) {
	payload := map[string]any{
		"amount":       req.Amount,
		"pix_key":      req.PixKey,
		"pix_key_type": req.PixKeyType,
		"recipient": map[string]string{
			"name":     req.RecipientName,
			"document": req.RecipientDocument,
		},
	}

	var out betPaymWithdrawal
	if err := b.post(ctx, "/v1/payouts", payload, &out); err != nil {
		return nil, err
	}
	return &WithdrawalResult{ID: out.ID, Status: mapBetPaymStatus(out.Status), Amount: out.Amount}, nil
}

// GetWithdrawalStatus retrieves the current state of a payout
func (b *BetPaym) GetWithdrawalStatus(ctx context.Context, id string) (*WithdrawalResult, error) {
	var out betPaymWithdrawal
	if err := b.get(ctx, "/v1/payouts/"+id, &out); err != nil {
		return nil, err
	}
	return &WithdrawalResult{ID: out.ID, Status: mapBetPaymStatus(out.Status), Amount: out.Amount}, nil
}

// ValidateWebhook checks the HMAC-SHA256 signature BetPaym sends in
// the X-Signature header against the raw request body.
func (b *BetPaym) ValidateWebhook(payload []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(b.webhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (b *BetPaym) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", b.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	return b.do(req, out)
}

func (b *BetPaym) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", b.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	return b.do(req, out)
}

func (b *BetPaym) do(req *http.Request, out any) error {
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("betpaym API error: %s - %s", resp.Status, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

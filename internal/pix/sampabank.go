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

// SampaBank is a SampaBank API client
type SampaBank struct {
	baseURL       string
	clientID      string
	clientSecret  string
	webhookSecret string
	httpClient    *http.Client
}

// NewSampaBank creates a new SampaBank API client
func NewSampaBank(baseURL, clientID, clientSecret, webhookSecret string) *SampaBank {
	return &SampaBank{
		baseURL:       baseURL,
		clientID:      clientID,
		clientSecret:  clientSecret,
		webhookSecret: webhookSecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (s *SampaBank) Name() string { return "sampabank" }

type sampaCharge struct {
	TransactionID string          `json:"transaction_id"`
	EMV           string          `json:"emv"`
	ImageBase64   string          `json:"image_base64"`
	Value         decimal.Decimal `json:"value"`
	Status        string          `json:"status"`
	ExpiresAt     int64           `json:"expires_at"`
}

func (c sampaCharge) toCharge() *Charge {
	return &Charge{
		ID:           c.TransactionID,
		QRCode:       c.EMV,
		QRCodeBase64: c.ImageBase64,
		Amount:       c.Value,
		Status:       mapSampaStatus(c.Status),
		ExpiresAt:    time.Unix(c.ExpiresAt, 0),
	}
}

func mapSampaStatus(s string) string {
	switch s {
	case "CONFIRMED", "SETTLED":
		return StatusCompleted
	case "EXPIRED":
		return StatusExpired
	case "CANCELLED":
		return StatusCancelled
	case "REJECTED":
		return StatusFailed
	default:
		return StatusPending
	}
}

// CreateCharge creates a PIX charge (deposit QR code)
func (s *SampaBank) CreateCharge(ctx context.Context, req CreateChargeRequest) (*Charge, error) {
	payload := map[string]any{
		"value":       req.Amount,
		"webhook_url": req.CallbackURL,
		"ttl_seconds": int(req.ExpiresIn.Seconds()),
	}
	if req.Payer != nil {
		payload["payer_name"] = req.Payer.Name
		payload["payer_document"] = req.Payer.Document
	}

	var out sampaCharge
	if err := s.request(ctx, "POST", "/pix/qrcode", payload, &out); err != nil {
		return nil, err
	}
	return out.toCharge(), nil
}

// GetChargeStatus retrieves the current state of a charge
func (s *SampaBank) GetChargeStatus(ctx context.Context, id string) (*Charge, error) {
	var out sampaCharge
	if err := s.request(ctx, "GET", "/pix/qrcode/"+id, nil, &out); err != nil {
		return nil, err
	}
	return out.toCharge(), nil
}

type sampaTransfer struct {
	TransactionID string          `json:"transaction_id"`
	Status        string          `json:"status"`
	Value         decimal.Decimal `json:"value"`
}

// CreateWithdrawal submits a PIX payout
func (s *SampaBank) CreateWithdrawal(ctx context.Context, req CreateWithdrawalRequest) (*WithdrawalResult, error) {
	payload := map[string]any{
		"value":              req.Amount,
		"pix_key":            req.PixKey,
		"pix_key_type":       req.PixKeyType,
		"recipient_name":     req.RecipientName,
		"recipient_document": req.RecipientDocument,
	}

	var out sampaTransfer
	if err := s.request(ctx, "POST", "/pix/transfer", payload, &out); err != nil {
		return nil, err
	}
	return &WithdrawalResult{ID: out.TransactionID, Status: mapSampaStatus(out.Status), Amount: out.Value}, nil
}

// GetWithdrawalStatus retrieves the current state of a payout
func (s *SampaBank) GetWithdrawalStatus(ctx context.Context, id string) (*WithdrawalResult, error) {
	var out sampaTransfer
	if err := s.request(ctx, "GET", "/pix/transfer/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &WithdrawalResult{ID: out.TransactionID, Status: mapSampaStatus(out.Status), Amount: out.Value}, nil
}

// ValidateWebhook checks the HMAC-SHA256 signature SampaBank sends in
// the X-Webhook-Signature header against the raw request body.
func (s *SampaBank) ValidateWebhook(payload []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (s *SampaBank) request(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetBasicAuth(s.clientID, s.clientSecret)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sampabank API error: %s - %s", resp.Status, string(raw))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

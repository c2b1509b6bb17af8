package pix

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestBetPaymCreateCharge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/v1/charges" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", got)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["expires_in"].(float64) != 900 {
			t.Errorf("expected expires_in 900, got %v", body["expires_in"])
		}

		json.NewEncoder(w).Encode(map[string]any{
			"id":             "ch_123",
			"pix_copy_paste": "00020126...",
			"amount":         "50.00",
			"status":         "pending",
		})
	}))
	defer srv.Close()

	client := NewBetPaym(srv.URL, "test-key", "secret")
	charge, err := client.CreateCharge(context.Background(), CreateChargeRequest{
		Amount:    decimal.NewFromInt(50),
		ExpiresIn: 15 * time.Minute,
	})
	if err != nil {
		t.Fatalf("CreateCharge: %v", err)
	}
	if charge.ID != "ch_123" {
		t.Errorf("expected charge id ch_123, got %s", charge.ID)
	}
	if charge.Status != StatusPending {
		t.Errorf("expected PENDING, got %s", charge.Status)
	}
}

func TestBetPaymStatusMapping(t *testing.T) {
	cases := map[string]string{
		"paid":      StatusCompleted,
		"completed": StatusCompleted,
		"expired":   StatusExpired,
		"cancelled": StatusCancelled,
		"refunded":  StatusCancelled,
		"rejected":  StatusFailed,
		"pending":   StatusPending,
		"waiting":   StatusPending,
	}
	for raw, want := range cases {
		if got := mapBetPaymStatus(raw); got != want {
			t.Errorf("mapBetPaymStatus(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestBetPaymAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"insufficient funds"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := NewBetPaym(srv.URL, "test-key", "secret")
	_, err := client.CreateWithdrawal(context.Background(), CreateWithdrawalRequest{
		Amount: decimal.NewFromInt(100),
		PixKey: "user@example.com",
	})
	if err == nil {
		t.Fatal("expected error on 422 response")
	}
}

func TestValidateWebhook(t *testing.T) {
	payload := []byte(`{"id":"ch_123","status":"paid"}`)

	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write(payload)
	good := hex.EncodeToString(mac.Sum(nil))

	client := NewBetPaym("http://unused", "key", "secret")
	if !client.ValidateWebhook(payload, good) {
		t.Error("valid signature rejected")
	}
	if client.ValidateWebhook(payload, "deadbeef") {
		t.Error("invalid signature accepted")
	}
	if client.ValidateWebhook([]byte(`{"tampered":true}`), good) {
		t.Error("tampered payload accepted")
	}
}

package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestDebitSplitPriority(t *testing.T) {
	cases := []struct {
		name                   string
		standard, prizes       string
		amount                 string
		wantStandard, wantPrizes string
		wantErr                error
	}{
		{"standard covers all", "20", "5", "12", "12", "0", nil},
		{"split across buckets", "5", "20", "12", "5", "7", nil},
		{"exact standard", "12", "0", "12", "12", "0", nil},
		{"exact split", "5", "7", "12", "5", "7", nil},
		{"insufficient", "0", "5", "12", "0", "0", ErrInsufficientBalance},
		{"zero amount", "10", "10", "0", "0", "0", ErrInvalidAmount},
		{"negative amount", "10", "10", "-1", "0", "0", ErrInvalidAmount},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := &Wallet{
				BalanceStandard: dec(tc.standard),
				BalancePrizes:   dec(tc.prizes),
			}
			w.BalanceTotal = w.BalanceStandard.Add(w.BalancePrizes)

			fromStandard, fromPrizes, err := w.DebitSplit(dec(tc.amount))
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v; want %v", err, tc.wantErr)
			}
			if !fromStandard.Equal(dec(tc.wantStandard)) || !fromPrizes.Equal(dec(tc.wantPrizes)) {
				t.Fatalf("split = (%s, %s); want (%s, %s)",
					fromStandard, fromPrizes, tc.wantStandard, tc.wantPrizes)
			}
		})
	}
}

func TestDebitSplitDoesNotTouchBonus(t *testing.T) {
	w := &Wallet{
		BalanceStandard: dec("1"),
		BalancePrizes:   dec("1"),
		BalanceBonus:    dec("100"),
	}
	w.BalanceTotal = dec("102")

	_, _, err := w.DebitSplit(dec("10"))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance with bonus excluded, got %v", err)
	}
}

func TestCheckInvariant(t *testing.T) {
	w := &Wallet{
		BalanceStandard: dec("5"),
		BalancePrizes:   dec("7"),
		BalanceBonus:    dec("3"),
		BalanceTotal:    dec("15"),
	}
	if err := w.CheckInvariant(); err != nil {
		t.Fatalf("valid wallet flagged: %v", err)
	}

	w.BalanceTotal = dec("14")
	if err := w.CheckInvariant(); !errors.Is(err, ErrWalletInvariant) {
		t.Fatalf("expected ErrWalletInvariant, got %v", err)
	}

	w.BalanceTotal = dec("15")
	w.BalancePrizes = dec("-1")
	if err := w.CheckInvariant(); !errors.Is(err, ErrWalletInvariant) {
		t.Fatalf("expected ErrWalletInvariant for negative bucket, got %v", err)
	}
}

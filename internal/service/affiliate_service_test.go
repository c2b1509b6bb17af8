package service

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCommissionAmount(t *testing.T) {
	cases := []struct {
		deposit string
		want    string
	}{
		{"100", "10"},
		{"50", "5"},
		{"33.33", "3.33"},  // 3.333 rounds down
		{"33.35", "3.34"},  // 3.335 rounds up
		{"0.01", "0"},      // 0.001 rounds to zero, no commission paid
		{"19.99", "2"},     // 1.999 rounds to 2.00
	}

	for _, c := range cases {
		deposit := decimal.RequireFromString(c.deposit)
		want := decimal.RequireFromString(c.want)
		if got := CommissionAmount(deposit); !got.Equal(want) {
			t.Errorf("CommissionAmount(%s) = %s, want %s", c.deposit, got, want)
		}
	}
}

func TestCommissionNeverExceedsDeposit(t *testing.T) {
	for _, raw := range []string{"0.01", "1", "5.55", "100", "9999.99"} {
		deposit := decimal.RequireFromString(raw)
		if CommissionAmount(deposit).GreaterThan(deposit) {
			t.Errorf("commission for %s exceeds the deposit", raw)
		}
	}
}

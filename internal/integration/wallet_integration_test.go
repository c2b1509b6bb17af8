package integration

import (
	"context"
	"errors"
	"testing"

	"raspadinha_backend/internal/domain"
	"raspadinha_backend/internal/service"

	"github.com/shopspring/decimal"
)

func TestDebitDrawsStandardBeforePrizes(t *testing.T) {
	pool := testPool(t)
	ws := service.NewWalletService(pool)
	u := createUser(t, pool)

	fund(t, ws, u.ID, "5.00", domain.BucketStandard)
	fund(t, ws, u.ID, "20.00", domain.BucketPrizes)

	w, err := ws.Debit(context.Background(), u.ID, dec("12.00"), domain.TxPurchase, nil)
	if err != nil {
		t.Fatalf("debit: %v", err)
	}

	requireBalances(t, w, "13.00", "0.00", "13.00", "0.00")
}

func TestDebitInsufficientLeavesWalletUntouched(t *testing.T) {
	pool := testPool(t)
	ws := service.NewWalletService(pool)
	u := createUser(t, pool)

	fund(t, ws, u.ID, "5.00", domain.BucketStandard)
	fund(t, ws, u.ID, "2.00", domain.BucketPrizes)

	before, err := ws.GetTransactionHistory(context.Background(), u.ID, 100)
	if err != nil {
		t.Fatalf("history: %v", err)
	}

	_, err = ws.Debit(context.Background(), u.ID, dec("12.00"), domain.TxPurchase, nil)
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	w, err := ws.GetWallet(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	requireBalances(t, w, "7.00", "5.00", "2.00", "0.00")

	after, err := ws.GetTransactionHistory(context.Background(), u.ID, 100)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(after) != len(before) {
		t.Errorf("failed debit recorded a transaction: %d -> %d", len(before), len(after))
	}
}

func TestBonusFundsAreNotSpendable(t *testing.T) {
	pool := testPool(t)
	ws := service.NewWalletService(pool)
	u := createUser(t, pool)

	fund(t, ws, u.ID, "50.00", domain.BucketBonus)

	_, err := ws.Debit(context.Background(), u.ID, dec("10.00"), domain.TxPurchase, nil)
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestLedgerMatchesWallet(t *testing.T) {
	pool := testPool(t)
	ws := service.NewWalletService(pool)
	u := createUser(t, pool)

	fund(t, ws, u.ID, "30.00", domain.BucketStandard)
	if _, err := ws.Debit(context.Background(), u.ID, dec("12.50"), domain.TxPurchase, nil); err != nil {
		t.Fatalf("debit: %v", err)
	}
	fund(t, ws, u.ID, "4.25", domain.BucketPrizes)

	w, err := ws.GetWallet(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}

	history, err := ws.GetTransactionHistory(context.Background(), u.ID, 100)
	if err != nil {
		t.Fatalf("history: %v", err)
	}

	sum := decimal.Zero
	for _, tx := range history {
		if tx.Status == domain.TxCompleted {
			sum = sum.Add(tx.Amount)
		}
	}
	if !sum.Equal(w.BalanceTotal) {
		t.Errorf("ledger sum %s != wallet total %s", sum, w.BalanceTotal)
	}
}

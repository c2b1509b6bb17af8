package integration

import (
	"context"
	"errors"
	"sync"
	"testing"

	"raspadinha_backend/internal/domain"
	"raspadinha_backend/internal/service"
)

func TestPurchaseRevealPaysPrizesBucket(t *testing.T) {
	pool := testPool(t)
	ws := service.NewWalletService(pool)
	ps := newPurchaseService(pool, ws)
	u := createUser(t, pool)

	// deterministic: the only tier always wins 5.00
	_, slug := createProduct(t, pool, "10.00", nil, tierSpec{"R$ 5", "5.00", 1.0})
	fund(t, ws, u.ID, "10.00", domain.BucketStandard)

	p, wallet, err := ps.Purchase(context.Background(), u.ID, slug)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	requireBalances(t, wallet, "0.00", "0.00", "0.00", "0.00")
	if p.IsRevealed {
		t.Error("purchase must start unrevealed")
	}

	revealed, wallet, err := ps.Reveal(context.Background(), u.ID, p.ID)
	if err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if !revealed.IsRevealed || revealed.RevealedAt == nil {
		t.Error("reveal did not mark the purchase")
	}
	requireBalances(t, wallet, "5.00", "0.00", "5.00", "0.00")
}

func TestRevealIsOneShot(t *testing.T) {
	pool := testPool(t)
	ws := service.NewWalletService(pool)
	ps := newPurchaseService(pool, ws)
	u := createUser(t, pool)

	_, slug := createProduct(t, pool, "10.00", nil, tierSpec{"R$ 5", "5.00", 1.0})
	fund(t, ws, u.ID, "10.00", domain.BucketStandard)

	p, _, err := ps.Purchase(context.Background(), u.ID, slug)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if _, _, err := ps.Reveal(context.Background(), u.ID, p.ID); err != nil {
		t.Fatalf("first reveal: %v", err)
	}

	_, _, err = ps.Reveal(context.Background(), u.ID, p.ID)
	if !errors.Is(err, domain.ErrAlreadyRevealed) {
		t.Fatalf("expected ErrAlreadyRevealed, got %v", err)
	}

	// the prize must have been credited exactly once
	w, err := ws.GetWallet(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	requireBalances(t, w, "5.00", "0.00", "5.00", "0.00")
}

func TestRevealHidesOtherUsersPurchases(t *testing.T) {
	pool := testPool(t)
	ws := service.NewWalletService(pool)
	ps := newPurchaseService(pool, ws)
	owner := createUser(t, pool)
	other := createUser(t, pool)

	_, slug := createProduct(t, pool, "10.00", nil, tierSpec{"Nada", "0", 1.0})
	fund(t, ws, owner.ID, "10.00", domain.BucketStandard)

	p, _, err := ps.Purchase(context.Background(), owner.ID, slug)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}

	_, _, err = ps.Reveal(context.Background(), other.ID, p.ID)
	if !errors.Is(err, domain.ErrPurchaseNotFound) {
		t.Fatalf("expected ErrPurchaseNotFound, got %v", err)
	}
}

func TestConcurrentPurchasesCannotOverspend(t *testing.T) {
	pool := testPool(t)
	ws := service.NewWalletService(pool)
	ps := newPurchaseService(pool, ws)
	u := createUser(t, pool)

	_, slug := createProduct(t, pool, "10.00", nil, tierSpec{"Nada", "0", 1.0})
	fund(t, ws, u.ID, "10.00", domain.BucketStandard)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = ps.Purchase(context.Background(), u.ID, slug)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrInsufficientBalance), errors.Is(err, domain.ErrRateLimited):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded > 1 {
		t.Fatalf("%d purchases succeeded from a single card's worth of funds", succeeded)
	}

	w, err := ws.GetWallet(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	if w.BalanceTotal.IsNegative() {
		t.Errorf("balance went negative: %s", w.BalanceTotal)
	}
}

func TestLimitedStockSellsOut(t *testing.T) {
	pool := testPool(t)
	ws := service.NewWalletService(pool)
	ps := newPurchaseService(pool, ws)
	u := createUser(t, pool)

	one := 1
	_, slug := createProduct(t, pool, "10.00", &one, tierSpec{"Nada", "0", 1.0})
	fund(t, ws, u.ID, "30.00", domain.BucketStandard)

	if _, _, err := ps.Purchase(context.Background(), u.ID, slug); err != nil {
		t.Fatalf("first purchase: %v", err)
	}

	_, _, err := ps.Purchase(context.Background(), u.ID, slug)
	if !errors.Is(err, domain.ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock, got %v", err)
	}

	// the failed purchase must not have charged the user
	w, err := ws.GetWallet(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	requireBalances(t, w, "20.00", "20.00", "0.00", "0.00")
}

package integration

import (
	"context"
	"errors"
	"testing"

	"raspadinha_backend/internal/domain"
	"raspadinha_backend/internal/repository"
	"raspadinha_backend/internal/service"

	"github.com/google/uuid"
)

// payCommission drives ProcessDepositCommission the way deposit settlement
// does, after the deposit credit has committed.
func payCommission(t *testing.T, as *service.AffiliateService, depositorID, amount string) {
	t.Helper()
	if err := as.ProcessDepositCommission(context.Background(), depositorID, uuid.NewString(), dec(amount)); err != nil {
		t.Fatalf("process commission: %v", err)
	}
}

func TestReferralActivatesOnceAndPaysCommission(t *testing.T) {
	pool := testPool(t)
	ws := service.NewWalletService(pool)
	as := service.NewAffiliateService(pool, ws)

	affiliateUser := createUser(t, pool)
	referred := createUser(t, pool)

	affiliate, err := as.GetOrCreate(context.Background(), affiliateUser.ID)
	if err != nil {
		t.Fatalf("get or create affiliate: %v", err)
	}
	if err := as.LinkReferral(context.Background(), referred.ID, affiliate.ReferralCode); err != nil {
		t.Fatalf("link referral: %v", err)
	}

	// first deposit activates the referral and pays 10%
	payCommission(t, as, referred.ID, "100.00")

	refRepo := repository.NewReferralRepository(pool)
	ref, err := refRepo.GetByReferredUser(context.Background(), referred.ID)
	if err != nil || ref == nil {
		t.Fatalf("referral lookup: %v", err)
	}
	if !ref.IsActive || ref.ActivatedAt == nil {
		t.Error("first deposit should activate the referral")
	}

	w, err := ws.GetWallet(context.Background(), affiliateUser.ID)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	requireBalances(t, w, "10.00", "10.00", "0.00", "0.00")

	// second deposit pays again but the active counter stays at 1
	payCommission(t, as, referred.ID, "50.00")

	updated, err := as.GetOrCreate(context.Background(), affiliateUser.ID)
	if err != nil {
		t.Fatalf("affiliate reload: %v", err)
	}
	if updated.ActiveReferrals != 1 {
		t.Errorf("expected 1 active referral, got %d", updated.ActiveReferrals)
	}
	if !updated.CommissionBalance.Equal(dec("15.00")) {
		t.Errorf("expected commission balance 15.00, got %s", updated.CommissionBalance)
	}

	w, err = ws.GetWallet(context.Background(), affiliateUser.ID)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	requireBalances(t, w, "15.00", "15.00", "0.00", "0.00")
}

func TestSelfReferralRejected(t *testing.T) {
	pool := testPool(t)
	ws := service.NewWalletService(pool)
	as := service.NewAffiliateService(pool, ws)

	u := createUser(t, pool)
	affiliate, err := as.GetOrCreate(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("get or create affiliate: %v", err)
	}

	err = as.LinkReferral(context.Background(), u.ID, affiliate.ReferralCode)
	if !errors.Is(err, domain.ErrInvalidReferralCode) {
		t.Fatalf("expected ErrInvalidReferralCode, got %v", err)
	}
}

func TestUnreferredDepositorPaysNoCommission(t *testing.T) {
	pool := testPool(t)
	ws := service.NewWalletService(pool)
	as := service.NewAffiliateService(pool, ws)

	depositor := createUser(t, pool)
	payCommission(t, as, depositor.ID, "100.00")

	history, err := ws.GetTransactionHistory(context.Background(), depositor.ID, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("expected no transactions, got %d", len(history))
	}
}

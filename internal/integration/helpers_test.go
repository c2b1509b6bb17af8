// Package integration holds end-to-end tests that exercise the real
// services against Postgres. They run only when DATABASE_URL is set and
// expect an empty-ish database with migrations applied.
package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"raspadinha_backend/internal/cache"
	"raspadinha_backend/internal/domain"
	"raspadinha_backend/internal/repository"
	"raspadinha_backend/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping integration test")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func createUser(t *testing.T, pool *pgxpool.Pool) *domain.User {
	t.Helper()
	u := &domain.User{
		Email:        uuid.NewString() + "@test.local",
		Name:         "Test User",
		PasswordHash: "x",
	}
	if err := repository.NewUserRepository(pool).Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// fund credits the given bucket through the wallet service so the test
// exercises the same code path production uses.
func fund(t *testing.T, ws *service.WalletService, userID, amount string, bucket domain.Bucket) {
	t.Helper()
	_, err := ws.Credit(context.Background(), userID, dec(amount), bucket, domain.TxBonus, nil)
	if err != nil {
		t.Fatalf("fund %s %s: %v", bucket, amount, err)
	}
}

type tierSpec struct {
	label  string
	amount string
	prob   float64
}

func createProduct(t *testing.T, pool *pgxpool.Pool, price string, stock *int, tiers ...tierSpec) (id, slug string) {
	t.Helper()
	ctx := context.Background()
	id = uuid.NewString()
	slug = "test-" + uuid.NewString()[:8]

	_, err := pool.Exec(ctx, `
		INSERT INTO raspadinhas (id, slug, name, price, max_prize, category, stock, is_active)
		VALUES ($1, $2, $3, $4, $5, 'test', $6, true)
	`, id, slug, "Test "+slug, price, "1000.00", stock)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	for i, tier := range tiers {
		_, err := pool.Exec(ctx, `
			INSERT INTO prizes (id, raspadinha_id, label, amount, probability, sort_order)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.NewString(), id, tier.label, tier.amount, tier.prob, i)
		if err != nil {
			t.Fatalf("create prize tier: %v", err)
		}
	}
	return id, slug
}

func newPurchaseService(pool *pgxpool.Pool, ws *service.WalletService) *service.PurchaseService {
	dedup := cache.NewDedupStore(nil, time.Second)
	return service.NewPurchaseService(pool, ws, dedup, nil, nil)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireBalances(t *testing.T, w *domain.Wallet, total, standard, prizes, bonus string) {
	t.Helper()
	got := fmt.Sprintf("total=%s standard=%s prizes=%s bonus=%s",
		w.BalanceTotal, w.BalanceStandard, w.BalancePrizes, w.BalanceBonus)
	want := fmt.Sprintf("total=%s standard=%s prizes=%s bonus=%s",
		dec(total), dec(standard), dec(prizes), dec(bonus))
	if !w.BalanceTotal.Equal(dec(total)) ||
		!w.BalanceStandard.Equal(dec(standard)) ||
		!w.BalancePrizes.Equal(dec(prizes)) ||
		!w.BalanceBonus.Equal(dec(bonus)) {
		t.Errorf("wallet mismatch:\n got %s\nwant %s", got, want)
	}
}

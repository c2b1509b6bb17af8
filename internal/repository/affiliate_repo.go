package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"raspadinha_backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const affiliateColumns = `id, user_id, referral_code, total_referrals,
	active_referrals, commission_balance, created_at`

type AffiliateRepository struct {
	db *pgxpool.Pool
}

func NewAffiliateRepository(db *pgxpool.Pool) *AffiliateRepository {
	return &AffiliateRepository{db: db}
}

// GenerateReferralCode produces a short unique code for sharing.
func GenerateReferralCode() string {
	bytes := make([]byte, 6)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func (r *AffiliateRepository) GetByUserID(ctx context.Context, userID string) (*domain.Affiliate, error) {
	return scanAffiliate(r.db.QueryRow(ctx,
		`SELECT `+affiliateColumns+` FROM affiliates WHERE user_id = $1`, userID))
}

func (r *AffiliateRepository) GetByCode(ctx context.Context, code string) (*domain.Affiliate, error) {
	return scanAffiliate(r.db.QueryRow(ctx,
		`SELECT `+affiliateColumns+` FROM affiliates WHERE referral_code = $1`, code))
}

func (r *AffiliateRepository) GetByID(ctx context.Context, id string) (*domain.Affiliate, error) {
	return scanAffiliate(r.db.QueryRow(ctx,
		`SELECT `+affiliateColumns+` FROM affiliates WHERE id = $1`, id))
}

// GetOrCreate returns the user's affiliate record, creating one with a fresh
// code on first use. Retries on the rare code collision.
func (r *AffiliateRepository) GetOrCreate(ctx context.Context, userID string) (*domain.Affiliate, error) {
	existing, err := r.GetByUserID(ctx, userID)
	if err != nil || existing != nil {
		return existing, err
	}

	var lastErr error
	for i := 0; i < 5; i++ {
		a := &domain.Affiliate{
			ID:           uuid.NewString(),
			UserID:       userID,
			ReferralCode: GenerateReferralCode(),
		}
		err := r.db.QueryRow(ctx, `
			INSERT INTO affiliates (id, user_id, referral_code)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id) DO NOTHING
			RETURNING created_at
		`, a.ID, a.UserID, a.ReferralCode).Scan(&a.CreatedAt)
		if err == nil {
			a.CommissionBalance = decimal.Zero
			return a, nil
		}
		if err == pgx.ErrNoRows {
			// Lost a race with a concurrent create for the same user.
			return r.GetByUserID(ctx, userID)
		}
		lastErr = err
	}
	return nil, lastErr
}

// IncrementTotalReferrals bumps the lifetime referral counter.
func (r *AffiliateRepository) IncrementTotalReferrals(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE affiliates SET total_referrals = total_referrals + 1 WHERE id = $1`, id)
	return err
}

// IncrementActiveReferrals is called once per referral, at first-deposit
// activation, inside the commission transaction.
func (r *AffiliateRepository) IncrementActiveReferrals(ctx context.Context, tx pgx.Tx, id string) error {
	_, err := tx.Exec(ctx,
		`UPDATE affiliates SET active_referrals = active_referrals + 1 WHERE id = $1`, id)
	return err
}

// AddCommissionBalance bumps the affiliate's running commission total.
func (r *AffiliateRepository) AddCommissionBalance(ctx context.Context, tx pgx.Tx, id string, amount decimal.Decimal) error {
	_, err := tx.Exec(ctx,
		`UPDATE affiliates SET commission_balance = commission_balance + $2 WHERE id = $1`,
		id, amount)
	return err
}

func scanAffiliate(row pgx.Row) (*domain.Affiliate, error) {
	var a domain.Affiliate
	if err := row.Scan(
		&a.ID, &a.UserID, &a.ReferralCode, &a.TotalReferrals,
		&a.ActiveReferrals, &a.CommissionBalance, &a.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

package repository

import (
	"context"

	"raspadinha_backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const referralColumns = `id, affiliate_id, referred_user_id, is_active, activated_at, created_at`

type ReferralRepository struct {
	db *pgxpool.Pool
}

func NewReferralRepository(db *pgxpool.Pool) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// Create links a new user to an affiliate, inactive until first deposit.
// A user can only ever be referred once.
func (r *ReferralRepository) Create(ctx context.Context, ref *domain.Referral) error {
	if ref.ID == "" {
		ref.ID = uuid.NewString()
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO referrals (id, affiliate_id, referred_user_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (referred_user_id) DO NOTHING
		RETURNING created_at
	`, ref.ID, ref.AffiliateID, ref.ReferredUserID).Scan(&ref.CreatedAt)
}

// GetByReferredUser resolves the referral for a depositing user, if any.
func (r *ReferralRepository) GetByReferredUser(ctx context.Context, userID string) (*domain.Referral, error) {
	return scanReferral(r.db.QueryRow(ctx,
		`SELECT `+referralColumns+` FROM referrals WHERE referred_user_id = $1`, userID))
}

// GetForUpdate locks the referral row inside the commission transaction so
// two concurrent deposits cannot both activate it.
func (r *ReferralRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Referral, error) {
	return scanReferral(tx.QueryRow(ctx,
		`SELECT `+referralColumns+` FROM referrals WHERE id = $1 FOR UPDATE`, id))
}

// Activate flips the referral active. The guard keeps activation one-shot.
func (r *ReferralRepository) Activate(ctx context.Context, tx pgx.Tx, id string) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE referrals SET is_active = true, activated_at = now()
		WHERE id = $1 AND NOT is_active
	`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListByAffiliate returns all referrals owned by an affiliate.
func (r *ReferralRepository) ListByAffiliate(ctx context.Context, affiliateID string) ([]domain.Referral, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+referralColumns+`
		FROM referrals
		WHERE affiliate_id = $1
		ORDER BY created_at DESC
	`, affiliateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []domain.Referral
	for rows.Next() {
		var ref domain.Referral
		if err := rows.Scan(&ref.ID, &ref.AffiliateID, &ref.ReferredUserID, &ref.IsActive, &ref.ActivatedAt, &ref.CreatedAt); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func scanReferral(row pgx.Row) (*domain.Referral, error) {
	var ref domain.Referral
	if err := row.Scan(&ref.ID, &ref.AffiliateID, &ref.ReferredUserID, &ref.IsActive, &ref.ActivatedAt, &ref.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &ref, nil
}

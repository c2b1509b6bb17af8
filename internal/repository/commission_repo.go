package repository

import (
	"context"

	"raspadinha_backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CommissionRepository struct {
	db *pgxpool.Pool
}

func NewCommissionRepository(db *pgxpool.Pool) *CommissionRepository {
	return &CommissionRepository{db: db}
}

// CreateWithTx records one deposit-triggered commission inside the pipeline
// transaction. Append-only.
func (r *CommissionRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, c *domain.Commission) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return tx.QueryRow(ctx, `
		INSERT INTO commissions (id, affiliate_id, referral_id, transaction_id, amount, percentage)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, c.ID, c.AffiliateID, c.ReferralID, c.TransactionID, c.Amount, c.Percentage).Scan(&c.CreatedAt)
}

// ListByAffiliate returns an affiliate's commission history.
func (r *CommissionRepository) ListByAffiliate(ctx context.Context, affiliateID string, limit int) ([]domain.Commission, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, affiliate_id, referral_id, transaction_id, amount, percentage, created_at
		FROM commissions
		WHERE affiliate_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, affiliateID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []domain.Commission
	for rows.Next() {
		var c domain.Commission
		if err := rows.Scan(&c.ID, &c.AffiliateID, &c.ReferralID, &c.TransactionID, &c.Amount, &c.Percentage, &c.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

package repository

import (
	"context"

	"raspadinha_backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const chargeColumns = `id, user_id, transaction_id, provider, provider_charge_id,
	amount, status, qr_code, qr_code_base64, expires_at, created_at, settled_at`

type ChargeRepository struct {
	db *pgxpool.Pool
}

func NewChargeRepository(db *pgxpool.Pool) *ChargeRepository {
	return &ChargeRepository{db: db}
}

func (r *ChargeRepository) Create(ctx context.Context, c *domain.PixCharge) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO pix_charges (id, user_id, transaction_id, provider, provider_charge_id,
			amount, status, qr_code, qr_code_base64, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`, c.ID, c.UserID, c.TransactionID, c.Provider, c.ProviderChargeID,
		c.Amount, c.Status, c.QRCode, c.QRCodeBase64, c.ExpiresAt).Scan(&c.CreatedAt)
}

// GetByProviderIDForUpdate locks the charge for settlement. Settlement
// events arrive at-least-once; the lock plus a terminal-status check makes
// applying them idempotent.
func (r *ChargeRepository) GetByProviderIDForUpdate(ctx context.Context, tx pgx.Tx, providerChargeID string) (*domain.PixCharge, error) {
	return scanCharge(tx.QueryRow(ctx,
		`SELECT `+chargeColumns+` FROM pix_charges WHERE provider_charge_id = $1 FOR UPDATE`,
		providerChargeID))
}

func (r *ChargeRepository) GetByID(ctx context.Context, id string) (*domain.PixCharge, error) {
	return scanCharge(r.db.QueryRow(ctx,
		`SELECT `+chargeColumns+` FROM pix_charges WHERE id = $1`, id))
}

// MarkSettled moves a charge to a terminal status.
func (r *ChargeRepository) MarkSettled(ctx context.Context, tx pgx.Tx, id string, status domain.ChargeStatus) error {
	_, err := tx.Exec(ctx, `
		UPDATE pix_charges SET status = $2, settled_at = now()
		WHERE id = $1 AND status = 'PENDING'
	`, id, status)
	return err
}

// ListPending returns charges still awaiting settlement, oldest first, for
// the status poller.
func (r *ChargeRepository) ListPending(ctx context.Context, limit int) ([]domain.PixCharge, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+chargeColumns+`
		FROM pix_charges
		WHERE status = 'PENDING'
		ORDER BY created_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var charges []domain.PixCharge
	for rows.Next() {
		var c domain.PixCharge
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.TransactionID, &c.Provider, &c.ProviderChargeID,
			&c.Amount, &c.Status, &c.QRCode, &c.QRCodeBase64, &c.ExpiresAt, &c.CreatedAt, &c.SettledAt,
		); err != nil {
			return nil, err
		}
		charges = append(charges, c)
	}
	return charges, rows.Err()
}

// ListByUserID returns a user's deposit charges.
func (r *ChargeRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]domain.PixCharge, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+chargeColumns+`
		FROM pix_charges
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var charges []domain.PixCharge
	for rows.Next() {
		var c domain.PixCharge
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.TransactionID, &c.Provider, &c.ProviderChargeID,
			&c.Amount, &c.Status, &c.QRCode, &c.QRCodeBase64, &c.ExpiresAt, &c.CreatedAt, &c.SettledAt,
		); err != nil {
			return nil, err
		}
		charges = append(charges, c)
	}
	return charges, rows.Err()
}

func scanCharge(row pgx.Row) (*domain.PixCharge, error) {
	var c domain.PixCharge
	if err := row.Scan(
		&c.ID, &c.UserID, &c.TransactionID, &c.Provider, &c.ProviderChargeID,
		&c.Amount, &c.Status, &c.QRCode, &c.QRCodeBase64, &c.ExpiresAt, &c.CreatedAt, &c.SettledAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

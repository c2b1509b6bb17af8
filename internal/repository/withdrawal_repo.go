package repository

import (
	"context"
	"time"

	"raspadinha_backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const withdrawalColumns = `id, user_id, transaction_id, amount, pix_key, pix_key_type,
	recipient_name, recipient_document, provider, provider_withdrawal_id, status,
	failure_reason, created_at, processed_at, completed_at`

type WithdrawalRepository struct {
	db *pgxpool.Pool
}

func NewWithdrawalRepository(db *pgxpool.Pool) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

// CreateWithTx inserts the withdrawal row inside the transaction that debits
// the wallet, so request and reservation commit together.
func (r *WithdrawalRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, w *domain.Withdrawal) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return tx.QueryRow(ctx, `
		INSERT INTO withdrawals (id, user_id, transaction_id, amount, pix_key, pix_key_type,
			recipient_name, recipient_document, provider, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`, w.ID, w.UserID, w.TransactionID, w.Amount, w.PixKey, w.PixKeyType,
		w.RecipientName, w.RecipientDocument, w.Provider, w.Status).Scan(&w.CreatedAt)
}

func (r *WithdrawalRepository) GetByID(ctx context.Context, id string) (*domain.Withdrawal, error) {
	return scanWithdrawal(r.db.QueryRow(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1`, id))
}

// GetByProviderID resolves a withdrawal from the provider's payout id, as
// carried by webhook events.
func (r *WithdrawalRepository) GetByProviderID(ctx context.Context, providerWithdrawalID string) (*domain.Withdrawal, error) {
	return scanWithdrawal(r.db.QueryRow(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawals WHERE provider_withdrawal_id = $1`, providerWithdrawalID))
}

// GetForUpdate locks a withdrawal for idempotent settlement.
func (r *WithdrawalRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Withdrawal, error) {
	return scanWithdrawal(tx.QueryRow(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1 FOR UPDATE`, id))
}

// SetProviderID stores the provider's id once the payout is accepted.
func (r *WithdrawalRepository) SetProviderID(ctx context.Context, id, providerWithdrawalID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE withdrawals SET provider_withdrawal_id = $2, processed_at = now()
		WHERE id = $1
	`, id, providerWithdrawalID)
	return err
}

// MarkCompleted finishes a withdrawal.
func (r *WithdrawalRepository) MarkCompleted(ctx context.Context, tx pgx.Tx, id string) error {
	_, err := tx.Exec(ctx, `
		UPDATE withdrawals SET status = 'COMPLETED', completed_at = now()
		WHERE id = $1 AND status = 'PENDING'
	`, id)
	return err
}

// MarkFailed records a provider failure; the caller refunds the wallet in
// the same transaction.
func (r *WithdrawalRepository) MarkFailed(ctx context.Context, tx pgx.Tx, id, reason string) error {
	_, err := tx.Exec(ctx, `
		UPDATE withdrawals SET status = 'FAILED', failure_reason = $2
		WHERE id = $1 AND status = 'PENDING'
	`, id, reason)
	return err
}

// HasPending reports whether the user already has an in-flight withdrawal.
func (r *WithdrawalRepository) HasPending(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM withdrawals WHERE user_id = $1 AND status = 'PENDING')
	`, userID).Scan(&exists)
	return exists, err
}

// CountSince counts withdrawals requested after t, for the daily cap.
func (r *WithdrawalRepository) CountSince(ctx context.Context, userID string, t time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM withdrawals
		WHERE user_id = $1 AND created_at >= $2 AND status <> 'FAILED'
	`, userID, t).Scan(&n)
	return n, err
}

// ListPending returns in-flight withdrawals with a provider id for the
// status poller.
func (r *WithdrawalRepository) ListPending(ctx context.Context, limit int) ([]domain.Withdrawal, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+withdrawalColumns+`
		FROM withdrawals
		WHERE status = 'PENDING' AND provider_withdrawal_id IS NOT NULL
		ORDER BY created_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectWithdrawals(rows)
}

// ListByUserID returns a user's withdrawal history.
func (r *WithdrawalRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]domain.Withdrawal, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+withdrawalColumns+`
		FROM withdrawals
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectWithdrawals(rows)
}

func collectWithdrawals(rows pgx.Rows) ([]domain.Withdrawal, error) {
	var list []domain.Withdrawal
	for rows.Next() {
		var w domain.Withdrawal
		var providerID *string
		if err := rows.Scan(
			&w.ID, &w.UserID, &w.TransactionID, &w.Amount, &w.PixKey, &w.PixKeyType,
			&w.RecipientName, &w.RecipientDocument, &w.Provider, &providerID, &w.Status,
			&w.FailureReason, &w.CreatedAt, &w.ProcessedAt, &w.CompletedAt,
		); err != nil {
			return nil, err
		}
		if providerID != nil {
			w.ProviderWithdrawalID = *providerID
		}
		list = append(list, w)
	}
	return list, rows.Err()
}

func scanWithdrawal(row pgx.Row) (*domain.Withdrawal, error) {
	var w domain.Withdrawal
	var providerID *string
	if err := row.Scan(
		&w.ID, &w.UserID, &w.TransactionID, &w.Amount, &w.PixKey, &w.PixKeyType,
		&w.RecipientName, &w.RecipientDocument, &w.Provider, &providerID, &w.Status,
		&w.FailureReason, &w.CreatedAt, &w.ProcessedAt, &w.CompletedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if providerID != nil {
		w.ProviderWithdrawalID = *providerID
	}
	return &w, nil
}

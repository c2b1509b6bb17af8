package repository

import (
	"context"

	"raspadinha_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const walletColumns = `user_id, balance_total, balance_standard, balance_prizes,
	balance_bonus, pending_withdrawal, created_at, updated_at`

// WalletRepository reads and writes wallet rows. Balance mutations are only
// issued by the wallet service, always inside a pgx transaction holding the
// row lock acquired by GetForUpdate.
type WalletRepository struct {
	db *pgxpool.Pool
}

func NewWalletRepository(db *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{db: db}
}

// GetByUserID returns a wallet snapshot without locking.
func (r *WalletRepository) GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	return scanWallet(r.db.QueryRow(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE user_id = $1`, userID))
}

// GetForUpdate locks the wallet row for the duration of tx. Every
// check-then-mutate sequence must go through this.
func (r *WalletRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*domain.Wallet, error) {
	return scanWallet(tx.QueryRow(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE user_id = $1 FOR UPDATE`, userID))
}

// ApplyDebit writes a debit split computed by Wallet.DebitSplit. All three
// balance fields move together.
func (r *WalletRepository) ApplyDebit(ctx context.Context, tx pgx.Tx, userID string, fromStandard, fromPrizes decimal.Decimal) (*domain.Wallet, error) {
	total := fromStandard.Add(fromPrizes)
	return scanWallet(tx.QueryRow(ctx, `
		UPDATE wallets
		SET balance_standard = balance_standard - $2,
		    balance_prizes = balance_prizes - $3,
		    balance_total = balance_total - $4,
		    updated_at = now()
		WHERE user_id = $1
		RETURNING `+walletColumns,
		userID, fromStandard, fromPrizes, total))
}

// ApplyCredit adds amount to a single bucket and the total.
func (r *WalletRepository) ApplyCredit(ctx context.Context, tx pgx.Tx, userID string, amount decimal.Decimal, bucket domain.Bucket) (*domain.Wallet, error) {
	column, ok := bucketColumn(bucket)
	if !ok {
		return nil, domain.ErrWalletInvariant
	}
	return scanWallet(tx.QueryRow(ctx, `
		UPDATE wallets
		SET `+column+` = `+column+` + $2,
		    balance_total = balance_total + $2,
		    updated_at = now()
		WHERE user_id = $1
		RETURNING `+walletColumns,
		userID, amount))
}

// AdjustPendingWithdrawal moves the withdrawal reservation up or down.
func (r *WalletRepository) AdjustPendingWithdrawal(ctx context.Context, tx pgx.Tx, userID string, delta decimal.Decimal) error {
	_, err := tx.Exec(ctx, `
		UPDATE wallets
		SET pending_withdrawal = pending_withdrawal + $2, updated_at = now()
		WHERE user_id = $1
	`, userID, delta)
	return err
}

func bucketColumn(bucket domain.Bucket) (string, bool) {
	switch bucket {
	case domain.BucketStandard:
		return "balance_standard", true
	case domain.BucketPrizes:
		return "balance_prizes", true
	case domain.BucketBonus:
		return "balance_bonus", true
	default:
		return "", false
	}
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var w domain.Wallet
	if err := row.Scan(
		&w.UserID, &w.BalanceTotal, &w.BalanceStandard, &w.BalancePrizes,
		&w.BalanceBonus, &w.PendingWithdrawal, &w.CreatedAt, &w.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

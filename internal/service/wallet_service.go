package service

import (
	"context"

	"raspadinha_backend/internal/domain"
	"raspadinha_backend/internal/logger"
	"raspadinha_backend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// WalletService handles all wallet balance operations
type WalletService struct {
	db              *pgxpool.Pool
	walletRepo      *repository.WalletRepository
	transactionRepo *repository.TransactionRepository
}

// NewWalletService creates a new wallet service
func NewWalletService(db *pgxpool.Pool) *WalletService {
	return &WalletService{
		db:              db,
		walletRepo:      repository.NewWalletRepository(db),
		transactionRepo: repository.NewTransactionRepository(db),
	}
}

// GetWallet returns the user's wallet snapshot
func (s *WalletService) GetWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	w, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, domain.ErrWalletNotFound
	}
	return w, nil
}

// Credit adds amount to one bucket and records the transaction, all in one
// database transaction.
func (s *WalletService) Credit(ctx context.Context, userID string, amount decimal.Decimal, bucket domain.Bucket, txType domain.TransactionType, meta map[string]interface{}) (*domain.Wallet, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	wallet, err := s.CreditWithTx(ctx, tx, userID, amount, bucket)
	if err != nil {
		return nil, err
	}

	record := &domain.Transaction{
		UserID: userID,
		Type:   txType,
		Status: domain.TxCompleted,
		Amount: amount,
		Meta:   meta,
	}
	if err = s.transactionRepo.CreateWithTx(ctx, tx, record); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return wallet, nil
}

// Debit deducts amount with bucket priority (standard first, then prizes)
// and records the transaction, all in one database transaction. Bonus funds
// are never debitable.
func (s *WalletService) Debit(ctx context.Context, userID string, amount decimal.Decimal, txType domain.TransactionType, meta map[string]interface{}) (*domain.Wallet, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	wallet, _, err := s.DebitWithTx(ctx, tx, userID, amount)
	if err != nil {
		return nil, err
	}

	record := &domain.Transaction{
		UserID: userID,
		Type:   txType,
		Status: domain.TxCompleted,
		Amount: amount.Neg(),
		Meta:   meta,
	}
	if err = s.transactionRepo.CreateWithTx(ctx, tx, record); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return wallet, nil
}

// DebitWithTx locks the wallet, computes the bucket split and applies the
// deduction within an existing transaction. Returns the updated wallet and
// the transaction record the caller should persist.
func (s *WalletService) DebitWithTx(ctx context.Context, tx pgx.Tx, userID string, amount decimal.Decimal) (*domain.Wallet, *DebitBreakdown, error) {
	wallet, err := s.walletRepo.GetForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, nil, err
	}
	if wallet == nil {
		return nil, nil, domain.ErrWalletNotFound
	}

	fromStandard, fromPrizes, err := wallet.DebitSplit(amount)
	if err != nil {
		return nil, nil, err
	}

	updated, err := s.walletRepo.ApplyDebit(ctx, tx, userID, fromStandard, fromPrizes)
	if err != nil {
		return nil, nil, err
	}

	if err := updated.CheckInvariant(); err != nil {
		logger.Error("wallet invariant broken after debit", "user_id", userID, "amount", amount)
		return nil, nil, err
	}

	return updated, &DebitBreakdown{FromStandard: fromStandard, FromPrizes: fromPrizes}, nil
}

// CreditWithTx adds amount to one bucket within an existing transaction.
func (s *WalletService) CreditWithTx(ctx context.Context, tx pgx.Tx, userID string, amount decimal.Decimal, bucket domain.Bucket) (*domain.Wallet, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	updated, err := s.walletRepo.ApplyCredit(ctx, tx, userID, amount, bucket)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, domain.ErrWalletNotFound
	}

	if err := updated.CheckInvariant(); err != nil {
		logger.Error("wallet invariant broken after credit", "user_id", userID, "amount", amount, "bucket", bucket)
		return nil, err
	}

	return updated, nil
}

// GetTransactionHistory returns the user's transaction history
func (s *WalletService) GetTransactionHistory(ctx context.Context, userID string, limit int) ([]*domain.Transaction, error) {
	return s.transactionRepo.GetByUserID(ctx, userID, limit)
}

// DebitBreakdown reports how a debit was drawn from the buckets.
type DebitBreakdown struct {
	FromStandard decimal.Decimal
	FromPrizes   decimal.Decimal
}

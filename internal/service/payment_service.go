package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"raspadinha_backend/internal/config"
	"raspadinha_backend/internal/domain"
	"raspadinha_backend/internal/logger"
	"raspadinha_backend/internal/metrics"
	"raspadinha_backend/internal/pix"
	"raspadinha_backend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

// PaymentService owns the PIX deposit and withdrawal lifecycle. Deposits
// credit the wallet only when the provider confirms payment; withdrawals
// debit up front and refund on provider failure. Settlement is driven by
// webhooks with a polling fallback, and applying the same terminal event
// twice is a no-op.
type PaymentService struct {
	db             *pgxpool.Pool
	cfg            *config.Config
	provider       pix.Provider
	walletService  *WalletService
	affiliates     *AffiliateService
	audit          *AuditService
	chargeRepo     *repository.ChargeRepository
	withdrawalRepo *repository.WithdrawalRepository
	txRepo         *repository.TransactionRepository
}

func NewPaymentService(db *pgxpool.Pool, cfg *config.Config, provider pix.Provider, walletService *WalletService, affiliates *AffiliateService, audit *AuditService) *PaymentService {
	return &PaymentService{
		db:             db,
		cfg:            cfg,
		provider:       provider,
		walletService:  walletService,
		affiliates:     affiliates,
		audit:          audit,
		chargeRepo:     repository.NewChargeRepository(db),
		withdrawalRepo: repository.NewWithdrawalRepository(db),
		txRepo:         repository.NewTransactionRepository(db),
	}
}

// CreateDeposit creates a PIX charge with the provider and records it as
// pending. The wallet is untouched until settlement.
func (s *PaymentService) CreateDeposit(ctx context.Context, userID string, amount decimal.Decimal) (*domain.PixCharge, error) {
	if amount.LessThan(decimal.NewFromInt(s.cfg.MinDeposit)) {
		return nil, domain.ErrInvalidAmount
	}

	charge, err := s.provider.CreateCharge(ctx, pix.CreateChargeRequest{
		Amount:      amount,
		CallbackURL: s.cfg.PixCallbackURL,
		ExpiresIn:   s.cfg.ChargeExpiresIn,
	})
	if err != nil {
		return nil, fmt.Errorf("create charge: %w", err)
	}

	record := &domain.Transaction{
		UserID: userID,
		Type:   domain.TxDeposit,
		Status: domain.TxPending,
		Amount: amount,
		Meta:   map[string]interface{}{"provider_charge_id": charge.ID},
	}
	if err := s.txRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	c := &domain.PixCharge{
		UserID:           userID,
		TransactionID:    record.ID,
		Provider:         s.provider.Name(),
		ProviderChargeID: charge.ID,
		Amount:           amount,
		Status:           domain.ChargePending,
		QRCode:           charge.QRCode,
		QRCodeBase64:     charge.QRCodeBase64,
		ExpiresAt:        charge.ExpiresAt,
	}
	if err := s.chargeRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// HandleWebhook authenticates and applies a provider settlement event. The
// payload carries the provider's charge or payout id plus its new status.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if !s.provider.ValidateWebhook(payload, signature) {
		return domain.ErrUnauthorized
	}

	var event struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return err
	}
	if event.ID == "" {
		return fmt.Errorf("webhook event missing id")
	}

	if err := s.SettleDeposit(ctx, event.ID, event.Status); err != nil {
		return err
	}
	return s.settleWithdrawalByProviderID(ctx, event.ID, event.Status)
}

// SettleDeposit applies a terminal provider status to a charge. Unknown
// charges and repeated events are no-ops.
func (s *PaymentService) SettleDeposit(ctx context.Context, providerChargeID, providerStatus string) error {
	status := chargeStatusFrom(providerStatus)
	if status == domain.ChargePending {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	charge, err := s.chargeRepo.GetByProviderIDForUpdate(ctx, tx, providerChargeID)
	if err != nil {
		return err
	}
	if charge == nil || charge.Status != domain.ChargePending {
		return nil
	}

	if err := s.chargeRepo.MarkSettled(ctx, tx, charge.ID, status); err != nil {
		return err
	}

	switch status {
	case domain.ChargeCompleted:
		if _, err := s.walletService.CreditWithTx(ctx, tx, charge.UserID, charge.Amount, domain.BucketStandard); err != nil {
			return err
		}
		if err := s.txRepo.UpdateStatusWithTx(ctx, tx, charge.TransactionID, domain.TxCompleted); err != nil {
			return err
		}
	default:
		if err := s.txRepo.UpdateStatusWithTx(ctx, tx, charge.TransactionID, domain.TxCancelled); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	metrics.DepositsSettled.WithLabelValues(string(status)).Inc()
	if status == domain.ChargeCompleted {
		if err := s.affiliates.ProcessDepositCommission(ctx, charge.UserID, charge.TransactionID, charge.Amount); err != nil {
			logger.Error("commission posting failed", "charge_id", charge.ID, "user_id", charge.UserID, "error", err)
		}
	}
	if status == domain.ChargeCompleted && s.audit != nil {
		s.audit.Log(ctx, charge.UserID, domain.AuditActionDeposit, domain.AuditCategoryPayment, map[string]interface{}{
			"charge_id": charge.ID,
			"amount":    charge.Amount.String(),
		})
	}
	logger.Info("deposit settled", "charge_id", charge.ID, "status", status, "amount", charge.Amount)
	return nil
}

// RequestWithdrawal debits the wallet immediately, reserves the amount and
// submits the payout. The debit follows the usual bucket priority; a
// provider rejection refunds in full.
func (s *PaymentService) RequestWithdrawal(ctx context.Context, userID string, amount decimal.Decimal, pixKey, pixKeyType, recipientName, recipientDocument string) (*domain.Withdrawal, error) {
	if amount.LessThan(decimal.NewFromInt(s.cfg.MinWithdrawal)) {
		return nil, domain.ErrInvalidAmount
	}

	pending, err := s.withdrawalRepo.HasPending(ctx, userID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, domain.ErrPendingWithdrawal
	}

	since := time.Now().Add(-24 * time.Hour)
	count, err := s.withdrawalRepo.CountSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	if count >= s.cfg.WithdrawalsPerDay {
		return nil, domain.ErrRateLimited
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, split, err := s.walletService.DebitWithTx(ctx, tx, userID, amount)
	if err != nil {
		return nil, err
	}

	record := &domain.Transaction{
		UserID: userID,
		Type:   domain.TxWithdrawal,
		Status: domain.TxPending,
		Amount: amount.Neg(),
		Meta: map[string]interface{}{
			"pix_key_type":  pixKeyType,
			"from_standard": split.FromStandard.String(),
			"from_prizes":   split.FromPrizes.String(),
		},
	}
	if err := s.txRepo.CreateWithTx(ctx, tx, record); err != nil {
		return nil, err
	}

	w := &domain.Withdrawal{
		UserID:            userID,
		TransactionID:     record.ID,
		Amount:            amount,
		PixKey:            pixKey,
		PixKeyType:        pixKeyType,
		RecipientName:     recipientName,
		RecipientDocument: recipientDocument,
		Provider:          s.provider.Name(),
		Status:            domain.WithdrawalPending,
	}
	if err := s.withdrawalRepo.CreateWithTx(ctx, tx, w); err != nil {
		return nil, err
	}

	if err := s.walletService.walletRepo.AdjustPendingWithdrawal(ctx, tx, userID, amount); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if s.audit != nil {
		s.audit.Log(ctx, userID, domain.AuditActionWithdrawal, domain.AuditCategoryPayment, map[string]interface{}{
			"withdrawal_id": w.ID,
			"amount":        amount.String(),
		})
	}

	result, err := s.provider.CreateWithdrawal(ctx, pix.CreateWithdrawalRequest{
		Amount:            amount,
		PixKey:            pixKey,
		PixKeyType:        pixKeyType,
		RecipientName:     recipientName,
		RecipientDocument: recipientDocument,
	})
	if err != nil {
		logger.Error("provider rejected withdrawal, refunding", "withdrawal_id", w.ID, "error", err)
		if ferr := s.settleWithdrawal(ctx, w.ID, domain.WithdrawalFailed, err.Error()); ferr != nil {
			logger.Error("withdrawal refund failed", "withdrawal_id", w.ID, "error", ferr)
		}
		return nil, fmt.Errorf("create withdrawal: %w", err)
	}

	if err := s.withdrawalRepo.SetProviderID(ctx, w.ID, result.ID); err != nil {
		return nil, err
	}
	w.ProviderWithdrawalID = result.ID

	if result.Status == pix.StatusCompleted {
		if err := s.settleWithdrawal(ctx, w.ID, domain.WithdrawalCompleted, ""); err != nil {
			return nil, err
		}
		w.Status = domain.WithdrawalCompleted
	}

	return w, nil
}

// settleWithdrawal applies a terminal status to a pending withdrawal.
// Completion releases the reservation; failure refunds the full amount to
// the standard bucket.
func (s *PaymentService) settleWithdrawal(ctx context.Context, withdrawalID string, status domain.WithdrawalStatus, reason string) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	w, err := s.withdrawalRepo.GetForUpdate(ctx, tx, withdrawalID)
	if err != nil {
		return err
	}
	if w == nil || w.Status != domain.WithdrawalPending {
		return nil
	}

	if err := s.walletService.walletRepo.AdjustPendingWithdrawal(ctx, tx, w.UserID, w.Amount.Neg()); err != nil {
		return err
	}

	switch status {
	case domain.WithdrawalCompleted:
		if err := s.withdrawalRepo.MarkCompleted(ctx, tx, w.ID); err != nil {
			return err
		}
		if err := s.txRepo.UpdateStatusWithTx(ctx, tx, w.TransactionID, domain.TxCompleted); err != nil {
			return err
		}
	case domain.WithdrawalFailed:
		if err := s.withdrawalRepo.MarkFailed(ctx, tx, w.ID, reason); err != nil {
			return err
		}
		if _, err := s.walletService.CreditWithTx(ctx, tx, w.UserID, w.Amount, domain.BucketStandard); err != nil {
			return err
		}
		if err := s.txRepo.UpdateStatusWithTx(ctx, tx, w.TransactionID, domain.TxFailed); err != nil {
			return err
		}
	default:
		return fmt.Errorf("not a terminal withdrawal status: %s", status)
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	metrics.WithdrawalsSettled.WithLabelValues(string(status)).Inc()
	if s.audit != nil {
		s.audit.Log(ctx, w.UserID, domain.AuditActionWithdrawalDone, domain.AuditCategoryPayment, map[string]interface{}{
			"withdrawal_id": w.ID,
			"status":        string(status),
		})
	}
	logger.Info("withdrawal settled", "withdrawal_id", w.ID, "status", status, "amount", w.Amount)
	return nil
}

func (s *PaymentService) settleWithdrawalByProviderID(ctx context.Context, providerID, providerStatus string) error {
	status := withdrawalStatusFrom(providerStatus)
	if status == domain.WithdrawalPending {
		return nil
	}

	w, err := s.withdrawalRepo.GetByProviderID(ctx, providerID)
	if err != nil {
		return err
	}
	if w == nil {
		return nil
	}
	return s.settleWithdrawal(ctx, w.ID, status, "provider reported "+providerStatus)
}

// StartSettlementPoller runs the polling fallback for settlements the
// webhook never delivered. Returns the scheduler so main can stop it on
// shutdown.
func (s *PaymentService) StartSettlementPoller() *cron.Cron {
	c := cron.New()
	spec := fmt.Sprintf("@every %s", s.cfg.SettlePollEvery)
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.SettlePollEvery)
		defer cancel()
		s.pollPendingCharges(ctx)
		s.pollPendingWithdrawals(ctx)
	})
	if err != nil {
		logger.Fatal("failed to schedule settlement poller", "error", err)
	}
	c.Start()
	logger.Info("settlement poller started", "every", s.cfg.SettlePollEvery)
	return c
}

func (s *PaymentService) pollPendingCharges(ctx context.Context) {
	charges, err := s.chargeRepo.ListPending(ctx, 100)
	if err != nil {
		logger.Error("poll charges failed", "error", err)
		return
	}

	for _, charge := range charges {
		remote, err := s.provider.GetChargeStatus(ctx, charge.ProviderChargeID)
		if err != nil {
			logger.Warn("charge status check failed", "charge_id", charge.ID, "error", err)
			continue
		}

		status := remote.Status
		if status == pix.StatusPending && time.Now().After(charge.ExpiresAt) {
			status = pix.StatusExpired
		}

		if err := s.SettleDeposit(ctx, charge.ProviderChargeID, status); err != nil {
			logger.Error("deposit settlement failed", "charge_id", charge.ID, "error", err)
		}
	}
}

func (s *PaymentService) pollPendingWithdrawals(ctx context.Context) {
	withdrawals, err := s.withdrawalRepo.ListPending(ctx, 100)
	if err != nil {
		logger.Error("poll withdrawals failed", "error", err)
		return
	}

	for _, w := range withdrawals {
		remote, err := s.provider.GetWithdrawalStatus(ctx, w.ProviderWithdrawalID)
		if err != nil {
			logger.Warn("withdrawal status check failed", "withdrawal_id", w.ID, "error", err)
			continue
		}

		status := withdrawalStatusFrom(remote.Status)
		if status == domain.WithdrawalPending {
			continue
		}
		if err := s.settleWithdrawal(ctx, w.ID, status, "provider reported "+remote.Status); err != nil {
			logger.Error("withdrawal settlement failed", "withdrawal_id", w.ID, "error", err)
		}
	}
}

// ListDeposits returns the user's deposit charges, newest first.
func (s *PaymentService) ListDeposits(ctx context.Context, userID string, limit int) ([]domain.PixCharge, error) {
	return s.chargeRepo.ListByUserID(ctx, userID, limit)
}

// ListWithdrawals returns the user's withdrawals, newest first.
func (s *PaymentService) ListWithdrawals(ctx context.Context, userID string, limit int) ([]domain.Withdrawal, error) {
	return s.withdrawalRepo.ListByUserID(ctx, userID, limit)
}

func chargeStatusFrom(providerStatus string) domain.ChargeStatus {
	switch providerStatus {
	case pix.StatusCompleted:
		return domain.ChargeCompleted
	case pix.StatusExpired:
		return domain.ChargeExpired
	case pix.StatusCancelled, pix.StatusFailed:
		return domain.ChargeCancelled
	default:
		return domain.ChargePending
	}
}

func withdrawalStatusFrom(providerStatus string) domain.WithdrawalStatus {
	switch providerStatus {
	case pix.StatusCompleted:
		return domain.WithdrawalCompleted
	case pix.StatusFailed, pix.StatusCancelled, pix.StatusExpired:
		return domain.WithdrawalFailed
	default:
		return domain.WithdrawalPending
	}
}

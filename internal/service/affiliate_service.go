package service

import (
	"context"

	"raspadinha_backend/internal/domain"
	"raspadinha_backend/internal/logger"
	"raspadinha_backend/internal/metrics"
	"raspadinha_backend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// CommissionPercent is the affiliate's cut of every completed deposit made
// by a referred user.
var CommissionPercent = decimal.NewFromInt(10)

// AffiliateService manages referral links and the deposit commission
// pipeline.
type AffiliateService struct {
	db             *pgxpool.Pool
	walletService  *WalletService
	affiliateRepo  *repository.AffiliateRepository
	referralRepo   *repository.ReferralRepository
	commissionRepo *repository.CommissionRepository
	txRepo         *repository.TransactionRepository
}

func NewAffiliateService(db *pgxpool.Pool, walletService *WalletService) *AffiliateService {
	return &AffiliateService{
		db:             db,
		walletService:  walletService,
		affiliateRepo:  repository.NewAffiliateRepository(db),
		referralRepo:   repository.NewReferralRepository(db),
		commissionRepo: repository.NewCommissionRepository(db),
		txRepo:         repository.NewTransactionRepository(db),
	}
}

// GetOrCreate returns the user's affiliate record, creating one with a
// fresh referral code on first use.
func (s *AffiliateService) GetOrCreate(ctx context.Context, userID string) (*domain.Affiliate, error) {
	return s.affiliateRepo.GetOrCreate(ctx, userID)
}

// LinkReferral attaches a newly registered user to the affiliate owning
// code. Self-referrals and unknown codes return ErrInvalidReferralCode;
// registration itself must not fail on either, so callers treat this as
// best-effort.
func (s *AffiliateService) LinkReferral(ctx context.Context, referredUserID, code string) error {
	affiliate, err := s.affiliateRepo.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if affiliate == nil || affiliate.UserID == referredUserID {
		return domain.ErrInvalidReferralCode
	}

	ref := &domain.Referral{
		AffiliateID:    affiliate.ID,
		ReferredUserID: referredUserID,
	}
	if err := s.referralRepo.Create(ctx, ref); err != nil {
		return err
	}

	return s.affiliateRepo.IncrementTotalReferrals(ctx, affiliate.ID)
}

// ProcessDepositCommission pays the affiliate their cut of a completed
// deposit. It runs in its own transaction, after the deposit has settled: a
// failure here never unwinds the depositor's credit. The referral flips
// active on the referred user's first deposit; later deposits keep paying
// commission without touching the flag. No-op when the depositor was not
// referred.
func (s *AffiliateService) ProcessDepositCommission(ctx context.Context, depositorID, depositTxID string, amount decimal.Decimal) error {
	ref, err := s.referralRepo.GetByReferredUser(ctx, depositorID)
	if err != nil {
		return err
	}
	if ref == nil {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	locked, err := s.referralRepo.GetForUpdate(ctx, tx, ref.ID)
	if err != nil {
		return err
	}
	if locked == nil {
		return nil
	}

	if !locked.IsActive {
		activated, err := s.referralRepo.Activate(ctx, tx, locked.ID)
		if err != nil {
			return err
		}
		if activated {
			if err := s.affiliateRepo.IncrementActiveReferrals(ctx, tx, locked.AffiliateID); err != nil {
				return err
			}
		}
	}

	affiliate, err := s.affiliateRepo.GetByID(ctx, locked.AffiliateID)
	if err != nil {
		return err
	}
	if affiliate == nil {
		logger.Error("referral points at missing affiliate", "referral_id", locked.ID)
		return nil
	}

	commission := CommissionAmount(amount)
	if commission.LessThanOrEqual(decimal.Zero) {
		return tx.Commit(ctx)
	}

	if _, err := s.walletService.CreditWithTx(ctx, tx, affiliate.UserID, commission, domain.BucketStandard); err != nil {
		return err
	}

	record := &domain.Transaction{
		UserID:      affiliate.UserID,
		Type:        domain.TxCommission,
		Status:      domain.TxCompleted,
		Amount:      commission,
		AffiliateID: &affiliate.ID,
		Meta: map[string]interface{}{
			"deposit_transaction_id": depositTxID,
			"referred_user_id":       depositorID,
		},
	}
	if err := s.txRepo.CreateWithTx(ctx, tx, record); err != nil {
		return err
	}

	c := &domain.Commission{
		AffiliateID:   affiliate.ID,
		ReferralID:    locked.ID,
		TransactionID: record.ID,
		Amount:        commission,
		Percentage:    CommissionPercent,
	}
	if err := s.commissionRepo.CreateWithTx(ctx, tx, c); err != nil {
		return err
	}

	if err := s.affiliateRepo.AddCommissionBalance(ctx, tx, affiliate.ID, commission); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	paid, _ := commission.Float64()
	metrics.CommissionsPaid.Add(paid)
	return nil
}

// CommissionAmount computes the affiliate's cut of a deposit, rounded to
// cents.
func CommissionAmount(deposit decimal.Decimal) decimal.Decimal {
	return deposit.Mul(CommissionPercent).Div(decimal.NewFromInt(100)).Round(2)
}

// GetStats returns the affiliate dashboard numbers for a user.
func (s *AffiliateService) GetStats(ctx context.Context, userID string) (*domain.Affiliate, []domain.Commission, error) {
	affiliate, err := s.affiliateRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if affiliate == nil {
		return nil, nil, nil
	}

	commissions, err := s.commissionRepo.ListByAffiliate(ctx, affiliate.ID, 50)
	if err != nil {
		return nil, nil, err
	}
	return affiliate, commissions, nil
}

// ListReferrals returns the affiliate's referred users.
func (s *AffiliateService) ListReferrals(ctx context.Context, affiliateID string) ([]domain.Referral, error) {
	return s.referralRepo.ListByAffiliate(ctx, affiliateID)
}

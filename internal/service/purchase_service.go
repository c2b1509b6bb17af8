package service

import (
	"context"
	"time"

	"raspadinha_backend/internal/cache"
	"raspadinha_backend/internal/domain"
	"raspadinha_backend/internal/logger"
	"raspadinha_backend/internal/metrics"
	"raspadinha_backend/internal/prize"
	"raspadinha_backend/internal/repository"
	"raspadinha_backend/internal/ws"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PurchaseService implements the two-phase scratch card flow: the prize is
// drawn and persisted at purchase time, disclosed and paid at reveal time.
type PurchaseService struct {
	db             *pgxpool.Pool
	walletService  *WalletService
	raspadinhaRepo *repository.RaspadinhaRepository
	purchaseRepo   *repository.PurchaseRepository
	userRepo       *repository.UserRepository
	txRepo         *repository.TransactionRepository
	dedup          *cache.DedupStore
	hub            *ws.Hub
	audit          *AuditService
}

func NewPurchaseService(db *pgxpool.Pool, walletService *WalletService, dedup *cache.DedupStore, hub *ws.Hub, audit *AuditService) *PurchaseService {
	return &PurchaseService{
		db:             db,
		walletService:  walletService,
		raspadinhaRepo: repository.NewRaspadinhaRepository(db),
		purchaseRepo:   repository.NewPurchaseRepository(db),
		userRepo:       repository.NewUserRepository(db),
		txRepo:         repository.NewTransactionRepository(db),
		dedup:          dedup,
		hub:            hub,
		audit:          audit,
	}
}

// Purchase buys one card: debits the wallet with bucket priority, draws the
// prize and persists the unrevealed purchase, all atomically. The drawn
// prize is NOT part of the returned purchase view; it stays hidden until
// Reveal.
func (s *PurchaseService) Purchase(ctx context.Context, userID, slug string) (*domain.Purchase, *domain.Wallet, error) {
	dedupKey := "purchase:" + userID + ":" + slug
	if !s.dedup.Acquire(ctx, dedupKey) {
		return nil, nil, domain.ErrRateLimited
	}
	committed := false
	defer func() {
		// A failed attempt should not lock the user out for the full TTL.
		if !committed {
			s.dedup.Release(ctx, dedupKey)
		}
	}()

	r, err := s.raspadinhaRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	if r == nil {
		return nil, nil, domain.ErrRaspadinhaNotFound
	}

	prizes, err := s.raspadinhaRepo.GetPrizes(ctx, r.ID)
	if err != nil {
		return nil, nil, err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.raspadinhaRepo.DecrementStock(ctx, tx, r.ID); err != nil {
		return nil, nil, err
	}

	wallet, split, err := s.walletService.DebitWithTx(ctx, tx, userID, r.Price)
	if err != nil {
		return nil, nil, err
	}

	record := &domain.Transaction{
		UserID: userID,
		Type:   domain.TxPurchase,
		Status: domain.TxCompleted,
		Amount: r.Price.Neg(),
		Meta: map[string]interface{}{
			"raspadinha":    slug,
			"from_standard": split.FromStandard.String(),
			"from_prizes":   split.FromPrizes.String(),
		},
	}
	if err := s.txRepo.CreateWithTx(ctx, tx, record); err != nil {
		return nil, nil, err
	}

	won := prize.Draw(prizes)
	if err := prize.Validate(won, prizes); err != nil {
		// Rolling back also undoes the debit; the user is never charged
		// for a card we could not draw.
		logger.Error("prize draw produced invalid result", "raspadinha", slug, "error", err)
		return nil, nil, err
	}

	p := &domain.Purchase{
		UserID:        userID,
		RaspadinhaID:  r.ID,
		TransactionID: record.ID,
		PrizeID:       won.ID,
		PrizeWon:      won.Amount,
		PrizeLabel:    won.Label,
	}
	if err := s.purchaseRepo.CreateWithTx(ctx, tx, p); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	committed = true

	metrics.Purchases.WithLabelValues(slug).Inc()
	return p, wallet, nil
}

// Reveal discloses and pays out a purchase exactly once. A second reveal
// returns ErrAlreadyRevealed; a reveal of someone else's purchase reports
// not found rather than leaking its existence.
func (s *PurchaseService) Reveal(ctx context.Context, userID, purchaseID string) (*domain.Purchase, *domain.Wallet, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	p, err := s.purchaseRepo.GetForUpdate(ctx, tx, purchaseID)
	if err != nil {
		return nil, nil, err
	}
	if p == nil || p.UserID != userID {
		return nil, nil, domain.ErrPurchaseNotFound
	}
	if p.IsRevealed {
		return nil, nil, domain.ErrAlreadyRevealed
	}

	if err := s.purchaseRepo.MarkRevealed(ctx, tx, p.ID); err != nil {
		return nil, nil, err
	}

	var wallet *domain.Wallet
	if p.PrizeWon.GreaterThan(decimal.Zero) {
		wallet, err = s.walletService.CreditWithTx(ctx, tx, userID, p.PrizeWon, domain.BucketPrizes)
		if err != nil {
			return nil, nil, err
		}

		record := &domain.Transaction{
			UserID: userID,
			Type:   domain.TxPrize,
			Status: domain.TxCompleted,
			Amount: p.PrizeWon,
			Meta: map[string]interface{}{
				"purchase_id": p.ID,
				"prize_label": p.PrizeLabel,
			},
		}
		if err := s.txRepo.CreateWithTx(ctx, tx, record); err != nil {
			return nil, nil, err
		}
	} else if wallet, err = s.walletService.GetWallet(ctx, userID); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	now := time.Now()
	p.IsRevealed = true
	p.RevealedAt = &now

	s.afterReveal(ctx, p)
	return p, wallet, nil
}

// afterReveal handles the best-effort side effects of a committed reveal:
// metrics, the live winners feed and the big-win audit trail.
func (s *PurchaseService) afterReveal(ctx context.Context, p *domain.Purchase) {
	r, err := s.raspadinhaRepo.GetByID(ctx, p.RaspadinhaID)
	if err != nil || r == nil {
		logger.Warn("reveal side effects skipped, product lookup failed", "purchase_id", p.ID, "error", err)
		return
	}

	outcome := "loss"
	if p.PrizeWon.GreaterThan(decimal.Zero) {
		outcome = "win"
	}
	metrics.Reveals.WithLabelValues(r.Slug, outcome).Inc()

	if !p.PrizeWon.GreaterThan(decimal.Zero) {
		return
	}

	paid, _ := p.PrizeWon.Float64()
	metrics.PrizesPaid.Add(paid)

	if s.hub != nil {
		player := "anon"
		if u, err := s.userRepo.GetByID(ctx, p.UserID); err == nil && u != nil {
			player = maskName(u.Name)
		}
		s.hub.BroadcastWin(ws.WinEvent{
			Raspadinha: r.Name,
			PrizeName:  p.PrizeLabel,
			Amount:     p.PrizeWon,
			Player:     player,
			At:         time.Now(),
		})
	}

	if s.audit != nil && p.PrizeWon.GreaterThanOrEqual(r.Price.Mul(decimal.NewFromInt(10))) {
		s.audit.Log(ctx, p.UserID, domain.AuditActionBigWin, domain.AuditCategoryPurchase, map[string]interface{}{
			"purchase_id": p.ID,
			"raspadinha":  r.Slug,
			"amount":      p.PrizeWon.String(),
		})
	}
}

// GetPurchase returns one purchase, hiding other users' purchases.
func (s *PurchaseService) GetPurchase(ctx context.Context, userID, purchaseID string) (*domain.Purchase, error) {
	p, err := s.purchaseRepo.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if p == nil || p.UserID != userID {
		return nil, domain.ErrPurchaseNotFound
	}
	return p, nil
}

// ListPurchases returns the user's purchase history, newest first.
func (s *PurchaseService) ListPurchases(ctx context.Context, userID string, limit int) ([]domain.Purchase, error) {
	return s.purchaseRepo.GetByUserID(ctx, userID, limit)
}

// maskName hides most of a player's name for the public winners feed.
func maskName(name string) string {
	runes := []rune(name)
	if len(runes) <= 2 {
		return string(runes) + "***"
	}
	return string(runes[:2]) + "***"
}

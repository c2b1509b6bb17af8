package repository

import (
	"context"

	"raspadinha_backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const purchaseColumns = `id, user_id, raspadinha_id, transaction_id, prize_id,
	prize_won, prize_label, is_revealed, created_at, revealed_at`

type PurchaseRepository struct {
	db *pgxpool.Pool
}

func NewPurchaseRepository(db *pgxpool.Pool) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// CreateWithTx persists a freshly drawn, undisclosed purchase inside the
// purchase transaction.
func (r *PurchaseRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, p *domain.Purchase) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return tx.QueryRow(ctx, `
		INSERT INTO purchases (id, user_id, raspadinha_id, transaction_id, prize_id, prize_won, prize_label)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, p.ID, p.UserID, p.RaspadinhaID, p.TransactionID, p.PrizeID, p.PrizeWon, p.PrizeLabel).Scan(&p.CreatedAt)
}

// GetForUpdate locks the purchase row so the reveal transition is serialized
// against concurrent reveals of the same ticket.
func (r *PurchaseRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Purchase, error) {
	return scanPurchase(tx.QueryRow(ctx,
		`SELECT `+purchaseColumns+` FROM purchases WHERE id = $1 FOR UPDATE`, id))
}

func (r *PurchaseRepository) GetByID(ctx context.Context, id string) (*domain.Purchase, error) {
	return scanPurchase(r.db.QueryRow(ctx,
		`SELECT `+purchaseColumns+` FROM purchases WHERE id = $1`, id))
}

// MarkRevealed flips the one-shot reveal flag. Caller must hold the row lock
// and have checked is_revealed already.
func (r *PurchaseRepository) MarkRevealed(ctx context.Context, tx pgx.Tx, id string) error {
	_, err := tx.Exec(ctx, `
		UPDATE purchases SET is_revealed = true, revealed_at = now()
		WHERE id = $1 AND NOT is_revealed
	`, id)
	return err
}

// GetByUserID lists a user's purchases, newest first.
func (r *PurchaseRepository) GetByUserID(ctx context.Context, userID string, limit int) ([]domain.Purchase, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+purchaseColumns+`
		FROM purchases
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var purchases []domain.Purchase
	for rows.Next() {
		var p domain.Purchase
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.RaspadinhaID, &p.TransactionID, &p.PrizeID,
			&p.PrizeWon, &p.PrizeLabel, &p.IsRevealed, &p.CreatedAt, &p.RevealedAt,
		); err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

func scanPurchase(row pgx.Row) (*domain.Purchase, error) {
	var p domain.Purchase
	if err := row.Scan(
		&p.ID, &p.UserID, &p.RaspadinhaID, &p.TransactionID, &p.PrizeID,
		&p.PrizeWon, &p.PrizeLabel, &p.IsRevealed, &p.CreatedAt, &p.RevealedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

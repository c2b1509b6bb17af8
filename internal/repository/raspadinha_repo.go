package repository

import (
	"context"

	"raspadinha_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const raspadinhaColumns = `id, slug, name, price, max_prize, category, stock, is_active, created_at`

type RaspadinhaRepository struct {
	db *pgxpool.Pool
}

func NewRaspadinhaRepository(db *pgxpool.Pool) *RaspadinhaRepository {
	return &RaspadinhaRepository{db: db}
}

// GetBySlug resolves an active product. Inactive and missing products look
// the same to callers.
func (r *RaspadinhaRepository) GetBySlug(ctx context.Context, slug string) (*domain.Raspadinha, error) {
	return scanRaspadinha(r.db.QueryRow(ctx, `
		SELECT `+raspadinhaColumns+`
		FROM raspadinhas
		WHERE slug = $1 AND is_active
	`, slug))
}

func (r *RaspadinhaRepository) GetByID(ctx context.Context, id string) (*domain.Raspadinha, error) {
	return scanRaspadinha(r.db.QueryRow(ctx, `
		SELECT `+raspadinhaColumns+`
		FROM raspadinhas
		WHERE id = $1
	`, id))
}

// ListActive returns the catalog.
func (r *RaspadinhaRepository) ListActive(ctx context.Context) ([]domain.Raspadinha, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+raspadinhaColumns+`
		FROM raspadinhas
		WHERE is_active
		ORDER BY price ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []domain.Raspadinha
	for rows.Next() {
		var p domain.Raspadinha
		if err := rows.Scan(&p.ID, &p.Slug, &p.Name, &p.Price, &p.MaxPrize, &p.Category, &p.Stock, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// GetPrizes returns the product's prize table in stored order. The draw
// engine depends on this order.
func (r *RaspadinhaRepository) GetPrizes(ctx context.Context, raspadinhaID string) ([]domain.Prize, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, raspadinha_id, label, amount, probability, sort_order
		FROM prizes
		WHERE raspadinha_id = $1
		ORDER BY sort_order ASC
	`, raspadinhaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prizes []domain.Prize
	for rows.Next() {
		var p domain.Prize
		if err := rows.Scan(&p.ID, &p.RaspadinhaID, &p.Label, &p.Amount, &p.Probability, &p.SortOrder); err != nil {
			return nil, err
		}
		prizes = append(prizes, p)
	}
	return prizes, rows.Err()
}

// DecrementStock takes one unit from a limited-stock product inside the
// purchase transaction. Unlimited products (NULL stock) are untouched.
// Returns ErrOutOfStock when a limited product is sold out.
func (r *RaspadinhaRepository) DecrementStock(ctx context.Context, tx pgx.Tx, id string) error {
	var stock *int
	if err := tx.QueryRow(ctx, `SELECT stock FROM raspadinhas WHERE id = $1 FOR UPDATE`, id).Scan(&stock); err != nil {
		return err
	}
	if stock == nil {
		return nil
	}
	if *stock <= 0 {
		return domain.ErrOutOfStock
	}
	_, err := tx.Exec(ctx, `UPDATE raspadinhas SET stock = stock - 1 WHERE id = $1`, id)
	return err
}

func scanRaspadinha(row pgx.Row) (*domain.Raspadinha, error) {
	var p domain.Raspadinha
	if err := row.Scan(&p.ID, &p.Slug, &p.Name, &p.Price, &p.MaxPrize, &p.Category, &p.Stock, &p.IsActive, &p.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

package repository

import (
	"context"
	"encoding/json"

	"raspadinha_backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TransactionRepository struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// CreateWithTx inserts a transaction record inside an existing database
// transaction. Business debits/credits always pair with one of these.
func (r *TransactionRepository) CreateWithTx(ctx context.Context, dbTx pgx.Tx, t *domain.Transaction) error {
	metaJSON, err := json.Marshal(t.Meta)
	if err != nil {
		metaJSON = []byte("{}")
	}

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = domain.TxPending
	}

	return dbTx.QueryRow(ctx, `
		INSERT INTO transactions (id, user_id, type, status, amount, affiliate_id, meta)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, t.ID, t.UserID, t.Type, t.Status, t.Amount, t.AffiliateID, metaJSON).Scan(&t.CreatedAt)
}

// Create inserts a transaction outside any caller-held transaction.
func (r *TransactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := r.CreateWithTx(ctx, tx, t); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// UpdateStatusWithTx moves a transaction to a terminal status. Completed
// transactions are immutable; the WHERE clause refuses to touch them.
func (r *TransactionRepository) UpdateStatusWithTx(ctx context.Context, dbTx pgx.Tx, id string, status domain.TransactionStatus) error {
	_, err := dbTx.Exec(ctx, `
		UPDATE transactions SET status = $2
		WHERE id = $1 AND status = 'pending'
	`, id, status)
	return err
}

// GetByID returns a single transaction.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, type, status, amount, affiliate_id, meta, created_at
		FROM transactions
		WHERE id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list, err := scanTransactions(rows)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

// GetByUserID returns recent transactions for a user, newest first.
func (r *TransactionRepository) GetByUserID(ctx context.Context, userID string, limit int) ([]*domain.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, type, status, amount, affiliate_id, meta, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func scanTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	var result []*domain.Transaction
	for rows.Next() {
		var (
			t        domain.Transaction
			metaJSON []byte
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Status, &t.Amount, &t.AffiliateID, &metaJSON, &t.CreatedAt); err != nil {
			return nil, err
		}
		if len(metaJSON) > 0 {
			_ = json.Unmarshal(metaJSON, &t.Meta)
		}
		result = append(result, &t)
	}
	return result, rows.Err()
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carelinkvn/carelink-backend/internal/models"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrTransactionExists   = errors.New("transaction already exists for this contract")
)

type TransactionRepository struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create inserts a pending transaction. The unique index on contract_id
// closes the check-then-act race between concurrent derivations.
func (r *TransactionRepository) Create(ctx context.Context, t *models.Transaction) error {
	query := `
		INSERT INTO transactions (elderly_id, nurse_id, amount, currency, service_level,
		                          platform_fee, nurse_receive_amount, status, payment_method, contract_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		t.ElderlyID, t.NurseID, t.Amount, t.Currency, t.ServiceLevel,
		t.PlatformFee, t.NurseReceiveAmount, t.Status, t.PaymentMethod, t.ContractID,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrTransactionExists
	}
	if err != nil {
		return fmt.Errorf("transaction repository: create %w", err)
	}
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.GetContext(ctx, &t, `SELECT * FROM transactions WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	return &t, err
}

func (r *TransactionRepository) ExistsForContract(ctx context.Context, contractID uuid.UUID) (bool, error) {
	var count int
	if err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM transactions WHERE contract_id = $1`, contractID); err != nil {
		return false, fmt.Errorf("transaction repository: exists for contract %w", err)
	}
	return count > 0, nil
}

// TransactionFilter narrows List results.
type TransactionFilter struct {
	Status    string
	ElderlyID *uuid.UUID
	NurseID   *uuid.UUID
}

func (r *TransactionRepository) List(ctx context.Context, filter TransactionFilter, limit, offset int) ([]models.Transaction, int, error) {
	where := "TRUE"
	args := []interface{}{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.ElderlyID != nil {
		args = append(args, *filter.ElderlyID)
		where += fmt.Sprintf(" AND elderly_id = $%d", len(args))
	}
	if filter.NurseID != nil {
		args = append(args, *filter.NurseID)
		where += fmt.Sprintf(" AND nurse_id = $%d", len(args))
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM transactions WHERE `+where, args...); err != nil {
		return nil, 0, fmt.Errorf("transaction repository: count %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(
		`SELECT * FROM transactions WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args),
	)
	var transactions []models.Transaction
	if err := r.db.SelectContext(ctx, &transactions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("transaction repository: list %w", err)
	}
	return transactions, total, nil
}

// Update persists the settlement outcome of a payment or refund attempt.
func (r *TransactionRepository) Update(ctx context.Context, t *models.Transaction) error {
	query := `
		UPDATE transactions
		SET status = $2, note = $3, ledger_proof = $4, withdraw_request_id = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		t.ID, t.Status, t.Note, t.LedgerProof, t.WithdrawRequestID,
	).Scan(&t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTransactionNotFound
	}
	if err != nil {
		return fmt.Errorf("transaction repository: update %w", err)
	}
	return nil
}

func (r *TransactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Transaction, error) {
	var t models.Transaction
	query := `
		UPDATE transactions SET status = $2, updated_at = NOW() WHERE id = $1
		RETURNING *
	`
	err := r.db.GetContext(ctx, &t, query, id, status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("transaction repository: update status %w", err)
	}
	return &t, nil
}

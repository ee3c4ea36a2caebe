package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/carelinkvn/carelink-backend/internal/models"
)

var (
	ErrContractNotFound = errors.New("contract not found")
	ErrContractExists   = errors.New("contract already exists for this matching")
)

type ContractRepository struct {
	db *sqlx.DB
}

func NewContractRepository(db *sqlx.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) Create(ctx context.Context, c *models.Contract) error {
	query := `
		INSERT INTO contracts (matching_id, elderly_id, nurse_id, status, created_by, history_logs, payment_details, terms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, last_modified_at, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		c.MatchingID, c.ElderlyID, c.NurseID, c.Status, c.CreatedBy, c.HistoryLogs, c.PaymentDetails, c.Terms,
	).Scan(&c.ID, &c.LastModifiedAt, &c.CreatedAt)
	if isUniqueViolation(err) {
		return ErrContractExists
	}
	if err != nil {
		return fmt.Errorf("contract repository: create %w", err)
	}
	return nil
}

func (r *ContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	var c models.Contract
	err := r.db.GetContext(ctx, &c, `SELECT * FROM contracts WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrContractNotFound
	}
	return &c, err
}

func (r *ContractRepository) GetByMatchingID(ctx context.Context, matchingID uuid.UUID) (*models.Contract, error) {
	var c models.Contract
	err := r.db.GetContext(ctx, &c, `SELECT * FROM contracts WHERE matching_id = $1`, matchingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrContractNotFound
	}
	return &c, err
}

func (r *ContractRepository) List(ctx context.Context, status string, limit, offset int) ([]models.Contract, int, error) {
	where := "TRUE"
	args := []interface{}{}
	if status != "" {
		args = append(args, status)
		where = "status = $1"
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM contracts WHERE `+where, args...); err != nil {
		return nil, 0, fmt.Errorf("contract repository: count %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(
		`SELECT * FROM contracts WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args),
	)
	var contracts []models.Contract
	if err := r.db.SelectContext(ctx, &contracts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("contract repository: list %w", err)
	}
	return contracts, total, nil
}

// Update persists the mutable fields of a contract wholesale, including the
// explicit history log. Last write wins at the row level.
func (r *ContractRepository) Update(ctx context.Context, c *models.Contract) error {
	query := `
		UPDATE contracts
		SET contract_hash = $2,
		    status = $3,
		    signed_by_elderly = $4,
		    signed_by_nurse = $5,
		    elderly_signed = $6,
		    nurse_signed = $7,
		    effective_date = $8,
		    expiry_date = $9,
		    history_logs = $10,
		    payment_details = $11,
		    terms = $12,
		    last_modified_at = NOW()
		WHERE id = $1
		RETURNING last_modified_at
	`
	err := r.db.QueryRowContext(ctx, query,
		c.ID, c.ContractHash, c.Status, c.SignedByElderly, c.SignedByNurse,
		c.ElderlySigned, c.NurseSigned, c.EffectiveDate, c.ExpiryDate,
		c.HistoryLogs, c.PaymentDetails, c.Terms,
	).Scan(&c.LastModifiedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrContractNotFound
	}
	if err != nil {
		return fmt.Errorf("contract repository: update %w", err)
	}
	return nil
}

// SetTransactionID back-links the derived transaction into payment_details.
func (r *ContractRepository) SetTransactionID(ctx context.Context, contractID, txID uuid.UUID) error {
	query := `
		UPDATE contracts
		SET payment_details = jsonb_set(payment_details, '{transaction_id}', to_jsonb($2::text)),
		    last_modified_at = NOW()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, contractID, txID.String())
	if err != nil {
		return fmt.Errorf("contract repository: set transaction id %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrContractNotFound
	}
	return nil
}

func (r *ContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contracts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("contract repository: delete %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrContractNotFound
	}
	return nil
}

// isUniqueViolation reports whether the error is a Postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

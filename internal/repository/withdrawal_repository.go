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

var ErrWithdrawRequestNotFound = errors.New("withdrawal request not found")

type WithdrawalRepository struct {
	db *sqlx.DB
}

func NewWithdrawalRepository(db *sqlx.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (r *WithdrawalRepository) Create(ctx context.Context, w *models.WithdrawRequest) error {
	query := `
		INSERT INTO withdraw_requests (nurse_id, amount, bank_account_info, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, requested_at
	`
	return r.db.QueryRowContext(ctx, query,
		w.NurseID, w.Amount, w.BankAccount, w.Status,
	).Scan(&w.ID, &w.RequestedAt)
}

func (r *WithdrawalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.WithdrawRequest, error) {
	var w models.WithdrawRequest
	err := r.db.GetContext(ctx, &w, `SELECT * FROM withdraw_requests WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWithdrawRequestNotFound
	}
	return &w, err
}

func (r *WithdrawalRepository) ListByNurse(ctx context.Context, nurseID uuid.UUID, limit, offset int) ([]models.WithdrawRequest, error) {
	var requests []models.WithdrawRequest
	err := r.db.SelectContext(ctx, &requests, `
		SELECT * FROM withdraw_requests WHERE nurse_id = $1
		ORDER BY requested_at DESC LIMIT $2 OFFSET $3
	`, nurseID, limit, offset)
	return requests, err
}

func (r *WithdrawalRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.WithdrawRequest, error) {
	var w models.WithdrawRequest
	query := `
		UPDATE withdraw_requests SET status = $2, processed_at = NOW() WHERE id = $1
		RETURNING *
	`
	err := r.db.GetContext(ctx, &w, query, id, status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWithdrawRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("withdrawal repository: update status %w", err)
	}
	return &w, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carelinkvn/carelink-backend/internal/models"
)

var ErrDisputeNotFound = errors.New("dispute not found")

type DisputeRepository struct {
	db *sqlx.DB
}

func NewDisputeRepository(db *sqlx.DB) *DisputeRepository {
	return &DisputeRepository{db: db}
}

func (r *DisputeRepository) Create(ctx context.Context, d *models.Dispute) error {
	query := `
		INSERT INTO disputes (transaction_id, complainant_id, complainant_role, defendant_id, defendant_role, reason, evidences, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query,
		d.TransactionID, d.ComplainantID, d.ComplainantRole, d.DefendantID, d.DefendantRole,
		d.Reason, d.Evidences, d.Status,
	).Scan(&d.ID, &d.CreatedAt)
}

func (r *DisputeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	var d models.Dispute
	err := r.db.GetContext(ctx, &d, `SELECT * FROM disputes WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDisputeNotFound
	}
	return &d, err
}

// UpdateStatus advances the dispute. resolvedAt carries nil unless the new
// status terminates the dispute.
func (r *DisputeRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, resolution *string, resolvedAt *time.Time) (*models.Dispute, error) {
	var d models.Dispute
	query := `
		UPDATE disputes SET status = $2, resolution = $3, resolved_at = $4 WHERE id = $1
		RETURNING *
	`
	err := r.db.GetContext(ctx, &d, query, id, status, resolution, resolvedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDisputeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("dispute repository: update status %w", err)
	}
	return &d, nil
}

// DisputeFilter narrows List results. PartyID, when set, matches disputes
// naming the profile on either side and is meant for self-service callers.
type DisputeFilter struct {
	Status        string
	ComplainantID *uuid.UUID
	DefendantID   *uuid.UUID
	PartyID       *uuid.UUID
}

func (r *DisputeRepository) List(ctx context.Context, filter DisputeFilter, limit, offset int) ([]models.Dispute, int, error) {
	where := "TRUE"
	args := []interface{}{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.ComplainantID != nil {
		args = append(args, *filter.ComplainantID)
		where += fmt.Sprintf(" AND complainant_id = $%d", len(args))
	}
	if filter.DefendantID != nil {
		args = append(args, *filter.DefendantID)
		where += fmt.Sprintf(" AND defendant_id = $%d", len(args))
	}
	if filter.PartyID != nil {
		args = append(args, *filter.PartyID)
		where += fmt.Sprintf(" AND (complainant_id = $%d OR defendant_id = $%d)", len(args), len(args))
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM disputes WHERE `+where, args...); err != nil {
		return nil, 0, fmt.Errorf("dispute repository: count %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(
		`SELECT * FROM disputes WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args),
	)
	var disputes []models.Dispute
	if err := r.db.SelectContext(ctx, &disputes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("dispute repository: list %w", err)
	}
	return disputes, total, nil
}

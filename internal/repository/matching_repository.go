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

var ErrMatchingNotFound = errors.New("matching not found")

type MatchingRepository struct {
	db *sqlx.DB
}

func NewMatchingRepository(db *sqlx.DB) *MatchingRepository {
	return &MatchingRepository{db: db}
}

func (r *MatchingRepository) Create(ctx context.Context, m *models.Matching) error {
	query := `
		INSERT INTO matchings (nurse_id, elderly_id, service_level, booking_time, contract_status, reset_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, is_matched, created_at, updated_at
	`
	if err := r.db.QueryRowContext(ctx, query,
		m.NurseID, m.ElderlyID, m.ServiceLevel, m.BookingTime, m.ContractStatus, m.ResetAt,
	).Scan(&m.ID, &m.IsMatched, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return fmt.Errorf("matching repository: create %w", err)
	}
	return nil
}

func (r *MatchingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Matching, error) {
	var m models.Matching
	err := r.db.GetContext(ctx, &m, `SELECT * FROM matchings WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMatchingNotFound
	}
	return &m, err
}

// MatchingFilter narrows List results.
type MatchingFilter struct {
	IsMatched    *bool
	ServiceLevel string
}

func (r *MatchingRepository) List(ctx context.Context, filter MatchingFilter, limit, offset int) ([]models.Matching, int, error) {
	where := "TRUE"
	args := []interface{}{}
	if filter.IsMatched != nil {
		args = append(args, *filter.IsMatched)
		where += fmt.Sprintf(" AND is_matched = $%d", len(args))
	}
	if filter.ServiceLevel != "" {
		args = append(args, filter.ServiceLevel)
		where += fmt.Sprintf(" AND service_level = $%d", len(args))
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM matchings WHERE `+where, args...); err != nil {
		return nil, 0, fmt.Errorf("matching repository: count %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(
		`SELECT * FROM matchings WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args),
	)
	var matchings []models.Matching
	if err := r.db.SelectContext(ctx, &matchings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("matching repository: list %w", err)
	}
	return matchings, total, nil
}

// Update persists the mutable fields of a matching wholesale. Last write
// wins; there is no version check on the row.
func (r *MatchingRepository) Update(ctx context.Context, m *models.Matching) error {
	query := `
		UPDATE matchings
		SET booking_time = $2,
		    contract_status = $3,
		    violation_report = $4,
		    is_matched = $5,
		    matched_at = $6,
		    reset_at = $7,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		m.ID, m.BookingTime, m.ContractStatus, m.ViolationReport, m.IsMatched, m.MatchedAt, m.ResetAt,
	).Scan(&m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrMatchingNotFound
	}
	if err != nil {
		return fmt.Errorf("matching repository: update %w", err)
	}
	return nil
}

func (r *MatchingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM matchings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("matching repository: delete %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrMatchingNotFound
	}
	return nil
}

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
	ErrUserNotFound    = errors.New("user not found")
	ErrProfileNotFound = errors.New("profile not found")
)

// UserRepository stores accounts and care profiles, and resolves the
// profile-id / account-id indirection the pipeline depends on.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, full_name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_active, created_at, updated_at
	`
	if err := r.db.QueryRowContext(ctx, query, user.Email, user.PasswordHash, user.FullName, user.Role).
		Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return fmt.Errorf("user repository: create %w", err)
	}
	return nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = $1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return &user, err
}

func (r *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return &user, err
}

func (r *UserRepository) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, userID)
	return err
}

func (r *UserRepository) CreateElderlyProfile(ctx context.Context, profile *models.ElderlyProfile) error {
	query := `
		INSERT INTO elderly_profiles (user_id, address, medical_notes, ledger_address, ledger_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query,
		profile.UserID, profile.Address, profile.MedicalNotes, profile.LedgerAddress, profile.LedgerKey,
	).Scan(&profile.ID, &profile.CreatedAt)
}

func (r *UserRepository) CreateNurseProfile(ctx context.Context, profile *models.NurseProfile) error {
	query := `
		INSERT INTO nurse_profiles (user_id, certification, years_experience, ledger_address, ledger_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_available, created_at
	`
	return r.db.QueryRowContext(ctx, query,
		profile.UserID, profile.Certification, profile.YearsExp, profile.LedgerAddress, profile.LedgerKey,
	).Scan(&profile.ID, &profile.IsAvailable, &profile.CreatedAt)
}

func (r *UserRepository) GetNurseProfile(ctx context.Context, id uuid.UUID) (*models.NurseProfile, error) {
	var profile models.NurseProfile
	err := r.db.GetContext(ctx, &profile, `SELECT * FROM nurse_profiles WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	return &profile, err
}

// ElderlyParty resolves an elderly profile id into the party view used by
// the signing and settlement paths.
func (r *UserRepository) ElderlyParty(ctx context.Context, profileID uuid.UUID) (*models.Party, error) {
	return r.party(ctx, `
		SELECT p.id, p.user_id, u.email, p.ledger_address, p.ledger_key
		FROM elderly_profiles p JOIN users u ON u.id = p.user_id
		WHERE p.id = $1
	`, profileID, models.RoleElderly)
}

// NurseParty resolves a nurse profile id into the party view.
func (r *UserRepository) NurseParty(ctx context.Context, profileID uuid.UUID) (*models.Party, error) {
	return r.party(ctx, `
		SELECT p.id, p.user_id, u.email, p.ledger_address, p.ledger_key
		FROM nurse_profiles p JOIN users u ON u.id = p.user_id
		WHERE p.id = $1
	`, profileID, models.RoleNurse)
}

// ElderlyPartyByUserID resolves the elderly profile owned by an account.
func (r *UserRepository) ElderlyPartyByUserID(ctx context.Context, userID uuid.UUID) (*models.Party, error) {
	return r.party(ctx, `
		SELECT p.id, p.user_id, u.email, p.ledger_address, p.ledger_key
		FROM elderly_profiles p JOIN users u ON u.id = p.user_id
		WHERE p.user_id = $1
	`, userID, models.RoleElderly)
}

// NursePartyByUserID resolves the nurse profile owned by an account.
func (r *UserRepository) NursePartyByUserID(ctx context.Context, userID uuid.UUID) (*models.Party, error) {
	return r.party(ctx, `
		SELECT p.id, p.user_id, u.email, p.ledger_address, p.ledger_key
		FROM nurse_profiles p JOIN users u ON u.id = p.user_id
		WHERE p.user_id = $1
	`, userID, models.RoleNurse)
}

func (r *UserRepository) party(ctx context.Context, query string, id uuid.UUID, role string) (*models.Party, error) {
	party := models.Party{Role: role}
	err := r.db.QueryRowxContext(ctx, query, id).Scan(
		&party.ProfileID, &party.UserID, &party.Email, &party.LedgerAddress, &party.LedgerKey,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user repository: resolve party %w", err)
	}
	return &party, nil
}

// SetNurseAvailability flips the nurse back into or out of the available pool.
func (r *UserRepository) SetNurseAvailability(ctx context.Context, nurseID uuid.UUID, available bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE nurse_profiles SET is_available = $2 WHERE id = $1`, nurseID, available)
	if err != nil {
		return fmt.Errorf("user repository: set availability %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

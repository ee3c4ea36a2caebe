package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a platform account. Profiles reference their account by user_id;
// the account can outlive the profile, so the two are never collapsed.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         string     `db:"role" json:"role"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// ElderlyProfile is the client side of a care engagement.
type ElderlyProfile struct {
	ID            uuid.UUID `db:"id" json:"id"`
	UserID        uuid.UUID `db:"user_id" json:"user_id"`
	Address       *string   `db:"address" json:"address,omitempty"`
	MedicalNotes  *string   `db:"medical_notes" json:"medical_notes,omitempty"`
	LedgerAddress *string   `db:"ledger_address" json:"ledger_address,omitempty"`
	LedgerKey     *string   `db:"ledger_key" json:"-"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// NurseProfile is the caregiver side of a care engagement.
type NurseProfile struct {
	ID            uuid.UUID `db:"id" json:"id"`
	UserID        uuid.UUID `db:"user_id" json:"user_id"`
	Certification *string   `db:"certification" json:"certification,omitempty"`
	YearsExp      int       `db:"years_experience" json:"years_experience"`
	IsAvailable   bool      `db:"is_available" json:"is_available"`
	LedgerAddress *string   `db:"ledger_address" json:"ledger_address,omitempty"`
	LedgerKey     *string   `db:"ledger_key" json:"-"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Party is a resolved view of one side of a matching: profile identity plus
// the account attributes the pipeline needs (email for OTP delivery, ledger
// address and signing key for settlement).
type Party struct {
	ProfileID     uuid.UUID
	UserID        uuid.UUID
	Role          string
	Email         string
	LedgerAddress *string
	LedgerKey     *string
}

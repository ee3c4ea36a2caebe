package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BookingWindow is one start/end slot of the booked care schedule.
type BookingWindow struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// BookingWindows is the ordered window list, stored as a JSONB column.
type BookingWindows []BookingWindow

// SignState is the contract-signature sub-state embedded in a matching.
type SignState struct {
	ElderlySignature *string `json:"elderly_signature"`
	NurseSignature   *string `json:"nurse_signature"`
	ContractHash     *string `json:"contract_hash"`
	IsSigned         bool    `json:"is_signed"`
}

// Recompute derives is_signed from the two per-role flags. Call it after
// every signature mutation.
func (s *SignState) Recompute() {
	s.IsSigned = s.ElderlySignature != nil && s.NurseSignature != nil
}

// ViolationReport records a violation complaint filed against a matching.
type ViolationReport struct {
	ReportedBy uuid.UUID `json:"reported_by"`
	Reason     string    `json:"reason"`
	Timestamp  time.Time `json:"timestamp"`
}

// Matching is one proposed or active pairing between an elderly client and a nurse.
type Matching struct {
	ID              uuid.UUID        `db:"id" json:"id"`
	NurseID         uuid.UUID        `db:"nurse_id" json:"nurse_id"`
	ElderlyID       uuid.UUID        `db:"elderly_id" json:"elderly_id"`
	ServiceLevel    string           `db:"service_level" json:"service_level"`
	BookingTime     BookingWindows   `db:"booking_time" json:"booking_time"`
	ContractStatus  SignState        `db:"contract_status" json:"contract_status"`
	ViolationReport *ViolationReport `db:"violation_report" json:"violation_report,omitempty"`
	IsMatched       bool             `db:"is_matched" json:"is_matched"`
	MatchedAt       *time.Time       `db:"matched_at" json:"matched_at,omitempty"`
	ResetAt         time.Time        `db:"reset_at" json:"reset_at"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
}

func (w BookingWindows) Value() (driver.Value, error) {
	return json.Marshal(w)
}

func (w *BookingWindows) Scan(src interface{}) error {
	return scanJSON(src, w)
}

func (s SignState) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *SignState) Scan(src interface{}) error {
	return scanJSON(src, s)
}

func (v *ViolationReport) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func (v *ViolationReport) Scan(src interface{}) error {
	if src == nil {
		return nil
	}
	return scanJSON(src, v)
}

// scanJSON decodes a JSONB column into dst.
func scanJSON(src, dst interface{}) error {
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, dst)
	case string:
		return json.Unmarshal([]byte(data), dst)
	case nil:
		return nil
	default:
		return fmt.Errorf("models: cannot scan %T into %T", src, dst)
	}
}

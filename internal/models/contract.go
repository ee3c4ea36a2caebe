package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// HistoryEntry is one append-only audit record on a contract.
type HistoryEntry struct {
	Action     string    `json:"action"`
	ModifiedBy string    `json:"modified_by"`
	Timestamp  time.Time `json:"timestamp"`
}

// HistoryLog is the contract audit trail, stored as a JSONB column.
type HistoryLog []HistoryEntry

// PaymentDetails is the payment sub-record of a contract. Fields are filled
// together by the fill operation and must be complete before a transaction
// can be derived.
type PaymentDetails struct {
	TransactionID           *uuid.UUID `json:"transaction_id"`
	ServiceLevel            string     `json:"service_level"`
	PricePerHour            float64    `json:"price_per_hour"`
	TotalHoursBooked        float64    `json:"total_hours_booked"`
	DepositAmount           float64    `json:"deposit_amount"`
	RemainingPayment        float64    `json:"remaining_payment"`
	NurseSharePercentage    float64    `json:"nurse_share_percentage"`
	PlatformSharePercentage float64    `json:"platform_share_percentage"`
	NurseTotalEarnings      float64    `json:"nurse_total_earnings"`
	PlatformTotalEarnings   float64    `json:"platform_total_earnings"`
	Currency                string     `json:"currency"`
}

// PaymentDetailsPatch is a partial update of PaymentDetails. Nil fields keep
// the stored value, non-nil fields win.
type PaymentDetailsPatch struct {
	ServiceLevel            *string  `json:"service_level,omitempty"`
	PricePerHour            *float64 `json:"price_per_hour,omitempty"`
	TotalHoursBooked        *float64 `json:"total_hours_booked,omitempty"`
	DepositAmount           *float64 `json:"deposit_amount,omitempty"`
	RemainingPayment        *float64 `json:"remaining_payment,omitempty"`
	NurseSharePercentage    *float64 `json:"nurse_share_percentage,omitempty"`
	PlatformSharePercentage *float64 `json:"platform_share_percentage,omitempty"`
	NurseTotalEarnings      *float64 `json:"nurse_total_earnings,omitempty"`
	PlatformTotalEarnings   *float64 `json:"platform_total_earnings,omitempty"`
	Currency                *string  `json:"currency,omitempty"`
}

// Merge applies the patch to the stored details: existing union supplied,
// supplied wins. The linked transaction id is never patched from outside.
func (d *PaymentDetails) Merge(p PaymentDetailsPatch) {
	if p.ServiceLevel != nil {
		d.ServiceLevel = *p.ServiceLevel
	}
	if p.PricePerHour != nil {
		d.PricePerHour = *p.PricePerHour
	}
	if p.TotalHoursBooked != nil {
		d.TotalHoursBooked = *p.TotalHoursBooked
	}
	if p.DepositAmount != nil {
		d.DepositAmount = *p.DepositAmount
	}
	if p.RemainingPayment != nil {
		d.RemainingPayment = *p.RemainingPayment
	}
	if p.NurseSharePercentage != nil {
		d.NurseSharePercentage = *p.NurseSharePercentage
	}
	if p.PlatformSharePercentage != nil {
		d.PlatformSharePercentage = *p.PlatformSharePercentage
	}
	if p.NurseTotalEarnings != nil {
		d.NurseTotalEarnings = *p.NurseTotalEarnings
	}
	if p.PlatformTotalEarnings != nil {
		d.PlatformTotalEarnings = *p.PlatformTotalEarnings
	}
	if p.Currency != nil {
		d.Currency = *p.Currency
	}
}

// Contract is the formal agreement tied 1:1 to a matching.
type Contract struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	MatchingID      uuid.UUID      `db:"matching_id" json:"matching_id"`
	ElderlyID       uuid.UUID      `db:"elderly_id" json:"elderly_id"`
	NurseID         uuid.UUID      `db:"nurse_id" json:"nurse_id"`
	ContractHash    *string        `db:"contract_hash" json:"contract_hash,omitempty"`
	Status          string         `db:"status" json:"status"`
	SignedByElderly *time.Time     `db:"signed_by_elderly" json:"signed_by_elderly,omitempty"`
	SignedByNurse   *time.Time     `db:"signed_by_nurse" json:"signed_by_nurse,omitempty"`
	ElderlySigned   bool           `db:"elderly_signed" json:"elderly_signed"`
	NurseSigned     bool           `db:"nurse_signed" json:"nurse_signed"`
	EffectiveDate   *time.Time     `db:"effective_date" json:"effective_date,omitempty"`
	ExpiryDate      *time.Time     `db:"expiry_date" json:"expiry_date,omitempty"`
	CreatedBy       string         `db:"created_by" json:"created_by"`
	LastModifiedAt  time.Time      `db:"last_modified_at" json:"last_modified_at"`
	HistoryLogs     HistoryLog     `db:"history_logs" json:"history_logs"`
	PaymentDetails  PaymentDetails `db:"payment_details" json:"payment_details"`
	Terms           pq.StringArray `db:"terms" json:"terms"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
}

// AppendHistory records an audit entry inline. Every status change and every
// signature event goes through here, not through storage-side dirty checking.
func (c *Contract) AppendHistory(action, actor string) {
	c.HistoryLogs = append(c.HistoryLogs, HistoryEntry{
		Action:     action,
		ModifiedBy: actor,
		Timestamp:  time.Now(),
	})
}

// HasAction reports whether the log already carries an entry for the action.
func (h HistoryLog) HasAction(action string) bool {
	for _, e := range h {
		if e.Action == action {
			return true
		}
	}
	return false
}

func (h HistoryLog) Value() (driver.Value, error) {
	if h == nil {
		h = HistoryLog{}
	}
	return json.Marshal(h)
}

func (h *HistoryLog) Scan(src interface{}) error {
	return scanJSON(src, h)
}

func (d PaymentDetails) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *PaymentDetails) Scan(src interface{}) error {
	return scanJSON(src, d)
}

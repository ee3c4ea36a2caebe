package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BankAccountInfo is the payout destination of a withdrawal request.
type BankAccountInfo struct {
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
	AccountHolder string `json:"account_holder,omitempty"`
}

// WithdrawRequest is a nurse's request to cash out earnings. The amount is
// denominated in VND; the token deduction is computed at processing time
// from the configured exchange rate.
type WithdrawRequest struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	NurseID     uuid.UUID       `db:"nurse_id" json:"nurse_id"`
	Amount      float64         `db:"amount" json:"amount"`
	BankAccount BankAccountInfo `db:"bank_account_info" json:"bank_account_info"`
	Status      string          `db:"status" json:"status"`
	RequestedAt time.Time       `db:"requested_at" json:"requested_at"`
	ProcessedAt *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
}

func (b BankAccountInfo) Value() (driver.Value, error) {
	return json.Marshal(b)
}

func (b *BankAccountInfo) Scan(src interface{}) error {
	return scanJSON(src, b)
}

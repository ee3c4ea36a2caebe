package models

import (
	"time"

	"github.com/google/uuid"
)

// Transaction is the financial settlement record derived from one contract.
// amount = platform_fee + nurse_receive_amount at all times.
type Transaction struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	ElderlyID          uuid.UUID  `db:"elderly_id" json:"elderly_id"`
	NurseID            uuid.UUID  `db:"nurse_id" json:"nurse_id"`
	Amount             float64    `db:"amount" json:"amount"`
	Currency           string     `db:"currency" json:"currency"`
	ServiceLevel       string     `db:"service_level" json:"service_level"`
	PlatformFee        float64    `db:"platform_fee" json:"platform_fee"`
	NurseReceiveAmount float64    `db:"nurse_receive_amount" json:"nurse_receive_amount"`
	Status             string     `db:"status" json:"status"`
	PaymentMethod      string     `db:"payment_method" json:"payment_method"`
	ContractID         uuid.UUID  `db:"contract_id" json:"contract_id"`
	WithdrawRequestID  *uuid.UUID `db:"withdraw_request_id" json:"withdraw_request_id,omitempty"`
	Note               *string    `db:"note" json:"note,omitempty"`
	LedgerProof        *string    `db:"ledger_proof" json:"ledger_proof,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

package dto

import (
	"time"

	"github.com/carelinkvn/carelink-backend/internal/models"
)

// RegisterRequest represents the sign-up payload.
type RegisterRequest struct {
	Email         string  `json:"email" binding:"required"`
	Password      string  `json:"password" binding:"required"`
	FullName      string  `json:"full_name" binding:"required"`
	Role          string  `json:"role" binding:"required"`
	LedgerAddress *string `json:"ledger_address"`
	LedgerKey     *string `json:"ledger_key"`

	Address       *string `json:"address"`
	MedicalNotes  *string `json:"medical_notes"`
	Certification *string `json:"certification"`
	YearsExp      int     `json:"years_experience"`
}

// LoginRequest represents the login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents a token refresh payload.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CreateMatchingRequest represents the request to open a matching.
type CreateMatchingRequest struct {
	NurseID      string                 `json:"nurse_id" binding:"required"`
	ServiceLevel string                 `json:"service_level" binding:"required"`
	BookingTime  []models.BookingWindow `json:"booking_time" binding:"required"`
}

// UpdateBookingTimeRequest replaces the booking schedule of a matching.
type UpdateBookingTimeRequest struct {
	BookingTime []models.BookingWindow `json:"booking_time" binding:"required"`
}

// RecordSignatureRequest represents the direct-signature payload.
type RecordSignatureRequest struct {
	Role         string  `json:"role" binding:"required"`
	Signature    string  `json:"signature" binding:"required"`
	ContractHash *string `json:"contract_hash"`
}

// ReportViolationRequest represents a violation complaint on a matching.
type ReportViolationRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// UpdateContractRequest represents an administrative contract edit.
type UpdateContractRequest struct {
	Status        *string    `json:"status"`
	Terms         []string   `json:"terms"`
	EffectiveDate *time.Time `json:"effective_date"`
	ExpiryDate    *time.Time `json:"expiry_date"`
}

// FillContractRequest carries the payment-details patch plus the terms and
// validity dates the filling party supplies.
type FillContractRequest struct {
	PaymentDetails models.PaymentDetailsPatch `json:"payment_details" binding:"required"`
	Terms          []string                   `json:"terms,omitempty"`
	EffectiveDate  *time.Time                 `json:"effective_date,omitempty"`
	ExpiryDate     *time.Time                 `json:"expiry_date,omitempty"`
}

// ConfirmSignatureRequest carries the one-time signing code.
type ConfirmSignatureRequest struct {
	Code string `json:"code" binding:"required"`
}

// RefundRequest represents an admin refund with an optional reason.
type RefundRequest struct {
	Reason string `json:"reason"`
}

// CreateDisputeRequest represents the request to open a dispute.
type CreateDisputeRequest struct {
	TransactionID string   `json:"transaction_id" binding:"required"`
	Reason        string   `json:"reason" binding:"required"`
	Evidences     []string `json:"evidences"`
}

// UpdateDisputeStatusRequest transitions a dispute.
type UpdateDisputeStatusRequest struct {
	Status     string  `json:"status" binding:"required"`
	Resolution *string `json:"resolution"`
}

// CreateWithdrawRequest represents a nurse payout request.
type CreateWithdrawRequest struct {
	Amount      float64                `json:"amount" binding:"required"`
	BankAccount models.BankAccountInfo `json:"bank_account_info" binding:"required"`
}

// ProcessWithdrawRequest transitions a withdrawal request.
type ProcessWithdrawRequest struct {
	Status string `json:"status" binding:"required"`
}

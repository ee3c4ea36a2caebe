package models

// Roles of platform accounts.
const (
	RoleElderly = "elderly"
	RoleNurse   = "nurse"
	RoleAdmin   = "admin"
)

// Service levels of a care engagement.
const (
	ServiceLevelBasic    = "basic"
	ServiceLevelStandard = "standard"
	ServiceLevelPremium  = "premium"
)

// Contract statuses.
const (
	ContractStatusPending    = "pending"
	ContractStatusActive     = "active"
	ContractStatusViolated   = "violated"
	ContractStatusTerminated = "terminated"
)

// Transaction statuses.
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
	TransactionStatusCancelled = "cancelled"
)

// Payment methods.
const (
	PaymentMethodBankTransfer  = "bank_transfer"
	PaymentMethodTokenTransfer = "token_transfer"
)

// Currencies accepted by the settlement engine.
const (
	CurrencyVND   = "VND"
	CurrencyETH   = "ETH"
	CurrencyUSDT  = "USDT"
	CurrencyToken = "PlatformToken"
)

// Dispute statuses.
const (
	DisputeStatusOpen        = "open"
	DisputeStatusUnderReview = "under_review"
	DisputeStatusResolved    = "resolved"
	DisputeStatusRejected    = "rejected"
)

// Withdrawal request statuses.
const (
	WithdrawStatusPending   = "pending"
	WithdrawStatusApproved  = "approved"
	WithdrawStatusRejected  = "rejected"
	WithdrawStatusCompleted = "completed"
)

// Contract history actions.
const (
	HistoryActionFilledDetails = "filled_details"
	HistoryActionElderlySigned = "elderly_signed"
	HistoryActionNurseSigned   = "nurse_signed"
)

// ValidServiceLevels lists the accepted service levels.
var ValidServiceLevels = map[string]struct{}{
	ServiceLevelBasic:    {},
	ServiceLevelStandard: {},
	ServiceLevelPremium:  {},
}

// ValidContractStatuses lists the accepted contract statuses.
var ValidContractStatuses = map[string]struct{}{
	ContractStatusPending:    {},
	ContractStatusActive:     {},
	ContractStatusViolated:   {},
	ContractStatusTerminated: {},
}

// ValidTransactionStatuses lists the accepted transaction statuses.
var ValidTransactionStatuses = map[string]struct{}{
	TransactionStatusPending:   {},
	TransactionStatusCompleted: {},
	TransactionStatusFailed:    {},
	TransactionStatusCancelled: {},
}

// ValidDisputeStatuses lists the accepted dispute statuses.
var ValidDisputeStatuses = map[string]struct{}{
	DisputeStatusOpen:        {},
	DisputeStatusUnderReview: {},
	DisputeStatusResolved:    {},
	DisputeStatusRejected:    {},
}

// ValidWithdrawProcessStatuses lists the statuses an admin may move a pending request to.
var ValidWithdrawProcessStatuses = map[string]struct{}{
	WithdrawStatusApproved:  {},
	WithdrawStatusRejected:  {},
	WithdrawStatusCompleted: {},
}

// ValidCurrencies lists the currencies the settlement engine understands.
var ValidCurrencies = map[string]struct{}{
	CurrencyVND:   {},
	CurrencyETH:   {},
	CurrencyUSDT:  {},
	CurrencyToken: {},
}

// ValidSigningRoles lists the two party roles allowed to sign a contract.
var ValidSigningRoles = map[string]struct{}{
	RoleElderly: {},
	RoleNurse:   {},
}

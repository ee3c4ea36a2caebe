package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/carelinkvn/carelink-backend/internal/ledger"
	"github.com/carelinkvn/carelink-backend/internal/logger"
	"github.com/carelinkvn/carelink-backend/internal/models"
	"github.com/carelinkvn/carelink-backend/internal/payments"
	"github.com/carelinkvn/carelink-backend/internal/pkg/apperror"
	"github.com/carelinkvn/carelink-backend/internal/repository"
)

// TransactionStore is the persistence surface of the settlement engine.
type TransactionStore interface {
	Create(ctx context.Context, t *models.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	ExistsForContract(ctx context.Context, contractID uuid.UUID) (bool, error)
	List(ctx context.Context, filter repository.TransactionFilter, limit, offset int) ([]models.Transaction, int, error)
	Update(ctx context.Context, t *models.Transaction) error
}

// PricingStore resolves the revenue split for a service level.
type PricingStore interface {
	GetByServiceLevel(ctx context.Context, serviceLevel string) (*models.Pricing, error)
}

// ContractLinker reads contracts and writes the transaction back-link.
type ContractLinker interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	SetTransactionID(ctx context.Context, contractID, txID uuid.UUID) error
}

// TransactionService derives and settles the payment of a contract.
type TransactionService struct {
	transactions TransactionStore
	contracts    ContractLinker
	pricing      PricingStore
	profiles     ProfileDirectory
	ledger       ledger.Ledger
	gateway      payments.Gateway

	exchangeRate float64
}

func NewTransactionService(
	transactions TransactionStore,
	contracts ContractLinker,
	pricing PricingStore,
	profiles ProfileDirectory,
	ledgerClient ledger.Ledger,
	gateway payments.Gateway,
	exchangeRate float64,
) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		contracts:    contracts,
		pricing:      pricing,
		profiles:     profiles,
		ledger:       ledgerClient,
		gateway:      gateway,
		exchangeRate: exchangeRate,
	}
}

// DeriveFromContract creates the settlement transaction of a filled
// contract: amount from price and booked hours, split from the pricing
// table. A contract gets exactly one transaction; the unique index on
// contract_id closes the race between concurrent derivations.
func (s *TransactionService) DeriveFromContract(ctx context.Context, c *models.Contract) (*models.Transaction, error) {
	pd := c.PaymentDetails
	if pd.PricePerHour <= 0 || pd.TotalHoursBooked <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "payment details must include a positive price and booked hours")
	}
	if _, ok := models.ValidServiceLevels[pd.ServiceLevel]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "payment details must name a valid service level")
	}

	exists, err := s.transactions.ExistsForContract(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.New(apperror.ErrCodeConflict, "a transaction already exists for this contract")
	}

	pricing, err := s.pricing.GetByServiceLevel(ctx, pd.ServiceLevel)
	if errors.Is(err, repository.ErrPricingNotFound) {
		return nil, apperror.New(apperror.ErrCodeNotFound, "no pricing for this service level")
	}
	if err != nil {
		return nil, err
	}

	currency := pd.Currency
	if currency == "" {
		currency = models.CurrencyVND
	}

	amount := pd.PricePerHour * pd.TotalHoursBooked
	platformFee := amount * pricing.PlatformSharePercentage / 100
	nurseReceive := amount - platformFee

	tx := &models.Transaction{
		ElderlyID:          c.ElderlyID,
		NurseID:            c.NurseID,
		Amount:             amount,
		Currency:           currency,
		ServiceLevel:       pd.ServiceLevel,
		PlatformFee:        platformFee,
		NurseReceiveAmount: nurseReceive,
		Status:             models.TransactionStatusPending,
		PaymentMethod:      methodForCurrency(currency),
		ContractID:         c.ID,
	}
	if err := s.transactions.Create(ctx, tx); err != nil {
		if errors.Is(err, repository.ErrTransactionExists) {
			return nil, apperror.New(apperror.ErrCodeConflict, "a transaction already exists for this contract")
		}
		return nil, err
	}

	// The back-link lives inside the contract's payment details; a failed
	// write here leaves the transaction authoritative and is only logged.
	if err := s.contracts.SetTransactionID(ctx, c.ID, tx.ID); err != nil && logger.Log != nil {
		logger.Log.WithFields(map[string]interface{}{
			"contract_id":    c.ID,
			"transaction_id": tx.ID,
			"error":          err.Error(),
		}).Warn("transaction service: contract back-link update failed")
	}

	return tx, nil
}

// DeriveForContract is the admin entry point: it loads the contract and runs
// the derivation.
func (s *TransactionService) DeriveForContract(ctx context.Context, contractID uuid.UUID) (*models.Transaction, error) {
	c, err := s.contracts.GetByID(ctx, contractID)
	if errors.Is(err, repository.ErrContractNotFound) {
		return nil, apperror.New(apperror.ErrCodeNotFound, "contract not found")
	}
	if err != nil {
		return nil, err
	}
	return s.DeriveFromContract(ctx, c)
}

func methodForCurrency(currency string) string {
	if currency == models.CurrencyVND {
		return models.PaymentMethodBankTransfer
	}
	return models.PaymentMethodTokenTransfer
}

func (s *TransactionService) Get(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	tx, err := s.transactions.GetByID(ctx, id)
	if errors.Is(err, repository.ErrTransactionNotFound) {
		return nil, apperror.New(apperror.ErrCodeNotFound, "transaction not found")
	}
	return tx, err
}

func (s *TransactionService) List(ctx context.Context, filter repository.TransactionFilter, page, limit int) ([]models.Transaction, int, error) {
	if filter.Status != "" {
		if _, ok := models.ValidTransactionStatuses[filter.Status]; !ok {
			return nil, 0, apperror.New(apperror.ErrCodeValidation, "invalid transaction status")
		}
	}
	limit, offset := clampPagination(page, limit)
	return s.transactions.List(ctx, filter, limit, offset)
}

// ListMine returns the transactions the acting party is a side of.
func (s *TransactionService) ListMine(ctx context.Context, actor Actor, status string, page, limit int) ([]models.Transaction, int, error) {
	filter := repository.TransactionFilter{Status: status}

	switch actor.Role {
	case models.RoleElderly:
		party, err := s.profiles.ElderlyPartyByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, 0, apperror.New(apperror.ErrCodeForbidden, "no elderly profile for this account")
		}
		filter.ElderlyID = &party.ProfileID
	case models.RoleNurse:
		party, err := s.profiles.NursePartyByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, 0, apperror.New(apperror.ErrCodeForbidden, "no nurse profile for this account")
		}
		filter.NurseID = &party.ProfileID
	default:
		return nil, 0, apperror.New(apperror.ErrCodeForbidden, "only elderly clients and nurses have own transactions")
	}

	return s.List(ctx, filter, page, limit)
}

// AdminUpdateStatus overrides the status of a transaction without running
// any settlement. Meant for manual repair of stuck records.
func (s *TransactionService) AdminUpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Transaction, error) {
	if _, ok := models.ValidTransactionStatuses[status]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "invalid transaction status")
	}

	tx, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	tx.Status = status
	if err := s.transactions.Update(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// ProcessPayment settles a pending transaction. Only the elderly party of
// the transaction can pay. Settlement is a bank charge for VND and a ledger
// token transfer for everything else; a declined or failed attempt marks the
// transaction failed with the reason in the note.
func (s *TransactionService) ProcessPayment(ctx context.Context, actor Actor, id uuid.UUID) (*models.Transaction, error) {
	if actor.Role != models.RoleElderly {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only the elderly party can process a payment")
	}

	tx, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	payer, err := s.profiles.ElderlyPartyByUserID(ctx, actor.UserID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "no elderly profile for this account")
	}
	if err != nil {
		return nil, err
	}
	if payer.ProfileID != tx.ElderlyID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "you are not a party to this transaction")
	}

	if tx.Status != models.TransactionStatusPending {
		return nil, apperror.New(apperror.ErrCodeValidation, "only pending transactions can be processed")
	}

	if tx.PaymentMethod == models.PaymentMethodBankTransfer {
		if err := s.gateway.Charge(ctx, tx); err != nil {
			s.markFailed(ctx, tx, "bank charge declined: "+err.Error())
			return nil, apperror.Wrap(err, apperror.ErrCodePayment, "bank charge declined")
		}
	} else {
		hash, err := s.transferTokens(ctx, tx, payer)
		if err != nil {
			return nil, err
		}
		tx.LedgerProof = &hash
	}

	tx.Status = models.TransactionStatusCompleted
	if err := s.transactions.Update(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// transferTokens converts the VND amount into whole tokens and moves them
// from the payer to the nurse's account, signed by the payer's key. Both
// parties need a ledger address. The conversion must round to at least one
// token; anything else points at a misconfigured rate.
func (s *TransactionService) transferTokens(ctx context.Context, tx *models.Transaction, payer *models.Party) (string, error) {
	if s.exchangeRate <= 0 {
		return "", apperror.New(apperror.ErrCodeInternal, "token exchange rate is not configured")
	}
	tokens := math.Round(tx.Amount / s.exchangeRate)
	if tokens <= 0 {
		return "", apperror.New(apperror.ErrCodeValidation, "amount converts to zero tokens")
	}
	if payer.LedgerAddress == nil || payer.LedgerKey == nil {
		return "", apperror.New(apperror.ErrCodeValidation, "payer has no ledger account")
	}

	nurse, err := s.profiles.NurseParty(ctx, tx.NurseID)
	if err != nil {
		return "", err
	}
	if nurse.LedgerAddress == nil {
		return "", apperror.New(apperror.ErrCodeValidation, "nurse has no ledger account")
	}

	balance, err := s.ledger.BalanceOf(ctx, *payer.LedgerAddress)
	if err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeExternalService, "ledger balance check failed")
	}
	if balance < tokens {
		return "", apperror.New(apperror.ErrCodePayment, fmt.Sprintf("insufficient token balance: need %.0f, have %.0f", tokens, balance))
	}

	hash, err := s.ledger.Transfer(ctx, *payer.LedgerAddress, *nurse.LedgerAddress, tokens, *payer.LedgerKey)
	if err != nil {
		s.markFailed(ctx, tx, "token transfer failed: "+err.Error())
		return "", apperror.Wrap(err, apperror.ErrCodePayment, "token transfer failed")
	}
	return hash, nil
}

// Refund reverses a completed transaction and cancels it. Bank payments go
// back through the gateway; token payments are returned from the nurse's
// account to the payer's, signed with the nurse's custodial key. The note
// records why.
func (s *TransactionService) Refund(ctx context.Context, actor Actor, id uuid.UUID, reason string) (*models.Transaction, error) {
	tx, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if tx.Status != models.TransactionStatusCompleted {
		return nil, apperror.New(apperror.ErrCodeValidation, "only completed transactions can be refunded")
	}

	if tx.PaymentMethod == models.PaymentMethodBankTransfer {
		if err := s.gateway.Refund(ctx, tx); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodePayment, "bank refund declined")
		}
	} else {
		elderly, err := s.profiles.ElderlyParty(ctx, tx.ElderlyID)
		if err != nil {
			return nil, err
		}
		if elderly.LedgerAddress == nil {
			return nil, apperror.New(apperror.ErrCodeValidation, "payer has no ledger account")
		}
		nurse, err := s.profiles.NurseParty(ctx, tx.NurseID)
		if err != nil {
			return nil, err
		}
		if nurse.LedgerAddress == nil || nurse.LedgerKey == nil {
			return nil, apperror.New(apperror.ErrCodeValidation, "nurse has no ledger account")
		}
		if s.exchangeRate <= 0 {
			return nil, apperror.New(apperror.ErrCodeInternal, "token exchange rate is not configured")
		}
		tokens := math.Round(tx.Amount / s.exchangeRate)
		hash, err := s.ledger.Transfer(ctx, *nurse.LedgerAddress, *elderly.LedgerAddress, tokens, *nurse.LedgerKey)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodePayment, "token refund failed")
		}
		tx.LedgerProof = &hash
	}

	note := "refunded"
	if reason != "" {
		note = "refunded: " + reason
	}
	tx.Status = models.TransactionStatusCancelled
	tx.Note = &note
	if err := s.transactions.Update(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// markFailed records a failed settlement attempt. A persistence error here
// is logged; the caller's original failure stays the one reported.
func (s *TransactionService) markFailed(ctx context.Context, tx *models.Transaction, note string) {
	tx.Status = models.TransactionStatusFailed
	tx.Note = &note
	if err := s.transactions.Update(ctx, tx); err != nil && logger.Log != nil {
		logger.Log.WithFields(map[string]interface{}{
			"transaction_id": tx.ID,
			"error":          err.Error(),
		}).Error("transaction service: failed-status update failed")
	}
}

package service

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"

	"github.com/carelinkvn/carelink-backend/internal/ledger"
	"github.com/carelinkvn/carelink-backend/internal/models"
	"github.com/carelinkvn/carelink-backend/internal/pkg/apperror"
	"github.com/carelinkvn/carelink-backend/internal/repository"
)

// WithdrawalStore is the persistence surface of nurse payouts.
type WithdrawalStore interface {
	Create(ctx context.Context, w *models.WithdrawRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.WithdrawRequest, error)
	ListByNurse(ctx context.Context, nurseID uuid.UUID, limit, offset int) ([]models.WithdrawRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.WithdrawRequest, error)
}

// WithdrawalService handles nurse cash-out requests. A nurse's earnings sit
// on the ledger as tokens; an approved request swaps them back for a VND
// bank payout.
type WithdrawalService struct {
	withdrawals WithdrawalStore
	profiles    ProfileDirectory
	ledger      ledger.Ledger

	platformAddress string
	exchangeRate    float64
}

func NewWithdrawalService(withdrawals WithdrawalStore, profiles ProfileDirectory, ledgerClient ledger.Ledger, platformAddress string, exchangeRate float64) *WithdrawalService {
	return &WithdrawalService{
		withdrawals:     withdrawals,
		profiles:        profiles,
		ledger:          ledgerClient,
		platformAddress: platformAddress,
		exchangeRate:    exchangeRate,
	}
}

// Create files a payout request for the acting nurse.
func (s *WithdrawalService) Create(ctx context.Context, actor Actor, amount float64, bank models.BankAccountInfo) (*models.WithdrawRequest, error) {
	if actor.Role != models.RoleNurse {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only nurses can request a withdrawal")
	}
	if amount <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "withdrawal amount must be positive")
	}
	if bank.AccountNumber == "" || bank.BankName == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "bank account number and bank name are required")
	}

	nurse, err := s.profiles.NursePartyByUserID(ctx, actor.UserID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return nil, apperror.New(apperror.ErrCodeNotFound, "nurse profile not found")
	}
	if err != nil {
		return nil, err
	}

	w := &models.WithdrawRequest{
		NurseID:     nurse.ProfileID,
		Amount:      amount,
		BankAccount: bank,
		Status:      models.WithdrawStatusPending,
	}
	if err := s.withdrawals.Create(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// ListMine returns the acting nurse's own requests.
func (s *WithdrawalService) ListMine(ctx context.Context, actor Actor, page, limit int) ([]models.WithdrawRequest, error) {
	nurse, err := s.profiles.NursePartyByUserID(ctx, actor.UserID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return nil, apperror.New(apperror.ErrCodeNotFound, "nurse profile not found")
	}
	if err != nil {
		return nil, err
	}

	limit, offset := clampPagination(page, limit)
	return s.withdrawals.ListByNurse(ctx, nurse.ProfileID, limit, offset)
}

func (s *WithdrawalService) Get(ctx context.Context, id uuid.UUID) (*models.WithdrawRequest, error) {
	w, err := s.withdrawals.GetByID(ctx, id)
	if errors.Is(err, repository.ErrWithdrawRequestNotFound) {
		return nil, apperror.New(apperror.ErrCodeNotFound, "withdraw request not found")
	}
	return w, err
}

// Process moves a pending request to approved, rejected or completed. An
// approval deducts the equivalent tokens from the nurse's ledger account;
// the bank payout itself happens outside the system.
func (s *WithdrawalService) Process(ctx context.Context, id uuid.UUID, status string) (*models.WithdrawRequest, error) {
	if _, ok := models.ValidWithdrawProcessStatuses[status]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "invalid withdrawal status")
	}

	w, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.Status != models.WithdrawStatusPending {
		return nil, apperror.New(apperror.ErrCodeValidation, "only pending withdrawal requests can be processed")
	}

	if status == models.WithdrawStatusApproved {
		if err := s.deductTokens(ctx, w); err != nil {
			return nil, err
		}
	}

	return s.withdrawals.UpdateStatus(ctx, id, status)
}

func (s *WithdrawalService) deductTokens(ctx context.Context, w *models.WithdrawRequest) error {
	if s.exchangeRate <= 0 {
		return apperror.New(apperror.ErrCodeInternal, "token exchange rate is not configured")
	}
	tokens := math.Round(w.Amount / s.exchangeRate)
	if tokens <= 0 {
		return apperror.New(apperror.ErrCodeValidation, "amount converts to zero tokens")
	}

	nurse, err := s.profiles.NurseParty(ctx, w.NurseID)
	if err != nil {
		return err
	}
	if nurse.LedgerAddress == nil || nurse.LedgerKey == nil {
		return apperror.New(apperror.ErrCodeValidation, "nurse has no ledger account")
	}

	balance, err := s.ledger.BalanceOf(ctx, *nurse.LedgerAddress)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeExternalService, "ledger balance check failed")
	}
	if balance < tokens {
		return apperror.New(apperror.ErrCodePayment, "insufficient token balance for this withdrawal")
	}

	if _, err := s.ledger.Transfer(ctx, *nurse.LedgerAddress, s.platformAddress, tokens, *nurse.LedgerKey); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeExternalService, "token deduction failed")
	}
	return nil
}

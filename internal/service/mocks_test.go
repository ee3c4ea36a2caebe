package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/carelinkvn/carelink-backend/internal/models"
	"github.com/carelinkvn/carelink-backend/internal/repository"
)

type mockMatchingStore struct {
	mock.Mock
}

func (m *mockMatchingStore) Create(ctx context.Context, matching *models.Matching) error {
	args := m.Called(ctx, matching)
	return args.Error(0)
}

func (m *mockMatchingStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Matching, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Matching), args.Error(1)
}

func (m *mockMatchingStore) List(ctx context.Context, filter repository.MatchingFilter, limit, offset int) ([]models.Matching, int, error) {
	args := m.Called(ctx, filter, limit, offset)
	return args.Get(0).([]models.Matching), args.Int(1), args.Error(2)
}

func (m *mockMatchingStore) Update(ctx context.Context, matching *models.Matching) error {
	args := m.Called(ctx, matching)
	return args.Error(0)
}

func (m *mockMatchingStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockContractStore struct {
	mock.Mock
}

func (m *mockContractStore) Create(ctx context.Context, c *models.Contract) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockContractStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contract), args.Error(1)
}

func (m *mockContractStore) GetByMatchingID(ctx context.Context, matchingID uuid.UUID) (*models.Contract, error) {
	args := m.Called(ctx, matchingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contract), args.Error(1)
}

func (m *mockContractStore) List(ctx context.Context, status string, limit, offset int) ([]models.Contract, int, error) {
	args := m.Called(ctx, status, limit, offset)
	return args.Get(0).([]models.Contract), args.Int(1), args.Error(2)
}

func (m *mockContractStore) Update(ctx context.Context, c *models.Contract) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockContractStore) SetTransactionID(ctx context.Context, contractID, txID uuid.UUID) error {
	args := m.Called(ctx, contractID, txID)
	return args.Error(0)
}

func (m *mockContractStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockTransactionStore struct {
	mock.Mock
}

func (m *mockTransactionStore) Create(ctx context.Context, t *models.Transaction) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *mockTransactionStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *mockTransactionStore) ExistsForContract(ctx context.Context, contractID uuid.UUID) (bool, error) {
	args := m.Called(ctx, contractID)
	return args.Bool(0), args.Error(1)
}

func (m *mockTransactionStore) List(ctx context.Context, filter repository.TransactionFilter, limit, offset int) ([]models.Transaction, int, error) {
	args := m.Called(ctx, filter, limit, offset)
	return args.Get(0).([]models.Transaction), args.Int(1), args.Error(2)
}

func (m *mockTransactionStore) Update(ctx context.Context, t *models.Transaction) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

type mockProfileDirectory struct {
	mock.Mock
}

func (m *mockProfileDirectory) ElderlyParty(ctx context.Context, profileID uuid.UUID) (*models.Party, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Party), args.Error(1)
}

func (m *mockProfileDirectory) NurseParty(ctx context.Context, profileID uuid.UUID) (*models.Party, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Party), args.Error(1)
}

func (m *mockProfileDirectory) ElderlyPartyByUserID(ctx context.Context, userID uuid.UUID) (*models.Party, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Party), args.Error(1)
}

func (m *mockProfileDirectory) NursePartyByUserID(ctx context.Context, userID uuid.UUID) (*models.Party, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Party), args.Error(1)
}

func (m *mockProfileDirectory) SetNurseAvailability(ctx context.Context, nurseID uuid.UUID, available bool) error {
	args := m.Called(ctx, nurseID, available)
	return args.Error(0)
}

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) BalanceOf(ctx context.Context, address string) (float64, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockLedger) Transfer(ctx context.Context, from, to string, amount float64, signingKey string) (string, error) {
	args := m.Called(ctx, from, to, amount, signingKey)
	return args.String(0), args.Error(1)
}

func (m *mockLedger) RecordAgreement(ctx context.Context, matchingID, elderlyAddress, nurseAddress string) (string, error) {
	args := m.Called(ctx, matchingID, elderlyAddress, nurseAddress)
	return args.String(0), args.Error(1)
}

type mockPricingStore struct {
	mock.Mock
}

func (m *mockPricingStore) GetByServiceLevel(ctx context.Context, serviceLevel string) (*models.Pricing, error) {
	args := m.Called(ctx, serviceLevel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pricing), args.Error(1)
}

type mockDisputeStore struct {
	mock.Mock
}

func (m *mockDisputeStore) Create(ctx context.Context, d *models.Dispute) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *mockDisputeStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dispute), args.Error(1)
}

func (m *mockDisputeStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string, resolution *string, resolvedAt *time.Time) (*models.Dispute, error) {
	args := m.Called(ctx, id, status, resolution, resolvedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dispute), args.Error(1)
}

func (m *mockDisputeStore) List(ctx context.Context, filter repository.DisputeFilter, limit, offset int) ([]models.Dispute, int, error) {
	args := m.Called(ctx, filter, limit, offset)
	return args.Get(0).([]models.Dispute), args.Int(1), args.Error(2)
}

type mockWithdrawalStore struct {
	mock.Mock
}

func (m *mockWithdrawalStore) Create(ctx context.Context, w *models.WithdrawRequest) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *mockWithdrawalStore) GetByID(ctx context.Context, id uuid.UUID) (*models.WithdrawRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WithdrawRequest), args.Error(1)
}

func (m *mockWithdrawalStore) ListByNurse(ctx context.Context, nurseID uuid.UUID, limit, offset int) ([]models.WithdrawRequest, error) {
	args := m.Called(ctx, nurseID, limit, offset)
	return args.Get(0).([]models.WithdrawRequest), args.Error(1)
}

func (m *mockWithdrawalStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.WithdrawRequest, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WithdrawRequest), args.Error(1)
}

type mockSignCodeChannel struct {
	mock.Mock
}

func (m *mockSignCodeChannel) Request(ctx context.Context, scopeID uuid.UUID, role, email string) error {
	args := m.Called(ctx, scopeID, role, email)
	return args.Error(0)
}

func (m *mockSignCodeChannel) Confirm(ctx context.Context, scopeID uuid.UUID, role, code string) error {
	args := m.Called(ctx, scopeID, role, code)
	return args.Error(0)
}

type mockDeriver struct {
	mock.Mock
}

func (m *mockDeriver) DeriveFromContract(ctx context.Context, c *models.Contract) (*models.Transaction, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

type mockCodeSender struct {
	mock.Mock
}

func (m *mockCodeSender) SendCode(email, code string) error {
	args := m.Called(email, code)
	return args.Error(0)
}

package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carelinkvn/carelink-backend/internal/models"
	"github.com/carelinkvn/carelink-backend/internal/pkg/apperror"
)

func newWithdrawalFixture() (*mockWithdrawalStore, *mockProfileDirectory, *mockLedger, *WithdrawalService) {
	withdrawals := new(mockWithdrawalStore)
	profiles := new(mockProfileDirectory)
	ledgerMock := new(mockLedger)
	svc := NewWithdrawalService(withdrawals, profiles, ledgerMock, "platform-addr", testExchangeRate)
	return withdrawals, profiles, ledgerMock, svc
}

func validBank() models.BankAccountInfo {
	return models.BankAccountInfo{AccountNumber: "0123456789", BankName: "Vietcombank", AccountHolder: "Tran Thi B"}
}

func TestWithdrawalService_Create(t *testing.T) {
	withdrawals, profiles, _, svc := newWithdrawalFixture()
	ctx := context.Background()
	userID := uuid.New()
	nurseID := uuid.New()

	profiles.On("NursePartyByUserID", ctx, userID).Return(&models.Party{ProfileID: nurseID}, nil)
	withdrawals.On("Create", ctx, mock.AnythingOfType("*models.WithdrawRequest")).Return(nil)

	w, err := svc.Create(ctx, Actor{UserID: userID, Role: models.RoleNurse}, 500000, validBank())
	require.NoError(t, err)

	assert.Equal(t, nurseID, w.NurseID)
	assert.Equal(t, models.WithdrawStatusPending, w.Status)
	assert.Equal(t, 500000.0, w.Amount)
}

func TestWithdrawalService_Create_OnlyNurse(t *testing.T) {
	_, _, _, svc := newWithdrawalFixture()

	_, err := svc.Create(context.Background(), Actor{Role: models.RoleElderly}, 500000, validBank())
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeForbidden, err.(*apperror.AppError).Code)
}

func TestWithdrawalService_Create_Validation(t *testing.T) {
	_, _, _, svc := newWithdrawalFixture()
	ctx := context.Background()
	actor := Actor{UserID: uuid.New(), Role: models.RoleNurse}

	_, err := svc.Create(ctx, actor, 0, validBank())
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeValidation, err.(*apperror.AppError).Code)

	_, err = svc.Create(ctx, actor, 500000, models.BankAccountInfo{BankName: "Vietcombank"})
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeValidation, err.(*apperror.AppError).Code)
}

func TestWithdrawalService_Process_OnlyPending(t *testing.T) {
	withdrawals, _, _, svc := newWithdrawalFixture()
	ctx := context.Background()
	id := uuid.New()

	withdrawals.On("GetByID", ctx, id).Return(&models.WithdrawRequest{ID: id, Status: models.WithdrawStatusApproved}, nil)

	_, err := svc.Process(ctx, id, models.WithdrawStatusRejected)
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeValidation, err.(*apperror.AppError).Code)
	assert.Contains(t, err.Error(), "pending")
}

func TestWithdrawalService_Process_InvalidStatus(t *testing.T) {
	_, _, _, svc := newWithdrawalFixture()

	_, err := svc.Process(context.Background(), uuid.New(), "pending")
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeValidation, err.(*apperror.AppError).Code)
}

func TestWithdrawalService_Process_RejectSkipsLedger(t *testing.T) {
	withdrawals, _, ledgerMock, svc := newWithdrawalFixture()
	ctx := context.Background()
	id := uuid.New()

	withdrawals.On("GetByID", ctx, id).Return(&models.WithdrawRequest{ID: id, Status: models.WithdrawStatusPending}, nil)
	withdrawals.On("UpdateStatus", ctx, id, models.WithdrawStatusRejected).
		Return(&models.WithdrawRequest{ID: id, Status: models.WithdrawStatusRejected}, nil)

	w, err := svc.Process(ctx, id, models.WithdrawStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawStatusRejected, w.Status)
	ledgerMock.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWithdrawalService_Process_ApproveDeductsTokens(t *testing.T) {
	withdrawals, profiles, ledgerMock, svc := newWithdrawalFixture()
	ctx := context.Background()
	id := uuid.New()
	nurseID := uuid.New()
	addr := "nurse-addr"
	key := "nurse-key"

	// 2,000,000 VND at a rate of 1000 is 2000 tokens.
	withdrawals.On("GetByID", ctx, id).
		Return(&models.WithdrawRequest{ID: id, NurseID: nurseID, Amount: 2000000, Status: models.WithdrawStatusPending}, nil)
	profiles.On("NurseParty", ctx, nurseID).
		Return(&models.Party{ProfileID: nurseID, LedgerAddress: &addr, LedgerKey: &key}, nil)
	ledgerMock.On("BalanceOf", ctx, addr).Return(5000.0, nil)
	ledgerMock.On("Transfer", ctx, addr, "platform-addr", 2000.0, key).Return("0xdeduct", nil)
	withdrawals.On("UpdateStatus", ctx, id, models.WithdrawStatusApproved).
		Return(&models.WithdrawRequest{ID: id, Status: models.WithdrawStatusApproved}, nil)

	w, err := svc.Process(ctx, id, models.WithdrawStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawStatusApproved, w.Status)
	ledgerMock.AssertExpectations(t)
}

func TestWithdrawalService_Process_InsufficientBalance(t *testing.T) {
	withdrawals, profiles, ledgerMock, svc := newWithdrawalFixture()
	ctx := context.Background()
	id := uuid.New()
	nurseID := uuid.New()
	addr := "nurse-addr"
	key := "nurse-key"

	withdrawals.On("GetByID", ctx, id).
		Return(&models.WithdrawRequest{ID: id, NurseID: nurseID, Amount: 2000000, Status: models.WithdrawStatusPending}, nil)
	profiles.On("NurseParty", ctx, nurseID).
		Return(&models.Party{ProfileID: nurseID, LedgerAddress: &addr, LedgerKey: &key}, nil)
	ledgerMock.On("BalanceOf", ctx, addr).Return(100.0, nil)

	_, err := svc.Process(ctx, id, models.WithdrawStatusApproved)
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodePayment, err.(*apperror.AppError).Code)
	ledgerMock.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	withdrawals.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestWithdrawalService_Process_NoLedgerAccount(t *testing.T) {
	withdrawals, profiles, _, svc := newWithdrawalFixture()
	ctx := context.Background()
	id := uuid.New()
	nurseID := uuid.New()

	withdrawals.On("GetByID", ctx, id).
		Return(&models.WithdrawRequest{ID: id, NurseID: nurseID, Amount: 2000000, Status: models.WithdrawStatusPending}, nil)
	profiles.On("NurseParty", ctx, nurseID).Return(&models.Party{ProfileID: nurseID}, nil)

	_, err := svc.Process(ctx, id, models.WithdrawStatusApproved)
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeValidation, err.(*apperror.AppError).Code)
}

func TestWithdrawalService_ListMine(t *testing.T) {
	withdrawals, profiles, _, svc := newWithdrawalFixture()
	ctx := context.Background()
	userID := uuid.New()
	nurseID := uuid.New()

	profiles.On("NursePartyByUserID", ctx, userID).Return(&models.Party{ProfileID: nurseID}, nil)
	withdrawals.On("ListByNurse", ctx, nurseID, 20, 0).
		Return([]models.WithdrawRequest{{NurseID: nurseID}}, nil)

	list, err := svc.ListMine(ctx, Actor{UserID: userID, Role: models.RoleNurse}, 1, 20)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

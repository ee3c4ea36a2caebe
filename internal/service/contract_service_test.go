package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carelinkvn/carelink-backend/internal/models"
	"github.com/carelinkvn/carelink-backend/internal/pkg/apperror"
)

func newContractFixture() (*mockContractStore, *mockMatchingStore, *mockDeriver, *mockSignCodeChannel, *mockProfileDirectory, *mockLedger, *ContractService) {
	contracts := new(mockContractStore)
	matchings := new(mockMatchingStore)
	deriver := new(mockDeriver)
	otp := new(mockSignCodeChannel)
	profiles := new(mockProfileDirectory)
	ledgerMock := new(mockLedger)

	svc := NewContractService(contracts, matchings, deriver, otp, profiles, ledgerMock)
	return contracts, matchings, deriver, otp, profiles, ledgerMock, svc
}

func pendingContract() *models.Contract {
	return &models.Contract{
		ID:         uuid.New(),
		MatchingID: uuid.New(),
		ElderlyID:  uuid.New(),
		NurseID:    uuid.New(),
		Status:     models.ContractStatusPending,
		PaymentDetails: models.PaymentDetails{
			ServiceLevel: models.ServiceLevelStandard,
			Currency:     models.CurrencyVND,
		},
	}
}

func float64Ptr(v float64) *float64 { return &v }
func strPtr(v string) *string       { return &v }

func TestContractService_FillDetails_MergesAndDerives(t *testing.T) {
	contracts, _, deriver, otp, profiles, _, svc := newContractFixture()
	ctx := context.Background()
	c := pendingContract()
	actor := Actor{UserID: uuid.New(), Role: models.RoleNurse}
	txID := uuid.New()

	contracts.On("GetByID", ctx, c.ID).Return(c, nil)
	contracts.On("Update", ctx, c).Return(nil)
	deriver.On("DeriveFromContract", ctx, c).Return(&models.Transaction{ID: txID}, nil)
	profiles.On("ElderlyParty", ctx, c.ElderlyID).Return(&models.Party{Email: "elderly@example.com"}, nil)
	profiles.On("NurseParty", ctx, c.NurseID).Return(&models.Party{Email: "nurse@example.com"}, nil)
	otp.On("Request", ctx, c.MatchingID, models.RoleElderly, "elderly@example.com").Return(nil)
	otp.On("Request", ctx, c.MatchingID, models.RoleNurse, "nurse@example.com").Return(nil)

	effective := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	got, err := svc.FillDetails(ctx, actor, c.ID, FillContractInput{
		PaymentDetails: models.PaymentDetailsPatch{
			PricePerHour:     float64Ptr(200000),
			TotalHoursBooked: float64Ptr(10),
		},
		Terms:         []string{"daily visits", "meals included"},
		EffectiveDate: &effective,
	})
	require.NoError(t, err)

	assert.Equal(t, 200000.0, got.PaymentDetails.PricePerHour)
	assert.Equal(t, 10.0, got.PaymentDetails.TotalHoursBooked)
	assert.Equal(t, models.ServiceLevelStandard, got.PaymentDetails.ServiceLevel, "unsupplied fields keep the stored value")
	assert.Equal(t, pq.StringArray{"daily visits", "meals included"}, got.Terms)
	require.NotNil(t, got.EffectiveDate)
	assert.True(t, got.EffectiveDate.Equal(effective))
	require.NotNil(t, got.PaymentDetails.TransactionID)
	assert.Equal(t, txID, *got.PaymentDetails.TransactionID)

	require.NotEmpty(t, got.HistoryLogs)
	assert.Equal(t, models.HistoryActionFilledDetails, got.HistoryLogs[len(got.HistoryLogs)-1].Action)
	otp.AssertExpectations(t)
}

func TestContractService_FillDetails_OnlyPending(t *testing.T) {
	contracts, _, _, _, _, _, svc := newContractFixture()
	ctx := context.Background()
	c := pendingContract()
	c.Status = models.ContractStatusActive

	contracts.On("GetByID", ctx, c.ID).Return(c, nil)

	_, err := svc.FillDetails(ctx, Actor{Role: models.RoleNurse}, c.ID, FillContractInput{})
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeValidation, err.(*apperror.AppError).Code)
}

func TestContractService_FillDetails_DerivationFailurePersistsNothing(t *testing.T) {
	contracts, _, deriver, _, _, _, svc := newContractFixture()
	ctx := context.Background()
	c := pendingContract()

	contracts.On("GetByID", ctx, c.ID).Return(c, nil)
	deriver.On("DeriveFromContract", ctx, c).Return(nil, apperror.New(apperror.ErrCodeConflict, "a transaction already exists for this contract"))

	_, err := svc.FillDetails(ctx, Actor{Role: models.RoleNurse}, c.ID, FillContractInput{
		PaymentDetails: models.PaymentDetailsPatch{
			PricePerHour:     float64Ptr(200000),
			TotalHoursBooked: float64Ptr(10),
		},
	})
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeConflict, err.(*apperror.AppError).Code)
	contracts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestContractService_FillDetails_RetryAfterFailureKeepsSingleHistoryEntry(t *testing.T) {
	contracts, _, deriver, otp, profiles, _, svc := newContractFixture()
	ctx := context.Background()
	c := pendingContract()
	actor := Actor{UserID: uuid.New(), Role: models.RoleNurse}
	in := FillContractInput{
		PaymentDetails: models.PaymentDetailsPatch{
			PricePerHour:     float64Ptr(200000),
			TotalHoursBooked: float64Ptr(10),
		},
	}

	contracts.On("GetByID", ctx, c.ID).Return(c, nil)
	deriver.On("DeriveFromContract", ctx, c).Return(nil, errors.New("pricing store down")).Once()
	deriver.On("DeriveFromContract", ctx, c).Return(&models.Transaction{ID: uuid.New()}, nil).Once()
	contracts.On("Update", ctx, c).Return(nil)
	profiles.On("ElderlyParty", ctx, c.ElderlyID).Return(&models.Party{Email: "elderly@example.com"}, nil)
	profiles.On("NurseParty", ctx, c.NurseID).Return(&models.Party{Email: "nurse@example.com"}, nil)
	otp.On("Request", mock.Anything, c.MatchingID, mock.Anything, mock.Anything).Return(nil)

	_, err := svc.FillDetails(ctx, actor, c.ID, in)
	require.Error(t, err)

	got, err := svc.FillDetails(ctx, actor, c.ID, in)
	require.NoError(t, err)

	entries := 0
	for _, e := range got.HistoryLogs {
		if e.Action == models.HistoryActionFilledDetails {
			entries++
		}
	}
	assert.Equal(t, 1, entries)
}

func TestContractService_FillDetails_CodeDispatchFailureIsSwallowed(t *testing.T) {
	contracts, _, deriver, otp, profiles, _, svc := newContractFixture()
	ctx := context.Background()
	c := pendingContract()

	contracts.On("GetByID", ctx, c.ID).Return(c, nil)
	contracts.On("Update", ctx, c).Return(nil)
	deriver.On("DeriveFromContract", ctx, c).Return(&models.Transaction{ID: uuid.New()}, nil)
	profiles.On("ElderlyParty", ctx, c.ElderlyID).Return(&models.Party{Email: "elderly@example.com"}, nil)
	profiles.On("NurseParty", ctx, c.NurseID).Return(&models.Party{Email: "nurse@example.com"}, nil)
	otp.On("Request", ctx, c.MatchingID, models.RoleElderly, "elderly@example.com").Return(errors.New("smtp down"))
	otp.On("Request", ctx, c.MatchingID, models.RoleNurse, "nurse@example.com").Return(errors.New("smtp down"))

	_, err := svc.FillDetails(ctx, Actor{Role: models.RoleNurse}, c.ID, FillContractInput{
		PaymentDetails: models.PaymentDetailsPatch{
			PricePerHour:     float64Ptr(200000),
			TotalHoursBooked: float64Ptr(10),
		},
	})
	assert.NoError(t, err, "a failed code dispatch must not fail the fill")
}

func signFixtureParties(profiles *mockProfileDirectory, c *models.Contract, elderlyUser, nurseUser uuid.UUID) {
	elderlyAddr := "elderly-addr"
	nurseAddr := "nurse-addr"
	profiles.On("ElderlyPartyByUserID", mock.Anything, elderlyUser).Return(&models.Party{
		ProfileID: c.ElderlyID, UserID: elderlyUser, Role: models.RoleElderly,
		Email: "elderly@example.com", LedgerAddress: &elderlyAddr,
	}, nil)
	profiles.On("NursePartyByUserID", mock.Anything, nurseUser).Return(&models.Party{
		ProfileID: c.NurseID, UserID: nurseUser, Role: models.RoleNurse,
		Email: "nurse@example.com", LedgerAddress: &nurseAddr,
	}, nil)
	profiles.On("ElderlyParty", mock.Anything, c.ElderlyID).Return(&models.Party{
		ProfileID: c.ElderlyID, LedgerAddress: &elderlyAddr,
	}, nil)
	profiles.On("NurseParty", mock.Anything, c.NurseID).Return(&models.Party{
		ProfileID: c.NurseID, LedgerAddress: &nurseAddr,
	}, nil)
}

func TestContractService_ConfirmSignature_FirstSigner(t *testing.T) {
	contracts, matchings, _, otp, profiles, _, svc := newContractFixture()
	ctx := context.Background()
	c := pendingContract()
	m := &models.Matching{ID: c.MatchingID}
	elderlyUser := uuid.New()
	signFixtureParties(profiles, c, elderlyUser, uuid.New())

	contracts.On("GetByID", ctx, c.ID).Return(c, nil)
	otp.On("Confirm", ctx, c.MatchingID, models.RoleElderly, "123456").Return(nil)
	matchings.On("GetByID", ctx, c.MatchingID).Return(m, nil)
	contracts.On("Update", ctx, c).Return(nil)
	matchings.On("Update", ctx, m).Return(nil)

	got, err := svc.ConfirmSignature(ctx, Actor{UserID: elderlyUser, Role: models.RoleElderly}, c.ID, "123456")
	require.NoError(t, err)

	assert.True(t, got.ElderlySigned)
	assert.False(t, got.NurseSigned)
	assert.NotNil(t, got.SignedByElderly)
	assert.Equal(t, models.ContractStatusPending, got.Status, "one signature does not activate the contract")
	assert.False(t, m.ContractStatus.IsSigned)
	assert.False(t, m.IsMatched)
}

func TestContractService_ConfirmSignature_SecondSignerActivatesAndRecords(t *testing.T) {
	contracts, matchings, _, otp, profiles, ledgerMock, svc := newContractFixture()
	ctx := context.Background()
	c := pendingContract()
	c.ElderlySigned = true
	sig := "otp:earlier"
	m := &models.Matching{ID: c.MatchingID, ContractStatus: models.SignState{ElderlySignature: &sig}}
	nurseUser := uuid.New()
	signFixtureParties(profiles, c, uuid.New(), nurseUser)

	contracts.On("GetByID", ctx, c.ID).Return(c, nil)
	otp.On("Confirm", ctx, c.MatchingID, models.RoleNurse, "654321").Return(nil)
	matchings.On("GetByID", ctx, c.MatchingID).Return(m, nil)
	contracts.On("Update", ctx, c).Return(nil)
	matchings.On("Update", ctx, m).Return(nil)
	ledgerMock.On("RecordAgreement", ctx, m.ID.String(), "elderly-addr", "nurse-addr").Return("0xagreement", nil)

	got, err := svc.ConfirmSignature(ctx, Actor{UserID: nurseUser, Role: models.RoleNurse}, c.ID, "654321")
	require.NoError(t, err)

	assert.True(t, got.NurseSigned)
	assert.Equal(t, models.ContractStatusActive, got.Status)
	assert.True(t, m.ContractStatus.IsSigned)
	assert.True(t, m.IsMatched)
	require.NotNil(t, got.ContractHash)
	assert.Equal(t, "0xagreement", *got.ContractHash)
	assert.Equal(t, "0xagreement", *m.ContractStatus.ContractHash)
	ledgerMock.AssertExpectations(t)
}

func TestContractService_ConfirmSignature_DuplicateRoleConflicts(t *testing.T) {
	contracts, _, _, otp, profiles, _, svc := newContractFixture()
	ctx := context.Background()
	c := pendingContract()
	c.ElderlySigned = true
	elderlyUser := uuid.New()
	signFixtureParties(profiles, c, elderlyUser, uuid.New())

	contracts.On("GetByID", ctx, c.ID).Return(c, nil)

	_, err := svc.ConfirmSignature(ctx, Actor{UserID: elderlyUser, Role: models.RoleElderly}, c.ID, "123456")
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeConflict, err.(*apperror.AppError).Code)
	otp.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestContractService_ConfirmSignature_WrongPartyForbidden(t *testing.T) {
	contracts, _, _, _, profiles, _, svc := newContractFixture()
	ctx := context.Background()
	c := pendingContract()
	stranger := uuid.New()

	contracts.On("GetByID", ctx, c.ID).Return(c, nil)
	profiles.On("ElderlyPartyByUserID", ctx, stranger).Return(&models.Party{ProfileID: uuid.New()}, nil)

	_, err := svc.ConfirmSignature(ctx, Actor{UserID: stranger, Role: models.RoleElderly}, c.ID, "123456")
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeForbidden, err.(*apperror.AppError).Code)
}

func TestContractService_ConfirmSignature_WrongCodePropagates(t *testing.T) {
	contracts, _, _, otp, profiles, _, svc := newContractFixture()
	ctx := context.Background()
	c := pendingContract()
	elderlyUser := uuid.New()
	signFixtureParties(profiles, c, elderlyUser, uuid.New())

	contracts.On("GetByID", ctx, c.ID).Return(c, nil)
	otp.On("Confirm", ctx, c.MatchingID, models.RoleElderly, "000000").
		Return(apperror.New(apperror.ErrCodeOtp, "signing code does not match"))

	_, err := svc.ConfirmSignature(ctx, Actor{UserID: elderlyUser, Role: models.RoleElderly}, c.ID, "000000")
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeOtp, err.(*apperror.AppError).Code)
}

func TestContractService_Update_ValidatesStatus(t *testing.T) {
	contracts, _, _, _, _, _, svc := newContractFixture()
	ctx := context.Background()
	c := pendingContract()

	contracts.On("GetByID", ctx, c.ID).Return(c, nil)

	_, err := svc.Update(ctx, Actor{Role: models.RoleAdmin}, c.ID, UpdateContractInput{Status: strPtr("finished")})
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeValidation, err.(*apperror.AppError).Code)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carelinkvn/carelink-backend/internal/models"
	"github.com/carelinkvn/carelink-backend/internal/pkg/apperror"
)

func newMatchingFixture() (*mockMatchingStore, *mockContractStore, *mockProfileDirectory, *MatchingService) {
	matchings := new(mockMatchingStore)
	contracts := new(mockContractStore)
	profiles := new(mockProfileDirectory)
	return matchings, contracts, profiles, NewMatchingService(matchings, contracts, profiles)
}

func bookingWindows() []models.BookingWindow {
	start := time.Now().Add(24 * time.Hour)
	return []models.BookingWindow{{StartTime: start, EndTime: start.Add(8 * time.Hour)}}
}

func TestMatchingService_Create_OnlyElderly(t *testing.T) {
	_, _, _, svc := newMatchingFixture()

	_, err := svc.Create(context.Background(), Actor{Role: models.RoleNurse}, CreateMatchingInput{})
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeForbidden, err.(*apperror.AppError).Code)
}

func TestMatchingService_Create_DraftsContractAndReservesNurse(t *testing.T) {
	matchings, contracts, profiles, svc := newMatchingFixture()
	ctx := context.Background()
	elderlyUser := uuid.New()
	elderlyProfile := uuid.New()
	nurseProfile := uuid.New()

	profiles.On("ElderlyPartyByUserID", ctx, elderlyUser).Return(&models.Party{ProfileID: elderlyProfile, UserID: elderlyUser}, nil)
	profiles.On("NurseParty", ctx, nurseProfile).Return(&models.Party{ProfileID: nurseProfile}, nil)
	matchings.On("Create", ctx, mock.AnythingOfType("*models.Matching")).Return(nil)
	contracts.On("Create", ctx, mock.AnythingOfType("*models.Contract")).Return(nil)
	profiles.On("SetNurseAvailability", ctx, nurseProfile, false).Return(nil)

	m, err := svc.Create(ctx, Actor{UserID: elderlyUser, Role: models.RoleElderly}, CreateMatchingInput{
		NurseID:      nurseProfile,
		ServiceLevel: models.ServiceLevelPremium,
		BookingTime:  bookingWindows(),
	})
	require.NoError(t, err)

	assert.Equal(t, elderlyProfile, m.ElderlyID)
	assert.Equal(t, nurseProfile, m.NurseID)
	assert.False(t, m.IsMatched)
	assert.False(t, m.ContractStatus.IsSigned)

	contracts.AssertCalled(t, "Create", ctx, mock.MatchedBy(func(c *models.Contract) bool {
		return c.ElderlyID == elderlyProfile && c.NurseID == nurseProfile && c.Status == models.ContractStatusPending
	}))
	profiles.AssertExpectations(t)
}

func TestMatchingService_Create_InvalidBookingWindow(t *testing.T) {
	_, _, profiles, svc := newMatchingFixture()
	ctx := context.Background()
	elderlyUser := uuid.New()

	profiles.On("ElderlyPartyByUserID", ctx, elderlyUser).Return(&models.Party{ProfileID: uuid.New()}, nil)

	start := time.Now()
	_, err := svc.Create(ctx, Actor{UserID: elderlyUser, Role: models.RoleElderly}, CreateMatchingInput{
		NurseID:      uuid.New(),
		ServiceLevel: models.ServiceLevelBasic,
		BookingTime:  []models.BookingWindow{{StartTime: start, EndTime: start}},
	})
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeValidation, err.(*apperror.AppError).Code)
}

func TestMatchingService_RecordSignature_RecomputesFullySigned(t *testing.T) {
	matchings, _, _, svc := newMatchingFixture()
	ctx := context.Background()
	sig := "sig-elderly"
	m := &models.Matching{ID: uuid.New(), ContractStatus: models.SignState{ElderlySignature: &sig}}

	matchings.On("GetByID", ctx, m.ID).Return(m, nil)
	matchings.On("Update", ctx, m).Return(nil)

	got, err := svc.RecordSignature(ctx, m.ID, models.RoleNurse, "sig-nurse", nil)
	require.NoError(t, err)
	assert.True(t, got.ContractStatus.IsSigned, "both signatures present must set is_signed")
}

func TestMatchingService_RecordSignature_OneSignatureIsNotSigned(t *testing.T) {
	matchings, _, _, svc := newMatchingFixture()
	ctx := context.Background()
	m := &models.Matching{ID: uuid.New()}

	matchings.On("GetByID", ctx, m.ID).Return(m, nil)
	matchings.On("Update", ctx, m).Return(nil)

	got, err := svc.RecordSignature(ctx, m.ID, models.RoleElderly, "sig-elderly", nil)
	require.NoError(t, err)
	assert.False(t, got.ContractStatus.IsSigned)
}

func TestMatchingService_ReportViolation_Unmatches(t *testing.T) {
	matchings, _, _, svc := newMatchingFixture()
	ctx := context.Background()
	reporter := uuid.New()
	m := &models.Matching{ID: uuid.New(), IsMatched: true}

	matchings.On("GetByID", ctx, m.ID).Return(m, nil)
	matchings.On("Update", ctx, m).Return(nil)

	got, err := svc.ReportViolation(ctx, m.ID, reporter, "no show")
	require.NoError(t, err)

	assert.False(t, got.IsMatched)
	require.NotNil(t, got.ViolationReport)
	assert.Equal(t, reporter, got.ViolationReport.ReportedBy)
	assert.Equal(t, "no show", got.ViolationReport.Reason)
	assert.False(t, got.ViolationReport.Timestamp.IsZero())
}

func TestMatchingService_Complete_RequiresFullySigned(t *testing.T) {
	matchings, _, _, svc := newMatchingFixture()
	ctx := context.Background()
	m := &models.Matching{ID: uuid.New()}

	matchings.On("GetByID", ctx, m.ID).Return(m, nil)

	_, err := svc.Complete(ctx, m.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeValidation, err.(*apperror.AppError).Code)
}

func TestMatchingService_Complete_SetsMatchedAt(t *testing.T) {
	matchings, _, _, svc := newMatchingFixture()
	ctx := context.Background()
	m := &models.Matching{ID: uuid.New(), ContractStatus: models.SignState{IsSigned: true}}

	matchings.On("GetByID", ctx, m.ID).Return(m, nil)
	matchings.On("Update", ctx, m).Return(nil)

	got, err := svc.Complete(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, got.IsMatched)
	require.NotNil(t, got.MatchedAt)
}

func TestMatchingService_Reset_ReleasesNurse(t *testing.T) {
	matchings, _, profiles, svc := newMatchingFixture()
	ctx := context.Background()
	nurseID := uuid.New()
	m := &models.Matching{ID: uuid.New(), NurseID: nurseID, IsMatched: true}

	matchings.On("GetByID", ctx, m.ID).Return(m, nil)
	matchings.On("Update", ctx, m).Return(nil)
	profiles.On("SetNurseAvailability", ctx, nurseID, true).Return(nil)

	got, err := svc.Reset(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, got.IsMatched)
	profiles.AssertExpectations(t)
}

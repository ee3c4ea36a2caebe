package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carelinkvn/carelink-backend/internal/models"
	"github.com/carelinkvn/carelink-backend/internal/pkg/apperror"
)

func newOtpFixture(t *testing.T) (*miniredis.Miniredis, *mockCodeSender, *OtpService) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sender := new(mockCodeSender)
	return mr, sender, NewOtpService(client, sender, time.Hour)
}

func TestOtpService_Request_StoresCodeWithTTL(t *testing.T) {
	mr, sender, svc := newOtpFixture(t)
	ctx := context.Background()
	scopeID := uuid.New()

	sender.On("SendCode", "elderly@example.com", mock.AnythingOfType("string")).Return(nil)

	err := svc.Request(ctx, scopeID, models.RoleElderly, "elderly@example.com")
	require.NoError(t, err)

	key := signOtpKey(scopeID, models.RoleElderly)
	stored, err := mr.Get(key)
	require.NoError(t, err)
	assert.Len(t, stored, 6)
	assert.Equal(t, time.Hour, mr.TTL(key))
	sender.AssertExpectations(t)
}

func TestOtpService_Request_InvalidRole(t *testing.T) {
	_, _, svc := newOtpFixture(t)

	err := svc.Request(context.Background(), uuid.New(), models.RoleAdmin, "admin@example.com")
	assert.Error(t, err)
	assert.Equal(t, apperror.ErrCodeValidation, err.(*apperror.AppError).Code)
}

func TestOtpService_Confirm_SuccessConsumesCode(t *testing.T) {
	mr, _, svc := newOtpFixture(t)
	ctx := context.Background()
	scopeID := uuid.New()

	key := signOtpKey(scopeID, models.RoleNurse)
	mr.Set(key, "123456")

	err := svc.Confirm(ctx, scopeID, models.RoleNurse, "123456")
	require.NoError(t, err)

	assert.False(t, mr.Exists(key), "a confirmed code must be single-use")
}

func TestOtpService_Confirm_WrongCodeKeepsStoredCode(t *testing.T) {
	mr, _, svc := newOtpFixture(t)
	ctx := context.Background()
	scopeID := uuid.New()

	key := signOtpKey(scopeID, models.RoleNurse)
	mr.Set(key, "123456")

	err := svc.Confirm(ctx, scopeID, models.RoleNurse, "000000")
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeOtp, err.(*apperror.AppError).Code)

	// The right code must still work afterwards.
	assert.True(t, mr.Exists(key))
	assert.NoError(t, svc.Confirm(ctx, scopeID, models.RoleNurse, "123456"))
}

func TestOtpService_Confirm_ExpiredOrMissing(t *testing.T) {
	_, _, svc := newOtpFixture(t)

	err := svc.Confirm(context.Background(), uuid.New(), models.RoleElderly, "123456")
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeOtp, err.(*apperror.AppError).Code)
}

func TestOtpService_PerRoleCodesAreIndependent(t *testing.T) {
	mr, _, svc := newOtpFixture(t)
	ctx := context.Background()
	scopeID := uuid.New()

	mr.Set(signOtpKey(scopeID, models.RoleElderly), "111111")
	mr.Set(signOtpKey(scopeID, models.RoleNurse), "222222")

	assert.NoError(t, svc.Confirm(ctx, scopeID, models.RoleElderly, "111111"))
	assert.Error(t, svc.Confirm(ctx, scopeID, models.RoleNurse, "111111"))
	assert.NoError(t, svc.Confirm(ctx, scopeID, models.RoleNurse, "222222"))
}

func TestGenerateCode_SixDigits(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		assert.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9')
		}
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 1)
}

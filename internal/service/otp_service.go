package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/carelinkvn/carelink-backend/internal/mailer"
	"github.com/carelinkvn/carelink-backend/internal/models"
	"github.com/carelinkvn/carelink-backend/internal/pkg/apperror"
)

// OtpService issues and verifies short-lived signing codes. Codes live in
// Redis keyed by (scope, role); expiry is delegated entirely to Redis TTL.
type OtpService struct {
	redis  *redis.Client
	mailer mailer.CodeSender
	ttl    time.Duration
}

func NewOtpService(redisClient *redis.Client, sender mailer.CodeSender, ttl time.Duration) *OtpService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &OtpService{redis: redisClient, mailer: sender, ttl: ttl}
}

func signOtpKey(scopeID uuid.UUID, role string) string {
	return fmt.Sprintf("sign_otp:%s:%s", scopeID, role)
}

// Request generates a code for (scope, role), stores it with a TTL and
// dispatches it to the given address. A dispatch failure is surfaced to the
// caller; whether to swallow it is the caller's decision.
func (s *OtpService) Request(ctx context.Context, scopeID uuid.UUID, role, email string) error {
	if _, ok := models.ValidSigningRoles[role]; !ok {
		return apperror.New(apperror.ErrCodeValidation, "invalid role for signing")
	}

	code, err := generateCode()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "cannot generate signing code")
	}
	if err := s.redis.Set(ctx, signOtpKey(scopeID, role), code, s.ttl).Err(); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeExternalService, "cannot store signing code")
	}

	if err := s.mailer.SendCode(email, code); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeExternalService, "cannot deliver signing code")
	}
	return nil
}

// Confirm checks the supplied code against the stored one and consumes it on
// success. A mismatched attempt leaves the stored code in place until it
// expires; only a successful confirmation is single-use.
func (s *OtpService) Confirm(ctx context.Context, scopeID uuid.UUID, role, code string) error {
	if _, ok := models.ValidSigningRoles[role]; !ok {
		return apperror.New(apperror.ErrCodeValidation, "invalid role for signing")
	}

	key := signOtpKey(scopeID, role)
	stored, err := s.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return apperror.New(apperror.ErrCodeOtp, "signing code expired or was never requested")
	}
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeExternalService, "cannot read signing code")
	}

	if stored != code {
		return apperror.New(apperror.ErrCodeOtp, "signing code does not match")
	}

	if err := s.redis.Del(ctx, key).Err(); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeExternalService, "cannot consume signing code")
	}
	return nil
}

// generateCode returns a random 6-digit numeric code, uniform over the
// full 000000-999999 range.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/carelinkvn/carelink-backend/internal/models"
	"github.com/carelinkvn/carelink-backend/internal/pkg/apperror"
	"github.com/carelinkvn/carelink-backend/internal/repository"
	"github.com/carelinkvn/carelink-backend/internal/validation"
)

// MatchingStore is the persistence surface of the matching state machine.
type MatchingStore interface {
	Create(ctx context.Context, m *models.Matching) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Matching, error)
	List(ctx context.Context, filter repository.MatchingFilter, limit, offset int) ([]models.Matching, int, error)
	Update(ctx context.Context, m *models.Matching) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// DraftContractStore creates the drafting contract tied to a new matching.
type DraftContractStore interface {
	Create(ctx context.Context, c *models.Contract) error
}

// MatchingService owns the lifecycle of a nurse/elderly pairing.
type MatchingService struct {
	matchings MatchingStore
	contracts DraftContractStore
	profiles  ProfileDirectory
}

func NewMatchingService(matchings MatchingStore, contracts DraftContractStore, profiles ProfileDirectory) *MatchingService {
	return &MatchingService{matchings: matchings, contracts: contracts, profiles: profiles}
}

// CreateMatchingInput carries the fields of a new matching.
type CreateMatchingInput struct {
	NurseID      uuid.UUID
	ServiceLevel string
	BookingTime  []models.BookingWindow
}

// Create opens a matching for the acting elderly client against an existing
// nurse, drafts the 1:1 contract and takes the nurse out of the available
// pool. Contract drafting and the availability flip are separate writes;
// each is idempotent so a failed creation can be retried.
func (s *MatchingService) Create(ctx context.Context, actor Actor, in CreateMatchingInput) (*models.Matching, error) {
	if actor.Role != models.RoleElderly {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only elderly clients can create a matching")
	}

	elderly, err := s.profiles.ElderlyPartyByUserID(ctx, actor.UserID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return nil, apperror.New(apperror.ErrCodeNotFound, "elderly profile not found")
	}
	if err != nil {
		return nil, err
	}

	if _, ok := models.ValidServiceLevels[in.ServiceLevel]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "invalid service level")
	}
	if err := validation.ValidateBookingWindows(in.BookingTime); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	nurse, err := s.profiles.NurseParty(ctx, in.NurseID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return nil, apperror.New(apperror.ErrCodeNotFound, "nurse not found")
	}
	if err != nil {
		return nil, err
	}

	m := &models.Matching{
		NurseID:      nurse.ProfileID,
		ElderlyID:    elderly.ProfileID,
		ServiceLevel: in.ServiceLevel,
		BookingTime:  in.BookingTime,
		ResetAt:      time.Now(),
	}
	if err := s.matchings.Create(ctx, m); err != nil {
		return nil, err
	}

	draft := &models.Contract{
		MatchingID: m.ID,
		ElderlyID:  elderly.ProfileID,
		NurseID:    nurse.ProfileID,
		Status:     models.ContractStatusPending,
		CreatedBy:  actor.UserID.String(),
		PaymentDetails: models.PaymentDetails{
			ServiceLevel: in.ServiceLevel,
			Currency:     models.CurrencyVND,
		},
		Terms: pq.StringArray{},
	}
	if err := s.contracts.Create(ctx, draft); err != nil && !errors.Is(err, repository.ErrContractExists) {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "matching created but contract drafting failed")
	}

	if err := s.profiles.SetNurseAvailability(ctx, nurse.ProfileID, false); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "matching created but nurse availability update failed")
	}

	return m, nil
}

func (s *MatchingService) Get(ctx context.Context, id uuid.UUID) (*models.Matching, error) {
	m, err := s.matchings.GetByID(ctx, id)
	if errors.Is(err, repository.ErrMatchingNotFound) {
		return nil, apperror.New(apperror.ErrCodeNotFound, "matching not found")
	}
	return m, err
}

func (s *MatchingService) List(ctx context.Context, filter repository.MatchingFilter, page, limit int) ([]models.Matching, int, error) {
	limit, offset := clampPagination(page, limit)
	return s.matchings.List(ctx, filter, limit, offset)
}

// UpdateBookingTime replaces the booking window list wholesale.
func (s *MatchingService) UpdateBookingTime(ctx context.Context, id uuid.UUID, windows []models.BookingWindow) (*models.Matching, error) {
	if err := validation.ValidateBookingWindows(windows); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	m.BookingTime = windows
	if err := s.update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordSignature is the legacy direct-signature path: it stores the raw
// signature for one role and recomputes the fully-signed flag.
func (s *MatchingService) RecordSignature(ctx context.Context, id uuid.UUID, role, signature string, contractHash *string) (*models.Matching, error) {
	if _, ok := models.ValidSigningRoles[role]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "invalid role for signing")
	}

	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if role == models.RoleElderly {
		m.ContractStatus.ElderlySignature = &signature
	} else {
		m.ContractStatus.NurseSignature = &signature
	}
	if contractHash != nil {
		m.ContractStatus.ContractHash = contractHash
	}
	m.ContractStatus.Recompute()

	if err := s.update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// ReportViolation files a violation report and forcibly unmatches the pair.
func (s *MatchingService) ReportViolation(ctx context.Context, id, reporterID uuid.UUID, reason string) (*models.Matching, error) {
	if reason == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "violation reason is required")
	}

	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	m.ViolationReport = &models.ViolationReport{
		ReportedBy: reporterID,
		Reason:     reason,
		Timestamp:  time.Now(),
	}
	m.IsMatched = false

	if err := s.update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Complete marks a fully-signed matching as matched.
func (s *MatchingService) Complete(ctx context.Context, id uuid.UUID) (*models.Matching, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !m.ContractStatus.IsSigned {
		return nil, apperror.New(apperror.ErrCodeValidation, "contract must be signed by both parties")
	}

	now := time.Now()
	m.IsMatched = true
	m.MatchedAt = &now

	if err := s.update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Reset unmatches the pair and releases the nurse back into the pool.
func (s *MatchingService) Reset(ctx context.Context, id uuid.UUID) (*models.Matching, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	m.IsMatched = false
	m.ResetAt = time.Now()

	if err := s.update(ctx, m); err != nil {
		return nil, err
	}

	if err := s.profiles.SetNurseAvailability(ctx, m.NurseID, true); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "matching reset but nurse availability update failed")
	}
	return m, nil
}

func (s *MatchingService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.matchings.Delete(ctx, id)
	if errors.Is(err, repository.ErrMatchingNotFound) {
		return apperror.New(apperror.ErrCodeNotFound, "matching not found")
	}
	return err
}

func (s *MatchingService) update(ctx context.Context, m *models.Matching) error {
	err := s.matchings.Update(ctx, m)
	if errors.Is(err, repository.ErrMatchingNotFound) {
		return apperror.New(apperror.ErrCodeNotFound, "matching not found")
	}
	return err
}

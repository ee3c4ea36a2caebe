package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/carelinkvn/carelink-backend/internal/models"
)

// Actor identifies the authenticated account performing an operation.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

// ProfileDirectory resolves the profile-id / account-id indirection and owns
// the nurse-availability transition. Backed by repository.UserRepository.
type ProfileDirectory interface {
	ElderlyParty(ctx context.Context, profileID uuid.UUID) (*models.Party, error)
	NurseParty(ctx context.Context, profileID uuid.UUID) (*models.Party, error)
	ElderlyPartyByUserID(ctx context.Context, userID uuid.UUID) (*models.Party, error)
	NursePartyByUserID(ctx context.Context, userID uuid.UUID) (*models.Party, error)
	SetNurseAvailability(ctx context.Context, nurseID uuid.UUID, available bool) error
}

// clampPagination normalizes page/limit query values into limit/offset.
func clampPagination(page, limit int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}
	return limit, (page - 1) * limit
}

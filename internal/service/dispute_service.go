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
)

// DisputeStore is the persistence surface of dispute handling.
type DisputeStore interface {
	Create(ctx context.Context, d *models.Dispute) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, resolution *string, resolvedAt *time.Time) (*models.Dispute, error)
	List(ctx context.Context, filter repository.DisputeFilter, limit, offset int) ([]models.Dispute, int, error)
}

// TransactionReader looks up the transaction a dispute is filed over.
type TransactionReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
}

// DisputeService files and resolves conflicts over settled transactions.
type DisputeService struct {
	disputes     DisputeStore
	transactions TransactionReader
	profiles     ProfileDirectory
}

func NewDisputeService(disputes DisputeStore, transactions TransactionReader, profiles ProfileDirectory) *DisputeService {
	return &DisputeService{disputes: disputes, transactions: transactions, profiles: profiles}
}

// CreateDisputeInput carries the fields of a new dispute.
type CreateDisputeInput struct {
	TransactionID uuid.UUID
	Reason        string
	Evidences     []string
}

// Create files a dispute over a transaction. The actor must be one of the
// transaction's parties; the other party becomes the defendant.
func (s *DisputeService) Create(ctx context.Context, actor Actor, in CreateDisputeInput) (*models.Dispute, error) {
	if in.Reason == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "dispute reason is required")
	}

	tx, err := s.transactions.GetByID(ctx, in.TransactionID)
	if errors.Is(err, repository.ErrTransactionNotFound) {
		return nil, apperror.New(apperror.ErrCodeNotFound, "transaction not found")
	}
	if err != nil {
		return nil, err
	}

	d := &models.Dispute{
		TransactionID: tx.ID,
		Reason:        in.Reason,
		Evidences:     pq.StringArray(in.Evidences),
		Status:        models.DisputeStatusOpen,
	}
	if d.Evidences == nil {
		d.Evidences = pq.StringArray{}
	}

	switch actor.Role {
	case models.RoleElderly:
		party, err := s.profiles.ElderlyPartyByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, apperror.New(apperror.ErrCodeForbidden, "no elderly profile for this account")
		}
		if party.ProfileID != tx.ElderlyID {
			return nil, apperror.New(apperror.ErrCodeForbidden, "you are not a party to this transaction")
		}
		d.ComplainantID = tx.ElderlyID
		d.ComplainantRole = models.RoleElderly
		d.DefendantID = tx.NurseID
		d.DefendantRole = models.RoleNurse
	case models.RoleNurse:
		party, err := s.profiles.NursePartyByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, apperror.New(apperror.ErrCodeForbidden, "no nurse profile for this account")
		}
		if party.ProfileID != tx.NurseID {
			return nil, apperror.New(apperror.ErrCodeForbidden, "you are not a party to this transaction")
		}
		d.ComplainantID = tx.NurseID
		d.ComplainantRole = models.RoleNurse
		d.DefendantID = tx.ElderlyID
		d.DefendantRole = models.RoleElderly
	default:
		return nil, apperror.New(apperror.ErrCodeForbidden, "only transaction parties can open a dispute")
	}

	if err := s.disputes.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DisputeService) Get(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	d, err := s.disputes.GetByID(ctx, id)
	if errors.Is(err, repository.ErrDisputeNotFound) {
		return nil, apperror.New(apperror.ErrCodeNotFound, "dispute not found")
	}
	return d, err
}

// List returns disputes scoped to the actor: parties see only disputes they
// are involved in, admins see everything.
func (s *DisputeService) List(ctx context.Context, actor Actor, filter repository.DisputeFilter, page, limit int) ([]models.Dispute, int, error) {
	if filter.Status != "" {
		if _, ok := models.ValidDisputeStatuses[filter.Status]; !ok {
			return nil, 0, apperror.New(apperror.ErrCodeValidation, "invalid dispute status")
		}
	}

	switch actor.Role {
	case models.RoleAdmin:
		// unrestricted
	case models.RoleElderly:
		party, err := s.profiles.ElderlyPartyByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, 0, apperror.New(apperror.ErrCodeForbidden, "no elderly profile for this account")
		}
		filter.PartyID = &party.ProfileID
	case models.RoleNurse:
		party, err := s.profiles.NursePartyByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, 0, apperror.New(apperror.ErrCodeForbidden, "no nurse profile for this account")
		}
		filter.PartyID = &party.ProfileID
	default:
		return nil, 0, apperror.New(apperror.ErrCodeForbidden, "unknown role")
	}

	limit, offset := clampPagination(page, limit)
	return s.disputes.List(ctx, filter, limit, offset)
}

// UpdateStatus transitions a dispute. resolved_at is stamped exactly when
// the dispute reaches a terminal status, and a resolution text is required
// to resolve in the complainant's favor.
func (s *DisputeService) UpdateStatus(ctx context.Context, id uuid.UUID, status string, resolution *string) (*models.Dispute, error) {
	if _, ok := models.ValidDisputeStatuses[status]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "invalid dispute status")
	}
	if status == models.DisputeStatusResolved && (resolution == nil || *resolution == "") {
		return nil, apperror.New(apperror.ErrCodeValidation, "a resolution is required to resolve a dispute")
	}

	var resolvedAt *time.Time
	if status == models.DisputeStatusResolved || status == models.DisputeStatusRejected {
		now := time.Now()
		resolvedAt = &now
	}

	d, err := s.disputes.UpdateStatus(ctx, id, status, resolution, resolvedAt)
	if errors.Is(err, repository.ErrDisputeNotFound) {
		return nil, apperror.New(apperror.ErrCodeNotFound, "dispute not found")
	}
	return d, err
}

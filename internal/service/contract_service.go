package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/carelinkvn/carelink-backend/internal/ledger"
	"github.com/carelinkvn/carelink-backend/internal/logger"
	"github.com/carelinkvn/carelink-backend/internal/models"
	"github.com/carelinkvn/carelink-backend/internal/pkg/apperror"
	"github.com/carelinkvn/carelink-backend/internal/repository"
)

// ContractStore is the persistence surface of the contract lifecycle.
type ContractStore interface {
	Create(ctx context.Context, c *models.Contract) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	GetByMatchingID(ctx context.Context, matchingID uuid.UUID) (*models.Contract, error)
	List(ctx context.Context, status string, limit, offset int) ([]models.Contract, int, error)
	Update(ctx context.Context, c *models.Contract) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TransactionDeriver creates the settlement transaction of a filled contract.
type TransactionDeriver interface {
	DeriveFromContract(ctx context.Context, c *models.Contract) (*models.Transaction, error)
}

// SignCodeChannel issues and verifies one-time signing codes.
type SignCodeChannel interface {
	Request(ctx context.Context, scopeID uuid.UUID, role, email string) error
	Confirm(ctx context.Context, scopeID uuid.UUID, role, code string) error
}

// ContractService drives a contract from drafting through two-party signing.
type ContractService struct {
	contracts    ContractStore
	matchings    MatchingStore
	transactions TransactionDeriver
	otp          SignCodeChannel
	profiles     ProfileDirectory
	ledger       ledger.Ledger
}

func NewContractService(
	contracts ContractStore,
	matchings MatchingStore,
	transactions TransactionDeriver,
	otp SignCodeChannel,
	profiles ProfileDirectory,
	ledgerClient ledger.Ledger,
) *ContractService {
	return &ContractService{
		contracts:    contracts,
		matchings:    matchings,
		transactions: transactions,
		otp:          otp,
		profiles:     profiles,
		ledger:       ledgerClient,
	}
}

func (s *ContractService) Get(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	c, err := s.contracts.GetByID(ctx, id)
	if errors.Is(err, repository.ErrContractNotFound) {
		return nil, apperror.New(apperror.ErrCodeNotFound, "contract not found")
	}
	return c, err
}

func (s *ContractService) GetByMatching(ctx context.Context, matchingID uuid.UUID) (*models.Contract, error) {
	c, err := s.contracts.GetByMatchingID(ctx, matchingID)
	if errors.Is(err, repository.ErrContractNotFound) {
		return nil, apperror.New(apperror.ErrCodeNotFound, "contract not found")
	}
	return c, err
}

func (s *ContractService) List(ctx context.Context, status string, page, limit int) ([]models.Contract, int, error) {
	if status != "" {
		if _, ok := models.ValidContractStatuses[status]; !ok {
			return nil, 0, apperror.New(apperror.ErrCodeValidation, "invalid contract status")
		}
	}
	limit, offset := clampPagination(page, limit)
	return s.contracts.List(ctx, status, limit, offset)
}

// UpdateContractInput carries the administratively editable fields.
type UpdateContractInput struct {
	Status        *string
	Terms         []string
	EffectiveDate *time.Time
	ExpiryDate    *time.Time
}

// Update edits the administrative fields of a contract and records the edit
// in the history log.
func (s *ContractService) Update(ctx context.Context, actor Actor, id uuid.UUID, in UpdateContractInput) (*models.Contract, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Status != nil {
		if _, ok := models.ValidContractStatuses[*in.Status]; !ok {
			return nil, apperror.New(apperror.ErrCodeValidation, "invalid contract status")
		}
		c.Status = *in.Status
	}
	if in.Terms != nil {
		c.Terms = pq.StringArray(in.Terms)
	}
	if in.EffectiveDate != nil {
		c.EffectiveDate = in.EffectiveDate
	}
	if in.ExpiryDate != nil {
		c.ExpiryDate = in.ExpiryDate
	}
	c.AppendHistory("updated", actor.UserID.String())
	c.LastModifiedAt = time.Now()

	if err := s.update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// FillContractInput carries everything the filling party supplies to complete
// a drafted contract.
type FillContractInput struct {
	PaymentDetails models.PaymentDetailsPatch
	Terms          []string
	EffectiveDate  *time.Time
	ExpiryDate     *time.Time
}

// FillDetails completes a pending contract: payment details are merged,
// terms and dates applied, the settlement transaction derived and signing
// codes dispatched to both parties. The transaction is derived before
// anything is persisted, so a failed derivation leaves no trace and the fill
// can simply be retried. The filled_details history entry is written at most
// once per contract. Code dispatch is best-effort; either party can
// re-request a code afterwards.
func (s *ContractService) FillDetails(ctx context.Context, actor Actor, id uuid.UUID, in FillContractInput) (*models.Contract, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if c.Status != models.ContractStatusPending {
		return nil, apperror.New(apperror.ErrCodeValidation, "only pending contracts can be filled")
	}
	if in.PaymentDetails.ServiceLevel != nil {
		if _, ok := models.ValidServiceLevels[*in.PaymentDetails.ServiceLevel]; !ok {
			return nil, apperror.New(apperror.ErrCodeValidation, "invalid service level")
		}
	}
	if in.PaymentDetails.Currency != nil {
		if _, ok := models.ValidCurrencies[*in.PaymentDetails.Currency]; !ok {
			return nil, apperror.New(apperror.ErrCodeValidation, "invalid currency")
		}
	}

	c.PaymentDetails.Merge(in.PaymentDetails)
	if in.Terms != nil {
		c.Terms = pq.StringArray(in.Terms)
	}
	if in.EffectiveDate != nil {
		c.EffectiveDate = in.EffectiveDate
	}
	if in.ExpiryDate != nil {
		c.ExpiryDate = in.ExpiryDate
	}
	if !c.HistoryLogs.HasAction(models.HistoryActionFilledDetails) {
		c.AppendHistory(models.HistoryActionFilledDetails, actor.UserID.String())
	}
	c.LastModifiedAt = time.Now()

	if c.PaymentDetails.TransactionID == nil {
		tx, err := s.transactions.DeriveFromContract(ctx, c)
		if err != nil {
			return nil, err
		}
		c.PaymentDetails.TransactionID = &tx.ID
	}

	if err := s.update(ctx, c); err != nil {
		return nil, err
	}

	s.dispatchSigningCodes(ctx, c)

	return c, nil
}

// dispatchSigningCodes sends a code to each party. Failures are logged and
// swallowed: signing stays reachable through the re-request endpoint.
func (s *ContractService) dispatchSigningCodes(ctx context.Context, c *models.Contract) {
	elderly, err := s.profiles.ElderlyParty(ctx, c.ElderlyID)
	if err == nil {
		err = s.otp.Request(ctx, c.MatchingID, models.RoleElderly, elderly.Email)
	}
	if err != nil && logger.Log != nil {
		logger.Log.WithFields(map[string]interface{}{
			"contract_id": c.ID,
			"role":        models.RoleElderly,
			"error":       err.Error(),
		}).Warn("contract service: signing code dispatch failed")
	}

	nurse, err := s.profiles.NurseParty(ctx, c.NurseID)
	if err == nil {
		err = s.otp.Request(ctx, c.MatchingID, models.RoleNurse, nurse.Email)
	}
	if err != nil && logger.Log != nil {
		logger.Log.WithFields(map[string]interface{}{
			"contract_id": c.ID,
			"role":        models.RoleNurse,
			"error":       err.Error(),
		}).Warn("contract service: signing code dispatch failed")
	}
}

// RequestSignatureCode re-issues the signing code for one party. The actor
// must be that party; the code goes to the party's registered email.
func (s *ContractService) RequestSignatureCode(ctx context.Context, actor Actor, id uuid.UUID) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	party, err := s.resolveSigningParty(ctx, c, actor)
	if err != nil {
		return err
	}
	return s.otp.Request(ctx, c.MatchingID, party.Role, party.Email)
}

// ConfirmSignature verifies the one-time code and records the actor's
// signature. When the second party signs, the matching is marked matched,
// the contract activated and the agreement recorded on the ledger. The
// ledger write happens after the local state is persisted; a ledger failure
// leaves the signatures in place and is surfaced as an external error.
func (s *ContractService) ConfirmSignature(ctx context.Context, actor Actor, id uuid.UUID, code string) (*models.Contract, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	party, err := s.resolveSigningParty(ctx, c, actor)
	if err != nil {
		return nil, err
	}

	if party.Role == models.RoleElderly && c.ElderlySigned {
		return nil, apperror.New(apperror.ErrCodeConflict, "elderly party already signed this contract")
	}
	if party.Role == models.RoleNurse && c.NurseSigned {
		return nil, apperror.New(apperror.ErrCodeConflict, "nurse party already signed this contract")
	}

	if err := s.otp.Confirm(ctx, c.MatchingID, party.Role, code); err != nil {
		return nil, err
	}

	m, err := s.matchings.GetByID(ctx, c.MatchingID)
	if errors.Is(err, repository.ErrMatchingNotFound) {
		return nil, apperror.New(apperror.ErrCodeNotFound, "matching not found")
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	mark := "otp:" + now.UTC().Format(time.RFC3339)
	if party.Role == models.RoleElderly {
		c.ElderlySigned = true
		c.SignedByElderly = &now
		m.ContractStatus.ElderlySignature = &mark
		c.AppendHistory(models.HistoryActionElderlySigned, actor.UserID.String())
	} else {
		c.NurseSigned = true
		c.SignedByNurse = &now
		m.ContractStatus.NurseSignature = &mark
		c.AppendHistory(models.HistoryActionNurseSigned, actor.UserID.String())
	}
	m.ContractStatus.Recompute()

	if m.ContractStatus.IsSigned {
		c.Status = models.ContractStatusActive
		if c.EffectiveDate == nil {
			c.EffectiveDate = &now
		}
		m.IsMatched = true
		m.MatchedAt = &now
	}
	c.LastModifiedAt = now

	if err := s.update(ctx, c); err != nil {
		return nil, err
	}
	if err := s.matchings.Update(ctx, m); err != nil {
		return nil, err
	}

	if m.ContractStatus.IsSigned {
		if err := s.recordAgreement(ctx, c, m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// recordAgreement writes the fully-signed agreement to the ledger and stores
// the returned proof hash on both the contract and the matching.
func (s *ContractService) recordAgreement(ctx context.Context, c *models.Contract, m *models.Matching) error {
	elderly, err := s.profiles.ElderlyParty(ctx, c.ElderlyID)
	if err != nil {
		return err
	}
	nurse, err := s.profiles.NurseParty(ctx, c.NurseID)
	if err != nil {
		return err
	}
	if elderly.LedgerAddress == nil || nurse.LedgerAddress == nil {
		return apperror.New(apperror.ErrCodeValidation, "both parties need a ledger address before the agreement can be recorded")
	}

	hash, err := s.ledger.RecordAgreement(ctx, m.ID.String(), *elderly.LedgerAddress, *nurse.LedgerAddress)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeExternalService, "agreement could not be recorded on the ledger")
	}

	c.ContractHash = &hash
	m.ContractStatus.ContractHash = &hash

	if err := s.update(ctx, c); err != nil {
		return err
	}
	return s.matchings.Update(ctx, m)
}

// resolveSigningParty maps the acting account onto one side of the contract.
func (s *ContractService) resolveSigningParty(ctx context.Context, c *models.Contract, actor Actor) (*models.Party, error) {
	switch actor.Role {
	case models.RoleElderly:
		party, err := s.profiles.ElderlyPartyByUserID(ctx, actor.UserID)
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, apperror.New(apperror.ErrCodeForbidden, "no elderly profile for this account")
		}
		if err != nil {
			return nil, err
		}
		if party.ProfileID != c.ElderlyID {
			return nil, apperror.New(apperror.ErrCodeForbidden, "you are not a party to this contract")
		}
		return party, nil
	case models.RoleNurse:
		party, err := s.profiles.NursePartyByUserID(ctx, actor.UserID)
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, apperror.New(apperror.ErrCodeForbidden, "no nurse profile for this account")
		}
		if err != nil {
			return nil, err
		}
		if party.ProfileID != c.NurseID {
			return nil, apperror.New(apperror.ErrCodeForbidden, "you are not a party to this contract")
		}
		return party, nil
	default:
		return nil, apperror.New(apperror.ErrCodeForbidden, "only contract parties can sign")
	}
}

func (s *ContractService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.contracts.Delete(ctx, id)
	if errors.Is(err, repository.ErrContractNotFound) {
		return apperror.New(apperror.ErrCodeNotFound, "contract not found")
	}
	return err
}

func (s *ContractService) update(ctx context.Context, c *models.Contract) error {
	err := s.contracts.Update(ctx, c)
	if errors.Is(err, repository.ErrContractNotFound) {
		return apperror.New(apperror.ErrCodeNotFound, "contract not found")
	}
	return err
}

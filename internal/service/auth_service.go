package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/google/uuid"

	"github.com/carelinkvn/carelink-backend/internal/logger"
	"github.com/carelinkvn/carelink-backend/internal/models"
	"github.com/carelinkvn/carelink-backend/internal/pkg/apperror"
	"github.com/carelinkvn/carelink-backend/internal/repository"
	"github.com/carelinkvn/carelink-backend/internal/validation"
)

// AuthRepository is the storage surface of registration and login.
type AuthRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error
	CreateElderlyProfile(ctx context.Context, profile *models.ElderlyProfile) error
	CreateNurseProfile(ctx context.Context, profile *models.NurseProfile) error
}

// AuthService handles registration, login and token refresh. Refresh tokens
// are stateless: a signed token is its own proof, nothing is stored server
// side.
type AuthService struct {
	repo         AuthRepository
	tokenManager *TokenManager
}

func NewAuthService(repo AuthRepository, tokenManager *TokenManager) *AuthService {
	return &AuthService{repo: repo, tokenManager: tokenManager}
}

// RegisterInput carries the sign-up fields. Ledger credentials are optional
// at registration and required only once settlement is reached.
type RegisterInput struct {
	Email         string
	Password      string
	FullName      string
	Role          string
	LedgerAddress *string
	LedgerKey     *string

	// elderly
	Address      *string
	MedicalNotes *string

	// nurse
	Certification *string
	YearsExp      int
}

// LoginInput carries the credentials for login.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is the outcome of registration, login or refresh.
type AuthResult struct {
	User      *models.User
	TokenPair *TokenPair
}

// Register creates an account plus its role profile and signs the user in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if in.Role != models.RoleElderly && in.Role != models.RoleNurse {
		return nil, apperror.New(apperror.ErrCodeValidation, "role must be elderly or nurse")
	}

	if _, err := s.repo.GetUserByEmail(ctx, in.Email); err == nil {
		return nil, apperror.New(apperror.ErrCodeConflict, "email is already registered")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "cannot hash password")
	}

	user := &models.User{
		Email:        strings.ToLower(in.Email),
		PasswordHash: string(passHash),
		FullName:     in.FullName,
		Role:         in.Role,
		IsActive:     true,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	switch in.Role {
	case models.RoleElderly:
		profile := &models.ElderlyProfile{
			UserID:        user.ID,
			Address:       in.Address,
			MedicalNotes:  in.MedicalNotes,
			LedgerAddress: in.LedgerAddress,
			LedgerKey:     in.LedgerKey,
		}
		if err := s.repo.CreateElderlyProfile(ctx, profile); err != nil {
			return nil, err
		}
	case models.RoleNurse:
		profile := &models.NurseProfile{
			UserID:        user.ID,
			Certification: in.Certification,
			YearsExp:      in.YearsExp,
			IsAvailable:   true,
			LedgerAddress: in.LedgerAddress,
			LedgerKey:     in.LedgerKey,
		}
		if err := s.repo.CreateNurseProfile(ctx, profile); err != nil {
			return nil, err
		}
	}

	tokenPair, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, TokenPair: tokenPair}, nil
}

// Login checks the credentials and returns a fresh token pair.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	user, err := s.repo.GetUserByEmail(ctx, in.Email)
	if err != nil {
		return nil, apperror.New(apperror.ErrCodeUnauthorized, "invalid email or password")
	}

	if !user.IsActive {
		return nil, apperror.New(apperror.ErrCodeForbidden, "account is deactivated")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperror.New(apperror.ErrCodeUnauthorized, "invalid email or password")
	}

	// Best effort: a failed timestamp update must not block the login.
	if err := s.repo.UpdateLastLoginAt(ctx, user.ID); err != nil {
		if logger.Log != nil {
			logger.Log.WithFields(map[string]interface{}{
				"user_id": user.ID,
				"error":   err.Error(),
			}).Warn("auth service: last_login_at update failed")
		}
	}

	tokenPair, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, TokenPair: tokenPair}, nil
}

// Refresh exchanges a valid refresh token for a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.tokenManager.ParseRefresh(refreshToken)
	if err != nil {
		return nil, apperror.New(apperror.ErrCodeUnauthorized, "invalid refresh token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperror.New(apperror.ErrCodeUnauthorized, "invalid refresh token")
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperror.New(apperror.ErrCodeUnauthorized, "account no longer exists")
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperror.New(apperror.ErrCodeForbidden, "account is deactivated")
	}

	tokenPair, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, TokenPair: tokenPair}, nil
}

// Me returns the account of an authenticated user.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperror.New(apperror.ErrCodeNotFound, "user not found")
	}
	return user, err
}

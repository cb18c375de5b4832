package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/motors-dealership/internal"
	"github.com/frahmantamala/motors-dealership/internal/auth"
	"github.com/frahmantamala/motors-dealership/internal/core/events"
	"github.com/frahmantamala/motors-dealership/pkg/logger"
)

const (
	NoticeProfileUpdated  = "Account information successfully updated."
	NoticePasswordUpdated = "Password successfully updated."
	NoticeLoggedOut       = "You have been logged out."
)

// Repository is the account store. Lookups return internal.ErrAccountNotFound
// when nothing matches and Create/UpdateProfile return internal.ErrEmailExists
// on a unique violation.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
	Create(ctx context.Context, a *Account) error
	UpdateProfile(ctx context.Context, id int64, firstName, lastName, email string) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

type RegisterResult struct {
	Account *Account
	Notice  string
}

type LoginResult struct {
	Identity   auth.Identity
	Credential auth.Credential
}

// UpdateResult carries the credential reissued after the account changed.
type UpdateResult struct {
	Identity   auth.Identity
	Credential auth.Credential
	Notice     string
}

type Service struct {
	repo   Repository
	hasher auth.PasswordHasher
	issuer auth.Issuer
	events events.Publisher
	logger *slog.Logger
}

func NewService(repo Repository, hasher auth.PasswordHasher, issuer auth.Issuer, publisher events.Publisher, lg *slog.Logger) *Service {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &Service{
		repo:   repo,
		hasher: hasher,
		issuer: issuer,
		events: publisher,
		logger: lg,
	}
}

// Register creates a Client account. The caller is not signed in afterwards.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*RegisterResult, error) {
	a, err := s.CreateAccount(ctx, dto, auth.RoleClient)
	if err != nil {
		return nil, err
	}
	return &RegisterResult{
		Account: a,
		Notice:  fmt.Sprintf("Congratulations, %s, you are now registered. Please log in.", a.FirstName),
	}, nil
}

// CreateAccount validates, hashes and stores a new account with the given role.
func (s *Service) CreateAccount(ctx context.Context, dto RegisterDTO, role auth.Role) (*Account, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.repo.EmailExists(ctx, dto.Email, 0)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		s.logger.Info("registration rejected, email in use", "email", dto.Email)
		return nil, internal.ErrEmailExists
	}

	hash, err := s.hasher.Hash(dto.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	a := &Account{
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		Email:        dto.Email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info("account created", "account_id", a.ID, "role", a.Role)
	s.publish(ctx, events.NewAccountEvent(events.EventTypeAccountRegistered, a.ID, a.Email, string(a.Role)))
	return a, nil
}

// Login returns the same error for an unknown email and a wrong password.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*LoginResult, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	a, err := s.repo.GetByEmail(ctx, dto.Email)
	if err != nil {
		if errors.Is(err, internal.ErrAccountNotFound) {
			s.loginFailed(ctx, dto.Email)
			return nil, internal.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	if !s.hasher.Verify(dto.Password, a.PasswordHash) {
		s.loginFailed(ctx, dto.Email)
		return nil, internal.ErrInvalidCredentials
	}

	identity := a.Identity()
	cred, err := s.issuer.Issue(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("issue credential: %w", err)
	}

	s.logger.Info("login succeeded", "account_id", a.ID)
	s.publish(ctx, events.NewAccountEvent(events.EventTypeAccountLoggedIn, a.ID, a.Email, string(a.Role)))
	return &LoginResult{Identity: identity, Credential: cred}, nil
}

func (s *Service) GetAccount(ctx context.Context, id int64) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile stores new names and email, then swaps the caller's credential
// for one that carries the re-read account.
func (s *Service) UpdateProfile(ctx context.Context, accountID int64, credential string, dto UpdateProfileDTO) (*UpdateResult, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.repo.EmailExists(ctx, dto.Email, accountID)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, internal.ErrEmailExists
	}

	if err := s.repo.UpdateProfile(ctx, accountID, dto.FirstName, dto.LastName, dto.Email); err != nil {
		return nil, err
	}

	result, err := s.reissue(ctx, accountID, credential, NoticeProfileUpdated)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.NewAccountEvent(events.EventTypeAccountProfileUpdated, accountID, result.Identity.Email, string(result.Identity.Role)))
	return result, nil
}

// ChangePassword requires the current password before storing the new hash.
func (s *Service) ChangePassword(ctx context.Context, accountID int64, credential string, dto ChangePasswordDTO) (*UpdateResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	a, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(dto.CurrentPassword, a.PasswordHash) {
		s.logger.Warn("password change rejected, current password wrong", "account_id", accountID)
		return nil, internal.ErrCurrentPasswordWrong
	}

	hash, err := s.hasher.Hash(dto.NewPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, accountID, hash); err != nil {
		return nil, err
	}
	if revoker, ok := s.issuer.(auth.AccountRevoker); ok {
		if err := revoker.RevokeAccount(ctx, accountID); err != nil {
			return nil, fmt.Errorf("revoke sessions: %w", err)
		}
	}

	result, err := s.reissue(ctx, accountID, credential, NoticePasswordUpdated)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.NewAccountEvent(events.EventTypeAccountPasswordChanged, accountID, result.Identity.Email, string(result.Identity.Role)))
	return result, nil
}

// Logout revokes the credential. Calling it twice is not an error.
func (s *Service) Logout(ctx context.Context, credential string, identity *auth.Identity) error {
	if credential != "" {
		if err := s.issuer.Revoke(ctx, credential); err != nil {
			return fmt.Errorf("revoke credential: %w", err)
		}
	}
	if identity != nil {
		s.publish(ctx, events.NewAccountEvent(events.EventTypeAccountLoggedOut, identity.ID, identity.Email, string(identity.Role)))
	}
	return nil
}

func (s *Service) reissue(ctx context.Context, accountID int64, credential, notice string) (*UpdateResult, error) {
	a, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if credential != "" {
		if err := s.issuer.Revoke(ctx, credential); err != nil {
			return nil, fmt.Errorf("revoke credential: %w", err)
		}
	}
	identity := a.Identity()
	cred, err := s.issuer.Issue(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("issue credential: %w", err)
	}
	return &UpdateResult{Identity: identity, Credential: cred, Notice: notice}, nil
}

func (s *Service) loginFailed(ctx context.Context, email string) {
	s.logger.Info("login failed", "email", email)
	s.publish(ctx, events.NewLoginFailedEvent(email))
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, e); err != nil {
		s.logger.Error("failed to publish event", "event_type", e.EventType(), "error", err)
	}
}

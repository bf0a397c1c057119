package service

import (
	"context"
	"fmt"
	"time"

	"github.com/portfolio-review-api/internal/models"
	"github.com/portfolio-review-api/internal/repository"
	"github.com/portfolio-review-api/internal/validation"
	"github.com/rs/zerolog"
)

// accountService is the concrete implementation of AccountService
type accountService struct {
	accounts repository.AccountRepository
	checker  *validation.EmailChecker
	log      zerolog.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(accounts repository.AccountRepository, checker *validation.EmailChecker, log zerolog.Logger) AccountService {
	return &accountService{
		accounts: accounts,
		checker:  checker,
		log:      log.With().Str("service", "account").Logger(),
	}
}

// EnsureAccount returns the account for the identity, creating it on first
// sight. The create path derives the safe email and display names from the
// address; an existing account is returned untouched.
func (s *accountService) EnsureAccount(ctx context.Context, identity *models.Identity) (*models.Account, error) {
	account, err := s.accounts.GetByEmail(ctx, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	if account != nil {
		return account, nil
	}

	first, last := s.checker.FullName(identity.Email)
	account = &models.Account{
		Email:     identity.Email,
		SafeEmail: validation.SafeEmail(identity.Email),
		FirstName: first,
		LastName:  last,
		Role:      models.RoleMember,
		CreatedAt: time.Now(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.log.Info().Str("email", account.Email).Msg("Account created")
	return account, nil
}

// GetAccount retrieves an account by email
func (s *accountService) GetAccount(ctx context.Context, email string) (*models.Account, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// ResolveProfile retrieves an account by raw email, falling back to the
// URL-safe form route handlers receive as path segments.
func (s *accountService) ResolveProfile(ctx context.Context, emailOrSafe string) (*models.Account, error) {
	account, err := s.accounts.GetByEmail(ctx, validation.UnsafeEmail(emailOrSafe))
	if err != nil {
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	if account == nil {
		account, err = s.accounts.GetBySafeEmail(ctx, emailOrSafe)
		if err != nil {
			return nil, fmt.Errorf("lookup account by safe email: %w", err)
		}
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// IsReviewer reports whether the account has effective reviewer privilege.
// Admins count as reviewers.
func (s *accountService) IsReviewer(ctx context.Context, email string) (bool, error) {
	account, err := s.GetAccount(ctx, email)
	if err != nil {
		return false, err
	}
	return account.IsReviewer(), nil
}

// IsAdmin reports whether the account has admin privilege
func (s *accountService) IsAdmin(ctx context.Context, email string) (bool, error) {
	account, err := s.GetAccount(ctx, email)
	if err != nil {
		return false, err
	}
	return account.IsAdmin(), nil
}

// HasAccess decides whether the viewer may see the profile's private
// comments. Fails closed: no viewer, no registered profile, or no viewer
// account all deny. Owners and reviewers are allowed.
func (s *accountService) HasAccess(ctx context.Context, viewer *models.Identity, profileEmail string) (bool, error) {
	if viewer == nil {
		return false, nil
	}

	profile, err := s.accounts.GetByEmail(ctx, profileEmail)
	if err != nil {
		return false, fmt.Errorf("lookup profile: %w", err)
	}
	if profile == nil {
		return false, nil
	}

	if viewer.Email == profileEmail {
		return true, nil
	}

	account, err := s.accounts.GetByEmail(ctx, viewer.Email)
	if err != nil {
		return false, fmt.Errorf("lookup viewer: %w", err)
	}
	if account == nil {
		return false, nil
	}
	return account.IsReviewer(), nil
}

// PromoteToReviewer grants reviewer privilege to the target account.
// Idempotent, and never demotes an admin.
func (s *accountService) PromoteToReviewer(ctx context.Context, targetEmail string) (*models.Account, error) {
	return s.promote(ctx, targetEmail, models.RoleReviewer)
}

// PromoteToAdmin grants admin privilege to the target account. Idempotent.
func (s *accountService) PromoteToAdmin(ctx context.Context, targetEmail string) (*models.Account, error) {
	return s.promote(ctx, targetEmail, models.RoleAdmin)
}

func (s *accountService) promote(ctx context.Context, targetEmail string, role models.Role) (*models.Account, error) {
	if !models.ValidRoles[role] {
		return nil, fmt.Errorf("invalid role %q", role)
	}

	account, err := s.GetAccount(ctx, targetEmail)
	if err != nil {
		return nil, err
	}

	// Promotion is monotone: reviewer->admin is allowed, admin stays admin
	if account.Role == role || (role == models.RoleReviewer && account.Role == models.RoleAdmin) {
		return account, nil
	}

	if err := s.accounts.UpdateRole(ctx, account.Email, role); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	account.Role = role

	s.log.Info().
		Str("email", account.Email).
		Str("role", string(role)).
		Msg("Account promoted")
	return account, nil
}

// ListAccounts retrieves all accounts sorted by last name, then first name
func (s *accountService) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

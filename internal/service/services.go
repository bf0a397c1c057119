package service

import (
	"context"
	"errors"

	"github.com/portfolio-review-api/internal/config"
	"github.com/portfolio-review-api/internal/flash"
	"github.com/portfolio-review-api/internal/models"
	"github.com/portfolio-review-api/internal/repository"
	"github.com/portfolio-review-api/internal/validation"
	"github.com/rs/zerolog"
)

// Sentinel errors surfaced to callers. Access denials are never errors; they
// come back as a false decision from HasAccess.
var (
	// ErrAccountNotFound indicates the referenced account does not exist
	ErrAccountNotFound = errors.New("account not found")

	// ErrUnknownSection indicates a section name outside the portfolio layout
	ErrUnknownSection = errors.New("unknown portfolio section")
)

// AccountService defines the interface for account and access operations
type AccountService interface {
	EnsureAccount(ctx context.Context, identity *models.Identity) (*models.Account, error)
	GetAccount(ctx context.Context, email string) (*models.Account, error)
	ResolveProfile(ctx context.Context, emailOrSafe string) (*models.Account, error)
	IsReviewer(ctx context.Context, email string) (bool, error)
	IsAdmin(ctx context.Context, email string) (bool, error)
	HasAccess(ctx context.Context, viewer *models.Identity, profileEmail string) (bool, error)
	PromoteToReviewer(ctx context.Context, targetEmail string) (*models.Account, error)
	PromoteToAdmin(ctx context.Context, targetEmail string) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]*models.Account, error)
}

// ReviewService defines the interface for private comment operations
type ReviewService interface {
	AddComment(ctx context.Context, author *models.Identity, profileEmail, sectionName, contents string) (*models.Comment, error)
	NewComments(ctx context.Context, viewer *models.Identity, profileEmail string, sectionName *string) ([]*models.Comment, error)
	OldComments(ctx context.Context, viewer *models.Identity, profileEmail string, sectionName *string) ([]*models.Comment, error)
	UnreadSummary(ctx context.Context, viewer *models.Identity, profileEmail string) (map[string]int, error)
	UpdatedPortfolios(ctx context.Context, viewer *models.Identity) ([]*models.PortfolioStatus, error)
	MarkViewed(ctx context.Context, viewer *models.Identity, profileEmail string, sectionName *string) error
	Sections() []string
	Counts(ctx context.Context) (map[string]int, error)
}

// FlashService defines the interface for transient user notices
type FlashService interface {
	Set(ctx context.Context, email, msgType, msg string) error
	Pop(ctx context.Context, email string) (*flash.Message, error)
}

// Services holds all service interfaces
type Services struct {
	Account AccountService
	Review  ReviewService
	Flash   FlashService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, flashStore FlashService, log zerolog.Logger) *Services {
	checker := validation.NewEmailChecker(cfg.App.EmailDomain)
	accountSvc := NewAccountService(repos.Account, checker, log)
	reviewSvc := NewReviewService(repos, models.PortfolioSections, log)

	return &Services{
		Account: accountSvc,
		Review:  reviewSvc,
		Flash:   flashStore,
	}
}

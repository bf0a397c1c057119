package repository

import (
	"context"
	"time"

	"github.com/portfolio-review-api/internal/database"
	"github.com/portfolio-review-api/internal/models"
)

// AccountRepository defines the interface for account data operations
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetBySafeEmail(ctx context.Context, safeEmail string) (*models.Account, error)
	UpdateRole(ctx context.Context, email string, role models.Role) error
	List(ctx context.Context) ([]*models.Account, error)
	Count(ctx context.Context) (int, error)
}

// CommentRepository defines the interface for comment data operations.
// Comments are append-only; every listing is sorted by timestamp descending.
// A nil sectionName matches comments in every section.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListForProfile(ctx context.Context, profileEmail string, sectionName *string) ([]*models.Comment, error)
	ListAfter(ctx context.Context, profileEmail string, after time.Time, sectionName *string) ([]*models.Comment, error)
	ListOnOrBefore(ctx context.Context, profileEmail string, cutoff time.Time, sectionName *string) ([]*models.Comment, error)
	Count(ctx context.Context) (int, error)
}

// WatermarkRepository defines the interface for watermark data operations.
// Watermarks are keyed by (viewer, profile, section); a nil section is the
// profile-wide key, distinct from any named section.
type WatermarkRepository interface {
	Create(ctx context.Context, watermark *models.Watermark) error
	Find(ctx context.Context, viewerEmail, profileEmail string, sectionName *string) (*models.Watermark, error)
	SetLastVisited(ctx context.Context, id string, visited time.Time) error
	Count(ctx context.Context) (int, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Account   AccountRepository
	Comment   CommentRepository
	Watermark WatermarkRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Account:   NewAccountRepo(db),
		Comment:   NewCommentRepo(db),
		Watermark: NewWatermarkRepo(db),
	}
}

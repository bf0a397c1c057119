package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/portfolio-review-api/internal/models"
	"github.com/portfolio-review-api/internal/repository"
	"github.com/rs/zerolog"
)

// reviewService is the concrete implementation of ReviewService
type reviewService struct {
	comments   repository.CommentRepository
	watermarks repository.WatermarkRepository
	accounts   repository.AccountRepository
	sections   []string
	log        zerolog.Logger
}

// NewReviewService creates a new ReviewService over the given portfolio
// section layout
func NewReviewService(repos *repository.Repositories, sections []string, log zerolog.Logger) ReviewService {
	return &reviewService{
		comments:   repos.Comment,
		watermarks: repos.Watermark,
		accounts:   repos.Account,
		sections:   sections,
		log:        log.With().Str("service", "review").Logger(),
	}
}

// Sections returns the portfolio section layout
func (s *reviewService) Sections() []string {
	return s.sections
}

// Counts returns row counts per entity, used by the metrics endpoint
func (s *reviewService) Counts(ctx context.Context) (map[string]int, error) {
	accounts, err := s.accounts.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count accounts: %w", err)
	}
	comments, err := s.comments.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}
	watermarks, err := s.watermarks.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count watermarks: %w", err)
	}
	return map[string]int{
		"accounts":   accounts,
		"comments":   comments,
		"watermarks": watermarks,
	}, nil
}

// AddComment records a private comment on a profile section and advances the
// author's own watermark there, so authors do not see their own comment as
// unread.
func (s *reviewService) AddComment(ctx context.Context, author *models.Identity, profileEmail, sectionName, contents string) (*models.Comment, error) {
	if !models.ValidSection(sectionName) {
		return nil, ErrUnknownSection
	}

	comment := &models.Comment{
		ID:           uuid.New().String(),
		AuthorEmail:  author.Email,
		ProfileEmail: profileEmail,
		SectionName:  sectionName,
		Contents:     sanitizeContents(contents),
		Timestamp:    time.Now(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	if err := s.MarkViewed(ctx, author, profileEmail, &sectionName); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("profile", profileEmail).
		Str("section", sectionName).
		Msg("Comment added")
	return comment, nil
}

// NewComments returns the comments the viewer has not yet seen on a profile,
// newest first. A nil sectionName covers the whole profile against the
// profile-wide watermark. Never visited means everything is new.
func (s *reviewService) NewComments(ctx context.Context, viewer *models.Identity, profileEmail string, sectionName *string) ([]*models.Comment, error) {
	watermark, err := s.ensureWatermark(ctx, viewer.Email, profileEmail, sectionName)
	if err != nil {
		return nil, err
	}
	return s.newComments(ctx, watermark, profileEmail, sectionName)
}

// OldComments returns the comments the viewer has already seen on a profile,
// newest first. A comment stamped exactly at the watermark counts as seen;
// never visited means nothing does.
func (s *reviewService) OldComments(ctx context.Context, viewer *models.Identity, profileEmail string, sectionName *string) ([]*models.Comment, error) {
	watermark, err := s.ensureWatermark(ctx, viewer.Email, profileEmail, sectionName)
	if err != nil {
		return nil, err
	}
	if watermark.LastVisited == nil {
		return []*models.Comment{}, nil
	}

	comments, err := s.comments.ListOnOrBefore(ctx, profileEmail, *watermark.LastVisited, sectionName)
	if err != nil {
		return nil, fmt.Errorf("list old comments: %w", err)
	}
	return comments, nil
}

// newComments computes the unseen half of the stream for a watermark that may
// not exist yet
func (s *reviewService) newComments(ctx context.Context, watermark *models.Watermark, profileEmail string, sectionName *string) ([]*models.Comment, error) {
	var comments []*models.Comment
	var err error
	if watermark == nil || watermark.LastVisited == nil {
		comments, err = s.comments.ListForProfile(ctx, profileEmail, sectionName)
	} else {
		comments, err = s.comments.ListAfter(ctx, profileEmail, *watermark.LastVisited, sectionName)
	}
	if err != nil {
		return nil, fmt.Errorf("list new comments: %w", err)
	}
	return comments, nil
}

// UnreadSummary reports unread comment counts per section for the viewer.
// Sections with nothing unread are omitted. This is a pure read: it never
// creates watermark rows.
func (s *reviewService) UnreadSummary(ctx context.Context, viewer *models.Identity, profileEmail string) (map[string]int, error) {
	summary := map[string]int{}
	for _, section := range s.sections {
		section := section
		watermark, err := s.watermarks.Find(ctx, viewer.Email, profileEmail, &section)
		if err != nil {
			return nil, fmt.Errorf("find watermark: %w", err)
		}

		comments, err := s.newComments(ctx, watermark, profileEmail, &section)
		if err != nil {
			return nil, err
		}
		if len(comments) > 0 {
			summary[section] = len(comments)
		}
	}
	return summary, nil
}

// UpdatedPortfolios lists the registered accounts whose portfolios hold any
// unread comments for the viewer
func (s *reviewService) UpdatedPortfolios(ctx context.Context, viewer *models.Identity) ([]*models.PortfolioStatus, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	statuses := []*models.PortfolioStatus{}
	for _, account := range accounts {
		summary, err := s.UnreadSummary(ctx, viewer, account.Email)
		if err != nil {
			return nil, err
		}
		if len(summary) > 0 {
			statuses = append(statuses, &models.PortfolioStatus{
				Account: account.ToResponse(),
				Unread:  summary,
			})
		}
	}
	return statuses, nil
}

// MarkViewed acknowledges that the viewer has just seen a profile section,
// advancing the watermark to now. A nil sectionName acknowledges the
// profile-wide overview.
func (s *reviewService) MarkViewed(ctx context.Context, viewer *models.Identity, profileEmail string, sectionName *string) error {
	watermark, err := s.ensureWatermark(ctx, viewer.Email, profileEmail, sectionName)
	if err != nil {
		return err
	}
	if err := s.watermarks.SetLastVisited(ctx, watermark.ID, time.Now()); err != nil {
		return fmt.Errorf("set last visited: %w", err)
	}
	return nil
}

// ensureWatermark finds the watermark for the exact key, creating an unvisited
// one on first read
func (s *reviewService) ensureWatermark(ctx context.Context, viewerEmail, profileEmail string, sectionName *string) (*models.Watermark, error) {
	watermark, err := s.watermarks.Find(ctx, viewerEmail, profileEmail, sectionName)
	if err != nil {
		return nil, fmt.Errorf("find watermark: %w", err)
	}
	if watermark != nil {
		return watermark, nil
	}

	watermark = &models.Watermark{
		ID:           uuid.New().String(),
		ViewerEmail:  viewerEmail,
		ProfileEmail: profileEmail,
		SectionName:  sectionName,
		LastVisited:  nil,
		CreatedAt:    time.Now(),
	}
	if err := s.watermarks.Create(ctx, watermark); err != nil {
		return nil, fmt.Errorf("create watermark: %w", err)
	}
	return watermark, nil
}

// sanitizeContents escapes comment HTML and turns newlines into line breaks
func sanitizeContents(contents string) string {
	escaped := html.EscapeString(contents)
	lines := strings.Split(strings.ReplaceAll(escaped, "\r\n", "\n"), "\n")
	return strings.Join(lines, "<br>")
}

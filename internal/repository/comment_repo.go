package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/portfolio-review-api/internal/database"
	"github.com/portfolio-review-api/internal/models"
)

// commentRepo is the concrete implementation of CommentRepository
type commentRepo struct {
	db *database.DB
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db *database.DB) CommentRepository {
	return &commentRepo{db: db}
}

// Create inserts a new comment
func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (id, author_email, profile_email, section_name, contents, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		comment.ID, comment.AuthorEmail, comment.ProfileEmail, comment.SectionName,
		comment.Contents, comment.Timestamp,
	)
	return err
}

// ListForProfile retrieves all comments on a profile, newest first. With a
// non-nil sectionName only that section's comments are returned.
func (r *commentRepo) ListForProfile(ctx context.Context, profileEmail string, sectionName *string) ([]*models.Comment, error) {
	query := `
		SELECT id, author_email, profile_email, section_name, contents, timestamp
		FROM comments
		WHERE profile_email = $1 AND ($2::text IS NULL OR section_name = $2)
		ORDER BY timestamp DESC
	`
	rows, err := r.db.QueryContext(ctx, query, profileEmail, nullString(sectionName))
	if err != nil {
		return nil, err
	}
	return r.scanAll(rows)
}

// ListAfter retrieves comments posted strictly after the given time, newest
// first.
func (r *commentRepo) ListAfter(ctx context.Context, profileEmail string, after time.Time, sectionName *string) ([]*models.Comment, error) {
	query := `
		SELECT id, author_email, profile_email, section_name, contents, timestamp
		FROM comments
		WHERE profile_email = $1 AND timestamp > $2 AND ($3::text IS NULL OR section_name = $3)
		ORDER BY timestamp DESC
	`
	rows, err := r.db.QueryContext(ctx, query, profileEmail, after, nullString(sectionName))
	if err != nil {
		return nil, err
	}
	return r.scanAll(rows)
}

// ListOnOrBefore retrieves comments posted at or before the given time,
// newest first. A comment stamped exactly at the cutoff is included.
func (r *commentRepo) ListOnOrBefore(ctx context.Context, profileEmail string, cutoff time.Time, sectionName *string) ([]*models.Comment, error) {
	query := `
		SELECT id, author_email, profile_email, section_name, contents, timestamp
		FROM comments
		WHERE profile_email = $1 AND timestamp <= $2 AND ($3::text IS NULL OR section_name = $3)
		ORDER BY timestamp DESC
	`
	rows, err := r.db.QueryContext(ctx, query, profileEmail, cutoff, nullString(sectionName))
	if err != nil {
		return nil, err
	}
	return r.scanAll(rows)
}

// Count returns the total number of comments
func (r *commentRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM comments").Scan(&count)
	return count, err
}

func (r *commentRepo) scanAll(rows *sql.Rows) ([]*models.Comment, error) {
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		var comment models.Comment
		err := rows.Scan(
			&comment.ID, &comment.AuthorEmail, &comment.ProfileEmail,
			&comment.SectionName, &comment.Contents, &comment.Timestamp,
		)
		if err != nil {
			return nil, err
		}
		comments = append(comments, &comment)
	}
	return comments, rows.Err()
}

// nullString converts an optional string to its sql representation
func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/portfolio-review-api/internal/database"
	"github.com/portfolio-review-api/internal/models"
)

// watermarkRepo is the concrete implementation of WatermarkRepository
type watermarkRepo struct {
	db *database.DB
}

// NewWatermarkRepo creates a new watermark repository
func NewWatermarkRepo(db *database.DB) WatermarkRepository {
	return &watermarkRepo{db: db}
}

// Create inserts a new watermark with no last-visited time
func (r *watermarkRepo) Create(ctx context.Context, watermark *models.Watermark) error {
	query := `
		INSERT INTO watermarks (id, viewer_email, profile_email, section_name, last_visited, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		watermark.ID, watermark.ViewerEmail, watermark.ProfileEmail,
		nullString(watermark.SectionName), nullTime(watermark.LastVisited),
		watermark.CreatedAt, time.Now(),
	)
	return err
}

// Find retrieves the watermark for the exact (viewer, profile, section) key.
// A nil sectionName matches only the profile-wide watermark. Returns nil when
// no watermark exists; never creates one.
func (r *watermarkRepo) Find(ctx context.Context, viewerEmail, profileEmail string, sectionName *string) (*models.Watermark, error) {
	query := `
		SELECT id, viewer_email, profile_email, section_name, last_visited, created_at, updated_at
		FROM watermarks
		WHERE viewer_email = $1 AND profile_email = $2 AND section_name IS NOT DISTINCT FROM $3
	`
	var watermark models.Watermark
	var section sql.NullString
	var visited sql.NullTime
	err := r.db.QueryRowContext(ctx, query, viewerEmail, profileEmail, nullString(sectionName)).Scan(
		&watermark.ID, &watermark.ViewerEmail, &watermark.ProfileEmail,
		&section, &visited, &watermark.CreatedAt, &watermark.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if section.Valid {
		watermark.SectionName = &section.String
	}
	if visited.Valid {
		watermark.LastVisited = &visited.Time
	}
	return &watermark, nil
}

// SetLastVisited advances a watermark to the given time. Last write wins on
// concurrent updates.
func (r *watermarkRepo) SetLastVisited(ctx context.Context, id string, visited time.Time) error {
	query := `UPDATE watermarks SET last_visited = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, visited, time.Now(), id)
	return err
}

// Count returns the total number of watermarks
func (r *watermarkRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM watermarks").Scan(&count)
	return count, err
}

// nullTime converts an optional time to its sql representation
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

package models

import (
	"time"
)

// Watermark records when a viewer last looked at a profile section. Comments
// stamped at or before LastVisited count as already seen; everything after it
// is new. A nil SectionName is the profile-wide watermark, a key distinct
// from every named section. A nil LastVisited means never visited.
type Watermark struct {
	ID           string     `json:"id" db:"id"`
	ViewerEmail  string     `json:"viewer_email" db:"viewer_email"`
	ProfileEmail string     `json:"profile_email" db:"profile_email"`
	SectionName  *string    `json:"section_name,omitempty" db:"section_name"`
	LastVisited  *time.Time `json:"last_visited,omitempty" db:"last_visited"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

package models

import (
	"time"
)

// Comment represents one private remark left on a portfolio section.
// Comments are append-only: there is no update or delete operation.
type Comment struct {
	ID           string    `json:"id" db:"id"`
	AuthorEmail  string    `json:"author_email" db:"author_email"`
	ProfileEmail string    `json:"profile_email" db:"profile_email"`
	SectionName  string    `json:"section_name" db:"section_name"`
	Contents     string    `json:"contents" db:"contents"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`
}
package models

import (
	"time"

	"github.com/google/uuid"
)

// Project represents an uploaded codebase owned by a user. The aggregate
// counters are recomputed on every successful upload and always equal the
// derived values over the current file set.
//
// Rows are hard-deleted: removing a project cascades to its files and
// analysis results in one transaction, so no soft-delete column is used.
type Project struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index:idx_projects_user_name,unique,priority:1" json:"user_id" validate:"required"`
	Name           string     `gorm:"not null;index:idx_projects_user_name,unique,priority:2" json:"name" validate:"required"`
	FileCount      int        `gorm:"not null;default:0" json:"file_count"`
	LanguageCount  int        `gorm:"not null;default:0" json:"language_count"`
	LinesProcessed int        `gorm:"not null;default:0" json:"lines_processed"`
	LastScannedAt  *time.Time `json:"last_scanned_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

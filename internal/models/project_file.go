package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectFile is a single source file within a project. Paths are relative,
// '/'-separated, and unique within their project; a re-upload replaces the
// full file set for the project.
type ProjectFile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index:idx_files_project_path,unique" json:"project_id" validate:"required"`
	Path      string    `gorm:"not null;index:idx_files_project_path,unique" json:"path" validate:"required"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Language  *string   `gorm:"type:varchar(32)" json:"language,omitempty"`
	SizeBytes int       `gorm:"not null;default:0" json:"size_bytes"`
	LineCount int       `gorm:"not null;default:0" json:"line_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

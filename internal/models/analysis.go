package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Issue severities.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Issue is a single problem reported by the reasoning service.
type Issue struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	File        string `json:"file"`
	Description string `json:"description"`
	Line        *int   `json:"line,omitempty"`
}

// Suggestion is an improvement proposed by the reasoning service.
type Suggestion struct {
	Type           string `json:"type"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	File           string `json:"file,omitempty"`
	ProposedChange string `json:"proposed_change,omitempty"`
}

// AnalysisResult is one analysis run over a project's file set. Rows are
// immutable once created; the latest result for a project is the row with
// the maximum creation timestamp.
type AnalysisResult struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProjectID    uuid.UUID      `gorm:"type:uuid;index;not null" json:"project_id" validate:"required"`
	Languages    datatypes.JSON `gorm:"type:jsonb;not null" json:"languages"`
	Architecture string         `gorm:"type:text;not null" json:"architecture"`
	Issues       datatypes.JSON `gorm:"type:jsonb;not null" json:"issues"`
	Suggestions  datatypes.JSON `gorm:"type:jsonb;not null" json:"suggestions"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
}

package reasoning

import (
	"encoding/json"
	"fmt"

	"github.com/codelens/engine/internal/models"
)

// CodebaseReport is the structured shape expected back from a whole-codebase
// analysis call.
type CodebaseReport struct {
	Languages    map[string]float64  `json:"languages"`
	Architecture string              `json:"architecture"`
	Issues       []models.Issue      `json:"issues"`
	Suggestions  []models.Suggestion `json:"suggestions"`
}

// RewriteChange describes one edit within a rewritten file.
type RewriteChange struct {
	Description string `json:"description"`
	Line        *int   `json:"line,omitempty"`
}

// RewriteResult is the structured shape expected back from a single-file
// document or improve call.
type RewriteResult struct {
	Content string          `json:"content"`
	Changes []RewriteChange `json:"changes"`
}

// FallbackArchitecture is the explanatory text carried by the fallback
// report when every backend failed or returned unusable output.
const FallbackArchitecture = "Automatic analysis was unavailable; the reasoning service returned no usable result. Re-run the analysis to try again."

// FallbackReport returns the fixed, well-typed report substituted when the
// reasoning service cannot produce a conforming one. All collections are
// non-nil so callers never need nil checks.
func FallbackReport() *CodebaseReport {
	return &CodebaseReport{
		Languages:    map[string]float64{"text": 1.0},
		Architecture: FallbackArchitecture,
		Issues:       []models.Issue{},
		Suggestions:  []models.Suggestion{},
	}
}

// ParseCodebaseReport extracts and decodes a CodebaseReport from free-form
// model output. Collections are normalized to be non-nil; severities outside
// the known set are coerced to medium.
func ParseCodebaseReport(raw []byte) (*CodebaseReport, error) {
	obj, ok := ExtractJSONObject(string(raw))
	if !ok {
		return nil, ErrInvalidJSON
	}
	var rep CodebaseReport
	if err := json.Unmarshal([]byte(obj), &rep); err != nil {
		return nil, fmt.Errorf("decode codebase report: %w", err)
	}
	if len(rep.Languages) == 0 {
		return nil, ErrInvalidJSON
	}
	if rep.Issues == nil {
		rep.Issues = []models.Issue{}
	}
	if rep.Suggestions == nil {
		rep.Suggestions = []models.Suggestion{}
	}
	for i := range rep.Issues {
		switch rep.Issues[i].Severity {
		case models.SeverityHigh, models.SeverityMedium, models.SeverityLow:
		default:
			rep.Issues[i].Severity = models.SeverityMedium
		}
	}
	return &rep, nil
}

// ParseRewriteResult extracts and decodes a RewriteResult. An empty content
// field counts as non-conforming output.
func ParseRewriteResult(raw []byte) (*RewriteResult, error) {
	obj, ok := ExtractJSONObject(string(raw))
	if !ok {
		return nil, ErrInvalidJSON
	}
	var res RewriteResult
	if err := json.Unmarshal([]byte(obj), &res); err != nil {
		return nil, fmt.Errorf("decode rewrite result: %w", err)
	}
	if res.Content == "" {
		return nil, ErrInvalidJSON
	}
	if res.Changes == nil {
		res.Changes = []RewriteChange{}
	}
	return &res, nil
}

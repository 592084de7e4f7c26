package services

import (
	"context"
	"encoding/json"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/codelens/engine/internal/models"
	"github.com/codelens/engine/internal/reasoning"
	"github.com/codelens/engine/internal/repository"
	appErr "github.com/codelens/engine/pkg/errors"
	"github.com/codelens/engine/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// AnalysisService dispatches file batches to the reasoning backends and
// reconciles the responses into stored analysis records.
//
// Failure policy is asymmetric: the whole-codebase path always produces a
// well-typed result (falling back to a fixed report when every backend fails
// or returns unusable output), while the single-file document/improve paths
// surface upstream failures to the caller.
type AnalysisService interface {
	AnalyzeProject(ctx context.Context, projectID, userID uuid.UUID) (*models.AnalysisResult, error)
	LatestAnalysis(ctx context.Context, projectID, userID uuid.UUID) (*models.AnalysisResult, error)
	DocumentFile(ctx context.Context, fileID, userID uuid.UUID) (*RewriteResponse, error)
	ImproveFile(ctx context.Context, fileID, userID uuid.UUID) (*RewriteResponse, error)
}

// RewriteResponse is the payload of the single-file document/improve paths.
// The rewritten text is keyed by the action that produced it: exactly one of
// Documented or Improved is set.
type RewriteResponse struct {
	Original   string                    `json:"original"`
	Documented string                    `json:"documented,omitempty"`
	Improved   string                    `json:"improved,omitempty"`
	Changes    []reasoning.RewriteChange `json:"changes"`
}

// DispatchLimits bound the cost of one reasoning call.
type DispatchLimits struct {
	// MaxBatchFiles caps how many files are embedded into one prompt.
	MaxBatchFiles int
	// MaxFileChars truncates each file to this prefix length.
	MaxFileChars int
	// Timeout bounds every external reasoning call.
	Timeout time.Duration
}

type analysisService struct {
	projects     ProjectService
	analysisRepo repository.AnalysisRepository
	userRepo     repository.UserRepository
	client       reasoning.Client
	limits       DispatchLimits
}

func NewAnalysisService(projects ProjectService, analysisRepo repository.AnalysisRepository, userRepo repository.UserRepository, client reasoning.Client, limits DispatchLimits) AnalysisService {
	if limits.Timeout <= 0 {
		limits.Timeout = 60 * time.Second
	}
	return &analysisService{
		projects:     projects,
		analysisRepo: analysisRepo,
		userRepo:     userRepo,
		client:       client,
		limits:       limits,
	}
}

var _ AnalysisService = (*analysisService)(nil)

// AnalyzeProject runs a whole-codebase analysis and persists the result.
// Upstream failures never reach the caller: the fallback report is stored
// and returned instead. Storage failures are still errors.
func (s *analysisService) AnalyzeProject(ctx context.Context, projectID, userID uuid.UUID) (*models.AnalysisResult, error) {
	if err := s.requireActiveUser(ctx, userID); err != nil {
		return nil, err
	}
	files, err := s.projects.ListFiles(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, appErr.New(appErr.CodeInvalid, "project has no files to analyze")
	}

	report := s.dispatchCodebase(ctx, projectID, files)

	langs, _ := json.Marshal(report.Languages)
	issues, _ := json.Marshal(report.Issues)
	suggestions, _ := json.Marshal(report.Suggestions)
	rec := &models.AnalysisResult{
		ProjectID:    projectID,
		Languages:    datatypes.JSON(langs),
		Architecture: report.Architecture,
		Issues:       datatypes.JSON(issues),
		Suggestions:  datatypes.JSON(suggestions),
	}
	if err := s.analysisRepo.Create(ctx, rec); err != nil {
		return nil, err
	}
	logger.L().Info("analysis stored",
		zap.String("project_id", projectID.String()),
		zap.String("analysis_id", rec.ID.String()),
		zap.Int("issues", len(report.Issues)),
		zap.Int("suggestions", len(report.Suggestions)),
	)
	return rec, nil
}

func (s *analysisService) LatestAnalysis(ctx context.Context, projectID, userID uuid.UUID) (*models.AnalysisResult, error) {
	if _, err := s.projects.GetProject(ctx, projectID, userID); err != nil {
		return nil, err
	}
	var rec models.AnalysisResult
	if err := s.analysisRepo.LatestByProject(ctx, projectID, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *analysisService) DocumentFile(ctx context.Context, fileID, userID uuid.UUID) (*RewriteResponse, error) {
	return s.rewriteFile(ctx, fileID, userID, reasoning.DocumentSystem(), rewriteDocument)
}

func (s *analysisService) ImproveFile(ctx context.Context, fileID, userID uuid.UUID) (*RewriteResponse, error) {
	return s.rewriteFile(ctx, fileID, userID, reasoning.ImproveSystem(), rewriteImprove)
}

type rewriteKind int

const (
	rewriteDocument rewriteKind = iota
	rewriteImprove
)

// dispatchCodebase builds the capped batch, calls the backend chain once,
// and parses the response, substituting the fallback report on any failure.
func (s *analysisService) dispatchCodebase(ctx context.Context, projectID uuid.UUID, files []models.ProjectFile) *reasoning.CodebaseReport {
	batch := make([]reasoning.FilePayload, 0, len(files))
	for _, f := range files {
		if s.limits.MaxBatchFiles > 0 && len(batch) >= s.limits.MaxBatchFiles {
			break
		}
		lang := collectorLanguage(f.Language)
		batch = append(batch, reasoning.FilePayload{
			Path:     f.Path,
			Language: lang,
			Content:  truncate(f.Content, s.limits.MaxFileChars),
		})
	}

	callCtx, cancel := context.WithTimeout(ctx, s.limits.Timeout)
	defer cancel()

	raw, err := s.client.GenerateJSON(callCtx, reasoning.CodebaseSystem(), reasoning.BuildCodebasePrompt(batch))
	if err != nil {
		logger.L().Warn("codebase analysis fell back",
			zap.String("project_id", projectID.String()),
			zap.Error(err),
		)
		return reasoning.FallbackReport()
	}
	report, err := reasoning.ParseCodebaseReport(raw)
	if err != nil {
		logger.L().Warn("codebase analysis returned non-conforming output",
			zap.String("project_id", projectID.String()),
			zap.Error(err),
		)
		return reasoning.FallbackReport()
	}
	return report
}

func (s *analysisService) rewriteFile(ctx context.Context, fileID, userID uuid.UUID, system string, kind rewriteKind) (*RewriteResponse, error) {
	if err := s.requireActiveUser(ctx, userID); err != nil {
		return nil, err
	}
	f, err := s.projects.GetFile(ctx, fileID, userID)
	if err != nil {
		return nil, err
	}

	payload := reasoning.FilePayload{
		Path:     f.Path,
		Language: collectorLanguage(f.Language),
		Content:  truncate(f.Content, s.limits.MaxFileChars),
	}

	callCtx, cancel := context.WithTimeout(ctx, s.limits.Timeout)
	defer cancel()

	raw, err := s.client.GenerateJSON(callCtx, system, reasoning.BuildRewritePrompt(payload))
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeUpstream, "reasoning service unavailable")
	}
	res, err := reasoning.ParseRewriteResult(raw)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeUpstream, "reasoning service returned unusable output")
	}

	out := &RewriteResponse{Original: f.Content, Changes: res.Changes}
	switch kind {
	case rewriteImprove:
		out.Improved = res.Content
	default:
		out.Documented = res.Content
	}
	return out, nil
}

func (s *analysisService) requireActiveUser(ctx context.Context, userID uuid.UUID) error {
	var u models.User
	if err := s.userRepo.GetByID(ctx, userID, &u); err != nil {
		return err
	}
	if u.TrialExpired(time.Now()) {
		return appErr.New(appErr.CodeForbidden, "trial period has expired")
	}
	return nil
}

// truncate cuts s to at most max bytes without splitting a multi-byte rune.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func collectorLanguage(lang *string) string {
	if lang == nil || *lang == "" {
		return "text"
	}
	return *lang
}

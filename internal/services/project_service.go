package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/codelens/engine/internal/collector"
	"github.com/codelens/engine/internal/models"
	"github.com/codelens/engine/internal/repository"
	appErr "github.com/codelens/engine/pkg/errors"
	"github.com/codelens/engine/pkg/logger"
	"go.uber.org/zap"
)

// ProjectService owns project and file lifecycle: CRUD, the full-replace
// upload, and the patch applier.
type ProjectService interface {
	CreateProject(ctx context.Context, userID uuid.UUID, name string) (*models.Project, error)
	GetProject(ctx context.Context, projectID, userID uuid.UUID) (*models.Project, error)
	ListProjects(ctx context.Context, userID uuid.UUID) ([]models.Project, error)
	DeleteProject(ctx context.Context, projectID, userID uuid.UUID) error

	ReplaceFiles(ctx context.Context, projectID, userID uuid.UUID, records []collector.FileRecord) (*UploadSummary, error)
	ListFiles(ctx context.Context, projectID, userID uuid.UUID) ([]models.ProjectFile, error)
	GetFile(ctx context.Context, fileID, userID uuid.UUID) (*models.ProjectFile, error)
	PatchFile(ctx context.Context, fileID, userID uuid.UUID, content, expectedSHA string) (*models.ProjectFile, error)
}

// UploadSummary reports the recomputed project counters after an upload.
type UploadSummary struct {
	FileCount      int `json:"file_count"`
	LanguageCount  int `json:"language_count"`
	LinesProcessed int `json:"lines_processed"`
}

// UploadLimits caps upload size per subscription tier.
type UploadLimits struct {
	TrialMaxFiles int
	ProMaxFiles   int
}

type projectService struct {
	projectRepo  repository.ProjectRepository
	fileRepo     repository.FileRepository
	userRepo     repository.UserRepository
	limits       UploadLimits
	projectLocks sync.Map // uuid.UUID -> *sync.Mutex
}

func NewProjectService(projectRepo repository.ProjectRepository, fileRepo repository.FileRepository, userRepo repository.UserRepository, limits UploadLimits) ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		fileRepo:    fileRepo,
		userRepo:    userRepo,
		limits:      limits,
	}
}

var _ ProjectService = (*projectService)(nil)

func (s *projectService) CreateProject(ctx context.Context, userID uuid.UUID, name string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, appErr.New(appErr.CodeInvalid, "project name is required")
	}
	p := &models.Project{UserID: userID, Name: name}
	if err := s.projectRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	logger.L().Info("project created", zap.String("project_id", p.ID.String()), zap.String("user_id", userID.String()))
	return p, nil
}

func (s *projectService) GetProject(ctx context.Context, projectID, userID uuid.UUID) (*models.Project, error) {
	var p models.Project
	if err := s.projectRepo.GetByID(ctx, projectID, &p); err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, appErr.New(appErr.CodeUnauthorized, "user does not own project")
	}
	return &p, nil
}

func (s *projectService) ListProjects(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	return s.projectRepo.ListByUser(ctx, userID)
}

func (s *projectService) DeleteProject(ctx context.Context, projectID, userID uuid.UUID) error {
	if _, err := s.GetProject(ctx, projectID, userID); err != nil {
		return err
	}
	if err := s.projectRepo.DeleteCascade(ctx, projectID); err != nil {
		return err
	}
	s.projectLocks.Delete(projectID)
	logger.L().Info("project deleted", zap.String("project_id", projectID.String()), zap.String("user_id", userID.String()))
	return nil
}

// ReplaceFiles swaps the full file set of a project. The delete-then-insert
// sequence runs inside one transaction and is additionally serialized per
// project, so two concurrent uploads to the same project cannot interleave.
func (s *projectService) ReplaceFiles(ctx context.Context, projectID, userID uuid.UUID, records []collector.FileRecord) (*UploadSummary, error) {
	if _, err := s.GetProject(ctx, projectID, userID); err != nil {
		return nil, err
	}

	var u models.User
	if err := s.userRepo.GetByID(ctx, userID, &u); err != nil {
		return nil, err
	}
	limit := s.limits.ProMaxFiles
	if u.Tier == models.TierTrial {
		limit = s.limits.TrialMaxFiles
	}
	if limit > 0 && len(records) > limit {
		return nil, appErr.New(appErr.CodeInvalid, "upload exceeds the file limit for your tier").
			WithMeta("limit", limit).WithMeta("files", len(records))
	}

	seen := map[string]struct{}{}
	files := make([]models.ProjectFile, 0, len(records))
	for _, rec := range records {
		path := strings.TrimSpace(rec.Path)
		if path == "" {
			return nil, appErr.New(appErr.CodeInvalid, "file record without a path")
		}
		if _, dup := seen[path]; dup {
			return nil, appErr.New(appErr.CodeInvalid, "duplicate file path in upload").WithMeta("path", path)
		}
		seen[path] = struct{}{}

		lang := rec.Language
		var langPtr *string
		if lang != "" {
			langPtr = &lang
		}
		files = append(files, models.ProjectFile{
			ProjectID: projectID,
			Path:      path,
			Content:   rec.Content,
			Language:  langPtr,
			SizeBytes: len(rec.Content),
			LineCount: collector.CountLines(rec.Content),
		})
	}

	mu := s.lockFor(projectID)
	mu.Lock()
	defer mu.Unlock()

	start := time.Now()
	if err := s.fileRepo.ReplaceForProject(ctx, projectID, files); err != nil {
		return nil, err
	}

	var p models.Project
	if err := s.projectRepo.GetByID(ctx, projectID, &p); err != nil {
		return nil, err
	}
	logger.L().Info("project files replaced",
		zap.String("project_id", projectID.String()),
		zap.Int("files", p.FileCount),
		zap.Duration("duration", time.Since(start)),
	)
	return &UploadSummary{
		FileCount:      p.FileCount,
		LanguageCount:  p.LanguageCount,
		LinesProcessed: p.LinesProcessed,
	}, nil
}

func (s *projectService) ListFiles(ctx context.Context, projectID, userID uuid.UUID) ([]models.ProjectFile, error) {
	if _, err := s.GetProject(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.fileRepo.ListByProject(ctx, projectID)
}

func (s *projectService) GetFile(ctx context.Context, fileID, userID uuid.UUID) (*models.ProjectFile, error) {
	var f models.ProjectFile
	if err := s.fileRepo.GetByID(ctx, fileID, &f); err != nil {
		return nil, err
	}
	if _, err := s.GetProject(ctx, f.ProjectID, userID); err != nil {
		return nil, err
	}
	return &f, nil
}

// PatchFile replaces the stored content of exactly one file. Path, language
// and id are preserved; size and line metadata are recomputed. When
// expectedSHA is supplied it must match the sha256 of the current content,
// so a stale suggestion cannot silently overwrite newer edits. The check and
// the update run under the project lock, so a concurrent patch cannot land
// between them.
func (s *projectService) PatchFile(ctx context.Context, fileID, userID uuid.UUID, content, expectedSHA string) (*models.ProjectFile, error) {
	f, err := s.GetFile(ctx, fileID, userID)
	if err != nil {
		return nil, err
	}

	mu := s.lockFor(f.ProjectID)
	mu.Lock()
	defer mu.Unlock()

	if expectedSHA != "" {
		// Re-read under the lock: the content seen before acquiring it may
		// already be stale.
		var cur models.ProjectFile
		if err := s.fileRepo.GetByID(ctx, fileID, &cur); err != nil {
			return nil, err
		}
		sum := sha256.Sum256([]byte(cur.Content))
		if !strings.EqualFold(expectedSHA, hex.EncodeToString(sum[:])) {
			return nil, appErr.New(appErr.CodeConflict, "file content changed since the suggestion was computed")
		}
	}

	if err := s.fileRepo.UpdateContent(ctx, fileID, content, len(content), collector.CountLines(content)); err != nil {
		return nil, err
	}

	f.Content = content
	f.SizeBytes = len(content)
	f.LineCount = collector.CountLines(content)
	logger.L().Info("file patched", zap.String("file_id", fileID.String()), zap.Int("size", f.SizeBytes))
	return f, nil
}

func (s *projectService) lockFor(projectID uuid.UUID) *sync.Mutex {
	v, _ := s.projectLocks.LoadOrStore(projectID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/codelens/engine/internal/models"
	appErr "github.com/codelens/engine/pkg/errors"
	"gorm.io/gorm"
)

type FileRepository interface {
	BaseRepository[models.ProjectFile]
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.ProjectFile, error)
	ReplaceForProject(ctx context.Context, projectID uuid.UUID, files []models.ProjectFile) error
	UpdateContent(ctx context.Context, fileID uuid.UUID, content string, sizeBytes, lineCount int) error
}

type fileRepository struct {
	BaseRepository[models.ProjectFile]
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{BaseRepository: NewBaseRepository[models.ProjectFile](db), db: db}
}

func (r *fileRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.ProjectFile, error) {
	var out []models.ProjectFile
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("path ASC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list project files failed")
	}
	return out, nil
}

// ReplaceForProject swaps the full file set of a project in one transaction:
// the old set is deleted, the new records are inserted, and the project
// counters are recomputed from the inserted set. On any failure the old set
// is left intact.
func (r *fileRepository) ReplaceForProject(ctx context.Context, projectID uuid.UUID, files []models.ProjectFile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Project
		if err := tx.First(&p, "id = ?", projectID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return appErr.New(appErr.CodeNotFound, "project not found")
			}
			return appErr.Wrap(err, appErr.CodeInternal, "get project failed")
		}

		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectFile{}).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "clear project files failed")
		}

		lines := 0
		langs := map[string]struct{}{}
		for i := range files {
			files[i].ID = uuid.Nil
			files[i].ProjectID = projectID
			lines += files[i].LineCount
			if files[i].Language != nil {
				langs[*files[i].Language] = struct{}{}
			}
		}
		if len(files) > 0 {
			if err := tx.Create(&files).Error; err != nil {
				return appErr.Wrap(err, appErr.CodeInternal, "insert project files failed")
			}
		}

		now := time.Now()
		updates := map[string]any{
			"file_count":      len(files),
			"language_count":  len(langs),
			"lines_processed": lines,
			"last_scanned_at": &now,
		}
		if err := tx.Model(&models.Project{}).Where("id = ?", projectID).Updates(updates).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "update project counters failed")
		}
		return nil
	})
}

// UpdateContent replaces only the content (and derived size metadata) of one
// file. It never creates a record: an unknown id is reported as not found.
func (r *fileRepository) UpdateContent(ctx context.Context, fileID uuid.UUID, content string, sizeBytes, lineCount int) error {
	res := r.db.WithContext(ctx).Model(&models.ProjectFile{}).Where("id = ?", fileID).Updates(map[string]any{
		"content":    content,
		"size_bytes": sizeBytes,
		"line_count": lineCount,
	})
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "update file content failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, "file not found")
	}
	return nil
}

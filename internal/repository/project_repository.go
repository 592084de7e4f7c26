package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/codelens/engine/internal/models"
	appErr "github.com/codelens/engine/pkg/errors"
	"gorm.io/gorm"
)

type ProjectRepository interface {
	BaseRepository[models.Project]
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Project, error)
	DeleteCascade(ctx context.Context, projectID uuid.UUID) error
}

type projectRepository struct {
	BaseRepository[models.Project]
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{BaseRepository: NewBaseRepository[models.Project](db), db: db}
}

func (r *projectRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	var out []models.Project
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list projects by user failed")
	}
	return out, nil
}

// DeleteCascade removes a project together with all of its files and analysis
// results in a single transaction, so no orphan rows survive.
func (r *projectRepository) DeleteCascade(ctx context.Context, projectID uuid.UUID) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return appErr.Wrap(tx.Error, appErr.CodeInternal, "begin transaction failed")
	}

	if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectFile{}).Error; err != nil {
		tx.Rollback()
		return appErr.Wrap(err, appErr.CodeInternal, "delete project files failed")
	}
	if err := tx.Where("project_id = ?", projectID).Delete(&models.AnalysisResult{}).Error; err != nil {
		tx.Rollback()
		return appErr.Wrap(err, appErr.CodeInternal, "delete project analyses failed")
	}

	res := tx.Delete(&models.Project{}, "id = ?", projectID)
	if res.Error != nil {
		tx.Rollback()
		return appErr.Wrap(res.Error, appErr.CodeInternal, "delete project failed")
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return appErr.New(appErr.CodeNotFound, "project not found")
	}

	if err := tx.Commit().Error; err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "commit transaction failed")
	}
	return nil
}

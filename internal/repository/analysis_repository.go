package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/codelens/engine/internal/models"
	appErr "github.com/codelens/engine/pkg/errors"
	"gorm.io/gorm"
)

type AnalysisRepository interface {
	BaseRepository[models.AnalysisResult]
	LatestByProject(ctx context.Context, projectID uuid.UUID, dest *models.AnalysisResult) error
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.AnalysisResult, error)
}

type analysisRepository struct {
	BaseRepository[models.AnalysisResult]
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{BaseRepository: NewBaseRepository[models.AnalysisResult](db), db: db}
}

func (r *analysisRepository) LatestByProject(ctx context.Context, projectID uuid.UUID, dest *models.AnalysisResult) error {
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at DESC").First(dest).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return appErr.New(appErr.CodeNotFound, "no analysis found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get latest analysis failed")
	}
	return nil
}

func (r *analysisRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.AnalysisResult, error) {
	var out []models.AnalysisResult
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list analyses failed")
	}
	return out, nil
}

package services

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/codelens/engine/internal/collector"
	"github.com/codelens/engine/internal/models"
	"github.com/codelens/engine/pkg/logger"
)

func TestMain(m *testing.M) {
	if _, err := logger.Init("error", "json"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, obj *models.User) error {
	return m.Called(ctx, obj).Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id any, dest *models.User) error {
	args := m.Called(ctx, id, dest)
	if u, ok := args.Get(1).(*models.User); ok && u != nil {
		*dest = *u
	}
	return args.Error(0)
}

func (m *mockUserRepo) Update(ctx context.Context, obj *models.User) error {
	return m.Called(ctx, obj).Error(0)
}

func (m *mockUserRepo) Delete(ctx context.Context, id any) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string, dest *models.User) error {
	args := m.Called(ctx, email, dest)
	if u, ok := args.Get(1).(*models.User); ok && u != nil {
		*dest = *u
	}
	return args.Error(0)
}

type mockProjectRepo struct{ mock.Mock }

func (m *mockProjectRepo) Create(ctx context.Context, obj *models.Project) error {
	return m.Called(ctx, obj).Error(0)
}

func (m *mockProjectRepo) GetByID(ctx context.Context, id any, dest *models.Project) error {
	args := m.Called(ctx, id, dest)
	if p, ok := args.Get(1).(*models.Project); ok && p != nil {
		*dest = *p
	}
	return args.Error(0)
}

func (m *mockProjectRepo) Update(ctx context.Context, obj *models.Project) error {
	return m.Called(ctx, obj).Error(0)
}

func (m *mockProjectRepo) Delete(ctx context.Context, id any) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProjectRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).([]models.Project)
	return out, args.Error(1)
}

func (m *mockProjectRepo) DeleteCascade(ctx context.Context, projectID uuid.UUID) error {
	return m.Called(ctx, projectID).Error(0)
}

type mockFileRepo struct{ mock.Mock }

func (m *mockFileRepo) Create(ctx context.Context, obj *models.ProjectFile) error {
	return m.Called(ctx, obj).Error(0)
}

func (m *mockFileRepo) GetByID(ctx context.Context, id any, dest *models.ProjectFile) error {
	args := m.Called(ctx, id, dest)
	if f, ok := args.Get(1).(*models.ProjectFile); ok && f != nil {
		*dest = *f
	}
	return args.Error(0)
}

func (m *mockFileRepo) Update(ctx context.Context, obj *models.ProjectFile) error {
	return m.Called(ctx, obj).Error(0)
}

func (m *mockFileRepo) Delete(ctx context.Context, id any) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockFileRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.ProjectFile, error) {
	args := m.Called(ctx, projectID)
	out, _ := args.Get(0).([]models.ProjectFile)
	return out, args.Error(1)
}

func (m *mockFileRepo) ReplaceForProject(ctx context.Context, projectID uuid.UUID, files []models.ProjectFile) error {
	return m.Called(ctx, projectID, files).Error(0)
}

func (m *mockFileRepo) UpdateContent(ctx context.Context, fileID uuid.UUID, content string, sizeBytes, lineCount int) error {
	return m.Called(ctx, fileID, content, sizeBytes, lineCount).Error(0)
}

type mockAnalysisRepo struct{ mock.Mock }

func (m *mockAnalysisRepo) Create(ctx context.Context, obj *models.AnalysisResult) error {
	return m.Called(ctx, obj).Error(0)
}

func (m *mockAnalysisRepo) GetByID(ctx context.Context, id any, dest *models.AnalysisResult) error {
	args := m.Called(ctx, id, dest)
	if r, ok := args.Get(1).(*models.AnalysisResult); ok && r != nil {
		*dest = *r
	}
	return args.Error(0)
}

func (m *mockAnalysisRepo) Update(ctx context.Context, obj *models.AnalysisResult) error {
	return m.Called(ctx, obj).Error(0)
}

func (m *mockAnalysisRepo) Delete(ctx context.Context, id any) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockAnalysisRepo) LatestByProject(ctx context.Context, projectID uuid.UUID, dest *models.AnalysisResult) error {
	args := m.Called(ctx, projectID, dest)
	if r, ok := args.Get(1).(*models.AnalysisResult); ok && r != nil {
		*dest = *r
	}
	return args.Error(0)
}

func (m *mockAnalysisRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.AnalysisResult, error) {
	args := m.Called(ctx, projectID)
	out, _ := args.Get(0).([]models.AnalysisResult)
	return out, args.Error(1)
}

type mockProjectSvc struct{ mock.Mock }

func (m *mockProjectSvc) CreateProject(ctx context.Context, userID uuid.UUID, name string) (*models.Project, error) {
	args := m.Called(ctx, userID, name)
	p, _ := args.Get(0).(*models.Project)
	return p, args.Error(1)
}

func (m *mockProjectSvc) GetProject(ctx context.Context, projectID, userID uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, projectID, userID)
	p, _ := args.Get(0).(*models.Project)
	return p, args.Error(1)
}

func (m *mockProjectSvc) ListProjects(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).([]models.Project)
	return out, args.Error(1)
}

func (m *mockProjectSvc) DeleteProject(ctx context.Context, projectID, userID uuid.UUID) error {
	return m.Called(ctx, projectID, userID).Error(0)
}

func (m *mockProjectSvc) ReplaceFiles(ctx context.Context, projectID, userID uuid.UUID, records []collector.FileRecord) (*UploadSummary, error) {
	args := m.Called(ctx, projectID, userID, records)
	s, _ := args.Get(0).(*UploadSummary)
	return s, args.Error(1)
}

func (m *mockProjectSvc) ListFiles(ctx context.Context, projectID, userID uuid.UUID) ([]models.ProjectFile, error) {
	args := m.Called(ctx, projectID, userID)
	out, _ := args.Get(0).([]models.ProjectFile)
	return out, args.Error(1)
}

func (m *mockProjectSvc) GetFile(ctx context.Context, fileID, userID uuid.UUID) (*models.ProjectFile, error) {
	args := m.Called(ctx, fileID, userID)
	f, _ := args.Get(0).(*models.ProjectFile)
	return f, args.Error(1)
}

func (m *mockProjectSvc) PatchFile(ctx context.Context, fileID, userID uuid.UUID, content, expectedSHA string) (*models.ProjectFile, error) {
	args := m.Called(ctx, fileID, userID, content, expectedSHA)
	f, _ := args.Get(0).(*models.ProjectFile)
	return f, args.Error(1)
}

type mockReasoner struct{ mock.Mock }

func (m *mockReasoner) Name() string { return "mock" }

func (m *mockReasoner) GenerateJSON(ctx context.Context, system, prompt string) (json.RawMessage, error) {
	args := m.Called(ctx, system, prompt)
	out, _ := args.Get(0).(json.RawMessage)
	return out, args.Error(1)
}

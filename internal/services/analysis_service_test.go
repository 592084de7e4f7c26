package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/codelens/engine/internal/models"
	"github.com/codelens/engine/internal/reasoning"
	appErr "github.com/codelens/engine/pkg/errors"
)

func newAnalysisFixture(t *testing.T, limits DispatchLimits) (*mockProjectSvc, *mockAnalysisRepo, *mockUserRepo, *mockReasoner, AnalysisService) {
	t.Helper()
	projects := new(mockProjectSvc)
	analysisRepo := new(mockAnalysisRepo)
	userRepo := new(mockUserRepo)
	reasoner := new(mockReasoner)
	svc := NewAnalysisService(projects, analysisRepo, userRepo, reasoner, limits)
	return projects, analysisRepo, userRepo, reasoner, svc
}

func activeUser(userRepo *mockUserRepo, userID uuid.UUID) {
	userRepo.On("GetByID", mock.Anything, userID, mock.Anything).
		Return(nil, &models.User{ID: userID, Tier: models.TierPro})
}

func lang(s string) *string { return &s }

func TestAnalyzeProjectStoresParsedReport(t *testing.T) {
	projects, analysisRepo, userRepo, reasoner, svc := newAnalysisFixture(t, DispatchLimits{})
	projectID := uuid.New()
	userID := uuid.New()

	activeUser(userRepo, userID)
	projects.On("ListFiles", mock.Anything, projectID, userID).Return([]models.ProjectFile{
		{Path: "a.py", Content: "print(1)", Language: lang("python")},
	}, nil)
	reasoner.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).
		Return(json.RawMessage(`{"languages":{"python":1.0},"architecture":"single script","issues":[],"suggestions":[]}`), nil)

	var stored *models.AnalysisResult
	analysisRepo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*models.AnalysisResult) }).
		Return(nil)

	rec, err := svc.AnalyzeProject(context.Background(), projectID, userID)
	require.NoError(t, err)
	require.Same(t, stored, rec)
	require.Equal(t, projectID, rec.ProjectID)
	require.Equal(t, "single script", rec.Architecture)
	require.JSONEq(t, `{"python":1.0}`, string(rec.Languages))
}

func TestAnalyzeProjectFallsBackOnBackendError(t *testing.T) {
	projects, analysisRepo, userRepo, reasoner, svc := newAnalysisFixture(t, DispatchLimits{})
	projectID := uuid.New()
	userID := uuid.New()

	activeUser(userRepo, userID)
	projects.On("ListFiles", mock.Anything, projectID, userID).Return([]models.ProjectFile{
		{Path: "a.py", Content: "print(1)", Language: lang("python")},
	}, nil)
	reasoner.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("all backends down"))

	analysisRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	rec, err := svc.AnalyzeProject(context.Background(), projectID, userID)
	require.NoError(t, err)
	require.Equal(t, reasoning.FallbackArchitecture, rec.Architecture)
	require.JSONEq(t, `{"text":1.0}`, string(rec.Languages))
	require.JSONEq(t, `[]`, string(rec.Issues))
	require.JSONEq(t, `[]`, string(rec.Suggestions))
}

func TestAnalyzeProjectFallsBackOnMalformedOutput(t *testing.T) {
	projects, analysisRepo, userRepo, reasoner, svc := newAnalysisFixture(t, DispatchLimits{})
	projectID := uuid.New()
	userID := uuid.New()

	activeUser(userRepo, userID)
	projects.On("ListFiles", mock.Anything, projectID, userID).Return([]models.ProjectFile{
		{Path: "a.py", Content: "print(1)", Language: lang("python")},
	}, nil)
	reasoner.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).
		Return(json.RawMessage("I am sorry, I cannot analyze this."), nil)

	analysisRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	rec, err := svc.AnalyzeProject(context.Background(), projectID, userID)
	require.NoError(t, err)
	require.Equal(t, reasoning.FallbackArchitecture, rec.Architecture)
}

func TestAnalyzeProjectRejectsEmptyProject(t *testing.T) {
	projects, _, userRepo, reasoner, svc := newAnalysisFixture(t, DispatchLimits{})
	projectID := uuid.New()
	userID := uuid.New()

	activeUser(userRepo, userID)
	projects.On("ListFiles", mock.Anything, projectID, userID).Return([]models.ProjectFile{}, nil)

	_, err := svc.AnalyzeProject(context.Background(), projectID, userID)
	require.Error(t, err)
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))
	reasoner.AssertNotCalled(t, "GenerateJSON", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyzeProjectRejectsExpiredTrial(t *testing.T) {
	projects, _, userRepo, reasoner, svc := newAnalysisFixture(t, DispatchLimits{})
	userID := uuid.New()

	expired := time.Now().Add(-24 * time.Hour)
	userRepo.On("GetByID", mock.Anything, userID, mock.Anything).
		Return(nil, &models.User{ID: userID, Tier: models.TierTrial, TrialExpiresAt: &expired})

	_, err := svc.AnalyzeProject(context.Background(), uuid.New(), userID)
	require.Error(t, err)
	require.True(t, appErr.IsCode(err, appErr.CodeForbidden))
	projects.AssertNotCalled(t, "ListFiles", mock.Anything, mock.Anything, mock.Anything)
	reasoner.AssertNotCalled(t, "GenerateJSON", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatchCapsBatchAndTruncatesFiles(t *testing.T) {
	projects, analysisRepo, userRepo, reasoner, svc := newAnalysisFixture(t, DispatchLimits{
		MaxBatchFiles: 2,
		MaxFileChars:  10,
	})
	projectID := uuid.New()
	userID := uuid.New()

	activeUser(userRepo, userID)
	projects.On("ListFiles", mock.Anything, projectID, userID).Return([]models.ProjectFile{
		{Path: "a.py", Content: strings.Repeat("x", 100), Language: lang("python")},
		{Path: "b.py", Content: "short", Language: lang("python")},
		{Path: "c.py", Content: "dropped", Language: lang("python")},
	}, nil)

	var prompt string
	reasoner.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { prompt = args.String(2) }).
		Return(json.RawMessage(`{"languages":{"python":1.0},"architecture":"x"}`), nil)
	analysisRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.AnalyzeProject(context.Background(), projectID, userID)
	require.NoError(t, err)
	require.Contains(t, prompt, "a.py")
	require.Contains(t, prompt, "b.py")
	require.NotContains(t, prompt, "c.py")
	require.NotContains(t, prompt, strings.Repeat("x", 11))
	require.Contains(t, prompt, strings.Repeat("x", 10))
}

func TestDocumentFileSurfacesBackendFailure(t *testing.T) {
	projects, _, userRepo, reasoner, svc := newAnalysisFixture(t, DispatchLimits{})
	fileID := uuid.New()
	userID := uuid.New()

	activeUser(userRepo, userID)
	projects.On("GetFile", mock.Anything, fileID, userID).
		Return(&models.ProjectFile{ID: fileID, Path: "a.py", Content: "print(1)", Language: lang("python")}, nil)
	reasoner.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("rate limited"))

	_, err := svc.DocumentFile(context.Background(), fileID, userID)
	require.Error(t, err)
	require.True(t, appErr.IsCode(err, appErr.CodeUpstream))
}

func TestImproveFileRejectsMalformedOutput(t *testing.T) {
	projects, _, userRepo, reasoner, svc := newAnalysisFixture(t, DispatchLimits{})
	fileID := uuid.New()
	userID := uuid.New()

	activeUser(userRepo, userID)
	projects.On("GetFile", mock.Anything, fileID, userID).
		Return(&models.ProjectFile{ID: fileID, Path: "a.py", Content: "print(1)", Language: lang("python")}, nil)
	reasoner.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).
		Return(json.RawMessage(`{"content": ""}`), nil)

	_, err := svc.ImproveFile(context.Background(), fileID, userID)
	require.Error(t, err)
	require.True(t, appErr.IsCode(err, appErr.CodeUpstream))
}

func TestDocumentFileReturnsRewrite(t *testing.T) {
	projects, _, userRepo, reasoner, svc := newAnalysisFixture(t, DispatchLimits{})
	fileID := uuid.New()
	userID := uuid.New()
	original := "def f():\n    pass\n"

	activeUser(userRepo, userID)
	projects.On("GetFile", mock.Anything, fileID, userID).
		Return(&models.ProjectFile{ID: fileID, Path: "a.py", Content: original, Language: lang("python")}, nil)
	reasoner.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).
		Return(json.RawMessage(`{"content":"def f():\n    \"\"\"Docs.\"\"\"\n    pass\n","changes":[{"description":"added docstring","line":2}]}`), nil)

	res, err := svc.DocumentFile(context.Background(), fileID, userID)
	require.NoError(t, err)
	require.Equal(t, original, res.Original)
	require.Contains(t, res.Documented, "Docs.")
	require.Empty(t, res.Improved)
	require.Len(t, res.Changes, 1)
}

func TestImproveFileReturnsRewrite(t *testing.T) {
	projects, _, userRepo, reasoner, svc := newAnalysisFixture(t, DispatchLimits{})
	fileID := uuid.New()
	userID := uuid.New()

	activeUser(userRepo, userID)
	projects.On("GetFile", mock.Anything, fileID, userID).
		Return(&models.ProjectFile{ID: fileID, Path: "a.py", Content: "print(1)", Language: lang("python")}, nil)
	reasoner.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).
		Return(json.RawMessage(`{"content":"print(2)\n","changes":[{"description":"fixed off-by-one"}]}`), nil)

	res, err := svc.ImproveFile(context.Background(), fileID, userID)
	require.NoError(t, err)
	require.Contains(t, res.Improved, "print(2)")
	require.Empty(t, res.Documented)
}

func TestTruncateRespectsRuneBoundaries(t *testing.T) {
	s := strings.Repeat("é", 10)
	got := truncate(s, 5)
	require.True(t, utf8.ValidString(got))
	require.Equal(t, "éé", got)

	require.Equal(t, "short", truncate("short", 10))
	require.Equal(t, "abc", truncate("abcdef", 3))
}

func TestLatestAnalysisNotFound(t *testing.T) {
	projects, analysisRepo, _, _, svc := newAnalysisFixture(t, DispatchLimits{})
	projectID := uuid.New()
	userID := uuid.New()

	projects.On("GetProject", mock.Anything, projectID, userID).
		Return(&models.Project{ID: projectID, UserID: userID}, nil)
	analysisRepo.On("LatestByProject", mock.Anything, projectID, mock.Anything).
		Return(appErr.New(appErr.CodeNotFound, "no analysis found"), nil)

	_, err := svc.LatestAnalysis(context.Background(), projectID, userID)
	require.Error(t, err)
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound))
}

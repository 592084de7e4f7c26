package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/codelens/engine/internal/api"
	"github.com/codelens/engine/internal/api/handlers"
	"github.com/codelens/engine/internal/reasoning"
	"github.com/codelens/engine/internal/repository"
	"github.com/codelens/engine/internal/services"
	"github.com/codelens/engine/pkg/config"
	"github.com/codelens/engine/pkg/database"
	"github.com/codelens/engine/pkg/logger"
)

func main() {
	cfg := config.MustLoad()

	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("starting codelens engine",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
	)

	ctx := context.Background()
	db, err := database.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	log.Info("database connected")

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	fileRepo := repository.NewFileRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)

	jwtSecret := []byte(cfg.JWTSecret)
	if len(jwtSecret) == 0 {
		log.Warn("JWT_SECRET not set, using default (INSECURE for production)")
		jwtSecret = []byte("change-me-in-production-please")
	}

	// Reasoning backends in fixed preference order. A missing backend is
	// logged and skipped; an empty chain still serves requests through the
	// fallback result.
	var clients []reasoning.Client
	if gem, err := reasoning.NewGeminiClient(ctx, cfg.GeminiModel); err != nil {
		log.Warn("gemini backend unavailable", zap.Error(err))
	} else {
		clients = append(clients, gem)
	}
	if cfg.GroqModel != "" {
		clients = append(clients, reasoning.NewGroqClient(cfg.GroqAPIKey, cfg.GroqModel))
	}
	chain := reasoning.NewChain(log, clients...)
	log.Info("reasoning backends configured", zap.Strings("backends", chain.Backends()))

	projectSvc := services.NewProjectService(projectRepo, fileRepo, userRepo, services.UploadLimits{
		TrialMaxFiles: cfg.TrialMaxFiles,
		ProMaxFiles:   cfg.ProMaxFiles,
	})
	analysisSvc := services.NewAnalysisService(projectSvc, analysisRepo, userRepo, chain, services.DispatchLimits{
		MaxBatchFiles: cfg.MaxBatchFiles,
		MaxFileChars:  cfg.MaxFileChars,
		Timeout:       cfg.ReasoningTimeout,
	})
	authSvc := services.NewAuthService(userRepo, jwtSecret, cfg.TrialDays)

	v := validator.New(validator.WithRequiredStructEnabled())
	router := api.NewRouter(api.Dependencies{
		HMACSecret:      jwtSecret,
		AuthHandler:     handlers.NewAuthHandler(authSvc, v),
		ProjectsHandler: handlers.NewProjectsHandler(projectSvc, v),
		FilesHandler:    handlers.NewFilesHandler(projectSvc, analysisSvc, v),
		AnalysisHandler: handlers.NewAnalysisHandler(analysisSvc),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}
}

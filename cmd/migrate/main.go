package main

import (
	"fmt"
	"os"

	"github.com/codelens/engine/internal/models"
	"github.com/codelens/engine/pkg/config"
	"github.com/codelens/engine/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg := config.MustLoad()
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// gen_random_uuid() requires pgcrypto on PostgreSQL < 13.
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS pgcrypto").Error; err != nil {
		log.Warn("pgcrypto extension not created", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectFile{},
		&models.AnalysisResult{},
	); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	fmt.Fprintln(os.Stdout, "migrations completed")
}

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/glimpse-social/backend/internal/config"
	"github.com/glimpse-social/backend/internal/database"
	"github.com/glimpse-social/backend/internal/logger"
	"github.com/glimpse-social/backend/internal/models"
	"github.com/glimpse-social/backend/internal/seed"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	command := "dev"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Initialize(cfg.LogLevel, "seed.log"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	if err := database.Initialize(cfg.DatabaseURL, false); err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	switch command {
	case "dev":
		if err := seed.NewSeeder(database.DB).SeedDev(); err != nil {
			logger.Log.Fatal("Seeding failed", zap.Error(err))
		}
	case "clean":
		cleanSeedData()
	default:
		fmt.Println("Usage: seed [dev|clean]")
		fmt.Println("  dev   - Seed development database with realistic data")
		fmt.Println("  clean - Remove all data (use with caution)")
		os.Exit(1)
	}
}

// cleanSeedData truncates every table, children before parents
func cleanSeedData() {
	tables := []interface{}{
		&models.Message{},
		&models.Conversation{},
		&models.Bookmark{},
		&models.Comment{},
		&models.PostLike{},
		&models.Post{},
		&models.Follow{},
		&models.User{},
	}
	for _, table := range tables {
		if err := database.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
			logger.Log.Fatal("Failed to clean table", zap.Error(err))
		}
	}
	logger.Log.Info("All seed data removed")
}

package database

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"mingle/config"
)

type Database struct {
	*gorm.DB
}

func NewDatabase(cfg *config.Config) (*Database, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	slog.Info("Connected to database")

	return &Database{db}, nil
}

func (db *Database) Migrate() error {
	err := db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Profile{},
		&Friend{},
		&Conversation{},
		&ConversationParticipant{},
		&ConversationSettings{},
		&Message{},
		&MessageReaction{},
		&DiscoverySetting{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	slog.Info("Database migration completed")
	return nil
}

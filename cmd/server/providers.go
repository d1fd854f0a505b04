package main

import (
	"github.com/go-redis/redis/v8"

	"mingle/config"
	"mingle/internal/auth"
	"mingle/internal/blob"
	"mingle/internal/database"
	"mingle/internal/email"
	"mingle/internal/presence"
	"mingle/pkg/jwt"
)

func provideDatabase(cfg *config.Config) (*database.Database, error) {
	db, err := database.NewDatabase(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		return nil, err
	}
	return db, nil
}

func provideTokens(cfg *config.Config) *jwt.JWT {
	return jwt.NewJWT(cfg.JWTSecret)
}

func provideMailer(cfg *config.Config) *email.Sender {
	return email.NewSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
}

func provideRedis(cfg *config.Config) (*redis.Client, error) {
	return presence.NewRedisClient(cfg.RedisAddr)
}

func provideBlobStore(cfg *config.Config) (*blob.Store, error) {
	return blob.NewStore(cfg.BlobDir, cfg.PublicBaseURL)
}

var _ auth.Mailer = (*email.Sender)(nil)

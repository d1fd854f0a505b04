//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"mingle/config"
	"mingle/internal/api"
	"mingle/internal/auth"
	"mingle/internal/blob"
	"mingle/internal/conversation"
	"mingle/internal/discovery"
	"mingle/internal/email"
	"mingle/internal/friendship"
	"mingle/internal/message"
	"mingle/internal/presence"
	"mingle/internal/profile"
	"mingle/internal/realtime"
)

func initializeServer(cfg *config.Config) (*api.Server, error) {
	wire.Build(
		provideDatabase,
		provideTokens,
		provideMailer,
		provideRedis,
		provideBlobStore,
		realtime.NewHub,
		wire.Bind(new(auth.Mailer), new(*email.Sender)),
		auth.ProviderSet,
		profile.ProviderSet,
		friendship.ProviderSet,
		conversation.ProviderSet,
		message.ProviderSet,
		discovery.ProviderSet,
		presence.ProviderSet,
		blob.ProviderSet,
		wire.Struct(new(api.Handlers), "*"),
		api.NewServer,
	)
	return nil, nil
}

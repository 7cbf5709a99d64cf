//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/janhq/support-chat-api/internal/config"
	"github.com/janhq/support-chat-api/internal/domain"
	"github.com/janhq/support-chat-api/internal/infrastructure"
	"github.com/janhq/support-chat-api/internal/interfaces"
)

// ProviderSet is the wire provider set for the application.
var ProviderSet = wire.NewSet(
	infrastructure.InfrastructureProvider,
	domain.ServiceProvider,
	interfaces.InterfacesProvider,
	NewApplication,
)

// CreateApplication creates the application with all dependencies wired.
func CreateApplication(
	ctx context.Context,
	cfg *config.Config,
	log zerolog.Logger,
) (*Application, func(), error) {
	wire.Build(ProviderSet)
	return nil, nil, nil
}

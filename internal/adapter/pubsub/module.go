package pubsub

import (
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/odin-fire/odin-go/config"
	"github.com/odin-fire/odin-go/internal/domain/registry"
	"go.uber.org/fx"
)

var Module = fx.Module("pubsub",
	fx.Provide(
		func(cfg *config.Config, logger *slog.Logger) (message.Publisher, error) {
			return NewPublisher(cfg.AMQPURI, watermill.NewSlogLogger(logger))
		},
		NewDispatcher,
		NewEventHandler,
		NewRouter,
		fx.Annotate(
			NewExportingHub,
			fx.As(new(registry.Hubber)),
		),
	),
	fx.Invoke(func(router *message.Router, cfg *config.Config, h *EventHandler) error {
		return RegisterRoutes(router, cfg.AMQPURI, RoutesFor(h))
	}),
)

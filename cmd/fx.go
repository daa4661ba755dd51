package cmd

import (
	"log/slog"
	"os"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/odin-fire/odin-go/config"
	"github.com/odin-fire/odin-go/internal/actor"
	"github.com/odin-fire/odin-go/internal/adapter/pubsub"
	"github.com/odin-fire/odin-go/internal/domain/registry"
	"github.com/odin-fire/odin-go/internal/ingest"
	"github.com/odin-fire/odin-go/internal/metrics"
	"github.com/odin-fire/odin-go/internal/server"
	"go.uber.org/fx"
)

// ProvideLogger builds the structured logger every module receives,
// reconstructed in the teacher's idiom (cmd/fx.go's ProvideLogger, filtered
// from the retrieval pack) from viper-free slog defaults.
func ProvideLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).
		With("service", cfg.ServiceName)
}

// ProvideWatermillLogger adapts the shared slog.Logger to watermill's own
// logging interface, mirroring the teacher's ProvideWatermillLogger.
func ProvideWatermillLogger(logger *slog.Logger) watermill.LoggerAdapter {
	return watermill.NewSlogLogger(logger)
}

func provideActorSystem(logger *slog.Logger) *actor.ActorSystem {
	sys := actor.NewActorSystem("odin", logger)
	sys.SetObserver(metrics.Observer())
	return sys
}

// NewApp builds the full delivery server + ingest pipeline as one fx.App,
// generalized from the teacher's cmd/fx.go module composition.
func NewApp(cfg *config.Config) *fx.App {
	return fx.New(
		fx.Provide(
			func() *config.Config { return cfg },
			ProvideLogger,
			ProvideWatermillLogger,
			provideActorSystem,
		),
		fx.Invoke(func(sys *actor.ActorSystem) error { return sys.TimeoutStartAll(2 * time.Second) }),
		registry.Module,
		pubsub.Module,
		server.Module,
		ingest.Module,
	)
}

package pubsub

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/fx"
)

// NewRouter builds the watermill router and manages its lifecycle through
// fx: started in the background on OnStart, drained on OnStop.
func NewRouter(lc fx.Lifecycle, logger *slog.Logger) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := router.Run(context.Background()); err != nil {
					logger.Error("pubsub router exited", "err", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return router.Close()
		},
	})

	return router, nil
}

// Route describes one subscription this node binds into the router.
type Route struct {
	Topic   string
	Queue   string
	Handler message.NoPublishHandlerFunc
}

// RegisterRoutes gives each node a unique queue suffix (so every instance,
// not just one, receives fan-out traffic for subjects it owns) and wires
// each Route's subscriber onto router.
func RegisterRoutes(router *message.Router, amqpURI string, routes []Route) error {
	nodeID, err := os.Hostname()
	if err != nil {
		nodeID = watermill.NewShortUUID()
	}
	logger := watermill.NewStdLogger(false, false)

	for _, r := range routes {
		queue := fmt.Sprintf("%s.%s", r.Queue, nodeID)
		sub, err := NewSubscriber(amqpURI, queue, logger)
		if err != nil {
			return fmt.Errorf("pubsub: build subscriber for %s: %w", queue, err)
		}
		router.AddNoPublisherHandler(queue+"_handler", r.Topic, sub, r.Handler)
	}
	return nil
}

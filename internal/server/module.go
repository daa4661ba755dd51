package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/odin-fire/odin-go/config"
	"github.com/odin-fire/odin-go/internal/domain/registry"
	"github.com/odin-fire/odin-go/internal/server/grpcsrv"
	"github.com/odin-fire/odin-go/internal/server/httpapi"
	"github.com/odin-fire/odin-go/internal/server/ws"
	"go.uber.org/fx"
)

// Module wires the delivery server's HTTP (chi + WebSocket) and gRPC
// (health + reflection) listeners into the fx lifecycle, mirroring the
// teacher's cmd/fx.go grpcsrv.Module + handler modules.
var Module = fx.Module("server",
	fx.Provide(
		ws.NewHandler,
		newHTTPServer,
		newGRPCServer,
	),
	fx.Invoke(registerLifecycle),
)

func newHTTPServer(cfg *config.Config, hub registry.Hubber, wsHandler *ws.Handler) *http.Server {
	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpapi.NewRouter(hub, wsHandler),
	}
}

func newGRPCServer(logger *slog.Logger, cfg *config.Config) (*grpcsrv.Server, error) {
	return grpcsrv.New(logger, cfg.GRPCAddr)
}

func registerLifecycle(lc fx.Lifecycle, logger *slog.Logger, httpSrv *http.Server, grpcSrv *grpcsrv.Server) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("http server exited", "err", err)
				}
			}()
			go func() {
				if err := grpcSrv.Serve(); err != nil {
					logger.Error("grpc server exited", "err", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			grpcSrv.Stop()
			return httpSrv.Shutdown(ctx)
		},
	})
}

package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/odin-fire/odin-go/config"
	"github.com/odin-fire/odin-go/internal/actor"
	"github.com/odin-fire/odin-go/internal/actor/tui"
	"github.com/odin-fire/odin-go/internal/metrics"
	"github.com/urfave/cli/v2"
)

const (
	ServiceName      = "odin"
	ServiceNamespace = "odin-fire"
)

var (
	version        = "0.0.0"
	commit         = "hash"
	commitDate     = time.Now().String()
	branch         = "branch"
	buildTimestamp = ""
)

// Run parses os.Args and dispatches to the matching subcommand, generalized
// from the teacher's single serverCmd() into server (delivery server plus
// ingesters) and dashboard.
func Run() error {
	app := &cli.App{
		Name:  ServiceName,
		Usage: "ODIN open data integration framework",
		Commands: []*cli.Command{
			serverCmd(),
			dashboardCmd(),
		},
	}

	return app.Run(os.Args)
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "config_file",
		Usage: "Path to the configuration file",
	}
}

// serverCmd starts the full delivery server plus every configured
// ingester, matching the teacher's serverCmd() signal-handling shutdown.
func serverCmd() *cli.Command {
	return &cli.Command{
		Name:    "server",
		Aliases: []string{"s"},
		Usage:   "Run the delivery server and data ingesters",
		Flags:   []cli.Flag{configFlag()},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config_file"))
			if err != nil {
				return err
			}
			app := NewApp(cfg)

			if err := app.Start(c.Context); err != nil {
				return err
			}

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop

			slog.Info("shutting down")
			return app.Stop(context.Background())
		},
	}
}

// dashboardCmd runs a standalone actor system driving the terminal
// dashboard, useful for local development without a live data feed.
func dashboardCmd() *cli.Command {
	return &cli.Command{
		Name:  "dashboard",
		Usage: "Run the terminal actor dashboard against a local actor system",
		Flags: []cli.Flag{configFlag()},
		Action: func(c *cli.Context) error {
			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
			sys := actor.NewActorSystem("odin-dashboard", logger)

			dash := tui.NewDashboard()
			sys.SetObserver(func(ev actor.Event) {
				dash.Observer()(ev)
				metrics.Observer()(ev)
			})

			if err := sys.TimeoutStartAll(2 * time.Second); err != nil {
				return err
			}

			done := make(chan struct{})
			go func() {
				stop := make(chan os.Signal, 1)
				signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
				<-stop
				close(done)
			}()

			return dash.Run(done)
		},
	}
}

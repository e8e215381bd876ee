package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/lumen/internal/api"
	"github.com/jmylchreest/lumen/internal/scene"
)

var (
	// Serve command flags
	serveListen  string
	serveWatch   bool
	serveSeedNew bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve <scene.yaml>",
	Short: "Serve a scene over HTTP",
	Long: `Load a scene file and serve it over HTTP. Input attributes changed through
the API are recomputed on the next tick; GET /v1/entities/{id} returns the
current computed values.

Endpoints:
  GET    /health
  GET    /v1/version, /v1/stats
  POST   /v1/recompute
  GET    /v1/entities
  GET    /v1/entities/{id}
  PATCH  /v1/entities/{id}                 merge input attributes
  PUT    /v1/entities/{id}                 replace (or create) an entity
  DELETE /v1/entities/{id}
  GET    /v1/entities/{id}/plan            dry-run evaluation
  POST   /v1/entities/{id}/preset/{name}   apply an LED preset
  GET    /v1/presets, /v1/presets/{name}
  GET    /v1/attributes                    trigger and derived attribute names
  POST   /v1/resolve/{spectral|photometric|temperature}

Examples:
  lumen serve scene.yaml
  lumen serve --listen :8080 --watch scene.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "listen address (default: listen_addr from config)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "also reload the scene file when it changes")
	serveCmd.Flags().BoolVar(&serveSeedNew, "seed-new", false, "give lights added after startup default input attributes")
}

// runServe executes the serve command.
func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := loadEngine(args[0], seedOptions(serveSeedNew)...)
	if err != nil {
		return err
	}
	defer e.detach()

	if _, err := e.recomputeAll(ctx); err != nil {
		return err
	}

	addr := serveListen
	if addr == "" {
		addr = appConfig.ListenAddr
	}
	srv := api.New(e.store, e.router, e.arbiter,
		api.WithLogger(logger.Named("api")),
		api.WithWhite(appConfig.White()),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return e.router.Run(ctx, appConfig.TickInterval.Duration)
	})
	g.Go(func() error {
		return srv.ListenAndServe(ctx, addr)
	})
	if serveWatch {
		w := scene.NewWatcher(e.path, e.store, scene.WithWatchLogger(logger.Named("watch")))
		g.Go(func() error {
			return w.Run(ctx)
		})
	}
	return g.Wait()
}

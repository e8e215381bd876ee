package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/lumen/internal/scene"
)

var (
	// Watch command flags
	watchWriteBack bool
	watchDebounce  time.Duration
	watchSeedNew   bool
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <scene.yaml>",
	Short: "Recompute lights live as a scene file changes",
	Long: `Load a scene file, compute every light, then watch the file. Each save is
diffed against the loaded scene and only lights whose inputs changed are
recomputed, once per tick however many edits arrive.

With --write-back the computed attributes are saved into the file after
every tick that changed something. The resulting file event carries no input
changes and does not trigger another recompute.

Lights without an id get a generated one; use --write-back to keep it stable
across edits.

Examples:
  lumen watch scene.yaml
  lumen watch --write-back -v scene.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchWriteBack, "write-back", false, "save computed attributes into the scene file")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", scene.DefaultDebounce, "wait for file events to settle")
	watchCmd.Flags().BoolVar(&watchSeedNew, "seed-new", false, "give lights added while watching default input attributes")
}

// runWatch executes the watch command.
func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := loadEngine(args[0], seedOptions(watchSeedNew)...)
	if err != nil {
		return err
	}
	defer e.detach()

	results, err := e.recomputeAll(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if err := e.printResults(out, results); err != nil {
		return err
	}
	if watchWriteBack {
		if err := e.save(""); err != nil {
			return err
		}
	}

	w := scene.NewWatcher(e.path, e.store,
		scene.WithWatchLogger(logger.Named("watch")),
		scene.WithDebounce(watchDebounce),
	)
	if err := w.Start(ctx); err != nil {
		return err
	}
	logger.Info("watching", "path", e.path, "entities", e.store.Len(), "tick", appConfig.TickInterval.Duration)

	return watchLoop(ctx, out, e, w, func(n int) {
		if n == 0 {
			return
		}
		if watchWriteBack {
			if err := e.save(""); err != nil {
				logger.Error("failed to write scene", "path", e.path, "error", err)
			}
		}
	})
}

// watchLoop ticks the router until ctx is done, printing each batch and
// calling after with the batch size.
func watchLoop(ctx context.Context, out io.Writer, e *engine, w *scene.Watcher, after func(n int)) error {
	ticker := time.NewTicker(appConfig.TickInterval.Duration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			<-w.Done()
			logger.Info("stopped", "stats", e.router.Stats())
			return nil
		case <-w.Done():
			if ctx.Err() != nil {
				return nil
			}
			return errors.New("scene watcher stopped")
		case <-ticker.C:
			results, err := e.router.Tick(ctx)
			if err != nil || len(results) == 0 {
				continue
			}
			if err := e.printResults(out, results); err != nil {
				return err
			}
			after(len(results))
		}
	}
}

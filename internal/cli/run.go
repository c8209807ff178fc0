package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/berrythewa/quicklaunch/internal/config"
	"github.com/berrythewa/quicklaunch/internal/history"
	"github.com/berrythewa/quicklaunch/internal/hotkey"
	"github.com/berrythewa/quicklaunch/internal/ipc"
	"github.com/berrythewa/quicklaunch/internal/launcher"
	"github.com/berrythewa/quicklaunch/internal/platform"
	"github.com/berrythewa/quicklaunch/internal/storage"
	"github.com/berrythewa/quicklaunch/internal/suggest"
	"github.com/berrythewa/quicklaunch/internal/types"
)

// runLauncher hands the activation to a running launcher or becomes the
// launcher itself
func runLauncher(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	target := strings.Join(args, " ")

	coord := ipc.NewCoordinator(ipc.Options{
		SocketPath:  cfg.SocketPath(),
		DialTimeout: cfg.IPC.DialTimeout,
		ReadTimeout: cfg.IPC.ReadTimeout,
		QueueSize:   cfg.IPC.QueueSize,
		Logger:      logger,
	})
	role, err := coord.Acquire(ctx, types.ActivationMessage{Target: target})
	if err != nil {
		return fmt.Errorf("failed to start single instance listener: %w", err)
	}
	if role == ipc.RoleSecondary {
		return nil
	}
	defer coord.Close()

	store, err := storage.NewBoltStorage(storage.StorageConfig{
		DBPath: cfg.SystemPaths.DBFile,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	fetcher := suggest.NewHTTPFetcher(suggest.FetcherOptions{
		Timeout:      cfg.Suggest.Timeout,
		UserAgent:    cfg.Suggest.UserAgent,
		MaxBodyBytes: cfg.Suggest.MaxBodyBytes,
		Logger:       logger,
	})
	worker := suggest.NewWorker(fetcher, logger)

	o := launcher.New(launcher.Options{
		Targets:  cfg.Targets,
		Worker:   worker,
		LastUsed: store,
		History:  history.NewStore(store, cfg.History.Limit, logger),
		Executor: platform.NewLauncher(platform.LauncherOptions{
			Opener: cfg.Launch.Opener,
			Shell:  cfg.Launch.Shell,
			Logger: logger,
		}),
		SuggestionsEnabled: cfg.Suggest.Enabled,
		Logger:             logger,
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	worker.Start(gctx)
	defer worker.Stop()

	activations := make(chan types.ActivationMessage, cfg.IPC.QueueSize)
	g.Go(func() error {
		return forward(gctx, coord.Activations(), activations)
	})
	startSources(gctx, g, activations)

	var reloads <-chan []types.Target
	if w, err := config.NewWatcher(cfg.SystemPaths.ActiveConfig, logger); err != nil {
		logger.Warn("Config reload disabled", zap.Error(err))
	} else {
		w.Start(gctx)
		defer w.Stop()
		reloads = w.Updates()
	}

	o.Activate(target)

	code, err := runFrontend(gctx, cfg.Frontend, o, launcher.Sources{
		Activations: activations,
		Results:     worker.Results(),
		Targets:     reloads,
	})
	cancel()
	if werr := g.Wait(); werr != nil && !errors.Is(werr, context.Canceled) {
		logger.Warn("Activation source failed", zap.Error(werr))
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("Launcher finished",
		zap.Stringer("state", o.State()),
		zap.Int("exit_code", code))
	if code != 0 {
		return fmt.Errorf("launcher exited with code %d", code)
	}
	return nil
}

// forward copies activations from the coordinator into the shared queue
func forward(ctx context.Context, in <-chan types.ActivationMessage, out chan<- types.ActivationMessage) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-in:
			select {
			case out <- msg:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// startSources runs the configured activation sources. A source that cannot
// start is logged and skipped, so it never takes the launcher down.
func startSources(ctx context.Context, g *errgroup.Group, out chan<- types.ActivationMessage) {
	if cfg.Hotkey.Signal {
		sig := platform.NewSignalSource(logger)
		if sig.Supported() {
			logger.Info("Activation signal enabled", zap.Int("pid", os.Getpid()))
			g.Go(func() error { return sig.Run(ctx, out) })
		}
	}

	if !cfg.Hotkey.Enabled {
		return
	}
	hk, err := hotkey.NewSource(cfg.Hotkey.Key, cfg.Hotkey.Modifiers, logger)
	if err != nil {
		logger.Warn("Invalid hotkey", zap.Error(err))
		return
	}
	g.Go(func() error {
		err := hk.Run(ctx, out)
		switch {
		case err == nil || ctx.Err() != nil:
		case errors.Is(err, hotkey.ErrUnsupported):
			logger.Info("Global hotkey unavailable", zap.Error(err))
		default:
			logger.Warn("Global hotkey failed", zap.Error(err))
		}
		return nil
	})
}

package main

import (
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/pachadotdev/bello/internal/config"
	"github.com/pachadotdev/bello/internal/connector"
	"github.com/pachadotdev/bello/internal/importers"
	"github.com/pachadotdev/bello/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the browser-connector server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(cfg *config.Config, svc *importers.Service) error {
				logger, err := logging.NewFromConfig(cfg)
				if err != nil {
					return fmt.Errorf("init logger: %w", err)
				}

				// One writer process at a time; the store assumes it.
				lockPath := filepath.Join(cfg.LogDir, "bello.lock")
				lock := flock.New(lockPath)
				locked, err := lock.TryLock()
				if err != nil {
					return fmt.Errorf("acquire lock: %w", err)
				}
				if !locked {
					return errors.New("another bello serve instance is already running")
				}
				defer func() { _ = lock.Unlock() }()

				signalCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				server, err := connector.NewServer(signalCtx, cfg, svc, logger)
				if err != nil {
					return fmt.Errorf("start connector: %w", err)
				}
				defer server.Close()
				server.Serve()

				fmt.Fprintf(cmd.OutOrStdout(), "bello serving on %s (ctrl-c to stop)\n", server.Addr())
				<-signalCtx.Done()
				logger.Info("bello shutting down")
				return nil
			})
		},
	}
}

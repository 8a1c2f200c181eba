package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/willow-lab/leetboard/pkg/cli/config"
	server "github.com/willow-lab/leetboard/pkg/controller/http"
	"github.com/willow-lab/leetboard/pkg/service/worker"
	"github.com/willow-lab/leetboard/pkg/usecase"
	"github.com/willow-lab/leetboard/pkg/utils/logging"
	"github.com/willow-lab/leetboard/pkg/utils/safe"
)

func cmdServe() *cli.Command {
	var (
		addr            string
		refreshInterval time.Duration
		storeCfg        config.Store
		leetcodeCfg     config.LeetCode
		rosterCfg       config.Roster
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Aliases:     []string{"a"},
			Usage:       "HTTP server address",
			Value:       "127.0.0.1:8080",
			Sources:     cli.EnvVars("LEETBOARD_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "refresh-interval",
			Usage:       "Background refresh cycle interval (0 disables the worker)",
			Value:       30 * time.Minute,
			Sources:     cli.EnvVars("LEETBOARD_REFRESH_INTERVAL"),
			Destination: &refreshInterval,
		},
	}
	flags = append(flags, storeCfg.Flags()...)
	flags = append(flags, leetcodeCfg.Flags()...)
	flags = append(flags, rosterCfg.Flags()...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Start the dashboard HTTP server",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			localRoster, err := rosterCfg.Load()
			if err != nil {
				return err
			}

			store, err := storeCfg.Configure(ctx, localRoster)
			if err != nil {
				return err
			}
			defer safe.Close(ctx, store)

			svc := leetcodeCfg.Configure()
			logger.Info("statistics client configured", "leetcode", leetcodeCfg)

			uc := usecase.New(store, svc, usecase.WithExtraRoster(localRoster))

			var serverOpts []server.Options
			if inv, ok := store.(server.RosterInvalidator); ok {
				serverOpts = append(serverOpts, server.WithRosterInvalidator(inv))
			}
			srv := server.New(uc, serverOpts...)

			if refreshInterval > 0 {
				w := worker.NewRefreshWorker(uc, refreshInterval)
				if err := w.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start refresh worker")
				}
				defer w.Stop()
			}

			httpServer := &http.Server{
				Addr:              addr,
				Handler:           srv,
				ReadHeaderTimeout: 10 * time.Second,
			}

			sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("starting HTTP server", "addr", addr)
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "HTTP server failed")
				}

			case <-sigCtx.Done():
				logger.Info("shutdown signal received")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()

				if err := httpServer.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown HTTP server")
				}
			}

			logger.Info("server stopped")
			return nil
		},
	}
}

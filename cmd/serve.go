// cmd/serve.go
package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gewnthar/visabulletin/handlers"
	"github.com/gewnthar/visabulletin/logger"
	"github.com/gewnthar/visabulletin/services"
)

const shutdownTimeout = 30 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the sync trigger and read API, and run the sync schedule if configured.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.cfg.Auth.HasTriggerCredentials() {
			a.log.Warn("No trigger credentials configured; every sync request will be rejected")
		}

		var sched *services.Scheduler
		if a.cfg.Sync.Schedule != "" {
			sched, err = services.NewScheduler(a.cfg.Sync.Schedule, a.sync,
				a.log.With(logger.String("component", "scheduler")))
			if err != nil {
				return err
			}
			sched.Start(a.cfg.Sync.RunOnStart)
		}

		router := handlers.NewRouter(handlers.Routes{
			Syncer:  a.sync,
			Reader:  a.bulletins,
			Store:   a.store,
			Metrics: a.metrics.Handler(),
			Auth:    a.cfg.Auth,
			Log:     a.log.With(logger.String("component", "http")),
		})
		srv := &http.Server{
			Addr:              ":" + a.cfg.Server.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			a.log.Info("Server starting", logger.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return err
			}
		case <-ctx.Done():
		}

		a.log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if sched != nil {
			if err := sched.Stop(shutdownCtx); err != nil {
				a.log.Warn("Scheduled sync did not finish before shutdown", logger.Error(err))
			}
		}
		return srv.Shutdown(shutdownCtx)
	},
}

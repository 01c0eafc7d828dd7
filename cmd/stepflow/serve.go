package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/stepflow"
	"github.com/aretw0/stepflow/internal/metrics"
	"github.com/aretw0/stepflow/internal/presentation/tui"
	httpadapter "github.com/aretw0/stepflow/pkg/adapters/http"
	"github.com/aretw0/stepflow/pkg/session"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr      string
		redisAddr string
		quiet     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Starts the workflow engine as a JSON API over HTTP.
Graphs listed in the configuration are registered at startup; runs are kept in memory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			if redisAddr != "" {
				a.cfg.Redis.Addr = redisAddr
			}
			if !quiet {
				tui.PrintBanner(cmd.ErrOrStderr())
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			collector, err := metrics.New(nil)
			if err != nil {
				return fmt.Errorf("failed to register metrics: %w", err)
			}

			m, cleanup, err := a.newManager(ctx, session.WithLifecycleHooks(collector.Hooks()))
			if err != nil {
				return err
			}
			defer cleanup()

			srv := &http.Server{
				Addr: a.cfg.Server.Addr,
				Handler: httpadapter.NewHandler(m,
					httpadapter.WithVersion(stepflow.Version),
					httpadapter.WithLogger(a.logger),
					httpadapter.WithMetricsHandler(collector.Handler()),
				),
				ReadHeaderTimeout: 10 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				a.logger.Info("starting stepflow server", "addr", srv.Addr, "version", stepflow.Version)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server error: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				a.logger.Info("shutting down", "timeout", a.cfg.Server.ShutdownTimeout)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					_ = srv.Close()
					return fmt.Errorf("graceful shutdown did not complete in %v: %w", a.cfg.Server.ShutdownTimeout, err)
				}
				a.logger.Info("stepflow server stopped gracefully")
				return nil
			})
			return g.Wait()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from config, :8080)")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address for live trace streaming")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print the banner")
	return cmd
}

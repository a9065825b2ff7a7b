package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/antfarm/network"
	"github.com/lixenwraith/antfarm/status"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the colony and stream snapshots over HTTP",
		Long: `Runs the simulation at the configured tick rate and serves:

  /ws        websocket stream of world snapshots
  /snapshot  current snapshot as JSON
  /status    engine and stream metrics
  /healthz   liveness`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overrides server.addr")
	return cmd
}

// serve runs the driver and HTTP server until ctx is cancelled or either fails
func (a *app) serve(ctx context.Context) error {
	reg := status.NewRegistry()

	driver, err := a.newDriver(a.configBounds(), reg)
	if err != nil {
		return err
	}

	hub := network.NewHub(network.ConfigFrom(a.cfg.Server), reg, a.logger)
	driver.OnTick(hub.Listener())
	hub.Publish(driver.Snapshot(), true)

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           hub.Handler(driver, reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if a.cfg.Run.Autostart {
		if err := driver.Play(); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return driver.Run(gctx)
	})

	g.Go(func() error {
		a.logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// Hijacked websocket connections are not closed by Shutdown
		hub.Close()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	a.logger.Info("server stopped", zap.Uint64("tick", driver.Snapshot().Tick))
	return err
}

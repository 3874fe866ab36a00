package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/flohusson/attitude-emoi/internal/di"
	"github.com/flohusson/attitude-emoi/internal/logging"
	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the admin API and the public site routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return ctx.withContainer(runCtx, cmd.ErrOrStderr(), func(c *di.Container) error {
				handler, err := c.Handler()
				if err != nil {
					return err
				}
				listenAddr := c.Config.HTTP.Addr
				if addr != "" {
					listenAddr = addr
				}
				listener, err := net.Listen("tcp", listenAddr)
				if err != nil {
					return fmt.Errorf("listen %s: %w", listenAddr, err)
				}
				return serve(runCtx, listener, handler, logging.HTTPLogger(c.LoggerProvider()))
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overrides [http] addr")
	return cmd
}

// serve runs until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, listener net.Listener, handler http.Handler, logger interfaces.Logger) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()
	logger.Info("http.server.started", "addr", listener.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("http.server.stopped")
	return nil
}

package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mcpgate/internal/bootstrap"
	"mcpgate/internal/bootstrap/logging"
	"mcpgate/internal/errs"
	"mcpgate/internal/httpapi"
	"mcpgate/internal/usecase/proxy"
	"mcpgate/internal/usecase/registry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP governance gateway server",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *registry.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = app.Config.Server.Addr
		}

		forwarder := proxy.NewForwarder(time.Duration(app.Config.Proxy.UpstreamTimeoutSeconds) * time.Second)
		handler := httpapi.NewRouter(svc, forwarder, httpapi.Config{AuthToken: app.Config.Server.AuthToken})

		server := &http.Server{
			Addr:    addr,
			Handler: handler,
			BaseContext: func(net.Listener) context.Context {
				return ctx
			},
		}

		signalCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.ListenAndServe()
		}()

		logging.Info(ctx, "gateway server started", slog.String("addr", addr))

		select {
		case <-signalCtx.Done():
			logging.Info(ctx, "gateway server stopping")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logging.Error(ctx, "gateway server shutdown failed", slog.Any("err", errs.Loggable(err)))
				return errs.Wrap(err, "shutdown gateway")
			}
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error(ctx, "gateway server failed", slog.Any("err", errs.Loggable(err)))
				return errs.Wrap(err, "serve gateway")
			}
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (defaults to server.addr from config)")
}

package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"artconnect/internal/app"
	"artconnect/internal/dashboard"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the review dashboard HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				if addr == "" {
					addr = a.Config.HTTPAddr
				}
				return serve(cmd.Context(), a, addr)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default HTTP_ADDR)")

	return cmd
}

func serve(ctx context.Context, a *app.App, addr string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := dashboard.NewMetrics()
	metrics.ObserveBatch(a.Review.Scored())
	a.Review.AddDecisionHook(metrics.ObserveDecision)

	if !a.Config.LogDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}
	router := dashboard.NewRouter(dashboard.NewHandler(a.Review, metrics, a.HighValue(), a.Logger))

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("🌐 Dashboard listening", zap.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	a.Logger.Info("Server exited")
	return nil
}

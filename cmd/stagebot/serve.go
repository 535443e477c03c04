package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	appConfig "github.com/festy23/stagebot/internal/config"
	"github.com/festy23/stagebot/internal/health"
	"github.com/festy23/stagebot/internal/middleware"
	webhookRouter "github.com/festy23/stagebot/internal/webhook/router"
)

func newServeCmd() *cobra.Command {
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(appConfig.LoadFromEnv())
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if !skipPreflight {
				if err := a.preflight(ctx); err != nil {
					return err
				}
			}
			return a.serve(ctx)
		},
	}

	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Start without checking the forge and core team first")
	return cmd
}

func (a *app) newEngine() *gin.Engine {
	gin.SetMode(a.cfg.GinMode)

	r := gin.New()
	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.Logger(a.logger))

	health.RegisterRoutes(r, a.forge, a.logger)
	webhookRouter.RegisterRoutes(r, a.cfg.Server.WebhookPath, a.service, a.logger)

	return r
}

// serve blocks until ctx is cancelled, then drains in-flight deliveries.
func (a *app) serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         a.cfg.Server.GetAddress(),
		Handler:      a.newEngine(),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infow("server starting", "addr", srv.Addr, "webhook_path", a.cfg.Server.WebhookPath)
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

	a.logger.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Errorw("shutdown error", "error", err)
		return err
	}
	return nil
}

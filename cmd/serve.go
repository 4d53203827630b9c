package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"condo-booking/cmd/bootstrap"
	"condo-booking/internal/infra/db"
	"condo-booking/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newServeCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the outbox dispatcher",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := []fx.Option{
				bootstrap.Module,
				fx.Provide(func() *gin.Engine {
					return gin.New()
				}),
			}
			if migrateUp {
				opts = append(opts, fx.Invoke(migrateOnStart))
			}
			opts = append(opts, fx.Invoke(startServer))

			app := fx.New(opts...)
			if err := app.Start(cmd.Context()); err != nil {
				slog.Error("failed to start application", "error", err)
				return err
			}

			<-app.Done()

			stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := app.Stop(stopCtx); err != nil {
				slog.Error("failed to stop application cleanly", "error", err)
			}

			slog.Info("application stopped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", false, "apply database migrations before serving")
	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}

func migrateOnStart(lc fx.Lifecycle, pool *pgxpool.Pool, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_, err := db.Migrate(ctx, pool, logger)
			return err
		},
	})
}

func startServer(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, logger *slog.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			gin.EnableJsonDecoderDisallowUnknownFields()
			logger.Info("starting server", "address", srv.Addr, "mode", gin.Mode())
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server stopped unexpectedly", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("shutting down server")
			return srv.Shutdown(ctx)
		},
	})
}

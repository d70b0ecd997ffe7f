package app

import (
	"context"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/mindmirror/backend/internal/api"
	"github.com/mindmirror/backend/internal/auth"
	"github.com/mindmirror/backend/internal/database"
	"github.com/mindmirror/backend/internal/maintenance"
	"github.com/mindmirror/backend/internal/migration"
	"github.com/mindmirror/backend/internal/server"
	"github.com/mindmirror/backend/internal/session"
	"github.com/mindmirror/backend/internal/token"
)

// Module combines all application modules.
func Module() fx.Option {
	return fx.Options(
		fx.Provide(newLogger),
		fx.Provide(server.LoadConfig),

		database.Module(),
		migration.Module(),

		auth.NewModule(),
		token.NewModule(),
		session.NewModule(),
		api.NewModule(),
		maintenance.Module(),

		fx.Provide(server.NewServer),
		fx.Invoke(registerHooks),
	)
}

func newLogger() (*zap.Logger, error) {
	env := os.Getenv("APP_ENV")
	return server.NewLogger(env)
}

func registerHooks(
	lifecycle fx.Lifecycle,
	srv *server.Server,
	log *zap.Logger,
) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					log.Error("failed to start server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server...")
			return srv.Stop(ctx)
		},
	})
}

package maintenance

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/mindmirror/backend/internal/config"
	"github.com/mindmirror/backend/internal/session"
	"github.com/mindmirror/backend/internal/token"
)

func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(config *config.AppConfig, log *zap.Logger, tokens *token.Service, sessions session.Registry) *Cleaner {
					return NewCleaner(&config.Maintenance, log, tokens, sessions)
				},
			),
		),
		fx.Invoke(registerHooks),
	)
}

func registerHooks(
	lifecycle fx.Lifecycle,
	cleaner *Cleaner,
) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return cleaner.Start()
		},
		OnStop: func(ctx context.Context) error {
			cleaner.Stop()
			return nil
		},
	})
}

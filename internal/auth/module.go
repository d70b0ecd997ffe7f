package auth

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mindmirror/backend/internal/config"
)

// NewModule returns the auth module options.
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(db *gorm.DB) Repository {
					return NewRepository(db)
				},
			),
			fx.Annotate(
				func(config *config.AppConfig, log *zap.Logger, repo Repository, revoker TokenRevoker) *Service {
					return NewService(&config.Auth, log, repo, revoker)
				},
			),
		),
	)
}

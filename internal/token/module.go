package token

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mindmirror/backend/internal/auth"
	"github.com/mindmirror/backend/internal/config"
)

// NewModule returns the token module options.
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(config *config.AppConfig) *Codec {
					return NewCodec(&config.Auth)
				},
			),
			fx.Annotate(
				func(db *gorm.DB) Store {
					return NewStore(db)
				},
			),
			fx.Annotate(
				func(config *config.AppConfig, log *zap.Logger, codec *Codec, store Store, users auth.Repository) *Service {
					return NewService(&config.Auth, log, codec, store, users)
				},
			),
			// The auth service only needs revocation; hand it the narrow
			// interface instead of the whole token service.
			func(svc *Service) auth.TokenRevoker {
				return svc
			},
		),
	)
}

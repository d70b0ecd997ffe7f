package session

import (
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// NewModule returns the session module options.
func NewModule() fx.Option {
	return fx.Provide(
		fx.Annotate(
			func(db *gorm.DB) Registry {
				return NewRegistry(db)
			},
		),
	)
}

package api

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/mindmirror/backend/internal/auth"
	"github.com/mindmirror/backend/internal/session"
	"github.com/mindmirror/backend/internal/token"
)

// NewModule returns the HTTP surface: handlers and auth middleware.
func NewModule() fx.Option {
	return fx.Provide(
		fx.Annotate(
			func(log *zap.Logger, svc *auth.Service, tokens *token.Service, sessions session.Registry) *AuthHandler {
				return NewAuthHandler(log, svc, tokens, sessions)
			},
		),
		fx.Annotate(
			func(log *zap.Logger, sessions session.Registry) *SessionHandler {
				return NewSessionHandler(log, sessions)
			},
		),
		fx.Annotate(
			func(log *zap.Logger, codec *token.Codec, users auth.Repository) *Middleware {
				return NewMiddleware(log, codec, users)
			},
		),
	)
}

package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires the REST surface. Endpoints not listed in PublicEndpoints
// sit behind RequireAuth.
func NewRouter(authHandler *AuthHandler, sessionHandler *SessionHandler, middleware *Middleware) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc(AuthRegister, authHandler.Register).Methods(http.MethodPost)
	r.HandleFunc(AuthLogin, authHandler.Login).Methods(http.MethodPost)
	r.HandleFunc(AuthOAuth, authHandler.OAuthLogin).Methods(http.MethodPost)
	r.HandleFunc(AuthRefresh, authHandler.Refresh).Methods(http.MethodPost)
	r.HandleFunc(AuthLogout, authHandler.Logout).Methods(http.MethodPost)
	r.HandleFunc(AuthPasswordStrength, authHandler.PasswordStrength).Methods(http.MethodPost)

	protect := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireAuth(h)
	}

	r.Handle(AuthLogoutAll, protect(authHandler.LogoutAll)).Methods(http.MethodPost)
	r.Handle(AuthMe, protect(authHandler.Me)).Methods(http.MethodGet)
	r.Handle(AuthPassword, protect(authHandler.ChangePassword)).Methods(http.MethodPut)
	r.Handle(AuthAccount, protect(authHandler.DeleteAccount)).Methods(http.MethodDelete)
	r.Handle(AuthTokens, protect(authHandler.ListTokens)).Methods(http.MethodGet)

	r.Handle(Sessions, protect(sessionHandler.List)).Methods(http.MethodGet)
	r.Handle(SessionByID, protect(sessionHandler.DeleteOne)).Methods(http.MethodDelete)
	r.Handle(Sessions, protect(sessionHandler.DeleteAll)).Methods(http.MethodDelete)

	return r
}

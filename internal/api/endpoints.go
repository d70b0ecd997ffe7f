package api

// REST endpoint paths.
const (
	AuthRegister         = "/api/auth/register"
	AuthLogin            = "/api/auth/login"
	AuthOAuth            = "/api/auth/oauth"
	AuthRefresh          = "/api/auth/refresh"
	AuthLogout           = "/api/auth/logout"
	AuthLogoutAll        = "/api/auth/logout-all"
	AuthMe               = "/api/auth/me"
	AuthPassword         = "/api/auth/password"
	AuthPasswordStrength = "/api/auth/password/strength"
	AuthAccount          = "/api/auth/account"
	AuthTokens           = "/api/auth/tokens"
	Sessions             = "/api/sessions"
	SessionByID          = "/api/sessions/{id:[0-9]+}"
)

// PublicEndpoints can be reached without a bearer token.
var PublicEndpoints = map[string]bool{
	AuthRegister:         true,
	AuthLogin:            true,
	AuthOAuth:            true,
	AuthRefresh:          true,
	AuthPasswordStrength: true,
}

package api

import (
	"encoding/json"
	"net"
	"net/http"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/mindmirror/backend/internal/auth"
	"github.com/mindmirror/backend/internal/session"
	"github.com/mindmirror/backend/internal/token"
)

type AuthHandler struct {
	log      *zap.Logger
	service  *auth.Service
	tokens   *token.Service
	sessions session.Registry
}

func NewAuthHandler(log *zap.Logger, service *auth.Service, tokens *token.Service, sessions session.Registry) *AuthHandler {
	return &AuthHandler{
		log:      log,
		service:  service,
		tokens:   tokens,
		sessions: sessions,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Username string `json:"username"`
}

type authResponse struct {
	User      *auth.Profile `json:"user"`
	Tokens    *token.Pair   `json:"tokens"`
	IsNewUser *bool         `json:"isNewUser,omitempty"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}
	if violations := validateRegisterRequest(&req); len(violations) > 0 {
		writeError(w, http.StatusBadRequest, "validation", "invalid registration request", violations...)
		return
	}

	user, err := h.service.Register(auth.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Username: req.Username,
	})
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}

	pair, err := h.tokens.IssuePair(user)
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}
	h.recordSession(r, user.ID)

	profile := user.Profile()
	writeJSON(w, http.StatusCreated, authResponse{User: &profile, Tokens: pair})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "validation", "email and password are required")
		return
	}

	user, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}

	pair, err := h.tokens.IssuePair(user)
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}
	h.recordSession(r, user.ID)

	profile := user.Profile()
	writeJSON(w, http.StatusOK, authResponse{User: &profile, Tokens: pair})
}

type oauthRequest struct {
	Provider       string `json:"provider"`
	OAuthID        string `json:"oauthId"`
	Email          string `json:"email"`
	FullName       string `json:"fullName"`
	ProfilePicture string `json:"profilePicture"`
}

func (h *AuthHandler) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	var req oauthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}
	if req.Provider == "" || req.OAuthID == "" || !isValidEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "validation", "provider, oauthId and a valid email are required")
		return
	}

	user, isNewUser, err := h.service.OAuthLogin(auth.OAuthInput{
		Provider:       req.Provider,
		OAuthID:        req.OAuthID,
		Email:          req.Email,
		FullName:       req.FullName,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}

	pair, err := h.tokens.IssuePair(user)
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}
	h.recordSession(r, user.ID)

	profile := user.Profile()
	writeJSON(w, http.StatusOK, authResponse{User: &profile, Tokens: pair, IsNewUser: &isNewUser})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "validation", "refreshToken is required")
		return
	}

	pair, user, err := h.tokens.Refresh(req.RefreshToken)
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}
	// A refresh is device activity; keep the session marked active.
	h.recordSession(r, user.ID)

	writeJSON(w, http.StatusOK, map[string]interface{}{"tokens": pair})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "validation", "refreshToken is required")
		return
	}

	if err := h.tokens.Revoke(req.RefreshToken); err != nil {
		writeAppError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	if err := h.tokens.RevokeAllForUser(identity.UserID); err != nil {
		writeAppError(w, h.log, err)
		return
	}
	if _, err := h.sessions.DeleteAllForUser(identity.UserID); err != nil {
		h.log.Error("failed to delete sessions on logout-all",
			zap.Uint("user_id", identity.UserID), zap.Error(err))
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out everywhere"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	profile, err := h.service.GetProfile(identity.UserID)
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": profile})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "validation", "currentPassword and newPassword are required")
		return
	}

	if err := h.service.ChangePassword(identity.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		writeAppError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}

type passwordStrengthRequest struct {
	Password string `json:"password"`
}

// PasswordStrength is advisory UI feedback; registration and password change
// enforce the real policy server-side regardless of what this reports.
func (h *AuthHandler) PasswordStrength(w http.ResponseWriter, r *http.Request) {
	var req passwordStrengthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}

	score, level := auth.PasswordStrength(req.Password)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"score":      score,
		"level":      level,
		"violations": auth.ValidatePassword(req.Password),
	})
}

type deleteAccountRequest struct {
	Password string `json:"password"`
}

func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	var req deleteAccountRequest
	// Body is optional; OAuth-only accounts have no password to confirm.
	_ = json.NewDecoder(r.Body).Decode(&req)

	if err := h.service.DeleteAccount(identity.UserID, req.Password); err != nil {
		writeAppError(w, h.log, err)
		return
	}

	// Cascade: a deactivated account must not keep usable credentials or
	// visible sessions.
	if err := h.tokens.RevokeAllForUser(identity.UserID); err != nil {
		h.log.Error("failed to revoke tokens on account deletion",
			zap.Uint("user_id", identity.UserID), zap.Error(err))
	}
	if _, err := h.sessions.DeleteAllForUser(identity.UserID); err != nil {
		h.log.Error("failed to delete sessions on account deletion",
			zap.Uint("user_id", identity.UserID), zap.Error(err))
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "account deleted"})
}

func (h *AuthHandler) ListTokens(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	metadata, err := h.tokens.ListActive(identity.UserID)
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"tokens": metadata})
}

func (h *AuthHandler) recordSession(r *http.Request, userID uint) {
	userAgent := r.UserAgent()
	device := session.ParseDeviceLabel(userAgent)
	if _, err := h.sessions.FindOrCreate(userID, device, clientIP(r), userAgent); err != nil {
		h.log.Error("failed to record session", zap.Uint("user_id", userID), zap.Error(err))
	}
}

func validateRegisterRequest(req *registerRequest) []string {
	var violations []string
	if req.Email == "" {
		violations = append(violations, "email is required")
	} else if !isValidEmail(req.Email) {
		violations = append(violations, "email format is invalid")
	}
	if req.Password == "" {
		violations = append(violations, "password is required")
	}
	if req.Username != "" && (len(req.Username) < 3 || len(req.Username) > 32) {
		violations = append(violations, "username must be between 3 and 32 characters")
	}
	return violations
}

func isValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

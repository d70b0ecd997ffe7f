package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mindmirror/backend/internal/session"
)

type SessionHandler struct {
	log      *zap.Logger
	sessions session.Registry
}

func NewSessionHandler(log *zap.Logger, sessions session.Registry) *SessionHandler {
	return &SessionHandler{
		log:      log,
		sessions: sessions,
	}
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	views, err := h.sessions.ListForUser(identity.UserID)
	if err != nil {
		h.log.Error("failed to list sessions", zap.Uint("user_id", identity.UserID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": views})
}

func (h *SessionHandler) DeleteOne(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid session id")
		return
	}

	if err := h.sessions.DeleteOne(uint(id), identity.UserID); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "session not found")
			return
		}
		h.log.Error("failed to delete session", zap.Uint("user_id", identity.UserID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "session deleted"})
}

func (h *SessionHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	count, err := h.sessions.DeleteAllForUser(identity.UserID)
	if err != nil {
		h.log.Error("failed to delete sessions", zap.Uint("user_id", identity.UserID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "sessions deleted",
		"count":   count,
	})
}

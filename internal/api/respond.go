package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/mindmirror/backend/internal/apperror"
)

type errorBody struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string, details ...string) {
	writeJSON(w, status, errorBody{Error: code, Message: message, Details: details})
}

// writeAppError translates the closed apperror taxonomy into HTTP. The
// switch is exhaustive over apperror.Kind; unknown errors are treated as
// internal and their detail never reaches the client.
func writeAppError(w http.ResponseWriter, log *zap.Logger, err error) {
	kind := apperror.KindOf(err)
	message := apperror.MessageOf(err)
	switch kind {
	case apperror.KindValidation:
		writeError(w, http.StatusBadRequest, kind.String(), message, apperror.DetailsOf(err)...)
	case apperror.KindAuthentication:
		writeError(w, http.StatusUnauthorized, kind.String(), message)
	case apperror.KindAccountLocked:
		writeError(w, http.StatusLocked, kind.String(), message)
	case apperror.KindConflict:
		writeError(w, http.StatusConflict, kind.String(), message)
	case apperror.KindToken:
		writeError(w, http.StatusUnauthorized, kind.String(), message)
	case apperror.KindNotFound:
		writeError(w, http.StatusNotFound, kind.String(), message)
	case apperror.KindInternal, apperror.KindUnknown:
		log.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
	default:
		log.Error("unhandled error kind", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

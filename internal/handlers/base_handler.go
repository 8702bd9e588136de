package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/userhub/user-service/internal/apperror"
	"go.uber.org/zap"
)

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, map[string]string{"error": message})
}

// RespondAppError maps an application error to its HTTP status. Internal
// causes are logged but never serialized to the client.
func (h *BaseHandler) RespondAppError(w http.ResponseWriter, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		appErr = apperror.NewInternal(err)
	}

	message := appErr.Message
	if appErr.Kind == apperror.Internal {
		h.Logger.Error("internal error", zap.Error(appErr))
		message = "internal server error"
	}

	h.RespondError(w, appErr.StatusCode(), message)
}

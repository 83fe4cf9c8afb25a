package httpapi

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strings"

	"chat-relay/auth"
	"chat-relay/errors"
)

// authedHandler is an HTTP handler that runs with a verified identity.
type authedHandler func(w http.ResponseWriter, r *http.Request, claims *auth.CustomClaims)

// requireAuth verifies the bearer token and attaches the claims, rejecting
// the request with 401 before any handler logic runs.
func (h *Handler) requireAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			respondError(w, http.StatusUnauthorized, "no token provided")
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		claims, err := h.tokens.Validate(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next(w, r, claims)
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps the error taxonomy onto HTTP statuses. Unknown
// errors are treated as transient store failures: retryable, not retried.
func respondServiceError(log *slog.Logger, w http.ResponseWriter, err error) {
	switch {
	case stderrors.Is(err, errors.ErrRoomNotFound),
		stderrors.Is(err, errors.ErrUserNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case stderrors.Is(err, errors.ErrAccessDenied),
		stderrors.Is(err, errors.ErrNotOwner):
		respondError(w, http.StatusForbidden, err.Error())
	case stderrors.Is(err, errors.ErrAlreadyMember),
		stderrors.Is(err, errors.ErrAlreadyInvited),
		stderrors.Is(err, errors.ErrNotInvited),
		stderrors.Is(err, errors.ErrRoomNotTrashed),
		stderrors.Is(err, errors.ErrUserAlreadyExists):
		respondError(w, http.StatusConflict, err.Error())
	case stderrors.Is(err, errors.ErrInvalidCredentials),
		stderrors.Is(err, errors.ErrInvalidToken):
		respondError(w, http.StatusUnauthorized, err.Error())
	case stderrors.Is(err, errors.ErrInvalidPassword),
		stderrors.Is(err, errors.ErrEmptyMessage),
		stderrors.Is(err, errors.ErrMessageTooLong):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error("Request failed on store access", "error", err)
		respondError(w, http.StatusServiceUnavailable, "store unavailable")
	}
}

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// statusTable maps flow outcomes to HTTP statuses. Order matters only for
// errors that wrap several sentinels.
var statusTable = []struct {
	err    error
	status int
}{
	{common.ErrorValidation, http.StatusBadRequest},
	{common.ErrorInvalidCredentials, http.StatusUnauthorized},
	{common.ErrorUnauthenticated, http.StatusUnauthorized},
	{common.ErrTokenExpired, http.StatusForbidden},
	{common.ErrInvalidToken, http.StatusForbidden},
	{common.ErrorForbidden, http.StatusForbidden},
	{common.ErrorAlreadyExists, http.StatusConflict},
	{common.ErrorUpstream, http.StatusBadGateway},
	{common.ErrorInternal, http.StatusInternalServerError},
}

// statusFor returns the status and the client-facing message for err.
// Validation errors carry their field message; everything else is reduced
// to the sentinel text so internal causes never reach the caller.
func statusFor(err error) (int, string) {
	for _, e := range statusTable {
		if !errors.Is(err, e.err) {
			continue
		}
		switch e.err {
		case common.ErrorValidation:
			return e.status, err.Error()
		case common.ErrTokenExpired, common.ErrInvalidToken:
			return e.status, common.ErrorForbidden.Error()
		case common.ErrorAlreadyExists:
			return e.status, "username already taken"
		}
		return e.status, e.err.Error()
	}
	return http.StatusInternalServerError, common.ErrorInternal.Error()
}

func writeFlowError(w http.ResponseWriter, err error) {
	status, msg := statusFor(err)
	writeError(w, status, msg)
}

// outcomeFor labels err for the auth outcome counter.
func outcomeFor(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, common.ErrorValidation):
		return "invalid_request"
	case errors.Is(err, common.ErrorInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, common.ErrorAlreadyExists):
		return "duplicate"
	case errors.Is(err, common.ErrorUnauthenticated):
		return "missing_token"
	case errors.Is(err, common.ErrTokenExpired):
		return "expired_token"
	case errors.Is(err, common.ErrInvalidToken):
		return "invalid_token"
	default:
		return "error"
	}
}

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/logger"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Retryable bool   `json:"retryable,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			logger.Error("failed to encode response", "error", err)
		}
	}
}

// writeDomainError maps the lifecycle error taxonomy onto HTTP status
// codes. Concurrent modification is the only retryable rejection.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrRentalNotFound), errors.Is(err, domain.ErrPaymentNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Code: "not_found"})
	case errors.Is(err, domain.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Code: "invalid_transition"})
	case errors.Is(err, domain.ErrUnauthorizedActor):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error(), Code: "unauthorized_actor"})
	case errors.Is(err, domain.ErrMissingProof):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "missing_proof"})
	case errors.Is(err, domain.ErrPaymentNotCompleted):
		writeJSON(w, http.StatusPaymentRequired, errorResponse{Error: err.Error(), Code: "payment_not_completed"})
	case errors.Is(err, domain.ErrConcurrentModification):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Code: "concurrent_modification", Retryable: true})
	case errors.Is(err, domain.ErrInvariantViolation):
		logger.Error("invariant violation", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "invariant_violation"})
	default:
		logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "internal"})
	}
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Code: "bad_request"})
}

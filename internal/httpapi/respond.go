package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ticketon/ticketon/internal/repository/postgres"
	"github.com/ticketon/ticketon/internal/services/auth"
	"github.com/ticketon/ticketon/internal/services/tickets"
)

type errorBody struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// respondError maps service errors to HTTP statuses. Credential failures map
// to 500, matching the long-standing observable behavior of the API.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrLoginTaken), errors.Is(err, auth.ErrInvalidLogin):
		respondJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, tickets.ErrTicketNotFound),
		errors.Is(err, tickets.ErrRouteNotFound),
		errors.Is(err, tickets.ErrCarrierNotFound),
		errors.Is(err, postgres.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, postgres.ErrConflict):
		respondJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	default:
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func respondForbidden(w http.ResponseWriter) {
	respondJSON(w, http.StatusForbidden, errorBody{Error: "forbidden"})
}

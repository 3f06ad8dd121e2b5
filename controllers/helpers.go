package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/grocerytrack/backend/logger"
	"github.com/grocerytrack/backend/services"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// respondServiceError maps service error kinds onto HTTP statuses:
// validation and conflict to 400, not-found to 404, anything else to 500.
func respondServiceError(w http.ResponseWriter, err error) {
	var (
		validationErr *services.ValidationError
		conflictErr   *services.ConflictError
		notFoundErr   *services.NotFoundError
	)
	switch {
	case errors.As(err, &validationErr):
		respondError(w, http.StatusBadRequest, validationErr.Msg)
	case errors.As(err, &conflictErr):
		respondError(w, http.StatusBadRequest, conflictErr.Msg)
	case errors.As(err, &notFoundErr):
		respondError(w, http.StatusNotFound, notFoundErr.Msg)
	default:
		logger.Error("Request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func pathID(r *http.Request, param string) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, param), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

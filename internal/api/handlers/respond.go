package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gatherly/server/internal/api/problem"
	"github.com/gatherly/server/internal/validation"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeJSON parses the request body into dst and writes a 400 problem on
// failure. Returns false when the response has already been written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, env string) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation,
			"Invalid Request Body", err, env)
		return false
	}
	return true
}

// pathID parses a numeric path segment. An unparsable id can never name a
// stored row, so it renders as 404 rather than 400.
func pathID(w http.ResponseWriter, r *http.Request, name, env string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound,
			"Not Found", nil, env, problem.WithDetail("no such resource"))
		return 0, false
	}
	return id, true
}

// writeValidationProblem renders a field-level validation failure; returns
// false when err is not a validation error.
func writeValidationProblem(w http.ResponseWriter, r *http.Request, err error, env string) bool {
	var verr *validation.Error
	if !errors.As(err, &verr) {
		return false
	}
	problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation,
		"Validation Failed", err, env, problem.WithErrors(verr.Fields))
	return true
}

func writeInternal(w http.ResponseWriter, r *http.Request, err error, env string) {
	problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal,
		"Internal Server Error", err, env)
}

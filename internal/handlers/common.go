// Package handlers provides the JSON HTTP handlers for the finance
// navigator API.
package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	apperrors "finance_navigator/internal/errors"
)

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeError maps an error to its HTTP status and writes a JSON body.
// Internal errors get a generic message; the detail stays in the log.
func writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("Internal error: %v", err)
		message = "an internal error occurred"
	}
	writeJSON(w, status, map[string]string{"error": message})
}

// readJSON decodes the request body into v, rejecting unknown fields.
func readJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperrors.Validation("invalid JSON body")
	}
	return nil
}

package handlers

import (
	"encoding/json"
	"net/http"
)

// Stable error codes of the JSON error envelope. Callers branch on these,
// the message field is for humans.
const (
	codeInvalidRequest     = "invalid_request"
	codeOutOfScope         = "out_of_scope"
	codeGenerationFailed   = "generation_failed"
	codeCatalogUnavailable = "catalog_unavailable"
	codeInternal           = "internal_error"
)

// writeError writes the error envelope shared by every endpoint.
func writeError(w http.ResponseWriter, statusCode int, code, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": message,
	})
}

// writeJSON writes a JSON body, setting the status code first when it is
// not a plain 200.
func writeJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// WriteJSON writes data as a JSON response body with the given status code.
// The Content-Type header is set before the status is written.
//
// A marshaling failure downgrades the response to a plain 500; handlers have
// nothing useful to do with the returned error beyond logging it.
func WriteJSON(w http.ResponseWriter, data any, statusCode int) error {
	body, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "error encoding response", http.StatusInternalServerError)
		return fmt.Errorf("encode response body: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if _, err = w.Write(body); err != nil {
		return fmt.Errorf("write response body: %w", err)
	}
	return nil
}

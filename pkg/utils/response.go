package utils

import (
	"encoding/json"
	"net/http"
)

// errorBody is the envelope every failed request returns.
type errorBody struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// JSON writes data as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error writes the {success:false, error, details} envelope.
func Error(w http.ResponseWriter, status int, message string, details interface{}) {
	JSON(w, status, errorBody{Success: false, Error: message, Details: details})
}

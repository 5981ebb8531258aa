package utils

import (
	"encoding/json"
	"net/http"
)

// ApiResponse is the success envelope for every JSON endpoint.
type ApiResponse struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteSuccess writes data in the success envelope. success is true for any status below 400.
func WriteSuccess(w http.ResponseWriter, status int, data interface{}, message string) {
	WriteJSON(w, status, ApiResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{StatusCode: status, Message: message, Success: false})
}

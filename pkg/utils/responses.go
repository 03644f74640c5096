package utils

import (
	"encoding/json"
	"net/http"

	"car-rental/pkg/apperror"
)

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

// ResponseJSON writes JSON response with custom status code
func ResponseJSON(w http.ResponseWriter, code int, success bool, message string, data, errors any) {
	response := Response{
		Success: success,
		Message: message,
		Data:    data,
		Errors:  errors,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(response)
}

// ------------- Success responses -------------

// returns 200 OK
func ResponseSuccess(w http.ResponseWriter, message string, data any) {
	ResponseJSON(w, http.StatusOK, true, message, data, nil)
}

// returns 201 Created
func ResponseCreated(w http.ResponseWriter, message string, data any) {
	ResponseJSON(w, http.StatusCreated, true, message, data, nil)
}

// ResponseKeyed writes {success, message, <key>: payload}. Booking and car
// routes use it because their clients read the payload by name.
func ResponseKeyed(w http.ResponseWriter, code int, message, key string, payload any) {
	body := map[string]any{
		"success": code < http.StatusBadRequest,
		"message": message,
		key:       payload,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

// returns 200 OK with the payload under key
func ResponseSuccessAs(w http.ResponseWriter, message, key string, payload any) {
	ResponseKeyed(w, http.StatusOK, message, key, payload)
}

// returns 201 Created with the payload under key
func ResponseCreatedAs(w http.ResponseWriter, message, key string, payload any) {
	ResponseKeyed(w, http.StatusCreated, message, key, payload)
}

// ------------- Error responses -------------

// returns 400 Bad Request
func ResponseBadRequest(w http.ResponseWriter, message string, errors any) {
	ResponseJSON(w, http.StatusBadRequest, false, message, nil, errors)
}

// returns 401 Unauthorized
func ResponseUnauthorized(w http.ResponseWriter, message string) {
	ResponseJSON(w, http.StatusUnauthorized, false, message, nil, nil)
}

// returns 403 Forbidden
func ResponseForbidden(w http.ResponseWriter, message string) {
	ResponseJSON(w, http.StatusForbidden, false, message, nil, nil)
}

// returns 404 Not Found
func ResponseNotFound(w http.ResponseWriter, message string) {
	ResponseJSON(w, http.StatusNotFound, false, message, nil, nil)
}

// returns 429 Too Many Requests
func ResponseTooManyRequests(w http.ResponseWriter, message string) {
	ResponseJSON(w, http.StatusTooManyRequests, false, message, nil, nil)
}

// returns 500 Internal Server Error
func ResponseInternalError(w http.ResponseWriter, message string) {
	ResponseJSON(w, http.StatusInternalServerError, false, message, nil, nil)
}

// ResponseAppError renders an AppError with its own status code. Internal
// errors never expose their cause.
func ResponseAppError(w http.ResponseWriter, err *apperror.AppError) {
	if err.HTTPStatus >= http.StatusInternalServerError {
		ResponseInternalError(w, "Internal server error")
		return
	}

	var details any
	if len(err.Details) > 0 {
		details = err.Details
	}
	ResponseJSON(w, err.HTTPStatus, false, err.Message, nil, details)
}

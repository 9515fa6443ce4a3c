package utils

import (
	"encoding/json"
	"net/http"
)

// SuccessResponse is the envelope for 2xx replies.
type SuccessResponse struct {
	Message    string `json:"message"`
	Payload    any    `json:"payload,omitempty"`
	StatusCode int    `json:"statusCode"`
}

// ErrorResponse is the envelope for 4xx/5xx replies.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Type       string            `json:"type"`
	Message    string            `json:"message"`
	StatusCode int               `json:"statusCode"`
	Fields     map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// ResponseJSON writes a success envelope with a custom status code
func ResponseJSON(w http.ResponseWriter, code int, message string, payload any) {
	writeJSON(w, code, SuccessResponse{
		Message:    message,
		Payload:    payload,
		StatusCode: code,
	})
}

// ResponseError writes an error envelope; fields carries per-field validation messages.
func ResponseError(w http.ResponseWriter, code int, message string, fields map[string]string) {
	writeJSON(w, code, ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Type:       http.StatusText(code),
			Message:    message,
			StatusCode: code,
			Fields:     fields,
		},
	})
}

// ------------- Success responses -------------

// returns 200 OK
func ResponseSuccess(w http.ResponseWriter, message string, payload any) {
	ResponseJSON(w, http.StatusOK, message, payload)
}

// returns 201 Created
func ResponseCreated(w http.ResponseWriter, message string, payload any) {
	ResponseJSON(w, http.StatusCreated, message, payload)
}

// ------------- Error responses -------------

// returns 400 Bad Request
func ResponseBadRequest(w http.ResponseWriter, message string, fields map[string]string) {
	ResponseError(w, http.StatusBadRequest, message, fields)
}

// returns 401 Unauthorized
func ResponseUnauthorized(w http.ResponseWriter, message string) {
	ResponseError(w, http.StatusUnauthorized, message, nil)
}

// returns 403 Forbidden
func ResponseForbidden(w http.ResponseWriter, message string) {
	ResponseError(w, http.StatusForbidden, message, nil)
}

// returns 404 Not Found
func ResponseNotFound(w http.ResponseWriter, message string) {
	ResponseError(w, http.StatusNotFound, message, nil)
}

// returns 409 Conflict
func ResponseConflict(w http.ResponseWriter, message string) {
	ResponseError(w, http.StatusConflict, message, nil)
}

// returns 429 Too Many Requests
func ResponseTooManyRequests(w http.ResponseWriter, message string) {
	ResponseError(w, http.StatusTooManyRequests, message, nil)
}

// returns 500 Internal Server Error
func ResponseInternalError(w http.ResponseWriter, message string) {
	ResponseError(w, http.StatusInternalServerError, message, nil)
}

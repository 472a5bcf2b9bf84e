package utils

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// APIVersion is reported in every error envelope
const APIVersion = "1.0.0"

// Error identifiers understood by the payments core
const (
	IdentifierMissingMandatoryAttribute = "MISSING_MANDATORY_ATTRIBUTE"
	IdentifierInvalidAttribute          = "INVALID_ATTRIBUTE"
	IdentifierNotFound                  = "NOT_FOUND"
	IdentifierInternalError             = "INTERNAL_ERROR"
	IdentifierBadGateway                = "BAD_GATEWAY"
)

// ErrorResponse represents a structured error response.
// Status is the HTTP status code as a string.
type ErrorResponse struct {
	Status     string `json:"status,omitempty"`
	Message    string `json:"message"`
	Identifier string `json:"identifier,omitempty"`
	Version    string `json:"version,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return nil
	}

	return json.NewEncoder(w).Encode(data)
}

// WriteOK writes a 200 OK response with data as the body
func WriteOK(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}

// WriteNoContent writes a 204 No Content response
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteStatus writes the short {status, message} body used for authorization outcomes
func WriteStatus(w http.ResponseWriter, status int, message string) error {
	return WriteJSON(w, status, ErrorResponse{
		Status:  strconv.Itoa(status),
		Message: message,
	})
}

// WriteError writes the full adapter error envelope
func WriteError(w http.ResponseWriter, status int, identifier, message string) error {
	return WriteJSON(w, status, ErrorResponse{
		Status:     strconv.Itoa(status),
		Message:    message,
		Identifier: identifier,
		Version:    APIVersion,
	})
}

// WriteBadRequest writes a 400 Bad Request response
func WriteBadRequest(w http.ResponseWriter, identifier, message string) error {
	if identifier == "" {
		identifier = IdentifierInvalidAttribute
	}
	return WriteError(w, http.StatusBadRequest, identifier, message)
}

// WriteMissingAttribute writes a 400 for an absent mandatory attribute
func WriteMissingAttribute(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusBadRequest, IdentifierMissingMandatoryAttribute, message)
}

// WriteUnauthorized writes a 401 Unauthorized response
func WriteUnauthorized(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Invalid token"
	}
	return WriteStatus(w, http.StatusUnauthorized, message)
}

// WriteNotFound writes a 404 Not Found response
func WriteNotFound(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Not Found"
	}
	return WriteError(w, http.StatusNotFound, IdentifierNotFound, message)
}

// WriteMethodNotAllowed writes a 405 response
func WriteMethodNotAllowed(w http.ResponseWriter) error {
	return WriteJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Message: "Method Not Allowed"})
}

// WriteBadGateway writes a 502 response for upstream failures
func WriteBadGateway(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Upstream service error"
	}
	return WriteError(w, http.StatusBadGateway, IdentifierBadGateway, message)
}

// WriteInternalServerError writes a 500 Internal Server Error response
func WriteInternalServerError(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Internal server error"
	}
	return WriteError(w, http.StatusInternalServerError, IdentifierInternalError, message)
}

// IsJSONRequest reports whether the request declares a JSON body
func IsJSONRequest(r *http.Request) bool {
	return strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json")
}

// DecodeJSON decodes the request body into v
func DecodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

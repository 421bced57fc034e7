package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"threatshare/core"
	"threatshare/storage"
)

// maxErrorMessageLength bounds error messages returned to clients
const maxErrorMessageLength = 200

// Error codes returned in ErrorResponse.Error
const (
	ErrCodeValidation  = "VALIDATION_ERROR"
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeDuplicate   = "DUPLICATE_IOC"
	ErrCodeInternal    = "INTERNAL_ERROR"
	ErrCodeBadRequest  = "BAD_REQUEST"
	ErrCodeUnavailable = "SERVICE_UNAVAILABLE"
)

// SuccessResponse wraps every successful JSON payload
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

var (
	connStringPattern = regexp.MustCompile(`(?:mongodb(?:\+srv)?|redis)://[^\s"']+`)
	privateIPPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:10|127)(?:\.\d{1,3}){3}(?::\d{1,5})?\b`),
		regexp.MustCompile(`\b172\.(?:1[6-9]|2[0-9]|3[01])(?:\.\d{1,3}){2}(?::\d{1,5})?\b`),
		regexp.MustCompile(`\b192\.168(?:\.\d{1,3}){2}(?::\d{1,5})?\b`),
	}
	credentialPattern = regexp.MustCompile(`(?i)(password|secret|token|key|credential|auth)[:=]\s*["']?[^"'\s]+["']?`)
)

// sanitizeErrorMessage removes sensitive information from error messages before sending to clients
func sanitizeErrorMessage(message string) string {
	message = connStringPattern.ReplaceAllString(message, "[DATABASE_CONNECTION]")
	for _, p := range privateIPPatterns {
		message = p.ReplaceAllString(message, "[PRIVATE_IP]")
	}
	message = credentialPattern.ReplaceAllString(message, "$1=[REDACTED]")

	if len(message) > maxErrorMessageLength {
		message = message[:maxErrorMessageLength-3] + "..."
	}
	return message
}

// respondJSON writes a JSON response with proper error handling
func (a *API) respondJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Response already started, can't send error to client
		a.logger.Errorw("Failed to encode JSON response",
			"error", err,
			"data_type", fmt.Sprintf("%T", data))
	}
}

// respondData writes a 200 success envelope around data
func (a *API) respondData(w http.ResponseWriter, data interface{}) {
	a.respondJSON(w, SuccessResponse{Success: true, Data: data}, http.StatusOK)
}

// writeErrorCode writes an error envelope with a sanitized message
func (a *API) writeErrorCode(w http.ResponseWriter, statusCode int, code, message string) {
	a.respondJSON(w, ErrorResponse{
		Success: false,
		Error:   code,
		Message: sanitizeErrorMessage(message),
	}, statusCode)
}

// writeServiceError maps a domain error onto its HTTP status. Unexpected
// errors are logged in full and returned as a generic 500.
func (a *API) writeServiceError(w http.ResponseWriter, r *http.Request, err error, message string) {
	var validationErr *core.ValidationError
	switch {
	case errors.As(err, &validationErr):
		a.respondJSON(w, ErrorResponse{
			Success: false,
			Error:   ErrCodeValidation,
			Field:   validationErr.Field,
			Message: sanitizeErrorMessage(validationErr.Message),
		}, http.StatusBadRequest)
	case errors.Is(err, storage.ErrNotFound):
		a.writeErrorCode(w, http.StatusNotFound, ErrCodeNotFound, "IOC not found")
	case errors.Is(err, storage.ErrDuplicateIOC):
		a.writeErrorCode(w, http.StatusConflict, ErrCodeDuplicate, storage.ErrDuplicateIOC.Error())
	default:
		a.logger.Errorw(message,
			"request_id", GetRequestIDOrDefault(r.Context()),
			"path", r.URL.Path,
			"error", err)
		a.writeErrorCode(w, http.StatusInternalServerError, ErrCodeInternal, message)
	}
}

// decodeJSONBody decodes a size limited JSON request body, rejecting unknown fields
func (a *API) decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	err := decoder.Decode(dst)
	if err == nil {
		return true
	}

	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError
	var maxBytesError *http.MaxBytesError

	switch {
	case errors.As(err, &maxBytesError):
		a.writeErrorCode(w, http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "Request body too large")
	case errors.As(err, &syntaxError):
		a.writeErrorCode(w, http.StatusBadRequest, ErrCodeBadRequest,
			"Invalid JSON syntax at byte offset "+strconv.FormatInt(syntaxError.Offset, 10))
	case errors.As(err, &unmarshalTypeError):
		a.respondJSON(w, ErrorResponse{
			Success: false,
			Error:   ErrCodeValidation,
			Field:   unmarshalTypeError.Field,
			Message: fmt.Sprintf("expected %s", unmarshalTypeError.Type),
		}, http.StatusBadRequest)
	case strings.HasPrefix(err.Error(), "json: unknown field"):
		a.writeErrorCode(w, http.StatusBadRequest, ErrCodeBadRequest, "Request contains an "+strings.TrimPrefix(err.Error(), "json: "))
	default:
		a.writeErrorCode(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body")
	}
	return false
}

// includeSensitive reports whether the caller asked for sensitive fields
// and is allowed to see them. Unauthorized requests silently get redacted results.
func (a *API) includeSensitive(r *http.Request) bool {
	requested, err := strconv.ParseBool(r.URL.Query().Get("includeSensitive"))
	if err != nil || !requested || !a.config.Auth.Enabled {
		return false
	}
	roles, _ := GetRoles(r.Context())
	return a.config.CanViewSensitive(roles)
}

package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	apperrors "github.com/daffodeal/marketplace/pkg/errors"
	"github.com/daffodeal/marketplace/pkg/logger"
	"github.com/daffodeal/marketplace/pkg/validator"
)

// Response is the JSON envelope returned by every endpoint. Success is always
// present; Message mirrors the human readable outcome for clients that only
// look at the top level.
type Response struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Data    any            `json:"data,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse is the machine readable part of a failed response.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	Details   any               `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteJSON writes v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess writes a successful envelope.
func WriteSuccess(w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, Response{Success: true, Message: message, Data: data})
}

// WriteFailure writes a failed envelope with an explicit code and message.
func WriteFailure(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, Response{
		Message: message,
		Error:   &ErrorResponse{Code: code, Message: message},
	})
}

// WriteError maps err onto a failed envelope. Validator errors become 400
// responses with field messages. AppError values keep their
// status, code, message and details; bare sentinels are mapped through
// apperrors.HTTPStatus. 5xx responses are logged with the request-scoped
// logger when the RequestLogger middleware is mounted.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteValidationError(w, err)
		return
	}

	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}
	requestID := logger.CorrelationIDFromContext(r.Context())

	status := apperrors.HTTPStatus(err)
	errResp := &ErrorResponse{RequestID: requestID}

	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		errResp.Code = appErr.Code
		errResp.Message = appErr.Message
		errResp.Details = appErr.Details
	case errors.Is(err, apperrors.ErrNotFound):
		errResp.Code = "NOT_FOUND"
		errResp.Message = "resource not found"
	case errors.Is(err, apperrors.ErrAlreadyExists), errors.Is(err, apperrors.ErrConflict):
		errResp.Code = "CONFLICT"
		errResp.Message = "resource already exists"
	case errors.Is(err, apperrors.ErrInvalidInput):
		errResp.Code = "INVALID_INPUT"
		errResp.Message = err.Error()
	case errors.Is(err, apperrors.ErrForbidden):
		errResp.Code = "FORBIDDEN"
		errResp.Message = "forbidden"
	default:
		errResp.Code = "INTERNAL_ERROR"
		errResp.Message = "an internal error occurred"
	}

	if status >= http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "request failed",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
		)
	}

	WriteJSON(w, status, Response{Message: errResp.Message, Error: errResp})
}

// WriteValidationError writes a 400 envelope. Field-level messages are
// included when err comes from the validator package.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, Response{
			Message: "request validation failed",
			Error: &ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "request validation failed",
				Fields:  valErr.Fields(),
			},
		})
		return
	}

	WriteFailure(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
}

// ParseUUID validates that param is a UUID. On failure it writes a 400
// response and returns false so the caller can return early.
func ParseUUID(w http.ResponseWriter, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(param)
	if err != nil {
		WriteFailure(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid id: "+param)
		return uuid.Nil, false
	}
	return id, true
}

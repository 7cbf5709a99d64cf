package platformerrors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// HTTPErrorResponse represents the standard error response format.
type HTTPErrorResponse struct {
	Status string           `json:"status"`
	Error  *HTTPErrorDetail `json:"error"`
}

// HTTPErrorDetail contains error details for HTTP responses.
type HTTPErrorDetail struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Field     string `json:"field,omitempty"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Details   string `json:"details,omitempty"`
}

// WriteOptions controls how much of an internal failure reaches the client.
type WriteOptions struct {
	// InternalMessage replaces the message of 5xx errors.
	InternalMessage string
	// ExposeDetails attaches the wrapped error text to 5xx responses.
	ExposeDetails bool
}

// WriteHTTPError writes a PlatformError as an HTTP response.
// Server-side failures never leak their message unless opts.ExposeDetails is set.
func WriteHTTPError(c *gin.Context, err *PlatformError, log zerolog.Logger, opts WriteOptions) {
	if err == nil {
		WriteInternalError(c, "unknown error")
		return
	}

	LogError(log, err)

	status := ErrorTypeToHTTPStatus(err.Type)
	detail := &HTTPErrorDetail{
		Message:   err.Message,
		Type:      errorTypeToString(err.Type),
		Field:     err.Field,
		Code:      err.UUID,
		RequestID: err.RequestID,
	}

	if status >= http.StatusInternalServerError {
		if opts.InternalMessage != "" {
			detail.Message = opts.InternalMessage
		}
		if opts.ExposeDetails {
			detail.Details = err.Error()
		}
	}

	c.JSON(status, HTTPErrorResponse{Status: "error", Error: detail})
}

// WriteError writes a generic error as an HTTP response.
// Errors that are not PlatformErrors are treated as internal failures.
func WriteError(c *gin.Context, err error, log zerolog.Logger, opts WriteOptions) {
	if err == nil {
		WriteInternalError(c, "unknown error")
		return
	}

	if platformErr := GetPlatformError(err); platformErr != nil {
		WriteHTTPError(c, platformErr, log, opts)
		return
	}

	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("unhandled error")

	detail := &HTTPErrorDetail{
		Message: opts.InternalMessage,
		Type:    "internal_error",
	}
	if detail.Message == "" {
		detail.Message = "internal server error"
	}
	if opts.ExposeDetails {
		detail.Details = err.Error()
	}
	c.JSON(http.StatusInternalServerError, HTTPErrorResponse{Status: "error", Error: detail})
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, HTTPErrorResponse{
		Status: "error",
		Error: &HTTPErrorDetail{
			Message: message,
			Type:    "internal_error",
		},
	})
}

// errorTypeToString converts an ErrorType to a snake_case string for API responses.
func errorTypeToString(t ErrorType) string {
	switch t {
	case ErrorTypeNotFound:
		return "not_found_error"
	case ErrorTypeValidation:
		return "validation_error"
	case ErrorTypeConflict:
		return "conflict_error"
	case ErrorTypeNotImplemented:
		return "not_implemented_error"
	case ErrorTypeTimeout:
		return "timeout_error"
	case ErrorTypeExternal:
		return "external_error"
	case ErrorTypeDatabaseError, ErrorTypeInternal:
		fallthrough
	default:
		return "internal_error"
	}
}

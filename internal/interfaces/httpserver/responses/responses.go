// Package responses contains HTTP response helpers shared by the route handlers.
package responses

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/janhq/support-chat-api/internal/utils/platformerrors"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ErrorResponse documents the error envelope for swagger.
type ErrorResponse = platformerrors.HTTPErrorResponse

// ErrorWriter writes errors with the environment's disclosure policy.
type ErrorWriter struct {
	log           zerolog.Logger
	exposeDetails bool
}

// NewErrorWriter creates an ErrorWriter. exposeDetails attaches internal error text to 5xx responses.
func NewErrorWriter(log zerolog.Logger, exposeDetails bool) *ErrorWriter {
	return &ErrorWriter{log: log, exposeDetails: exposeDetails}
}

// HandleError writes err; internal failures are reported as message.
func (w *ErrorWriter) HandleError(c *gin.Context, err error, message string) {
	logger := w.log.With().Str("path", c.Request.URL.Path).Logger()
	platformerrors.WriteError(c, err, logger, platformerrors.WriteOptions{
		InternalMessage: message,
		ExposeDetails:   w.exposeDetails,
	})
}

package response

import (
	"net/http"

	"trackit-api/internal/apperror"
	"trackit-api/internal/logger"

	"github.com/gin-gonic/gin"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the shape of every API response body.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func OK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Envelope{Status: StatusSuccess, Message: message, Data: data})
}

func Created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Envelope{Status: StatusSuccess, Message: message, Data: data})
}

// Error writes err as an error envelope. Application errors map to their
// kind's status; anything else is a 500 carrying the raw detail.
func Error(c *gin.Context, err error) {
	appErr, ok := apperror.As(err)
	if !ok {
		appErr = apperror.Internal(err)
	}

	status := appErr.Status()
	body := Envelope{Status: StatusError, Message: appErr.Message}
	if status >= http.StatusInternalServerError {
		logger.Errorf(c.Request.Context(), "%s %s: %v", c.Request.Method, c.FullPath(), err)
		body.Error = appErr.Detail()
	}
	_ = c.Error(err)
	c.JSON(status, body)
}

// Abort writes the error envelope and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// BadRequest reports a binding failure as a validation error.
func BadRequest(c *gin.Context, err error) {
	Error(c, apperror.Validation("%s", err.Error()))
}

// Package httpmw holds gin middleware and response helpers shared by every
// HTTP handler package.
package httpmw

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/apperr"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/logger"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Abort writes a known-condition error and stops the chain.
func Abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{Error: code, Message: message})
}

// BadRequest writes a 400 with the given message.
func BadRequest(c *gin.Context, message string) {
	Abort(c, http.StatusBadRequest, apperr.CodeBadRequest, message)
}

// RespondError maps err to a status. AppErrors below 500 are returned as-is;
// anything else is logged and hidden behind a generic internal_error body.
func RespondError(c *gin.Context, log *logger.Logger, err error, action string) {
	if appErr, ok := apperr.As(err); ok && appErr.HTTPStatus < http.StatusInternalServerError {
		Abort(c, appErr.HTTPStatus, appErr.Code, appErr.Message)
		return
	}
	log.WithContext(c.Request.Context()).Error(action+" failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	Abort(c, http.StatusInternalServerError, apperr.CodeInternal, "an unexpected error occurred")
}

package util

import (
	"errors"
	"net/http"

	"quizhub_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.Error(err))
	InternalServerError(c)
}

// RespondError maps a service error onto the HTTP surface. Unrecognized
// errors are logged and reported as 500.
func RespondError(c *gin.Context, err error) {
	var vErr *ValidationError
	var sErr *StorageError

	switch {
	case errors.Is(err, ErrQuizNotFound), errors.Is(err, ErrQuizNotAvailable):
		Error(c, http.StatusNotFound, "Quiz not found or inactive")
	case errors.Is(err, ErrUserNotFound):
		Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrPermissionDenied):
		Forbidden(c)
	case errors.Is(err, ErrAttemptLimitExceeded):
		Error(c, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrQuizHasNoQuestions):
		Error(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrEmailRegistered), errors.Is(err, ErrSelfDemotion):
		BadRequest(c, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		Unauthorized(c)
	case errors.As(err, &vErr):
		BadRequest(c, vErr.Error())
	case errors.As(err, &sErr):
		logger.Log.Error("storage failure", zap.Error(sErr.Err))
		Error(c, http.StatusServiceUnavailable, "Temporary storage failure, please retry")
	default:
		LogInternalError(c, err)
	}
}

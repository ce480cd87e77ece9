package api

import (
	"errors"
	"log"
	"net/http"

	"fintrack/database"
	"fintrack/models"
	"fintrack/service"

	"github.com/gin-gonic/gin"
)

// Response envelope of every API reply
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
}

// Success 200 with data
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// Error failure envelope with status code
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Success: false,
		Error:   message,
	})
}

// BadRequest 400
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// NotFound 404
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// Conflict 409
func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

// InternalError 500
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// Fail maps a service error onto a status code. Storage failures keep their message, which
// names the database file; other internal errors are reported with fallback in release mode.
func Fail(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrInvalidKind):
		BadRequest(c, err.Error())
	case errors.Is(err, service.ErrNoCredential):
		Conflict(c, err.Error())
	case errors.Is(err, database.ErrPersist), errors.Is(err, database.ErrClosed):
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		InternalError(c, err.Error())
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		InternalError(c, SafeErrorMessage(err, fallback))
	}
}

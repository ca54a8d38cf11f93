package resp

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Coded is implemented by service errors that carry a stable machine-readable
// code alongside the human-readable message.
type Coded interface {
	error
	ErrorCode() string
	HTTPStatus() int
}

func OK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "data": data})
}

// OKCode is OK plus a code the client can branch on (e.g. ORDER_EXISTS on an
// idempotent replay).
func OKCode(c *gin.Context, code, message string, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "code": code, "data": data})
}

func Created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": message, "data": data})
}

func Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"success": false, "message": message, "code": code})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, "ACCESS_DENIED", message)
}

// FromError maps a service error onto the envelope. Coded errors keep their
// status and code; anything else is a plain 500.
func FromError(c *gin.Context, err error) {
	var coded Coded
	if errors.As(err, &coded) {
		Error(c, coded.HTTPStatus(), coded.ErrorCode(), coded.Error())
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal server error"})
}

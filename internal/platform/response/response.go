// Package response writes the JSON bodies returned by the HTTP handlers.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ridecab/service-ride/internal/platform/apperror"
)

// Success writes a 200 response with the given body.
func Success(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}

// Created writes a 201 response with the given body.
func Created(c *gin.Context, body any) {
	c.JSON(http.StatusCreated, body)
}

// BadRequest writes a 400 error body.
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// Unauthorized writes a 401 error body.
func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// Error maps err onto a status code. Errors that are not application errors
// are hidden behind a generic message.
func Error(c *gin.Context, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(statusFor(appErr.Kind), gin.H{"error": appErr.Message})
}

func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation, apperror.KindConflict:
		// Duplicate registrations are reported as bad input.
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized
	case apperror.KindInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

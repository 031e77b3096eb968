package common

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/apkmarket/backend/internal/dto"
	"github.com/apkmarket/backend/internal/http/middleware"
	"github.com/apkmarket/backend/internal/pkg/apperror"
)

var (
	// ErrSubjectNotFound is returned when the authenticated subject is not found in context
	ErrSubjectNotFound = errors.New("субъект не найден в контексте")

	// ErrInvalidUUID is returned when UUID parsing fails
	ErrInvalidUUID = errors.New("неверный формат UUID")
)

// CurrentSubjectID extracts the authenticated account ID from Gin context
func CurrentSubjectID(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get(middleware.ContextSubjectIDKey)
	if !exists {
		return uuid.Nil, ErrSubjectNotFound
	}

	id, ok := raw.(uuid.UUID)
	if !ok {
		return uuid.Nil, ErrSubjectNotFound
	}

	return id, nil
}

// CurrentKind extracts the account kind from Gin context
func CurrentKind(c *gin.Context) (string, error) {
	raw, exists := c.Get(middleware.ContextKindKey)
	if !exists {
		return "", ErrSubjectNotFound
	}

	kind, ok := raw.(string)
	if !ok {
		return "", ErrSubjectNotFound
	}

	return kind, nil
}

// ParseUUIDParam parses UUID from URL parameter
func ParseUUIDParam(c *gin.Context, paramName string) (uuid.UUID, error) {
	param := c.Param(paramName)
	if param == "" {
		return uuid.Nil, fmt.Errorf("параметр %s отсутствует", paramName)
	}

	parsed, err := uuid.Parse(param)
	if err != nil {
		return uuid.Nil, ErrInvalidUUID
	}

	return parsed, nil
}

// ParseIntQuery parses an integer query parameter with a fallback default
func ParseIntQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// RespondError sends a standardized error response
func RespondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.ErrorResponse{Error: message})
}

// RespondAppError maps a domain error to HTTP via apperror
// Internals are masked; the status and message come from the error code
func RespondAppError(c *gin.Context, err error) {
	RespondError(c, apperror.HTTPStatusOf(err), apperror.ClientMessage(err))
}

// RespondUnauthorized sends a 401 Unauthorized response
func RespondUnauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "требуется авторизация"
	}
	RespondError(c, http.StatusUnauthorized, message)
}

// RespondForbidden sends a 403 Forbidden response
func RespondForbidden(c *gin.Context, message string) {
	if message == "" {
		message = "доступ запрещён"
	}
	RespondError(c, http.StatusForbidden, message)
}

// RespondNotFound sends a 404 Not Found response
func RespondNotFound(c *gin.Context, message string) {
	if message == "" {
		message = "ресурс не найден"
	}
	RespondError(c, http.StatusNotFound, message)
}

// RespondBadRequest sends a 400 Bad Request response
func RespondBadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "некорректный запрос"
	}
	RespondError(c, http.StatusBadRequest, message)
}

// RespondInternalError sends a 500 Internal Server Error response
func RespondInternalError(c *gin.Context, message string) {
	if message == "" {
		message = "внутренняя ошибка сервера"
	}
	RespondError(c, http.StatusInternalServerError, message)
}

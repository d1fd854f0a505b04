// Package httputil holds helpers shared by the gin handlers.
package httputil

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mingle/infrastructure"
)

// ContextUserKey is where the auth middleware stores the caller's id.
const ContextUserKey = "userID"

// UserID returns the authenticated caller. Routes behind the auth middleware
// always have it; the zero UUID otherwise.
func UserID(c *gin.Context) uuid.UUID {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return uuid.Nil
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

// WriteError maps service errors onto HTTP statuses. fallback is the message
// for unclassified failures.
func WriteError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, infrastructure.ErrNotFound),
		errors.Is(err, infrastructure.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, infrastructure.ErrForbidden),
		errors.Is(err, infrastructure.ErrNotParticipant),
		errors.Is(err, infrastructure.ErrNotSender):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, infrastructure.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, infrastructure.ErrInvalidInput),
		errors.Is(err, infrastructure.ErrEditWindow),
		errors.Is(err, infrastructure.ErrNotEditable),
		errors.Is(err, infrastructure.ErrMessageDeleted),
		errors.Is(err, infrastructure.ErrFileTooLarge),
		errors.Is(err, infrastructure.ErrUnsupportedType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, infrastructure.ErrUsernameTaken),
		errors.Is(err, infrastructure.ErrUserAlreadyExists),
		errors.Is(err, infrastructure.ErrAlreadyRequested),
		errors.Is(err, infrastructure.ErrAlreadyFriends):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

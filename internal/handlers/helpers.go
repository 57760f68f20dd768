package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mingle/internal/apperrors"
)

func currentUser(c *gin.Context) (userID, username string) {
	if v, ok := c.Get("user_id"); ok {
		userID, _ = v.(string)
	}
	if v, ok := c.Get("username"); ok {
		username, _ = v.(string)
	}
	return
}

// respondError maps a service error onto an HTTP status and a body that
// never leaks store internals.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, apperrors.ErrNotMutualFollowers):
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only chat with mutual followers"})
	case errors.Is(err, apperrors.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to access this chat"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

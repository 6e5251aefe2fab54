package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hucha-app/hucha-api/services"
	"github.com/hucha-app/hucha-api/store"
)

type StateHandler struct {
	Session *services.Session
}

// GetState returns the whole sanitized document, the same view the original
// frontend kept in memory. Passwords never leave the server.
func (h *StateHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state": h.Session.State().Sanitized(),
		"mode":  h.Session.Mode(),
	})
}

// respondError maps persistence-layer error kinds onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "State store unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

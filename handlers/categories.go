package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hucha-app/hucha-api/middleware"
	"github.com/hucha-app/hucha-api/models"
	"github.com/hucha-app/hucha-api/services"
	"github.com/hucha-app/hucha-api/utils"
)

type CategoryHandler struct {
	Session *services.Session
}

// CreateCategory adds a category; an already-existing name succeeds without
// changing anything.
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req models.AddCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Session.AddCategory(c.Request.Context(), req.Name); err != nil {
		respondError(c, err)
		return
	}

	utils.LogStateAction("addCategory", middleware.GetUsername(c), string(h.Session.Mode()))
	c.JSON(http.StatusCreated, gin.H{"message": "Category saved"})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hucha-app/hucha-api/middleware"
	"github.com/hucha-app/hucha-api/models"
	"github.com/hucha-app/hucha-api/services"
	"github.com/hucha-app/hucha-api/utils"
)

type WalletHandler struct {
	Session *services.Session
}

// CreateMovement records an income or expense for a kid's wallet (admin
// only, enforced by the route group).
func (h *WalletHandler) CreateMovement(c *gin.Context) {
	var req models.MovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.Session.RegisterWalletMovement(c.Request.Context(), req.Username, req.Amount, req.Description, req.Kind)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SafeInfo("wallet movement %s of %s for %s",
		req.Kind, utils.MaskAmount(req.Amount), utils.MaskUser(req.Username))
	utils.LogStateAction("registerWalletMovement", middleware.GetUsername(c), string(h.Session.Mode()))
	c.JSON(http.StatusCreated, gin.H{"message": "Movement registered"})
}

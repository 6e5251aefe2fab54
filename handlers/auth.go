package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hucha-app/hucha-api/models"
	"github.com/hucha-app/hucha-api/services"
	"github.com/hucha-app/hucha-api/utils"
)

type AuthHandler struct {
	Session *services.Session
}

// Login checks credentials against the shared document's users and hands
// back a signed token. Usernames are matched lowercase, like the original
// login form.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))
	user, ok := h.Session.State().Users[username]
	if !ok || subtle.ConstantTimeCompare([]byte(user.Password), []byte(req.Password)) != 1 {
		utils.LogAuthAction("login", username, false)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario o contraseña incorrectos."})
		return
	}

	token, err := utils.GenerateAccessToken(user.Username, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	utils.LogAuthAction("login", username, true)

	sanitized := *user
	sanitized.Password = ""
	c.JSON(http.StatusOK, models.AuthResponse{Token: token, User: sanitized})
}

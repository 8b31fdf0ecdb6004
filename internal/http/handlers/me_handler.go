package handlers

import (
	"net/http"

	"paso-monitor-server/internal/http/middleware"
	"paso-monitor-server/internal/utils"

	"github.com/gin-gonic/gin"
)

type MeHandler struct{}

func NewMeHandler() *MeHandler {
	return &MeHandler{}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.RespondError(c, utils.NewAppError(http.StatusUnauthorized, "MISSING_TOKEN", "missing user", nil))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"role":     user.Role,
	})
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

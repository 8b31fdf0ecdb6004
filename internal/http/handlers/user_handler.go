package handlers

import (
	"net/http"

	"paso-monitor-server/internal/http/middleware"
	"paso-monitor-server/internal/services"
	"paso-monitor-server/internal/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users *services.UserService
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, gin.H{
			"id":       u.ID,
			"username": u.Username,
			"email":    u.Email,
			"role":     u.Role,
			"phone":    u.Phone,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *UserHandler) UpdateRole(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		utils.RespondError(c, utils.NewAppError(http.StatusUnauthorized, "MISSING_TOKEN", "missing user", nil))
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}

	targetID := c.Param("id")
	if err := h.users.UpdateRole(c.Request.Context(), actor, targetID, req.Role); err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "role updated", "id": targetID, "role": req.Role})
}

func (h *UserHandler) Delete(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		utils.RespondError(c, utils.NewAppError(http.StatusUnauthorized, "MISSING_TOKEN", "missing user", nil))
		return
	}

	targetID := c.Param("id")
	if err := h.users.Delete(c.Request.Context(), actor, targetID); err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user deleted", "id": targetID})
}

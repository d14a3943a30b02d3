package handler

import (
	"net/http"

	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/dto"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/service"
	"github.com/gin-gonic/gin"
)

// AdminHandler handles account administration
type AdminHandler struct {
	userService service.UserService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(userService service.UserService) *AdminHandler {
	return &AdminHandler{userService: userService}
}

// UpdateUserStatus moves an account through its lifecycle
// PUT /api/admin/users/:userId/status
func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	var req dto.UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.UpdateStatus(c.Request.Context(), userID, req.Status)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

package handler

import (
	"net/http"

	adminDto "anadara.com/exportmarket/internal/modules/admin/dto"
	admin "anadara.com/exportmarket/internal/modules/admin/service"
	userDto "anadara.com/exportmarket/internal/modules/user/dto"
	commonDto "anadara.com/exportmarket/pkg/dto"
	"anadara.com/exportmarket/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdminHandler struct {
	service admin.AdminService
}

func NewAdminHandler(service admin.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	var query adminDto.ListUsersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ValidationError(c, err)
		return
	}

	users, total, err := h.service.ListUsers(c.Request.Context(), query.Role, query.Page, query.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]userDto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userDto.ToUserResponse(u))
	}

	c.JSON(http.StatusOK, gin.H{
		"users": out,
		"meta":  commonDto.NewPaginationMeta(query.Page, query.Limit, total),
	})
}

func (h *AdminHandler) ToggleUserStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.service.ToggleUserStatus(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "user status updated",
		"user":    userDto.ToUserResponse(user),
	})
}

func (h *AdminHandler) VerifyUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.service.VerifyUser(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "user verified",
		"user":    userDto.ToUserResponse(user),
	})
}

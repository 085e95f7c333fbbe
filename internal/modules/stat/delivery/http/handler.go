package handler

import (
	"net/http"

	stat "anadara.com/exportmarket/internal/modules/stat/service"
	"anadara.com/exportmarket/pkg/response"
	"github.com/gin-gonic/gin"
)

type StatHandler struct {
	service stat.StatService
}

func NewStatHandler(service stat.StatService) *StatHandler {
	return &StatHandler{service: service}
}

func (h *StatHandler) GetStats(c *gin.Context) {
	stats, err := h.service.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

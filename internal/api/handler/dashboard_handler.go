package handler

import (
	"github.com/gin-gonic/gin"

	"sci-task/backend/internal/service"
	"sci-task/backend/pkg/response"
)

// DashboardHandler 工作台概览 HTTP 处理器
type DashboardHandler struct {
	dashSvc service.DashboardService
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(dashSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashSvc: dashSvc}
}

// GetSummary 获取工作台统计概览
// GET /api/v1/dashboard/summary
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	summary, err := h.dashSvc.Summary(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, summary)
}

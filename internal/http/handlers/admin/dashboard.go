package admin

import (
	"time"

	"github.com/cyberregistro/ledger/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetDashboard 账本概览
func (h *Handler) GetDashboard(c *gin.Context) {
	overview, err := h.DashboardService.Overview(time.Now())
	if err != nil {
		respondError(c, response.CodeInternal, "error.dashboard_failed", err)
		return
	}
	response.OK(c, overview)
}

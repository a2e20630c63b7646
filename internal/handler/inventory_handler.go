package handler

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/harborfoods/foodplan/internal/service"
)

// InventoryHandler 周库存结余处理器
type InventoryHandler struct {
	rollup *service.RollupService
	report *service.ReportService
}

func NewInventoryHandler(rollup *service.RollupService, report *service.ReportService) *InventoryHandler {
	return &InventoryHandler{rollup: rollup, report: report}
}

// List 按周查询结余（含七天明细）
func (h *InventoryHandler) List(c *gin.Context) {
	week, err := GetWeek(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	balances, err := h.rollup.ListBalances(week)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, balances)
}

// UpdateDay 编辑某天的用户录入列（待订/已收/已耗），整周重算
func (h *InventoryHandler) UpdateDay(c *gin.Context) {
	balanceID := c.Param("id")
	dayIndex, err := strconv.Atoi(c.Param("day"))
	if err != nil {
		BadRequest(c, "day must be an integer 0-6")
		return
	}

	var req service.UpdateDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	balance, err := h.rollup.UpdateDay(balanceID, dayIndex, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	Success(c, balance)
}

// Export 导出一周结余为Excel
func (h *InventoryHandler) Export(c *gin.Context) {
	week, err := GetWeek(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	f, filename, err := h.report.WeekReport(week)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(filename)))
	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "写出Excel失败: "+err.Error())
		return
	}
}

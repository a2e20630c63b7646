package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/harborfoods/foodplan/internal/service"
)

// RollupHandler 周汇总引擎处理器
type RollupHandler struct {
	svc *service.RollupService
}

func NewRollupHandler(svc *service.RollupService) *RollupHandler {
	return &RollupHandler{svc: svc}
}

type runRequest struct {
	WeekCommencing string `json:"week_commencing" binding:"required"`
}

// Run 触发一周的完整汇总（用量报表 + 日度结余）
func (h *RollupHandler) Run(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	week, err := ParseDate(req.WeekCommencing)
	if err != nil {
		BadRequest(c, "week_commencing "+err.Error())
		return
	}

	run, err := h.svc.RunWeek(week, GetUserID(c))
	if err != nil {
		// run记录已带FAILED状态，一并返回便于排查
		c.JSON(500, Response{Code: 50000, Message: err.Error(), Data: run})
		return
	}

	Success(c, run)
}

// ListRuns 汇总运行记录
func (h *RollupHandler) ListRuns(c *gin.Context) {
	page, pageSize := GetPagination(c)

	runs, total, err := h.svc.ListRuns(page, pageSize)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{
		"runs": runs,
		"pagination": Pagination{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	})
}

// Usage 按周查询已落库的用量报表
func (h *RollupHandler) Usage(c *gin.Context) {
	week, err := GetWeek(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	reports, err := h.svc.ListUsage(week)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, reports)
}

// Preview 只读计算一周用量，不落库，带跳过诊断
func (h *RollupHandler) Preview(c *gin.Context) {
	week, err := GetWeek(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	reports, skipped, err := h.svc.UsageForWeek(week)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{
		"reports": reports,
		"skipped": skipped,
	})
}

package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/harborfoods/foodplan/internal/service"
)

// ScheduleHandler 生产/灌装计划处理器
type ScheduleHandler struct {
	svc *service.ScheduleService
}

func NewScheduleHandler(svc *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{svc: svc}
}

// ListProduction 按周查询生产计划
func (h *ScheduleHandler) ListProduction(c *gin.Context) {
	week, err := GetWeek(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	rows, err := h.svc.ListProduction(week)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, rows)
}

type scheduleRequest struct {
	ItemID         string     `json:"item_id" binding:"required"`
	WeekCommencing string     `json:"week_commencing" binding:"required"`
	Quantities     [7]float64 `json:"quantities"` // Monday..Sunday
}

func (r scheduleRequest) toService() (service.ScheduleRequest, error) {
	week, err := ParseDate(r.WeekCommencing)
	if err != nil {
		return service.ScheduleRequest{}, err
	}
	return service.ScheduleRequest{
		ItemID:         r.ItemID,
		WeekCommencing: week,
		Quantities:     r.Quantities,
	}, nil
}

// CreateProduction 创建生产计划行
func (h *ScheduleHandler) CreateProduction(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	svcReq, err := req.toService()
	if err != nil {
		BadRequest(c, "week_commencing "+err.Error())
		return
	}

	row, err := h.svc.CreateProduction(svcReq, GetUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	Created(c, row)
}

type updateQuantitiesRequest struct {
	Quantities [7]float64 `json:"quantities"` // Monday..Sunday
}

// UpdateProduction 更新生产计划按天数量
func (h *ScheduleHandler) UpdateProduction(c *gin.Context) {
	var req updateQuantitiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	row, err := h.svc.UpdateProduction(c.Param("id"), req.Quantities)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	Success(c, row)
}

// DeleteProduction 删除生产计划行
func (h *ScheduleHandler) DeleteProduction(c *gin.Context) {
	if err := h.svc.DeleteProduction(c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}

	Success(c, nil)
}

// ListFilling 按周查询灌装计划
func (h *ScheduleHandler) ListFilling(c *gin.Context) {
	week, err := GetWeek(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	rows, err := h.svc.ListFilling(week)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, rows)
}

// CreateFilling 创建灌装计划行
func (h *ScheduleHandler) CreateFilling(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	svcReq, err := req.toService()
	if err != nil {
		BadRequest(c, "week_commencing "+err.Error())
		return
	}

	row, err := h.svc.CreateFilling(svcReq, GetUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	Created(c, row)
}

// UpdateFilling 更新灌装计划按天数量
func (h *ScheduleHandler) UpdateFilling(c *gin.Context) {
	var req updateQuantitiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	row, err := h.svc.UpdateFilling(c.Param("id"), req.Quantities)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	Success(c, row)
}

// DeleteFilling 删除灌装计划行
func (h *ScheduleHandler) DeleteFilling(c *gin.Context) {
	if err := h.svc.DeleteFilling(c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}

	Success(c, nil)
}

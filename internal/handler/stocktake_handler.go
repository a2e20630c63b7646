package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/harborfoods/foodplan/internal/service"
)

// StocktakeHandler 盘点快照处理器
type StocktakeHandler struct {
	svc *service.StocktakeService
}

func NewStocktakeHandler(svc *service.StocktakeService) *StocktakeHandler {
	return &StocktakeHandler{svc: svc}
}

// List 按周查询盘点记录
func (h *StocktakeHandler) List(c *gin.Context) {
	week, err := GetWeek(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	rows, err := h.svc.ListWeek(week)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, rows)
}

type upsertStocktakeRequest struct {
	ItemID         string  `json:"item_id" binding:"required"`
	WeekCommencing string  `json:"week_commencing" binding:"required"`
	StockLevelKG   float64 `json:"stock_level_kg"`
}

// Upsert 录入/覆盖一条盘点，同(item, week)只保留最新
func (h *StocktakeHandler) Upsert(c *gin.Context) {
	var req upsertStocktakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	week, err := ParseDate(req.WeekCommencing)
	if err != nil {
		BadRequest(c, "week_commencing "+err.Error())
		return
	}

	row, err := h.svc.Upsert(service.UpsertStocktakeRequest{
		ItemID:         req.ItemID,
		WeekCommencing: week,
		StockLevelKG:   req.StockLevelKG,
	}, GetUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	Success(c, row)
}

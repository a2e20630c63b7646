package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/harborfoods/foodplan/internal/repository"
	"github.com/harborfoods/foodplan/internal/service"
)

// ItemHandler 物料主数据处理器
type ItemHandler struct {
	svc *service.ItemService
}

func NewItemHandler(svc *service.ItemService) *ItemHandler {
	return &ItemHandler{svc: svc}
}

// List 分页查询物料，支持type和keyword过滤
func (h *ItemHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.ItemListParams{
		ItemType: c.Query("type"),
		Keyword:  c.Query("keyword"),
		Page:     page,
		Size:     pageSize,
	}

	items, total, err := h.svc.List(params)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{
		"items": items,
		"pagination": Pagination{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	})
}

// ListAll 全量物料列表（带缓存），供下拉选择
func (h *ItemHandler) ListAll(c *gin.Context) {
	items, err := h.svc.ListAll(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, items)
}

// Get 获取物料详情
func (h *ItemHandler) Get(c *gin.Context) {
	item, err := h.svc.Get(c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	Success(c, item)
}

// Create 创建物料
func (h *ItemHandler) Create(c *gin.Context) {
	var req service.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.svc.Create(c.Request.Context(), req, GetUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	Created(c, item)
}

// Update 更新物料
func (h *ItemHandler) Update(c *gin.Context) {
	var req service.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	Success(c, item)
}

// Delete 软删除物料
func (h *ItemHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}

	Success(c, nil)
}

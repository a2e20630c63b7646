package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/harborfoods/foodplan/internal/service"
	"github.com/xuri/excelize/v2"
)

// RecipeHandler 配方处理器
type RecipeHandler struct {
	svc *service.RecipeService
}

func NewRecipeHandler(svc *service.RecipeService) *RecipeHandler {
	return &RecipeHandler{svc: svc}
}

// Get 获取物料的配方组件（含重算后的百分比）
func (h *RecipeHandler) Get(c *gin.Context) {
	parentID := c.Param("id")
	if parentID == "" {
		BadRequest(c, "Item ID is required")
		return
	}

	components, err := h.svc.ComponentsFor(parentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	total, err := h.svc.TotalWeightFor(parentID)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{
		"components":      components,
		"total_weight_kg": total,
	})
}

// Weight 配方总重量
func (h *RecipeHandler) Weight(c *gin.Context) {
	parentID := c.Param("id")
	if parentID == "" {
		BadRequest(c, "Item ID is required")
		return
	}

	total, err := h.svc.TotalWeightFor(parentID)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"total_weight_kg": total})
}

// AddItem 添加配方行项
func (h *RecipeHandler) AddItem(c *gin.Context) {
	parentID := c.Param("id")
	if parentID == "" {
		BadRequest(c, "Item ID is required")
		return
	}

	var req service.AddRecipeItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	row, err := h.svc.AddItem(parentID, GetUserID(c), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	Created(c, row)
}

// UpdateItem 更新配方行项数量
func (h *RecipeHandler) UpdateItem(c *gin.Context) {
	itemID := c.Param("itemId")
	if itemID == "" {
		BadRequest(c, "Recipe item ID is required")
		return
	}

	var req service.UpdateRecipeItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	row, err := h.svc.UpdateItem(itemID, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	Success(c, row)
}

// DeleteItem 删除配方行项
func (h *RecipeHandler) DeleteItem(c *gin.Context) {
	itemID := c.Param("itemId")
	if itemID == "" {
		BadRequest(c, "Recipe item ID is required")
		return
	}

	if err := h.svc.DeleteItem(itemID); err != nil {
		handleServiceError(c, err)
		return
	}

	Success(c, nil)
}

// Import Excel批量导入配方
func (h *RecipeHandler) Import(c *gin.Context) {
	parentID := c.Param("id")
	if parentID == "" {
		BadRequest(c, "Item ID is required")
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	f, err := excelize.OpenReader(file)
	if err != nil {
		BadRequest(c, "Invalid Excel file: "+err.Error())
		return
	}
	defer f.Close()

	result, err := h.svc.ImportExcel(parentID, GetUserID(c), f)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	Success(c, result)
}

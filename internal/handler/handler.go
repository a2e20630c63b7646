package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harborfoods/foodplan/internal/config"
	"github.com/harborfoods/foodplan/internal/repository"
	"github.com/harborfoods/foodplan/internal/service"
)

// Handlers 处理器集合
type Handlers struct {
	Auth       *AuthHandler
	Item       *ItemHandler
	Recipe     *RecipeHandler
	Schedule   *ScheduleHandler
	Stocktake  *StocktakeHandler
	Inventory  *InventoryHandler
	Rollup     *RollupHandler
	Validation *ValidationHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services, cfg *config.Config) *Handlers {
	return &Handlers{
		Auth:       NewAuthHandler(svc.Auth, cfg),
		Item:       NewItemHandler(svc.Item),
		Recipe:     NewRecipeHandler(svc.Recipe),
		Schedule:   NewScheduleHandler(svc.Schedule),
		Stocktake:  NewStocktakeHandler(svc.Stocktake),
		Inventory:  NewInventoryHandler(svc.Rollup, svc.Report),
		Rollup:     NewRollupHandler(svc.Rollup),
		Validation: NewValidationHandler(svc.Validation),
	}
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Pagination 分页信息
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// Unauthorized 未授权响应
func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// InternalError 服务器错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// handleServiceError 按错误类别映射响应码
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, service.ErrInvalidItemType):
		BadRequest(c, err.Error())
	default:
		InternalError(c, err.Error())
	}
}

// GetUserID 从上下文获取用户ID
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetPagination 从请求获取分页参数
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}

// ParseDate 解析YYYY-MM-DD日期串。
// encoding/json不认gin的time_format标签，所以日期字段一律绑string再走这里。
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, errors.New("date must be YYYY-MM-DD")
	}
	return t, nil
}

// GetWeek 解析week查询参数（YYYY-MM-DD），缺省为当周
func GetWeek(c *gin.Context) (time.Time, error) {
	raw := c.Query("week")
	if raw == "" {
		return time.Now(), nil
	}
	week, err := ParseDate(raw)
	if err != nil {
		return time.Time{}, errors.New("week must be YYYY-MM-DD")
	}
	return week, nil
}

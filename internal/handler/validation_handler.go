package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/harborfoods/foodplan/internal/service"
)

// ValidationHandler 一致性校验处理器
type ValidationHandler struct {
	svc *service.ValidationService
}

func NewValidationHandler(svc *service.ValidationService) *ValidationHandler {
	return &ValidationHandler{svc: svc}
}

// Run 执行一周的一致性校验，只读
func (h *ValidationHandler) Run(c *gin.Context) {
	week, err := GetWeek(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	report, err := h.svc.Run(week)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, report)
}

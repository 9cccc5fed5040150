package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guinanlin/rongguan-erp/internal/erp/service"
)

type MaterialRequestHandler struct {
	svc *service.MaterialRequestService
}

func NewMaterialRequestHandler(svc *service.MaterialRequestService) *MaterialRequestHandler {
	return &MaterialRequestHandler{svc: svc}
}

// Cancel 撤销并删除物料申请，重置关联生产订单
func (h *MaterialRequestHandler) Cancel(c *gin.Context) {
	userID, _ := c.Get("user_id")
	result, err := h.svc.CancelAndDelete(c.Param("id"), userID.(string))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": result})
}

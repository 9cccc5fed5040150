package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guinanlin/rongguan-erp/internal/erp/service"
)

// Handlers ERP HTTP处理器集合
type Handlers struct {
	Order           *OrderHandler
	BOM             *BOMHandler
	WorkOrder       *WorkOrderHandler
	MaterialRequest *MaterialRequestHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Order:           NewOrderHandler(services.Order),
		BOM:             NewBOMHandler(services.BOM),
		WorkOrder:       NewWorkOrderHandler(services.WorkOrder),
		MaterialRequest: NewMaterialRequestHandler(services.MaterialRequest),
	}
}

// respondError 按业务失败类型映射HTTP状态与错误码
func respondError(c *gin.Context, err error) {
	respondErrorWithData(c, err, nil)
}

func respondErrorWithData(c *gin.Context, err error, data interface{}) {
	kind := service.KindOf(err)
	status := http.StatusInternalServerError
	code := 50001
	switch kind {
	case service.FailureValidation:
		status, code = http.StatusBadRequest, 10001
	case service.FailureReferenceNotFound:
		status, code = http.StatusNotFound, 10002
	case service.FailureDuplicate:
		status, code = http.StatusConflict, 10003
	case service.FailureResolution:
		status, code = http.StatusBadRequest, 10005
	case service.FailureCycleDetected:
		status, code = http.StatusBadRequest, 10006
	case service.FailureConflict:
		status, code = http.StatusConflict, 10007
	case service.FailureDependency:
		status, code = http.StatusInternalServerError, 10008
	}
	body := gin.H{"code": code, "message": err.Error()}
	if kind != "" {
		body["kind"] = string(kind)
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

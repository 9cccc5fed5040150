package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/guinanlin/rongguan-erp/internal/erp/repository"
	"github.com/guinanlin/rongguan-erp/internal/erp/service"
)

type WorkOrderHandler struct {
	svc *service.WorkOrderService
}

func NewWorkOrderHandler(svc *service.WorkOrderService) *WorkOrderHandler {
	return &WorkOrderHandler{svc: svc}
}

// BatchCreate 批量创建工单，指派/提交逐单独立上报
func (h *WorkOrderHandler) BatchCreate(c *gin.Context) {
	var req struct {
		WorkOrders []service.WorkOrderInput `json:"work_orders" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	userID, _ := c.Get("user_id")
	result, err := h.svc.BatchCreate(req.WorkOrders, userID.(string))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": result})
}

func (h *WorkOrderHandler) Create(c *gin.Context) {
	var req service.WorkOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	userID, _ := c.Get("user_id")
	result, err := h.svc.Create(req, userID.(string))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": result})
}

func (h *WorkOrderHandler) Get(c *gin.Context) {
	wo, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": wo})
}

func (h *WorkOrderHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	params := repository.WOListParams{
		Status:         c.Query("status"),
		ProductionItem: c.Query("production_item"),
		SalesOrderCode: c.Query("sales_order_code"),
		Keyword:        c.Query("keyword"),
		Page:           page,
		Size:           size,
	}
	wos, total, err := h.svc.List(params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": gin.H{"items": wos, "total": total, "page": page, "size": size}})
}

// Assign 对已存在的工单补指派
func (h *WorkOrderHandler) Assign(c *gin.Context) {
	var req struct {
		AssignTo string `json:"assign_to" binding:"required"`
		Priority string `json:"priority"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	userID, _ := c.Get("user_id")
	wo, err := h.svc.Assign(c.Param("id"), req.AssignTo, req.Priority, userID.(string))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": wo})
}

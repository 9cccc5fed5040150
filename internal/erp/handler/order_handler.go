package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/guinanlin/rongguan-erp/internal/erp/repository"
	"github.com/guinanlin/rongguan-erp/internal/erp/service"
)

type OrderHandler struct {
	svc *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// CreateChain 原子创建订单链（销售订单 → 生产订单 → 样板记录）
func (h *OrderHandler) CreateChain(c *gin.Context) {
	var req service.CreateOrderChainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	userID, _ := c.Get("user_id")
	result, err := h.svc.CreateOrderChain(req, userID.(string))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": result})
}

func (h *OrderHandler) GetProductionOrder(c *gin.Context) {
	po, err := h.svc.GetProductionOrder(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": po})
}

func (h *OrderHandler) ListProductionOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	params := repository.POListParams{
		Status:  c.Query("status"),
		SOCode:  c.Query("so_code"),
		Keyword: c.Query("keyword"),
		Page:    page,
		Size:    size,
	}
	pos, total, err := h.svc.ListProductionOrders(params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": gin.H{"items": pos, "total": total, "page": page, "size": size}})
}

// ListMaterials 平铺查询生产订单用料行
func (h *OrderHandler) ListMaterials(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	params := repository.MaterialListParams{
		SOCode:   c.Query("so_code"),
		ItemCode: c.Query("item_code"),
		Page:     page,
		Size:     size,
	}
	rows, total, err := h.svc.ListProductionMaterials(params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": gin.H{"items": rows, "total": total, "page": page, "size": size}})
}

package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/guinanlin/rongguan-erp/internal/erp/service"
)

type BOMHandler struct {
	svc *service.BOMService
}

func NewBOMHandler(svc *service.BOMService) *BOMHandler {
	return &BOMHandler{svc: svc}
}

// Create 创建并提交一个BOM版本
func (h *BOMHandler) Create(c *gin.Context) {
	var req service.CreateBOMVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	userID, _ := c.Get("user_id")
	bom, err := h.svc.CreateVersion(req, userID.(string))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": gin.H{"bom_id": bom.ID, "bom_code": bom.BOMCode}})
}

// BulkCreate 整批原子创建，失败时返回逐项诊断
func (h *BOMHandler) BulkCreate(c *gin.Context) {
	var req struct {
		Versions []service.CreateBOMVersionRequest `json:"versions" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	userID, _ := c.Get("user_id")
	result, err := h.svc.BulkCreateVersions(req.Versions, userID.(string))
	if err != nil {
		respondErrorWithData(c, err, result)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": result})
}

// Explode 多级展开
func (h *BOMHandler) Explode(c *gin.Context) {
	qty, err := strconv.ParseFloat(c.DefaultQuery("qty", "1"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": "qty 参数无效"})
		return
	}
	includeNonStock := c.DefaultQuery("include_non_stock", "false") == "true"
	items, err := h.svc.Explode(c.Request.Context(), c.Param("id"), qty, includeNonStock)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": items})
}

// ExportExplosion 展开结果导出Excel
func (h *BOMHandler) ExportExplosion(c *gin.Context) {
	qty, err := strconv.ParseFloat(c.DefaultQuery("qty", "1"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": "qty 参数无效"})
		return
	}
	includeNonStock := c.DefaultQuery("include_non_stock", "false") == "true"
	file, filename, err := h.svc.ExportExplosion(c.Request.Context(), c.Param("id"), qty, includeNonStock)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename*=UTF-8''%s`, url.QueryEscape(filename)))
	if err := file.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
	}
}

// StructureSummary 款号BOM结构摘要
func (h *BOMHandler) StructureSummary(c *gin.Context) {
	summary, err := h.svc.GetStructureSummary(c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": summary})
}

package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/guinanlin/rongguan-erp/internal/erp/entity"
	"github.com/guinanlin/rongguan-erp/internal/erp/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 批处理逐单状态
const (
	AssignmentNone      = "NONE"
	AssignmentSucceeded = "SUCCEEDED"
	AssignmentFailed    = "FAILED"

	SubmissionSkipped   = "SKIPPED"
	SubmissionSubmitted = "SUBMITTED"
	SubmissionFailed    = "FAILED"
)

// WorkOrderService 工单批处理：先整体校验，再整批创建，指派与提交逐单独立
type WorkOrderService struct {
	repos    *repository.Repositories
	identity IdentityResolver
	logger   *zap.Logger
}

func NewWorkOrderService(repos *repository.Repositories, identity IdentityResolver, logger *zap.Logger) *WorkOrderService {
	return &WorkOrderService{repos: repos, identity: identity, logger: logger}
}

type WorkOrderItemInput struct {
	ItemCode        string  `json:"item_code" binding:"required"`
	ItemName        string  `json:"item_name"`
	RequiredQty     float64 `json:"required_qty" binding:"required,gt=0"`
	UOM             string  `json:"uom"`
	Rate            float64 `json:"rate"`
	SourceWarehouse string  `json:"source_warehouse"`
	Description     string  `json:"description"`
}

type WorkOrderOperationInput struct {
	Operation    string `json:"operation"`
	ProcessParty string `json:"process_party"`
	Description  string `json:"description"`
}

type WorkOrderInput struct {
	ProductionItem       string                    `json:"production_item" binding:"required"`
	ItemName             string                    `json:"item_name"`
	Qty                  float64                   `json:"qty" binding:"required,gt=0"`
	Company              string                    `json:"company" binding:"required"`
	BOMNo                string                    `json:"bom_no" binding:"required"`
	FGWarehouse          string                    `json:"fg_warehouse"`
	WIPWarehouse         string                    `json:"wip_warehouse"`
	WorkOrderType        string                    `json:"work_order_type"`
	SalesOrderCode       string                    `json:"sales_order_code"`
	PatternCode          string                    `json:"pattern_code"`
	PlannedStartDate     *time.Time                `json:"planned_start_date"`
	ExpectedDeliveryDate *time.Time                `json:"expected_delivery_date"`
	AssignTo             string                    `json:"assign_to"` // 人员标识：邮箱或员工工号
	Priority             string                    `json:"priority"`
	Description          string                    `json:"description"`
	RequiredItems        []WorkOrderItemInput      `json:"required_items"`
	Operations           []WorkOrderOperationInput `json:"operations"`
}

// WorkOrderResult 批处理逐单结果
type WorkOrderResult struct {
	Index            int     `json:"index"`
	WorkOrderID      string  `json:"work_order_id"`
	WOCode           string  `json:"wo_code"`
	ProductionItem   string  `json:"production_item"`
	Qty              float64 `json:"qty"`
	AssignmentStatus string  `json:"assignment_status"`
	AssignmentError  string  `json:"assignment_error,omitempty"`
	SubmissionStatus string  `json:"submission_status"`
	SubmissionError  string  `json:"submission_error,omitempty"`
}

type BatchSummary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

type BatchWorkOrderResult struct {
	Status            string            `json:"status"` // success / partial_success
	Total             int               `json:"total"`
	Created           []WorkOrderResult `json:"created"`
	AssignmentSummary BatchSummary      `json:"assignment_summary"`
	SubmissionSummary BatchSummary      `json:"submission_summary"`
}

// BatchCreate 批量创建工单。
// 第一遍整体校验（必填项与引用），有任何校验错误则一单不写；
// 第二遍整批事务创建；之后逐单指派、逐单提交，单个失败只记录在该单上。
func (s *WorkOrderService) BatchCreate(reqs []WorkOrderInput, userID string) (*BatchWorkOrderResult, error) {
	if len(reqs) == 0 {
		return nil, newBizError(FailureValidation, "工单清单不能为空")
	}

	// 校验
	var errs []string
	for i, req := range reqs {
		prefix := fmt.Sprintf("第 %d 单", i+1)
		if req.ProductionItem == "" {
			errs = append(errs, prefix+": 缺少生产款号")
			continue
		}
		if req.Qty <= 0 {
			errs = append(errs, prefix+": 数量必须大于0")
		}
		if req.Company == "" {
			errs = append(errs, prefix+": 缺少公司")
		}
		if req.BOMNo == "" {
			errs = append(errs, prefix+": 缺少BOM引用")
			continue
		}
		if ok, err := s.repos.Item.Exists(req.ProductionItem); err != nil {
			return nil, fmt.Errorf("查询物料失败: %w", err)
		} else if !ok {
			errs = append(errs, fmt.Sprintf("%s: 生产款号不存在 %s", prefix, req.ProductionItem))
		}
		if ok, err := s.repos.BOM.CodeExists(req.BOMNo); err != nil {
			return nil, fmt.Errorf("查询BOM失败: %w", err)
		} else if !ok {
			errs = append(errs, fmt.Sprintf("%s: BOM不存在 %s", prefix, req.BOMNo))
		}
	}
	if len(errs) > 0 {
		return nil, newBizError(FailureValidation, "工单批量校验失败: %s", strings.Join(errs, "; "))
	}

	result := &BatchWorkOrderResult{Total: len(reqs)}

	// 整批创建
	workOrders := make([]*entity.WorkOrder, len(reqs))
	err := s.repos.WithTransaction(func(tx *repository.Repositories) error {
		for i, req := range reqs {
			wo := s.buildWorkOrder(req, userID)
			if err := tx.WorkOrder.Create(wo); err != nil {
				return wrapBizError(FailureDependency, err, "第 %d 单创建失败，整批已回滚", i+1)
			}
			workOrders[i] = wo
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 逐单指派与提交，互不影响
	for i, req := range reqs {
		wo := workOrders[i]
		itemResult := WorkOrderResult{
			Index:            i,
			WorkOrderID:      wo.ID,
			WOCode:           wo.WOCode,
			ProductionItem:   wo.ProductionItem,
			Qty:              wo.Quantity,
			AssignmentStatus: AssignmentNone,
			SubmissionStatus: SubmissionSkipped,
		}

		if req.AssignTo != "" {
			result.AssignmentSummary.Total++
			if err := s.assign(wo, req.AssignTo, req.Priority, userID); err != nil {
				itemResult.AssignmentStatus = AssignmentFailed
				itemResult.AssignmentError = err.Error()
				result.AssignmentSummary.Failed++
				s.logger.Warn("工单指派失败",
					zap.String("wo_code", wo.WOCode),
					zap.String("assign_to", req.AssignTo),
					zap.Error(err),
				)
			} else {
				itemResult.AssignmentStatus = AssignmentSucceeded
				result.AssignmentSummary.Succeeded++
			}
		}

		if itemResult.AssignmentStatus == AssignmentSucceeded {
			result.SubmissionSummary.Total++
			wo.Status = entity.WOStatusSubmitted
			if err := s.repos.WorkOrder.Update(wo); err != nil {
				itemResult.SubmissionStatus = SubmissionFailed
				itemResult.SubmissionError = err.Error()
				result.SubmissionSummary.Failed++
			} else {
				itemResult.SubmissionStatus = SubmissionSubmitted
				result.SubmissionSummary.Succeeded++
			}
		}

		result.Created = append(result.Created, itemResult)
	}

	result.Status = "success"
	if result.AssignmentSummary.Failed > 0 || result.SubmissionSummary.Failed > 0 {
		result.Status = "partial_success"
	}
	return result, nil
}

func (s *WorkOrderService) buildWorkOrder(req WorkOrderInput, userID string) *entity.WorkOrder {
	wo := &entity.WorkOrder{
		ID:                   uuid.New().String(),
		WOCode:               fmt.Sprintf("WO-%s%04d", time.Now().Format("20060102"), time.Now().UnixNano()%10000),
		ProductionItem:       req.ProductionItem,
		ItemName:             req.ItemName,
		Quantity:             req.Qty,
		Company:              req.Company,
		BOMNo:                req.BOMNo,
		FGWarehouse:          req.FGWarehouse,
		WIPWarehouse:         req.WIPWarehouse,
		WorkOrderType:        req.WorkOrderType,
		SalesOrderCode:       req.SalesOrderCode,
		PatternCode:          req.PatternCode,
		PlannedStartDate:     req.PlannedStartDate,
		ExpectedDeliveryDate: req.ExpectedDeliveryDate,
		Status:               entity.WOStatusDraft,
		Description:          req.Description,
		CreatedBy:            userID,
	}

	for i, item := range req.RequiredItems {
		wo.RequiredItems = append(wo.RequiredItems, entity.WorkOrderItem{
			ID:              uuid.New().String(),
			WorkOrderID:     wo.ID,
			Idx:             i + 1,
			ItemCode:        item.ItemCode,
			ItemName:        item.ItemName,
			RequiredQty:     item.RequiredQty,
			UOM:             orDefault(item.UOM, "件"),
			Rate:            item.Rate,
			Amount:          item.RequiredQty * item.Rate,
			SourceWarehouse: item.SourceWarehouse,
			Description:     item.Description,
		})
	}

	for _, op := range req.Operations {
		if op.Operation == "" {
			s.logger.Warn("工单工序行缺少工序名称，已跳过",
				zap.String("wo_code", wo.WOCode),
				zap.String("production_item", wo.ProductionItem),
			)
			continue
		}
		wo.Operations = append(wo.Operations, entity.WorkOrderOperation{
			ID:           uuid.New().String(),
			WorkOrderID:  wo.ID,
			Idx:          len(wo.Operations) + 1,
			Operation:    op.Operation,
			ProcessParty: op.ProcessParty,
			Description:  op.Description,
		})
	}
	return wo
}

// assign 解析人员标识并落指派记录，成功后回填工单的指派账号
func (s *WorkOrderService) assign(wo *entity.WorkOrder, assignTo, priority, userID string) error {
	account, err := s.identity.Resolve(assignTo)
	if err != nil {
		return err
	}
	assignment := &entity.Assignment{
		ID:          uuid.New().String(),
		RefType:     "WorkOrder",
		RefID:       wo.ID,
		AllocatedTo: account,
		Description: fmt.Sprintf("生产工单 %s（%s × %g）", wo.WOCode, wo.ProductionItem, wo.Quantity),
		Priority:    orDefault(priority, "Medium"),
		Status:      entity.AssignStatusSucceeded,
		CreatedBy:   userID,
	}
	if err := s.repos.WorkOrder.CreateAssignment(assignment); err != nil {
		return fmt.Errorf("创建指派记录失败: %w", err)
	}
	wo.AssigneeAccount = account
	return nil
}

// Create 单个创建，复用批处理逻辑
func (s *WorkOrderService) Create(req WorkOrderInput, userID string) (*WorkOrderResult, error) {
	batch, err := s.BatchCreate([]WorkOrderInput{req}, userID)
	if err != nil {
		return nil, err
	}
	return &batch.Created[0], nil
}

// Assign 对已存在的工单补指派
func (s *WorkOrderService) Assign(workOrderID, assignTo, priority, userID string) (*entity.WorkOrder, error) {
	wo, err := s.repos.WorkOrder.GetByID(workOrderID)
	if err != nil {
		return nil, wrapBizError(FailureReferenceNotFound, err, "工单不存在: %s", workOrderID)
	}
	if err := s.assign(wo, assignTo, priority, userID); err != nil {
		return nil, err
	}
	if err := s.repos.WorkOrder.Update(wo); err != nil {
		return nil, fmt.Errorf("更新工单失败: %w", err)
	}
	return wo, nil
}

func (s *WorkOrderService) GetByID(id string) (*entity.WorkOrder, error) {
	wo, err := s.repos.WorkOrder.GetByID(id)
	if err != nil {
		return nil, wrapBizError(FailureReferenceNotFound, err, "工单不存在: %s", id)
	}
	return wo, nil
}

func (s *WorkOrderService) List(params repository.WOListParams) ([]entity.WorkOrder, int64, error) {
	return s.repos.WorkOrder.List(params)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

package service

import (
	"fmt"
	"time"

	"github.com/guinanlin/rongguan-erp/internal/erp/entity"
	"github.com/guinanlin/rongguan-erp/internal/erp/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService 订单编排：销售订单 → 生产订单 →（样板单）样板记录，整链一个事务
type OrderService struct {
	repos  *repository.Repositories
	attr   *AttributeService
	logger *zap.Logger
}

func NewOrderService(repos *repository.Repositories, attr *AttributeService, logger *zap.Logger) *OrderService {
	return &OrderService{repos: repos, attr: attr, logger: logger}
}

type OrderLineItem struct {
	ItemCode string  `json:"item_code" binding:"required"`
	ItemName string  `json:"item_name"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	UOM      string  `json:"uom"`
	Rate     float64 `json:"rate"`
}

type ProcessStepInput struct {
	Operation    string `json:"operation" binding:"required"`
	ProcessParty string `json:"process_party"`
	Description  string `json:"description"`
}

type CreateOrderChainRequest struct {
	SOCode          string             `json:"so_code"` // 可选，客户端指定时需唯一
	CustomerID      string             `json:"customer_id" binding:"required"`
	Company         string             `json:"company" binding:"required"`
	ContractType    string             `json:"contract_type"`
	BusinessType    string             `json:"business_type"`
	StyleItemCode   string             `json:"style_item_code"` // 样板单的款式，缺省取首行物料的模板款号
	TransactionDate *time.Time         `json:"transaction_date"`
	DeliveryDate    *time.Time         `json:"delivery_date"`
	Notes           string             `json:"notes"`
	Items           []OrderLineItem    `json:"items" binding:"required,min=1"`
	ProcessSteps    []ProcessStepInput `json:"process_steps"`
}

type OrderChainResult struct {
	OrderID           string `json:"order_id"`
	SOCode            string `json:"so_code"`
	ProductionOrderID string `json:"production_order_id"`
	POCode            string `json:"po_code"`
	PatternID         string `json:"pattern_id,omitempty"`
}

// CreateOrderChain 原子创建订单链。任一环节失败整链回滚，不留下任何中间单据。
func (s *OrderService) CreateOrderChain(req CreateOrderChainRequest, userID string) (*OrderChainResult, error) {
	if len(req.Items) == 0 {
		return nil, newBizError(FailureValidation, "订单明细不能为空")
	}
	if _, err := s.repos.Sales.GetCustomerByID(req.CustomerID); err != nil {
		return nil, wrapBizError(FailureReferenceNotFound, err, "客户不存在: %s", req.CustomerID)
	}
	if ok, err := s.repos.Sales.CompanyExists(req.Company); err != nil {
		return nil, fmt.Errorf("查询公司失败: %w", err)
	} else if !ok {
		return nil, newBizError(FailureReferenceNotFound, "公司不存在: %s", req.Company)
	}

	soCode := req.SOCode
	if soCode == "" {
		soCode = fmt.Sprintf("SO-%s%04d", time.Now().Format("20060102"), time.Now().UnixNano()%10000)
	} else {
		exists, err := s.repos.Sales.SOCodeExists(soCode)
		if err != nil {
			return nil, fmt.Errorf("查询订单编号失败: %w", err)
		}
		if exists {
			return nil, newBizError(FailureDuplicate, "订单编号已存在: %s", soCode)
		}
	}

	contractType := req.ContractType
	if contractType == "" {
		contractType = entity.ContractTypeStandard
	}

	var result *OrderChainResult
	err := s.repos.WithTransaction(func(tx *repository.Repositories) error {
		// 1. 补齐明细引用的物料主数据
		if err := s.ensureLineItems(tx, req.Items, userID); err != nil {
			return err
		}

		// 2. 插入销售订单
		so := s.buildSalesOrder(req, soCode, contractType, userID)
		if err := tx.Sales.CreateSO(so); err != nil {
			return fmt.Errorf("创建销售订单失败: %w", err)
		}

		// 3. 逐行解析颜色/尺码，解析不出即整链回滚
		resolutions := make([]*Resolution, len(so.Items))
		for i := range so.Items {
			item := &so.Items[i]
			res, err := s.attr.ResolveWith(tx.Item, item.ItemCode)
			if err != nil {
				return err
			}
			if res.Color == "" || res.Size == "" {
				return newBizError(FailureResolution,
					"物料 %s 无法解析变体属性（颜色: %q, 尺码: %q），不能派生生产数据",
					item.ItemCode, res.Color, res.Size)
			}
			item.Color = res.Color
			item.Size = res.Size
			if err := tx.Sales.UpdateSOItem(item); err != nil {
				return fmt.Errorf("回写订单明细变体属性失败: %w", err)
			}
			resolutions[i] = res
		}

		// 4. 派生生产订单
		po, err := s.buildProductionOrder(tx, so, req, resolutions, userID)
		if err != nil {
			return err
		}
		if err := tx.Production.Create(po); err != nil {
			return fmt.Errorf("创建生产订单失败: %w", err)
		}

		result = &OrderChainResult{
			OrderID:           so.ID,
			SOCode:            so.SOCode,
			ProductionOrderID: po.ID,
			POCode:            po.POCode,
		}

		// 5. 样板单同步建立样板记录
		if contractType == entity.ContractTypeSample {
			pattern, err := s.buildPattern(tx, so, req, userID)
			if err != nil {
				return err
			}
			if err := tx.Production.CreatePattern(pattern); err != nil {
				return wrapBizError(FailureDependency, err, "创建样板记录失败")
			}
			result.PatternID = pattern.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("订单链创建成功",
		zap.String("so_code", result.SOCode),
		zap.String("po_code", result.POCode),
		zap.String("user_id", userID),
	)
	return result, nil
}

// ensureLineItems 为缺失的明细物料建立基础主数据
func (s *OrderService) ensureLineItems(tx *repository.Repositories, items []OrderLineItem, userID string) error {
	for _, line := range items {
		exists, err := tx.Item.Exists(line.ItemCode)
		if err != nil {
			return fmt.Errorf("查询物料失败: %w", err)
		}
		if exists {
			continue
		}
		uom := line.UOM
		if uom == "" {
			uom = "件"
		}
		item := &entity.Item{
			ID:               uuid.New().String(),
			ItemCode:         line.ItemCode,
			ItemName:         line.ItemName,
			UOM:              uom,
			StockUOM:         uom,
			ConversionFactor: 1,
			IsStockItem:      true,
			Status:           entity.ItemStatusActive,
			CreatedBy:        userID,
		}
		if err := tx.Item.Create(item); err != nil {
			return fmt.Errorf("补建物料主数据失败 %s: %w", line.ItemCode, err)
		}
	}
	return nil
}

func (s *OrderService) buildSalesOrder(req CreateOrderChainRequest, soCode, contractType, userID string) *entity.SalesOrder {
	now := time.Now()
	txDate := req.TransactionDate
	if txDate == nil {
		txDate = &now
	}

	so := &entity.SalesOrder{
		ID:              uuid.New().String(),
		SOCode:          soCode,
		CustomerID:      req.CustomerID,
		Company:         req.Company,
		ContractType:    contractType,
		Status:          entity.SOStatusSubmitted,
		Currency:        "CNY",
		TransactionDate: txDate,
		DeliveryDate:    req.DeliveryDate,
		Notes:           req.Notes,
		CreatedBy:       userID,
	}

	var totalAmount float64
	for i, line := range req.Items {
		uom := line.UOM
		if uom == "" {
			uom = "件"
		}
		amount := line.Quantity * line.Rate
		totalAmount += amount
		so.Items = append(so.Items, entity.SalesOrderItem{
			ID:       uuid.New().String(),
			SOID:     so.ID,
			Idx:      i + 1,
			ItemCode: line.ItemCode,
			ItemName: line.ItemName,
			Quantity: line.Quantity,
			UOM:      uom,
			Rate:     line.Rate,
			Amount:   amount,
		})
	}
	so.TotalAmount = totalAmount
	return so
}

type materialKey struct {
	ItemCode string
	Color    string
	UOM      string
}

// buildProductionOrder 派生生产订单：用料表按 (款号, 颜色, 单位) 一行，数量按尺码分布，只保留非零尺码
func (s *OrderService) buildProductionOrder(tx *repository.Repositories, so *entity.SalesOrder, req CreateOrderChainRequest, resolutions []*Resolution, userID string) (*entity.ProductionOrder, error) {
	po := &entity.ProductionOrder{
		ID:           uuid.New().String(),
		POCode:       fmt.Sprintf("PO-%s%04d", time.Now().Format("20060102"), time.Now().UnixNano()%10000),
		SalesOrderID: so.ID,
		SOCode:       so.SOCode,
		CustomerID:   so.CustomerID,
		BusinessType: req.BusinessType,
		Status:       entity.POStatusPending,
		CreatedBy:    userID,
	}

	grouped := make(map[materialKey]entity.SizeQuantityMap)
	var keyOrder []materialKey
	var totalQty float64
	for i := range so.Items {
		item := &so.Items[i]
		if item.Quantity <= 0 {
			continue
		}
		totalQty += item.Quantity
		key := materialKey{ItemCode: item.ItemCode, Color: resolutions[i].Color, UOM: item.UOM}
		if _, ok := grouped[key]; !ok {
			grouped[key] = entity.SizeQuantityMap{}
			keyOrder = append(keyOrder, key)
		}
		grouped[key][resolutions[i].Size] += item.Quantity
	}
	po.TotalQty = totalQty

	for i, key := range keyOrder {
		po.Materials = append(po.Materials, entity.ProductionOrderMaterial{
			ID:                uuid.New().String(),
			ProductionOrderID: po.ID,
			Idx:               i + 1,
			ItemCode:          key.ItemCode,
			Color:             key.Color,
			UOM:               key.UOM,
			SizeQty:           grouped[key],
		})
	}

	for i, step := range req.ProcessSteps {
		if step.Operation == "" {
			s.logger.Warn("工序行缺少工序名称，已跳过",
				zap.String("so_code", so.SOCode), zap.Int("idx", i+1))
			continue
		}
		po.Operations = append(po.Operations, entity.ProductionOrderOperation{
			ID:                uuid.New().String(),
			ProductionOrderID: po.ID,
			Idx:               len(po.Operations) + 1,
			Operation:         step.Operation,
			ProcessParty:      step.ProcessParty,
			Description:       step.Description,
		})
	}
	return po, nil
}

func (s *OrderService) buildPattern(tx *repository.Repositories, so *entity.SalesOrder, req CreateOrderChainRequest, userID string) (*entity.PatternRecord, error) {
	styleCode := req.StyleItemCode
	if styleCode == "" && len(so.Items) > 0 {
		// 缺省用首行物料的模板款号，没有模板则用物料本身
		item, err := tx.Item.GetByCode(so.Items[0].ItemCode)
		if err == nil && item.VariantOf != "" {
			styleCode = item.VariantOf
		} else {
			styleCode = so.Items[0].ItemCode
		}
	}
	seq, err := tx.Production.NextPatternSeq(so.ID)
	if err != nil {
		return nil, fmt.Errorf("计算样板序号失败: %w", err)
	}
	return &entity.PatternRecord{
		ID:            uuid.New().String(),
		PatternCode:   fmt.Sprintf("PAT-%s-%d", so.SOCode, seq),
		StyleItemCode: styleCode,
		CustomerID:    so.CustomerID,
		SalesOrderID:  so.ID,
		PatternSeq:    seq,
		VersionLabel:  fmt.Sprintf("V%d", seq),
		Status:        entity.PatternStatusDraft,
		CreatedBy:     userID,
	}, nil
}

// --- 查询 ---

func (s *OrderService) GetProductionOrder(id string) (*entity.ProductionOrder, error) {
	po, err := s.repos.Production.GetByID(id)
	if err != nil {
		return nil, wrapBizError(FailureReferenceNotFound, err, "生产订单不存在: %s", id)
	}
	return po, nil
}

func (s *OrderService) ListProductionOrders(params repository.POListParams) ([]entity.ProductionOrder, int64, error) {
	return s.repos.Production.List(params)
}

func (s *OrderService) ListProductionMaterials(params repository.MaterialListParams) ([]repository.MaterialRow, int64, error) {
	return s.repos.Production.ListMaterials(params)
}

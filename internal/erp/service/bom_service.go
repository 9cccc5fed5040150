package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/guinanlin/rongguan-erp/internal/erp/entity"
	"github.com/guinanlin/rongguan-erp/internal/erp/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const explodeCacheTTL = 10 * time.Minute

// BOMService BOM版本管理：创建/提交版本、默认版本切换、多级展开、成本汇总
type BOMService struct {
	repos  *repository.Repositories
	cache  *redis.Client
	logger *zap.Logger
}

func NewBOMService(repos *repository.Repositories, cache *redis.Client, logger *zap.Logger) *BOMService {
	return &BOMService{repos: repos, cache: cache, logger: logger}
}

type BOMLineInput struct {
	ItemCode        string  `json:"item_code" binding:"required"`
	Quantity        float64 `json:"quantity" binding:"required,gt=0"`
	Rate            float64 `json:"rate"`
	UOM             string  `json:"uom"`
	BOMNo           string  `json:"bom_no"`
	Operation       string  `json:"operation"`
	SourceWarehouse string  `json:"source_warehouse"`
	Image           string  `json:"image"`
	Description     string  `json:"description"`
}

type BOMOperationInput struct {
	Operation   string  `json:"operation" binding:"required"`
	TimeMinutes float64 `json:"time_minutes"`
	HourlyRate  float64 `json:"hourly_rate"`
	Description string  `json:"description"`
}

type CreateBOMVersionRequest struct {
	ItemCode    string              `json:"item_code" binding:"required"`
	SourceBOMID string              `json:"source_bom_id"`
	Quantity    float64             `json:"quantity"`
	Items       []BOMLineInput      `json:"items"`
	Operations  []BOMOperationInput `json:"operations"`
	IsDefault   bool                `json:"is_default"`
	IsActive    *bool               `json:"is_active"`
	Company     string              `json:"company"`
	Remarks     string              `json:"remarks"`
}

// CreateVersion 创建并提交一个BOM版本。拷贝来源版本或使用显式用料清单；
// 提交时汇总成本，is_default 时在同一事务内完成默认指针切换。
func (s *BOMService) CreateVersion(req CreateBOMVersionRequest, userID string) (*entity.BOMVersion, error) {
	var bom *entity.BOMVersion
	err := s.repos.WithTransaction(func(tx *repository.Repositories) error {
		var err error
		bom, err = s.createVersionTx(tx, req, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("BOM版本创建成功",
		zap.String("bom_code", bom.BOMCode),
		zap.String("item_code", bom.ItemCode),
		zap.Bool("is_default", bom.IsDefault),
	)
	return bom, nil
}

func (s *BOMService) createVersionTx(tx *repository.Repositories, req CreateBOMVersionRequest, userID string) (*entity.BOMVersion, error) {
	owner, err := tx.Item.GetByCode(req.ItemCode)
	if err != nil {
		return nil, wrapBizError(FailureReferenceNotFound, err, "BOM所属款号不存在: %s", req.ItemCode)
	}

	seq, err := tx.BOM.CountByItem(req.ItemCode)
	if err != nil {
		return nil, fmt.Errorf("查询BOM版本数失败: %w", err)
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	bom := &entity.BOMVersion{
		ID:         uuid.New().String(),
		BOMCode:    fmt.Sprintf("BOM-%s-%03d", req.ItemCode, seq+1),
		ItemCode:   owner.ItemCode,
		ItemName:   owner.ItemName,
		Quantity:   quantity,
		UOM:        owner.UOM,
		VersionSeq: int(seq) + 1,
		IsActive:   isActive,
		Status:     entity.BOMStatusDraft,
		Company:    req.Company,
		Currency:   "CNY",
		Remarks:    req.Remarks,
		CreatedBy:  userID,
	}

	if req.SourceBOMID != "" {
		source, err := tx.BOM.GetByID(req.SourceBOMID)
		if err != nil {
			return nil, wrapBizError(FailureReferenceNotFound, err, "来源BOM不存在: %s", req.SourceBOMID)
		}
		bom.PredecessorID = source.ID
		if req.Quantity <= 0 {
			bom.Quantity = source.Quantity
		}
		s.copyVersionContent(bom, source)
	} else {
		if len(req.Items) == 0 {
			return nil, newBizError(FailureValidation, "未指定来源BOM时用料清单不能为空")
		}
		if err := s.buildLineItems(tx, bom, req.Items); err != nil {
			return nil, err
		}
		s.buildOperations(bom, req.Operations)
	}

	if err := tx.BOM.Create(bom); err != nil {
		return nil, fmt.Errorf("创建BOM版本失败: %w", err)
	}

	if err := s.submitVersionTx(tx, bom, req.IsDefault); err != nil {
		return nil, err
	}
	return bom, nil
}

// copyVersionContent 深拷贝来源版本的用料、工序与损耗行
func (s *BOMService) copyVersionContent(bom *entity.BOMVersion, source *entity.BOMVersion) {
	for _, it := range source.Items {
		cp := it
		cp.ID = uuid.New().String()
		cp.BOMID = bom.ID
		cp.CreatedAt = time.Time{}
		bom.Items = append(bom.Items, cp)
	}
	for _, op := range source.Operations {
		cp := op
		cp.ID = uuid.New().String()
		cp.BOMID = bom.ID
		cp.CreatedAt = time.Time{}
		bom.Operations = append(bom.Operations, cp)
	}
	for _, sc := range source.ScrapItems {
		cp := sc
		cp.ID = uuid.New().String()
		cp.BOMID = bom.ID
		cp.CreatedAt = time.Time{}
		bom.ScrapItems = append(bom.ScrapItems, cp)
	}
}

// buildLineItems 校验组件物料并填充派生字段；缺失组件汇总成一个复合错误
func (s *BOMService) buildLineItems(tx *repository.Repositories, bom *entity.BOMVersion, inputs []BOMLineInput) error {
	var missing []string
	for i, in := range inputs {
		component, err := tx.Item.GetByCode(in.ItemCode)
		if err != nil {
			missing = append(missing, in.ItemCode)
			continue
		}
		uom := in.UOM
		if uom == "" {
			uom = component.UOM
		}
		bom.Items = append(bom.Items, entity.BOMLineItem{
			ID:              uuid.New().String(),
			BOMID:           bom.ID,
			Idx:             i + 1,
			ItemCode:        component.ItemCode,
			ItemName:        component.ItemName,
			Quantity:        in.Quantity,
			UOM:             uom,
			StockUOM:        component.StockUOM,
			StockQty:        in.Quantity * component.ConversionFactor,
			Rate:            in.Rate,
			Amount:          in.Quantity * in.Rate,
			BOMNo:           in.BOMNo,
			Operation:       in.Operation,
			SourceWarehouse: in.SourceWarehouse,
			Image:           in.Image,
			Description:     in.Description,
		})
	}
	if len(missing) > 0 {
		return newBizError(FailureReferenceNotFound, "组件物料不存在: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (s *BOMService) buildOperations(bom *entity.BOMVersion, inputs []BOMOperationInput) {
	for i, in := range inputs {
		bom.Operations = append(bom.Operations, entity.BOMOperation{
			ID:            uuid.New().String(),
			BOMID:         bom.ID,
			Idx:           i + 1,
			Operation:     in.Operation,
			TimeMinutes:   in.TimeMinutes,
			HourlyRate:    in.HourlyRate,
			OperatingCost: in.TimeMinutes / 60 * in.HourlyRate,
			Description:   in.Description,
		})
	}
}

// submitVersionTx 提交版本：固化成本汇总，必要时切换默认指针
func (s *BOMService) submitVersionTx(tx *repository.Repositories, bom *entity.BOMVersion, setDefault bool) error {
	var rawCost, opCost float64
	for _, it := range bom.Items {
		rawCost += it.Amount
	}
	for _, op := range bom.Operations {
		opCost += op.OperatingCost
	}
	bom.RawMaterialCost = rawCost
	bom.OperatingCost = opCost
	bom.TotalCost = rawCost + opCost
	bom.Status = entity.BOMStatusSubmitted

	if setDefault {
		if err := s.setDefaultTx(tx, bom); err != nil {
			return err
		}
	}
	if err := tx.BOM.Update(bom); err != nil {
		return fmt.Errorf("提交BOM版本失败: %w", err)
	}
	return nil
}

// setDefaultTx 默认版本切换。锁住所属款号行串行化并发切换，
// 同一事务内清旧默认、立新默认并回写款号指针，不会出现双默认或悬空指针。
func (s *BOMService) setDefaultTx(tx *repository.Repositories, bom *entity.BOMVersion) error {
	if _, err := tx.Item.GetByCodeForUpdate(bom.ItemCode); err != nil {
		return wrapBizError(FailureConflict, err, "锁定款号失败: %s", bom.ItemCode)
	}
	if err := tx.BOM.ClearDefaultByItem(bom.ItemCode, bom.ID); err != nil {
		return fmt.Errorf("清除旧默认BOM失败: %w", err)
	}
	bom.IsDefault = true
	if err := tx.Item.UpdateDefaultBOM(bom.ItemCode, bom.ID); err != nil {
		return fmt.Errorf("回写默认BOM指针失败: %w", err)
	}
	return nil
}

// Submit 提交草稿版本
func (s *BOMService) Submit(bomID string, setDefault bool) (*entity.BOMVersion, error) {
	var bom *entity.BOMVersion
	err := s.repos.WithTransaction(func(tx *repository.Repositories) error {
		var err error
		bom, err = tx.BOM.GetByID(bomID)
		if err != nil {
			return wrapBizError(FailureReferenceNotFound, err, "BOM不存在: %s", bomID)
		}
		if bom.Status != entity.BOMStatusDraft {
			return newBizError(FailureConflict, "仅草稿状态可提交，当前状态: %s", bom.Status)
		}
		return s.submitVersionTx(tx, bom, setDefault)
	})
	if err != nil {
		return nil, err
	}
	return bom, nil
}

// --- 批量创建 ---

type BulkBOMItemResult struct {
	Index    int    `json:"index"`
	ItemCode string `json:"item_code"`
	BOMID    string `json:"bom_id,omitempty"`
	BOMCode  string `json:"bom_code,omitempty"`
	Error    string `json:"error,omitempty"`
}

type BulkBOMResult struct {
	Successes []BulkBOMItemResult `json:"successes"`
	Failures  []BulkBOMItemResult `json:"failures"`
}

// BulkCreateVersions 批量创建BOM版本，整批一个事务：任一失败全部回滚，
// 但仍返回逐项诊断。批内款号之间的循环引用在写入前预检拒绝。
func (s *BOMService) BulkCreateVersions(reqs []CreateBOMVersionRequest, userID string) (*BulkBOMResult, error) {
	result := &BulkBOMResult{}
	if len(reqs) == 0 {
		return result, newBizError(FailureValidation, "批量创建清单不能为空")
	}

	if cycle := detectBatchCycle(reqs); len(cycle) > 0 {
		for i, req := range reqs {
			result.Failures = append(result.Failures, BulkBOMItemResult{
				Index:    i,
				ItemCode: req.ItemCode,
				Error:    fmt.Sprintf("批内存在循环引用: %s", strings.Join(cycle, " -> ")),
			})
		}
		return result, newBizError(FailureCycleDetected, "批内存在循环引用: %s", strings.Join(cycle, " -> "))
	}

	err := s.repos.WithTransaction(func(tx *repository.Repositories) error {
		for i, req := range reqs {
			bom, err := s.createVersionTx(tx, req, userID)
			if err != nil {
				result.Failures = append(result.Failures, BulkBOMItemResult{
					Index:    i,
					ItemCode: req.ItemCode,
					Error:    err.Error(),
				})
				return wrapBizError(FailureDependency, err, "第 %d 项（款号 %s）创建失败，整批已回滚", i+1, req.ItemCode)
			}
			result.Successes = append(result.Successes, BulkBOMItemResult{
				Index:    i,
				ItemCode: req.ItemCode,
				BOMID:    bom.ID,
				BOMCode:  bom.BOMCode,
			})
		}
		return nil
	})
	if err != nil {
		// 整批回滚后成功清单不再成立
		result.Successes = nil
		return result, err
	}
	return result, nil
}

// detectBatchCycle 在批内款号的引用图上做DFS找环，返回环路径（无环返回nil）
func detectBatchCycle(reqs []CreateBOMVersionRequest) []string {
	inBatch := make(map[string]bool, len(reqs))
	for _, req := range reqs {
		inBatch[req.ItemCode] = true
	}
	edges := make(map[string][]string)
	for _, req := range reqs {
		for _, line := range req.Items {
			if inBatch[line.ItemCode] {
				edges[req.ItemCode] = append(edges[req.ItemCode], line.ItemCode)
			}
		}
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int)
	var path []string
	var cycle []string

	var visit func(node string) bool
	visit = func(node string) bool {
		color[node] = gray
		path = append(path, node)
		for _, next := range edges[node] {
			if color[next] == gray {
				// 从环入口截取路径
				for i, n := range path {
					if n == next {
						cycle = append(append([]string{}, path[i:]...), next)
						return true
					}
				}
				cycle = []string{node, next, node}
				return true
			}
			if color[next] == white && visit(next) {
				return true
			}
		}
		path = path[:len(path)-1]
		color[node] = black
		return false
	}

	for _, req := range reqs {
		if color[req.ItemCode] == white && visit(req.ItemCode) {
			return cycle
		}
	}
	return nil
}

// --- 展开 ---

// ExplodedItem 展开结果行
type ExplodedItem struct {
	ItemCode        string  `json:"item_code"`
	ItemName        string  `json:"item_name"`
	Quantity        float64 `json:"quantity"`
	UOM             string  `json:"uom"`
	Rate            float64 `json:"rate"`
	Amount          float64 `json:"amount"`
	SourceWarehouse string  `json:"source_warehouse,omitempty"`
	Operation       string  `json:"operation,omitempty"`
	Description     string  `json:"description,omitempty"`
}

// Explode 多级展开：按 quantity/bom.quantity 比例放大，逐级递归引用下级BOM的行，
// 叶子行按物料编码合并数量，输出按编码稳定排序。已提交版本内容不可变，结果可缓存。
func (s *BOMService) Explode(ctx context.Context, bomID string, quantity float64, includeNonStock bool) ([]ExplodedItem, error) {
	if quantity <= 0 {
		return nil, newBizError(FailureValidation, "展开数量必须大于0")
	}

	cacheKey := fmt.Sprintf("bom:explode:%s:%g:%t", bomID, quantity, includeNonStock)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var cached []ExplodedItem
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return cached, nil
			}
		}
	}

	bom, err := s.repos.BOM.GetByID(bomID)
	if err != nil {
		return nil, wrapBizError(FailureReferenceNotFound, err, "BOM不存在: %s", bomID)
	}

	acc := make(map[string]*ExplodedItem)
	order := []string{}
	visited := map[string]bool{}
	multiplier := quantity
	if bom.Quantity > 0 {
		multiplier = quantity / bom.Quantity
	}
	if err := s.explodeInto(bom, multiplier, includeNonStock, acc, &order, visited); err != nil {
		return nil, err
	}

	items := make([]ExplodedItem, 0, len(acc))
	for _, code := range order {
		items = append(items, *acc[code])
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].ItemCode < items[j].ItemCode })

	if s.cache != nil {
		if raw, err := json.Marshal(items); err == nil {
			if err := s.cache.Set(ctx, cacheKey, raw, explodeCacheTTL).Err(); err != nil {
				s.logger.Warn("BOM展开结果写缓存失败", zap.String("bom_id", bomID), zap.Error(err))
			}
		}
	}
	return items, nil
}

func (s *BOMService) explodeInto(bom *entity.BOMVersion, multiplier float64, includeNonStock bool, acc map[string]*ExplodedItem, order *[]string, visited map[string]bool) error {
	if visited[bom.BOMCode] {
		return newBizError(FailureCycleDetected, "BOM存在循环引用: %s", bom.BOMCode)
	}
	visited[bom.BOMCode] = true
	defer delete(visited, bom.BOMCode)

	for _, line := range bom.Items {
		scaled := line.Quantity * multiplier
		if line.BOMNo != "" {
			sub, err := s.repos.BOM.GetByCode(line.BOMNo)
			if err != nil {
				return wrapBizError(FailureReferenceNotFound, err, "下级BOM不存在: %s", line.BOMNo)
			}
			subMultiplier := scaled
			if sub.Quantity > 0 {
				subMultiplier = scaled / sub.Quantity
			}
			if err := s.explodeInto(sub, subMultiplier, includeNonStock, acc, order, visited); err != nil {
				return err
			}
			continue
		}

		if !includeNonStock {
			component, err := s.repos.Item.GetByCode(line.ItemCode)
			if err == nil && !component.IsStockItem {
				continue
			}
		}

		if existing, ok := acc[line.ItemCode]; ok {
			existing.Quantity += scaled
			existing.Amount += scaled * line.Rate
			continue
		}
		acc[line.ItemCode] = &ExplodedItem{
			ItemCode:        line.ItemCode,
			ItemName:        line.ItemName,
			Quantity:        scaled,
			UOM:             line.StockUOM,
			Rate:            line.Rate,
			Amount:          scaled * line.Rate,
			SourceWarehouse: line.SourceWarehouse,
			Operation:       line.Operation,
			Description:     line.Description,
		}
		*order = append(*order, line.ItemCode)
	}
	return nil
}

// ExportExplosion 导出展开结果为Excel
func (s *BOMService) ExportExplosion(ctx context.Context, bomID string, quantity float64, includeNonStock bool) (*excelize.File, string, error) {
	bom, err := s.repos.BOM.GetByID(bomID)
	if err != nil {
		return nil, "", wrapBizError(FailureReferenceNotFound, err, "BOM不存在: %s", bomID)
	}
	items, err := s.Explode(ctx, bomID, quantity, includeNonStock)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	sheet := "用料表"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"序号", "物料编码", "物料名称", "数量", "单位", "单价", "金额", "仓库", "工序", "备注"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	for i, item := range items {
		row := i + 2
		values := []interface{}{
			i + 1, item.ItemCode, item.ItemName, item.Quantity, item.UOM,
			item.Rate, item.Amount, item.SourceWarehouse, item.Operation, item.Description,
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			f.SetCellValue(sheet, cell, v)
		}
	}

	filename := fmt.Sprintf("BOM用料表-%s-%s.xlsx", bom.BOMCode, time.Now().Format("20060102"))
	return f, filename, nil
}

// --- 结构摘要 ---

type BOMStructureSummary struct {
	ItemCode        string  `json:"item_code"`
	ItemName        string  `json:"item_name"`
	DefaultBOMID    string  `json:"default_bom_id,omitempty"`
	DefaultBOMCode  string  `json:"default_bom_code,omitempty"`
	VersionCount    int     `json:"version_count"`
	LineItemCount   int64   `json:"line_item_count"`
	TotalCost       float64 `json:"total_cost"`
	RawMaterialCost float64 `json:"raw_material_cost"`
	OperatingCost   float64 `json:"operating_cost"`
}

// GetStructureSummary 款号BOM结构摘要：默认版本、版本数与成本字段
func (s *BOMService) GetStructureSummary(itemCode string) (*BOMStructureSummary, error) {
	item, err := s.repos.Item.GetByCode(itemCode)
	if err != nil {
		return nil, wrapBizError(FailureReferenceNotFound, err, "款号不存在: %s", itemCode)
	}
	versions, err := s.repos.BOM.ListByItem(itemCode)
	if err != nil {
		return nil, fmt.Errorf("查询BOM版本失败: %w", err)
	}

	summary := &BOMStructureSummary{
		ItemCode:     item.ItemCode,
		ItemName:     item.ItemName,
		VersionCount: len(versions),
	}
	if item.DefaultBOMID != "" {
		if def, err := s.repos.BOM.GetByID(item.DefaultBOMID); err == nil {
			summary.DefaultBOMID = def.ID
			summary.DefaultBOMCode = def.BOMCode
			summary.TotalCost = def.TotalCost
			summary.RawMaterialCost = def.RawMaterialCost
			summary.OperatingCost = def.OperatingCost
			summary.LineItemCount, _ = s.repos.BOM.CountLineItems(def.ID)
		}
	}
	return summary, nil
}

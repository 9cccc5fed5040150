package repository

import (
	"github.com/guinanlin/rongguan-erp/internal/erp/entity"
	"gorm.io/gorm"
)

type ProductionRepository struct {
	db *gorm.DB
}

func NewProductionRepository(db *gorm.DB) *ProductionRepository {
	return &ProductionRepository{db: db}
}

func (r *ProductionRepository) Create(po *entity.ProductionOrder) error {
	return r.db.Create(po).Error
}

func (r *ProductionRepository) GetByID(id string) (*entity.ProductionOrder, error) {
	var po entity.ProductionOrder
	err := r.db.
		Preload("Materials", func(db *gorm.DB) *gorm.DB { return db.Order("idx ASC") }).
		Preload("Operations", func(db *gorm.DB) *gorm.DB { return db.Order("idx ASC") }).
		Where("id = ? AND deleted_at IS NULL", id).First(&po).Error
	return &po, err
}

func (r *ProductionRepository) Update(po *entity.ProductionOrder) error {
	return r.db.Save(po).Error
}

// ListBySOCode 取销售订单关联的全部生产订单
func (r *ProductionRepository) ListBySOCode(soCode string) ([]entity.ProductionOrder, error) {
	var pos []entity.ProductionOrder
	err := r.db.Where("so_code = ? AND deleted_at IS NULL", soCode).
		Order("created_at ASC").Find(&pos).Error
	return pos, err
}

type POListParams struct {
	Status  string
	SOCode  string
	Keyword string
	Page    int
	Size    int
}

func (r *ProductionRepository) List(params POListParams) ([]entity.ProductionOrder, int64, error) {
	query := r.db.Model(&entity.ProductionOrder{}).Where("deleted_at IS NULL")
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.SOCode != "" {
		query = query.Where("so_code = ?", params.SOCode)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("po_code LIKE ? OR so_code LIKE ?", kw, kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var pos []entity.ProductionOrder
	err := query.Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&pos).Error
	return pos, total, err
}

type MaterialListParams struct {
	SOCode   string
	ItemCode string
	Page     int
	Size     int
}

// MaterialRow 用料行平铺视图
type MaterialRow struct {
	POCode   string                 `json:"po_code"`
	SOCode   string                 `json:"so_code"`
	ItemCode string                 `json:"item_code"`
	Color    string                 `json:"color"`
	UOM      string                 `json:"uom"`
	SizeQty  entity.SizeQuantityMap `json:"size_qty" gorm:"serializer:json"`
}

// ListMaterials 跨订单平铺查询用料行
func (r *ProductionRepository) ListMaterials(params MaterialListParams) ([]MaterialRow, int64, error) {
	query := r.db.Table("erp_production_order_materials AS m").
		Select("p.po_code, p.so_code, m.item_code, m.color, m.uom, m.size_qty").
		Joins("JOIN erp_production_orders p ON p.id = m.production_order_id").
		Where("p.deleted_at IS NULL")
	if params.SOCode != "" {
		query = query.Where("p.so_code = ?", params.SOCode)
	}
	if params.ItemCode != "" {
		query = query.Where("m.item_code = ?", params.ItemCode)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var rows []MaterialRow
	err := query.Order("p.created_at DESC, m.idx ASC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).Scan(&rows).Error
	return rows, total, err
}

// --- Pattern ---

func (r *ProductionRepository) CreatePattern(p *entity.PatternRecord) error {
	return r.db.Create(p).Error
}

// NextPatternSeq 订单内下一个样板序号
func (r *ProductionRepository) NextPatternSeq(salesOrderID string) (int, error) {
	var max int
	err := r.db.Model(&entity.PatternRecord{}).
		Where("sales_order_id = ?", salesOrderID).
		Select("COALESCE(MAX(pattern_seq), 0)").Scan(&max).Error
	return max + 1, err
}

func (r *ProductionRepository) GetPatternByID(id string) (*entity.PatternRecord, error) {
	var p entity.PatternRecord
	err := r.db.Where("id = ?", id).First(&p).Error
	return &p, err
}

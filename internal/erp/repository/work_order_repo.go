package repository

import (
	"github.com/guinanlin/rongguan-erp/internal/erp/entity"
	"gorm.io/gorm"
)

type WorkOrderRepository struct {
	db *gorm.DB
}

func NewWorkOrderRepository(db *gorm.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db: db}
}

func (r *WorkOrderRepository) Create(wo *entity.WorkOrder) error {
	return r.db.Create(wo).Error
}

func (r *WorkOrderRepository) GetByID(id string) (*entity.WorkOrder, error) {
	var wo entity.WorkOrder
	err := r.db.
		Preload("RequiredItems", func(db *gorm.DB) *gorm.DB { return db.Order("idx ASC") }).
		Preload("Operations", func(db *gorm.DB) *gorm.DB { return db.Order("idx ASC") }).
		Where("id = ? AND deleted_at IS NULL", id).First(&wo).Error
	return &wo, err
}

func (r *WorkOrderRepository) Update(wo *entity.WorkOrder) error {
	return r.db.Save(wo).Error
}

type WOListParams struct {
	Status         string
	ProductionItem string
	SalesOrderCode string
	Keyword        string
	Page           int
	Size           int
}

func (r *WorkOrderRepository) List(params WOListParams) ([]entity.WorkOrder, int64, error) {
	query := r.db.Model(&entity.WorkOrder{}).Where("deleted_at IS NULL")
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.ProductionItem != "" {
		query = query.Where("production_item = ?", params.ProductionItem)
	}
	if params.SalesOrderCode != "" {
		query = query.Where("sales_order_code = ?", params.SalesOrderCode)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("wo_code LIKE ? OR item_name LIKE ?", kw, kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var wos []entity.WorkOrder
	err := query.Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&wos).Error
	return wos, total, err
}

// --- Assignment ---

func (r *WorkOrderRepository) CreateAssignment(a *entity.Assignment) error {
	return r.db.Create(a).Error
}

func (r *WorkOrderRepository) GetAssignmentsByRef(refType, refID string) ([]entity.Assignment, error) {
	var as []entity.Assignment
	err := r.db.Where("ref_type = ? AND ref_id = ?", refType, refID).
		Order("created_at ASC").Find(&as).Error
	return as, err
}

package repository

import (
	"github.com/guinanlin/rongguan-erp/internal/erp/entity"
	"gorm.io/gorm"
)

type SalesRepository struct {
	db *gorm.DB
}

func NewSalesRepository(db *gorm.DB) *SalesRepository {
	return &SalesRepository{db: db}
}

// --- Customer ---

func (r *SalesRepository) CreateCustomer(c *entity.Customer) error {
	return r.db.Create(c).Error
}

func (r *SalesRepository) GetCustomerByID(id string) (*entity.Customer, error) {
	var c entity.Customer
	err := r.db.Where("id = ? AND deleted_at IS NULL", id).First(&c).Error
	return &c, err
}

// --- Company ---

func (r *SalesRepository) CreateCompany(c *entity.Company) error {
	return r.db.Create(c).Error
}

func (r *SalesRepository) CompanyExists(name string) (bool, error) {
	var count int64
	err := r.db.Model(&entity.Company{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

// --- Sales Order ---

func (r *SalesRepository) CreateSO(so *entity.SalesOrder) error {
	return r.db.Create(so).Error
}

func (r *SalesRepository) GetSOByID(id string) (*entity.SalesOrder, error) {
	var so entity.SalesOrder
	err := r.db.Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("idx ASC") }).
		Where("id = ? AND deleted_at IS NULL", id).First(&so).Error
	return &so, err
}

func (r *SalesRepository) GetSOByCode(code string) (*entity.SalesOrder, error) {
	var so entity.SalesOrder
	err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("idx ASC") }).
		Where("so_code = ? AND deleted_at IS NULL", code).First(&so).Error
	return &so, err
}

func (r *SalesRepository) SOCodeExists(code string) (bool, error) {
	var count int64
	err := r.db.Model(&entity.SalesOrder{}).
		Where("so_code = ? AND deleted_at IS NULL", code).Count(&count).Error
	return count > 0, err
}

func (r *SalesRepository) UpdateSO(so *entity.SalesOrder) error {
	return r.db.Save(so).Error
}

func (r *SalesRepository) UpdateSOItem(item *entity.SalesOrderItem) error {
	return r.db.Save(item).Error
}

type SOListParams struct {
	Status     string
	CustomerID string
	Keyword    string
	Page       int
	Size       int
}

func (r *SalesRepository) ListSOs(params SOListParams) ([]entity.SalesOrder, int64, error) {
	query := r.db.Model(&entity.SalesOrder{}).Where("deleted_at IS NULL")
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.CustomerID != "" {
		query = query.Where("customer_id = ?", params.CustomerID)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("so_code LIKE ?", kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var sos []entity.SalesOrder
	err := query.Preload("Customer").Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&sos).Error
	return sos, total, err
}

package repository

import (
	"github.com/guinanlin/rongguan-erp/internal/erp/entity"
	"gorm.io/gorm"
)

type BOMRepository struct {
	db *gorm.DB
}

func NewBOMRepository(db *gorm.DB) *BOMRepository {
	return &BOMRepository{db: db}
}

func (r *BOMRepository) Create(bom *entity.BOMVersion) error {
	return r.db.Create(bom).Error
}

func (r *BOMRepository) Update(bom *entity.BOMVersion) error {
	return r.db.Save(bom).Error
}

func (r *BOMRepository) GetByID(id string) (*entity.BOMVersion, error) {
	var bom entity.BOMVersion
	err := r.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("idx ASC") }).
		Preload("Operations", func(db *gorm.DB) *gorm.DB { return db.Order("idx ASC") }).
		Preload("ScrapItems", func(db *gorm.DB) *gorm.DB { return db.Order("idx ASC") }).
		Where("id = ? AND deleted_at IS NULL", id).First(&bom).Error
	return &bom, err
}

func (r *BOMRepository) GetByCode(code string) (*entity.BOMVersion, error) {
	var bom entity.BOMVersion
	err := r.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("idx ASC") }).
		Preload("Operations", func(db *gorm.DB) *gorm.DB { return db.Order("idx ASC") }).
		Where("bom_code = ? AND deleted_at IS NULL", code).First(&bom).Error
	return &bom, err
}

func (r *BOMRepository) CodeExists(code string) (bool, error) {
	var count int64
	err := r.db.Model(&entity.BOMVersion{}).
		Where("bom_code = ? AND deleted_at IS NULL", code).Count(&count).Error
	return count > 0, err
}

// CountByItem 款号现有版本数，用于版本序号
func (r *BOMRepository) CountByItem(itemCode string) (int64, error) {
	var count int64
	err := r.db.Model(&entity.BOMVersion{}).
		Where("item_code = ? AND deleted_at IS NULL", itemCode).Count(&count).Error
	return count, err
}

// ClearDefaultByItem 清除款号下其他版本的默认标记
func (r *BOMRepository) ClearDefaultByItem(itemCode, exceptID string) error {
	return r.db.Model(&entity.BOMVersion{}).
		Where("item_code = ? AND id <> ? AND is_default = ?", itemCode, exceptID, true).
		Update("is_default", false).Error
}

func (r *BOMRepository) GetDefaultByItem(itemCode string) (*entity.BOMVersion, error) {
	var bom entity.BOMVersion
	err := r.db.Where("item_code = ? AND is_default = ? AND deleted_at IS NULL", itemCode, true).
		First(&bom).Error
	return &bom, err
}

func (r *BOMRepository) ListByItem(itemCode string) ([]entity.BOMVersion, error) {
	var boms []entity.BOMVersion
	err := r.db.Where("item_code = ? AND deleted_at IS NULL", itemCode).
		Order("version_seq ASC").Find(&boms).Error
	return boms, err
}

func (r *BOMRepository) CountLineItems(bomID string) (int64, error) {
	var count int64
	err := r.db.Model(&entity.BOMLineItem{}).Where("bom_id = ?", bomID).Count(&count).Error
	return count, err
}

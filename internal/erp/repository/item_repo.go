package repository

import (
	"github.com/guinanlin/rongguan-erp/internal/erp/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) Create(item *entity.Item) error {
	return r.db.Create(item).Error
}

// GetByCode 按编码取物料，变体属性按声明顺序加载
func (r *ItemRepository) GetByCode(code string) (*entity.Item, error) {
	var item entity.Item
	err := r.db.Preload("Attributes", func(db *gorm.DB) *gorm.DB {
		return db.Order("idx ASC")
	}).Where("item_code = ? AND deleted_at IS NULL", code).First(&item).Error
	return &item, err
}

// GetByCodeForUpdate 按编码取物料并加行锁，用于默认BOM指针切换。
// sqlite 不支持 FOR UPDATE，其单写锁本身已串行化写事务。
func (r *ItemRepository) GetByCodeForUpdate(code string) (*entity.Item, error) {
	query := r.db
	if r.db.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var item entity.Item
	err := query.Where("item_code = ? AND deleted_at IS NULL", code).First(&item).Error
	return &item, err
}

func (r *ItemRepository) Exists(code string) (bool, error) {
	var count int64
	err := r.db.Model(&entity.Item{}).
		Where("item_code = ? AND deleted_at IS NULL", code).Count(&count).Error
	return count > 0, err
}

func (r *ItemRepository) Update(item *entity.Item) error {
	return r.db.Save(item).Error
}

// UpdateDefaultBOM 回写款号的默认BOM指针
func (r *ItemRepository) UpdateDefaultBOM(itemCode, bomID string) error {
	return r.db.Model(&entity.Item{}).
		Where("item_code = ?", itemCode).
		Update("default_bom_id", bomID).Error
}

// --- 变体属性 ---

func (r *ItemRepository) CreateVariantAttribute(attr *entity.ItemVariantAttribute) error {
	return r.db.Create(attr).Error
}

// --- 属性主数据 ---

func (r *ItemRepository) GetAttributeByName(name string) (*entity.ItemAttribute, error) {
	var attr entity.ItemAttribute
	err := r.db.Where("name = ?", name).First(&attr).Error
	return &attr, err
}

func (r *ItemRepository) CreateAttribute(attr *entity.ItemAttribute) error {
	return r.db.Create(attr).Error
}

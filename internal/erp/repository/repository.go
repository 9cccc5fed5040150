package repository

import "gorm.io/gorm"

// Repositories ERP 仓库集合
type Repositories struct {
	db *gorm.DB

	Item            *ItemRepository
	Sales           *SalesRepository
	Production      *ProductionRepository
	BOM             *BOMRepository
	WorkOrder       *WorkOrderRepository
	MaterialRequest *MaterialRequestRepository
	User            *UserRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:              db,
		Item:            NewItemRepository(db),
		Sales:           NewSalesRepository(db),
		Production:      NewProductionRepository(db),
		BOM:             NewBOMRepository(db),
		WorkOrder:       NewWorkOrderRepository(db),
		MaterialRequest: NewMaterialRequestRepository(db),
		User:            NewUserRepository(db),
	}
}

// WithTransaction 在一个事务中执行 fn，fn 内通过事务绑定的仓库集合读写。
// 嵌套调用时 gorm 自动降级为 savepoint，失败回滚到对应检查点。
func (r *Repositories) WithTransaction(fn func(tx *Repositories) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// DB 返回底层db
func (r *Repositories) DB() *gorm.DB {
	return r.db
}

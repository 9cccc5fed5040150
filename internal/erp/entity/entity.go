package entity

import "gorm.io/gorm"

// AutoMigrate 自动迁移所有ERP表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// 基础数据
		&Company{},
		&Customer{},
		&Item{},
		&ItemVariantAttribute{},
		&ItemAttribute{},
		&User{},
		&Employee{},

		// 订单链
		&SalesOrder{},
		&SalesOrderItem{},
		&ProductionOrder{},
		&ProductionOrderMaterial{},
		&ProductionOrderOperation{},
		&PatternRecord{},

		// BOM
		&BOMVersion{},
		&BOMLineItem{},
		&BOMOperation{},
		&BOMScrapItem{},

		// 生产
		&WorkOrder{},
		&WorkOrderItem{},
		&WorkOrderOperation{},
		&Assignment{},

		// 物料申请
		&MaterialRequest{},
	)
}

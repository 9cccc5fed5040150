package entity

import (
	"time"
)

// ProductionOrderStatus 生产订单状态
const (
	POStatusPending    = "PENDING"
	POStatusInProgress = "IN_PROGRESS"
	POStatusDone       = "DONE"
)

// ProductionOrder 生产订单，随销售订单在同一事务内派生
type ProductionOrder struct {
	ID           string     `json:"id" gorm:"primaryKey;type:uuid"`
	POCode       string     `json:"po_code" gorm:"size:50;not null;uniqueIndex"`
	SalesOrderID string     `json:"sales_order_id" gorm:"type:uuid;not null;index"`
	SOCode       string     `json:"so_code" gorm:"size:50;not null;index"`
	CustomerID   string     `json:"customer_id" gorm:"type:uuid"`
	BusinessType string     `json:"business_type" gorm:"size:50"`
	Status       string     `json:"status" gorm:"size:20;not null;default:PENDING"`
	TotalQty     float64    `json:"total_qty" gorm:"type:decimal(12,4);default:0"`
	FrontImage   string     `json:"front_image" gorm:"size:500"`
	BackImage    string     `json:"back_image" gorm:"size:500"`
	Notes        string     `json:"notes" gorm:"type:text"`
	CreatedBy    string     `json:"created_by" gorm:"size:64;not null"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at" gorm:"index"`

	Materials  []ProductionOrderMaterial  `json:"materials,omitempty" gorm:"foreignKey:ProductionOrderID"`
	Operations []ProductionOrderOperation `json:"operations,omitempty" gorm:"foreignKey:ProductionOrderID"`
}

func (ProductionOrder) TableName() string {
	return "erp_production_orders"
}

// SizeQuantityMap 按尺码的数量分布
type SizeQuantityMap map[string]float64

// ProductionOrderMaterial 生产订单用料行，(款号, 颜色, 单位) 一行，数量按尺码分布
type ProductionOrderMaterial struct {
	ID                string          `json:"id" gorm:"primaryKey;type:uuid"`
	ProductionOrderID string          `json:"production_order_id" gorm:"type:uuid;not null;index"`
	Idx               int             `json:"idx" gorm:"not null;default:0"`
	ItemCode          string          `json:"item_code" gorm:"size:140;not null"`
	Color             string          `json:"color" gorm:"size:60"`
	UOM               string          `json:"uom" gorm:"size:20;not null;default:件"`
	SizeQty           SizeQuantityMap `json:"size_qty" gorm:"serializer:json;type:text"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (ProductionOrderMaterial) TableName() string {
	return "erp_production_order_materials"
}

// ProductionOrderOperation 生产订单工序行
type ProductionOrderOperation struct {
	ID                string    `json:"id" gorm:"primaryKey;type:uuid"`
	ProductionOrderID string    `json:"production_order_id" gorm:"type:uuid;not null;index"`
	Idx               int       `json:"idx" gorm:"not null;default:0"`
	Operation         string    `json:"operation" gorm:"size:140;not null"`
	ProcessParty      string    `json:"process_party" gorm:"size:140"` // 加工方
	Description       string    `json:"description" gorm:"type:text"`
	CreatedAt         time.Time `json:"created_at"`
}

func (ProductionOrderOperation) TableName() string {
	return "erp_production_order_operations"
}

package entity

import (
	"time"
)

// SalesOrderStatus 销售订单状态
const (
	SOStatusDraft     = "DRAFT"
	SOStatusSubmitted = "SUBMITTED"
	SOStatusCancelled = "CANCELLED"
)

// ContractType 合同类型
const (
	ContractTypeStandard = "STANDARD"
	ContractTypeSample   = "SAMPLE" // 样板单，下单时同步建立样板记录
)

// SalesOrder 销售订单
type SalesOrder struct {
	ID              string     `json:"id" gorm:"primaryKey;type:uuid"`
	SOCode          string     `json:"so_code" gorm:"size:50;not null;uniqueIndex"`
	CustomerID      string     `json:"customer_id" gorm:"type:uuid;not null;index"`
	Company         string     `json:"company" gorm:"size:140;not null"`
	ContractType    string     `json:"contract_type" gorm:"size:20;not null;default:STANDARD"`
	Status          string     `json:"status" gorm:"size:20;not null;default:DRAFT"`
	TotalAmount     float64    `json:"total_amount" gorm:"type:decimal(12,2);default:0"`
	Currency        string     `json:"currency" gorm:"size:10;not null;default:CNY"`
	TransactionDate *time.Time `json:"transaction_date"`
	DeliveryDate    *time.Time `json:"delivery_date"`
	Notes           string     `json:"notes" gorm:"type:text"`
	CreatedBy       string     `json:"created_by" gorm:"size:64;not null"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at" gorm:"index"`

	Customer *Customer        `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Items    []SalesOrderItem `json:"items,omitempty" gorm:"foreignKey:SOID"`
}

func (SalesOrder) TableName() string {
	return "erp_sales_orders"
}

// SalesOrderItem 销售订单明细，颜色/尺码在下单时由变体属性解析得出
type SalesOrderItem struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	SOID      string    `json:"so_id" gorm:"type:uuid;not null;index"`
	Idx       int       `json:"idx" gorm:"not null;default:0"`
	ItemCode  string    `json:"item_code" gorm:"size:140;not null"`
	ItemName  string    `json:"item_name" gorm:"size:200"`
	Quantity  float64   `json:"quantity" gorm:"type:decimal(12,4);not null"`
	UOM       string    `json:"uom" gorm:"size:20;not null;default:件"`
	Rate      float64   `json:"rate" gorm:"type:decimal(12,4);default:0"`
	Amount    float64   `json:"amount" gorm:"type:decimal(12,2);default:0"`
	Color     string    `json:"color" gorm:"size:60"`
	Size      string    `json:"size" gorm:"size:60"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SalesOrderItem) TableName() string {
	return "erp_sales_order_items"
}

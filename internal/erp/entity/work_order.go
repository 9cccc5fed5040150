package entity

import (
	"time"
)

// WorkOrderStatus 工单状态
const (
	WOStatusDraft     = "DRAFT"
	WOStatusSubmitted = "SUBMITTED"
)

// AssignmentStatus 指派记录状态
const (
	AssignStatusPending   = "PENDING"
	AssignStatusSucceeded = "SUCCEEDED"
	AssignStatusFailed    = "FAILED"
)

// WorkOrder 生产工单
type WorkOrder struct {
	ID                   string     `json:"id" gorm:"primaryKey;type:uuid"`
	WOCode               string     `json:"wo_code" gorm:"size:50;not null;uniqueIndex"`
	ProductionItem       string     `json:"production_item" gorm:"size:140;not null;index"`
	ItemName             string     `json:"item_name" gorm:"size:200"`
	Quantity             float64    `json:"quantity" gorm:"type:decimal(12,4);not null"`
	Company              string     `json:"company" gorm:"size:140;not null"`
	BOMNo                string     `json:"bom_no" gorm:"size:140;not null"`
	StockUOM             string     `json:"stock_uom" gorm:"size:20;default:件"`
	FGWarehouse          string     `json:"fg_warehouse" gorm:"size:140"`  // 成品仓
	WIPWarehouse         string     `json:"wip_warehouse" gorm:"size:140"` // 在制仓
	WorkOrderType        string     `json:"work_order_type" gorm:"size:50"`
	SalesOrderCode       string     `json:"sales_order_code" gorm:"size:50;index"`
	PatternCode          string     `json:"pattern_code" gorm:"size:50"`
	PlannedStartDate     *time.Time `json:"planned_start_date"`
	ExpectedDeliveryDate *time.Time `json:"expected_delivery_date"`
	AssigneeAccount      string     `json:"assignee_account" gorm:"size:140"` // 指派成功后回填
	Status               string     `json:"status" gorm:"size:20;not null;default:DRAFT"`
	Description          string     `json:"description" gorm:"type:text"`
	CreatedBy            string     `json:"created_by" gorm:"size:64;not null"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	DeletedAt            *time.Time `json:"deleted_at" gorm:"index"`

	RequiredItems []WorkOrderItem      `json:"required_items,omitempty" gorm:"foreignKey:WorkOrderID"`
	Operations    []WorkOrderOperation `json:"operations,omitempty" gorm:"foreignKey:WorkOrderID"`
}

func (WorkOrder) TableName() string {
	return "erp_work_orders"
}

// WorkOrderItem 工单用料需求行
type WorkOrderItem struct {
	ID              string    `json:"id" gorm:"primaryKey;type:uuid"`
	WorkOrderID     string    `json:"work_order_id" gorm:"type:uuid;not null;index"`
	Idx             int       `json:"idx" gorm:"not null;default:0"`
	ItemCode        string    `json:"item_code" gorm:"size:140;not null"`
	ItemName        string    `json:"item_name" gorm:"size:200"`
	RequiredQty     float64   `json:"required_qty" gorm:"type:decimal(12,4);not null"`
	UOM             string    `json:"uom" gorm:"size:20;not null;default:件"`
	Rate            float64   `json:"rate" gorm:"type:decimal(12,4);default:0"`
	Amount          float64   `json:"amount" gorm:"type:decimal(12,2);default:0"`
	SourceWarehouse string    `json:"source_warehouse" gorm:"size:140"`
	Description     string    `json:"description" gorm:"type:text"`
	CreatedAt       time.Time `json:"created_at"`
}

func (WorkOrderItem) TableName() string {
	return "erp_work_order_items"
}

// WorkOrderOperation 工单工序行
type WorkOrderOperation struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid"`
	WorkOrderID  string    `json:"work_order_id" gorm:"type:uuid;not null;index"`
	Idx          int       `json:"idx" gorm:"not null;default:0"`
	Operation    string    `json:"operation" gorm:"size:140;not null"`
	ProcessParty string    `json:"process_party" gorm:"size:140"`
	Description  string    `json:"description" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
}

func (WorkOrderOperation) TableName() string {
	return "erp_work_order_operations"
}

// Assignment 指派记录，工单创建成功后逐单写入，失败不回滚所属工单
type Assignment struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid"`
	RefType     string    `json:"ref_type" gorm:"size:50;not null"`
	RefID       string    `json:"ref_id" gorm:"type:uuid;not null;index"`
	AllocatedTo string    `json:"allocated_to" gorm:"size:140;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Priority    string    `json:"priority" gorm:"size:20;default:Medium"`
	Status      string    `json:"status" gorm:"size:20;not null;default:PENDING"`
	CreatedBy   string    `json:"created_by" gorm:"size:64"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Assignment) TableName() string {
	return "erp_assignments"
}

package entity

import (
	"time"
)

// BOMStatus BOM版本状态
const (
	BOMStatusDraft     = "DRAFT"
	BOMStatusSubmitted = "SUBMITTED"
	BOMStatusCancelled = "CANCELLED"
)

// BOMVersion BOM版本。提交后内容不可变，变更通过新版本完成；
// 每个款号最多一个默认版本（is_default）
type BOMVersion struct {
	ID              string     `json:"id" gorm:"primaryKey;type:uuid"`
	BOMCode         string     `json:"bom_code" gorm:"size:140;not null;uniqueIndex"`
	ItemCode        string     `json:"item_code" gorm:"size:140;not null;index"`
	ItemName        string     `json:"item_name" gorm:"size:200"`
	Quantity        float64    `json:"quantity" gorm:"type:decimal(12,4);not null;default:1"` // 产出数量
	UOM             string     `json:"uom" gorm:"size:20;not null;default:件"`
	VersionSeq      int        `json:"version_seq" gorm:"not null;default:1"`
	PredecessorID   string     `json:"predecessor_id" gorm:"type:uuid"` // 拷贝来源版本
	IsDefault       bool       `json:"is_default" gorm:"default:false;index"`
	IsActive        bool       `json:"is_active" gorm:"default:true"`
	Status          string     `json:"status" gorm:"size:20;not null;default:DRAFT"`
	TotalCost       float64    `json:"total_cost" gorm:"type:decimal(12,2);default:0"`
	RawMaterialCost float64    `json:"raw_material_cost" gorm:"type:decimal(12,2);default:0"`
	OperatingCost   float64    `json:"operating_cost" gorm:"type:decimal(12,2);default:0"`
	Currency        string     `json:"currency" gorm:"size:10;not null;default:CNY"`
	Company         string     `json:"company" gorm:"size:140"`
	Remarks         string     `json:"remarks" gorm:"type:text"`
	CreatedBy       string     `json:"created_by" gorm:"size:64;not null"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at" gorm:"index"`

	Items      []BOMLineItem  `json:"items,omitempty" gorm:"foreignKey:BOMID"`
	Operations []BOMOperation `json:"operations,omitempty" gorm:"foreignKey:BOMID"`
	ScrapItems []BOMScrapItem `json:"scrap_items,omitempty" gorm:"foreignKey:BOMID"`
}

func (BOMVersion) TableName() string {
	return "erp_bom_versions"
}

// BOMLineItem BOM用料行，金额在版本创建时按 数量×单价 固化
type BOMLineItem struct {
	ID              string    `json:"id" gorm:"primaryKey;type:uuid"`
	BOMID           string    `json:"bom_id" gorm:"type:uuid;not null;index"`
	Idx             int       `json:"idx" gorm:"not null;default:0"`
	ItemCode        string    `json:"item_code" gorm:"size:140;not null"`
	ItemName        string    `json:"item_name" gorm:"size:200"`
	Quantity        float64   `json:"quantity" gorm:"type:decimal(12,4);not null"`
	UOM             string    `json:"uom" gorm:"size:20;not null;default:件"`
	StockUOM        string    `json:"stock_uom" gorm:"size:20"`
	StockQty        float64   `json:"stock_qty" gorm:"type:decimal(12,4);default:0"`
	Rate            float64   `json:"rate" gorm:"type:decimal(12,4);default:0"`
	Amount          float64   `json:"amount" gorm:"type:decimal(12,2);default:0"`
	BOMNo           string    `json:"bom_no" gorm:"size:140"` // 引用下级BOM编码，展开时递归
	Operation       string    `json:"operation" gorm:"size:140"`
	SourceWarehouse string    `json:"source_warehouse" gorm:"size:140"`
	Image           string    `json:"image" gorm:"size:500"`
	Description     string    `json:"description" gorm:"type:text"`
	CreatedAt       time.Time `json:"created_at"`
}

func (BOMLineItem) TableName() string {
	return "erp_bom_line_items"
}

// BOMOperation BOM工序行
type BOMOperation struct {
	ID            string    `json:"id" gorm:"primaryKey;type:uuid"`
	BOMID         string    `json:"bom_id" gorm:"type:uuid;not null;index"`
	Idx           int       `json:"idx" gorm:"not null;default:0"`
	Operation     string    `json:"operation" gorm:"size:140;not null"`
	TimeMinutes   float64   `json:"time_minutes" gorm:"type:decimal(12,2);default:0"`
	HourlyRate    float64   `json:"hourly_rate" gorm:"type:decimal(12,4);default:0"`
	OperatingCost float64   `json:"operating_cost" gorm:"type:decimal(12,2);default:0"`
	Description   string    `json:"description" gorm:"type:text"`
	CreatedAt     time.Time `json:"created_at"`
}

func (BOMOperation) TableName() string {
	return "erp_bom_operations"
}

// BOMScrapItem BOM损耗行
type BOMScrapItem struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	BOMID     string    `json:"bom_id" gorm:"type:uuid;not null;index"`
	Idx       int       `json:"idx" gorm:"not null;default:0"`
	ItemCode  string    `json:"item_code" gorm:"size:140;not null"`
	Quantity  float64   `json:"quantity" gorm:"type:decimal(12,4);not null"`
	Rate      float64   `json:"rate" gorm:"type:decimal(12,4);default:0"`
	Amount    float64   `json:"amount" gorm:"type:decimal(12,2);default:0"`
	CreatedAt time.Time `json:"created_at"`
}

func (BOMScrapItem) TableName() string {
	return "erp_bom_scrap_items"
}

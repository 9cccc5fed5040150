package entity

import (
	"time"
)

// ItemStatus 物料状态
const (
	ItemStatusActive   = "ACTIVE"
	ItemStatusDisabled = "DISABLED"
)

// Item 物料/款式主数据
type Item struct {
	ID               string     `json:"id" gorm:"primaryKey;type:uuid"`
	ItemCode         string     `json:"item_code" gorm:"size:140;not null;uniqueIndex"`
	ItemName         string     `json:"item_name" gorm:"size:200"`
	ItemGroup        string     `json:"item_group" gorm:"size:100"`
	VariantOf        string     `json:"variant_of" gorm:"size:140;index"` // 所属模板款号
	UOM              string     `json:"uom" gorm:"size:20;not null;default:件"`
	StockUOM         string     `json:"stock_uom" gorm:"size:20;not null;default:件"`
	ConversionFactor float64    `json:"conversion_factor" gorm:"type:decimal(12,4);default:1"`
	IsStockItem      bool       `json:"is_stock_item" gorm:"default:true"`
	DefaultBOMID     string     `json:"default_bom_id" gorm:"type:uuid"`
	ValuationRate    float64    `json:"valuation_rate" gorm:"type:decimal(12,4);default:0"`
	Description      string     `json:"description" gorm:"type:text"`
	Image            string     `json:"image" gorm:"size:500"`
	Status           string     `json:"status" gorm:"size:20;not null;default:ACTIVE"`
	CreatedBy        string     `json:"created_by" gorm:"size:64"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	DeletedAt        *time.Time `json:"deleted_at" gorm:"index"`

	Attributes []ItemVariantAttribute `json:"attributes,omitempty" gorm:"foreignKey:ItemCode;references:ItemCode"`
}

func (Item) TableName() string {
	return "erp_items"
}

// ItemVariantAttribute 变体属性行（声明顺序由 idx 决定）
type ItemVariantAttribute struct {
	ID             string    `json:"id" gorm:"primaryKey;type:uuid"`
	ItemCode       string    `json:"item_code" gorm:"size:140;not null;index"`
	Idx            int       `json:"idx" gorm:"not null;default:0"`
	Attribute      string    `json:"attribute" gorm:"size:140;not null"`
	AttributeValue string    `json:"attribute_value" gorm:"size:140"`
	CreatedAt      time.Time `json:"created_at"`
}

func (ItemVariantAttribute) TableName() string {
	return "erp_item_variant_attributes"
}

// ItemAttribute 属性主数据，标签用于区分颜色/尺码类属性（逗号分隔）
type ItemAttribute struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	Name      string    `json:"name" gorm:"size:140;not null;uniqueIndex"`
	Tags      string    `json:"tags" gorm:"size:200"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ItemAttribute) TableName() string {
	return "erp_item_attributes"
}

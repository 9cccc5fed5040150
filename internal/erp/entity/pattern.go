package entity

import (
	"time"
)

// PatternStatus 样板记录状态
const (
	PatternStatusDraft     = "DRAFT"
	PatternStatusSubmitted = "SUBMITTED"
)

// PatternRecord 样板记录，仅样板单合同类型下随订单链创建；(订单, 序号) 唯一
type PatternRecord struct {
	ID            string    `json:"id" gorm:"primaryKey;type:uuid"`
	PatternCode   string    `json:"pattern_code" gorm:"size:50;not null;uniqueIndex"`
	StyleItemCode string    `json:"style_item_code" gorm:"size:140;not null"`
	CustomerID    string    `json:"customer_id" gorm:"type:uuid"`
	SalesOrderID  string    `json:"sales_order_id" gorm:"type:uuid;not null;uniqueIndex:uk_pattern_order_seq"`
	PatternSeq    int       `json:"pattern_seq" gorm:"not null;uniqueIndex:uk_pattern_order_seq"`
	VersionLabel  string    `json:"version_label" gorm:"size:20"`
	Status        string    `json:"status" gorm:"size:20;not null;default:DRAFT"`
	CreatedBy     string    `json:"created_by" gorm:"size:64;not null"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (PatternRecord) TableName() string {
	return "erp_pattern_records"
}

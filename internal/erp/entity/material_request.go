package entity

import (
	"time"
)

// MaterialRequestStatus 物料申请状态
const (
	MRStatusPending   = "PENDING"
	MRStatusOrdered   = "ORDERED"
	MRStatusCancelled = "CANCELLED"
)

// MaterialRequest 物料申请，撤销删除时联动重置关联生产订单
type MaterialRequest struct {
	ID             string     `json:"id" gorm:"primaryKey;type:uuid"`
	MRCode         string     `json:"mr_code" gorm:"size:50;not null;uniqueIndex"`
	SalesOrderCode string     `json:"sales_order_code" gorm:"size:50;index"`
	Purpose        string     `json:"purpose" gorm:"size:50"`
	Status         string     `json:"status" gorm:"size:20;not null;default:PENDING"`
	Notes          string     `json:"notes" gorm:"type:text"`
	CreatedBy      string     `json:"created_by" gorm:"size:64;not null"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `json:"deleted_at" gorm:"index"`
}

func (MaterialRequest) TableName() string {
	return "erp_material_requests"
}

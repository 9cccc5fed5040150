package entity

import (
	"time"
)

// CustomerStatus 客户状态
const (
	CustomerStatusActive   = "ACTIVE"
	CustomerStatusInactive = "INACTIVE"
)

// Customer 客户实体
type Customer struct {
	ID           string     `json:"id" gorm:"primaryKey;type:uuid"`
	CustomerCode string     `json:"customer_code" gorm:"size:50;not null;uniqueIndex"`
	Name         string     `json:"name" gorm:"size:200;not null"`
	ContactName  string     `json:"contact_name" gorm:"size:100"`
	Phone        string     `json:"phone" gorm:"size:20"`
	Email        string     `json:"email" gorm:"size:100"`
	Address      string     `json:"address" gorm:"size:500"`
	PaymentTerms string     `json:"payment_terms" gorm:"size:100"`
	Status       string     `json:"status" gorm:"size:20;not null;default:ACTIVE"`
	Notes        string     `json:"notes" gorm:"type:text"`
	CreatedBy    string     `json:"created_by" gorm:"size:64"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at" gorm:"index"`
}

func (Customer) TableName() string {
	return "erp_customers"
}

// Company 公司主数据
type Company struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	Name      string    `json:"name" gorm:"size:140;not null;uniqueIndex"`
	Abbr      string    `json:"abbr" gorm:"size:20"`
	Currency  string    `json:"currency" gorm:"size:10;not null;default:CNY"`
	Country   string    `json:"country" gorm:"size:50"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Company) TableName() string {
	return "erp_companies"
}
